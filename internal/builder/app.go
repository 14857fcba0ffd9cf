package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// App is the HTTP service with its session store and integrations
type App struct {
	server *http.Server
	core   *core
	logger *zap.Logger
}

// Run serves until the process is signalled or the listener fails
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	defer func() {
		a.core.close()
		_ = a.logger.Sync()
	}()

	listenErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		listenErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		a.logger.Error("http server failed", zap.Error(err))
		return err
	case <-ctx.Done():
		a.logger.Info("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown", zap.Error(err))
		return err
	}
	a.logger.Info("http server stopped")
	return nil
}
