package docs

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	documentRoute       = "/docs/swagger.yaml"
	DefaultDocumentPath = "docs/swagger.yaml"
)

// uiHandler serves Swagger UI pointed at the bundled OpenAPI document
func uiHandler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL(documentRoute),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)
}

// documentHandler serves the OpenAPI document from documentPath on disk
func documentHandler(documentPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := os.Stat(documentPath); err != nil {
			http.Error(w, "api document not available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		http.ServeFile(w, r, documentPath)
	}
}

// RegisterRoutes mounts /docs (UI) and /docs/swagger.yaml (document)
func RegisterRoutes(r chi.Router) {
	RegisterRoutesWithDocument(r, DefaultDocumentPath)
}

func RegisterRoutesWithDocument(r chi.Router, documentPath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})
	r.Get(documentRoute, documentHandler(documentPath))
	r.Get("/docs/*", uiHandler())
}
