package http

import (
	"net"
	"net/http"
	"time"
)

// TransportFunc wraps a RoundTripper, e.g. to add auth or logging
type TransportFunc func(http.RoundTripper) http.RoundTripper

// ClientOption tunes the client built by NewConnector
type ClientOption func(*clientConfig)

type clientConfig struct {
	dialTimeout           time.Duration
	requestTimeout        time.Duration
	keepAlive             time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConns          int
	maxIdleConnsPerHost   int
	wrappers              []TransportFunc
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		dialTimeout:           30 * time.Second,
		requestTimeout:        30 * time.Second,
		keepAlive:             90 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 10 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConns:          100,
		maxIdleConnsPerHost:   10,
	}
}

func WithConnClientTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) { c.dialTimeout = timeout }
}

// WithRequestTimeout bounds a whole exchange; zero disables the bound
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) { c.requestTimeout = timeout }
}

func WithClientKeepAlive(keepAlive time.Duration) ClientOption {
	return func(c *clientConfig) { c.keepAlive = keepAlive }
}

func WithResponseHeaderTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) { c.responseHeaderTimeout = timeout }
}

func WithIdleConnTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) { c.idleConnTimeout = timeout }
}

func WithMaxIdleConnsPerHost(n int) ClientOption {
	return func(c *clientConfig) { c.maxIdleConnsPerHost = n }
}

// WithTransport adds a wrapper; wrappers apply in the order given, the last one outermost
func WithTransport(wrap TransportFunc) ClientOption {
	return func(c *clientConfig) { c.wrappers = append(c.wrappers, wrap) }
}

func newClient(opts ...ClientOption) *http.Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}
	for _, wrap := range cfg.wrappers {
		transport = wrap(transport)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: transport,
	}
}
