package docdex

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	endpoint  string
	masterKey string

	httpClient *http.Client

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEndpoint sets the service endpoint URL, e.g. "https://localhost:8081".
func WithEndpoint(endpoint string) Option {
	return optionFunc(func(c *clientConfig) {
		c.endpoint = endpoint
	})
}

// WithKey sets the base64 master key used to sign requests.
func WithKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.masterKey = key
	})
}

// WithHTTPClient overrides the underlying HTTP client. Useful for custom
// TLS configuration or test servers.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
