// Package httpserver builds the process's single *http.Server.
package httpserver

import (
	"net/http"

	"redhope/internal/platform/config"
)

// New applies cfg's timeouts. ShutdownTimeout is consumed by the caller
// when draining.
func New(addr string, cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
