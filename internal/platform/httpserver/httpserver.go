package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

// New builds the HTTP server. Timeouts bound header and body reads only:
// the websocket route holds connections open indefinitely. Server-level
// errors (TLS handshakes, panics outside handlers) go to logger at warn.
func New(addr string, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	return srv
}
