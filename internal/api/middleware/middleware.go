package middleware

import (
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/MrEthical07/tokenauth"
)

// LoggingMiddleware attaches a request-scoped logger to the context and logs
// one line per handled request. Successful health checks are not logged.
func LoggingMiddleware(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			l := base.With().
				Str("correlation_id", CorrelationCtx(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Logger()

			ctx := l.WithContext(r.Context())
			ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			if r.URL.Path == "/healthz" && ww.statusCode < 400 {
				return
			}

			l.Info().
				Int("status", ww.statusCode).
				Dur("duration", time.Since(start)).
				Msg("request.handled")
		})
	}
}

// RecoverMiddleware turns a handler panic into a 500. It logs through the
// request-scoped logger when LoggingMiddleware runs outside it, else through base.
func RecoverMiddleware(base zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					l := zerolog.Ctx(r.Context())
					if l.GetLevel() == zerolog.Disabled {
						fallback := base.With().
							Str("correlation_id", CorrelationCtx(r.Context())).
							Str("method", r.Method).
							Str("path", r.URL.Path).
							Logger()
						l = &fallback
					}
					l.Error().
						Interface("panic", err).
						Bytes("stack", debug.Stack()).
						Msg("panic.recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error": "internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIPMiddleware records the peer address for login throttling and audit.
// Forwarding headers are ignored; deployments behind a proxy should rewrite
// RemoteAddr before this runs.
func ClientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(tokenauth.WithClientIP(r.Context(), ip)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
