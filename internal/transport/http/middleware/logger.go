package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request, at a level picked from the status code.
// It expects chi's RequestID middleware to run first.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", realIP(r)),
				zap.Int("status_code", status),
				zap.Duration("duration", duration),
				zap.Int("response_size", ww.BytesWritten()),
			}
			switch {
			case status >= 500:
				log.Error("request_completed", fields...)
			case status >= 400:
				log.Warn("request_completed", fields...)
			case duration > time.Second:
				log.Warn("slow_request", fields...)
			default:
				log.Info("request_completed", fields...)
			}
		})
	}
}
