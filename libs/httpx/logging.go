package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type statusCapturingResponseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusCapturingResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusCapturingResponseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

type annotations struct {
	mu    sync.Mutex
	attrs []any
}

// Annotate adds key/value pairs to the access log line of the current request.
// It is a no-op outside WithAccessLog.
func Annotate(ctx context.Context, args ...any) {
	a, ok := ctx.Value(ctxKeyAnnotations).(*annotations)
	if !ok {
		return
	}
	a.mu.Lock()
	a.attrs = append(a.attrs, args...)
	a.mu.Unlock()
}

func WithAccessLog(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusCapturingResponseWriter{ResponseWriter: w}
			notes := &annotations{}
			ctx := context.WithValue(r.Context(), ctxKeyAnnotations, notes)

			next.ServeHTTP(sw, r.WithContext(ctx))

			args := []any{
				"request_id", RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			notes.mu.Lock()
			args = append(args, notes.attrs...)
			notes.mu.Unlock()
			logger.Info("http request", args...)
		})
	}
}
