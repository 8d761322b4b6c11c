package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-shop-mis/metrics"
	"print-shop-mis/utils"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// Recover turns a handler panic into a 500 response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zap.S().Errorf("❌ Panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error", nil)
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestID keeps a sane incoming X-Request-ID or generates one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// AccessLog logs one line per request.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		rid := RequestIDFrom(r.Context())
		switch {
		case rec.status >= http.StatusInternalServerError:
			zap.S().Errorf("❌ %s %s -> %d (%s, %dB) rid=%s", r.Method, r.URL.Path, rec.status, elapsed, rec.bytes, rid)
		case rec.status >= http.StatusBadRequest:
			zap.S().Warnf("⚠️ %s %s -> %d (%s, %dB) rid=%s", r.Method, r.URL.Path, rec.status, elapsed, rec.bytes, rid)
		default:
			zap.S().Infof("📥 %s %s -> %d (%s, %dB) rid=%s", r.Method, r.URL.Path, rec.status, elapsed, rec.bytes, rid)
		}
	})
}

// Metrics records request counts and latency. route maps a request to its mux pattern so
// paths with ids share one series.
func Metrics(route func(*http.Request) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			label := route(r)
			if label == "" {
				label = "unmatched"
			}
			metrics.ObserveRequest(r.Method, label, rec.status, time.Since(start))
		})
	}
}
