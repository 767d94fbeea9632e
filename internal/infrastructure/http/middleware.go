package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability"
	"github.com/nillpakhi2003-droid/habib-furniture/internal/observability/logctx"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const headerRequestID = "X-Request-ID"

type routeKey struct{}

// contextWithRoute stores the stable route template so metrics and logs use
// low-cardinality values instead of raw paths.
func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withObservability wraps a handler with the request-scoped stack: span,
// request id, context logger, HTTP metrics and a single access log line.
func (h *Handler) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		route := routeFromContext(ctx)

		ctx, span := h.tel.Tracer().Start(ctx, route,
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.String("http.target", r.URL.Path),
		)
		defer span.End()

		rid := r.Header.Get(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(headerRequestID, rid)

		fields := []observability.Field{observability.F("request_id", rid)}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		reqLogger := h.log.With(fields...)
		ctx = logctx.With(ctx, reqLogger)

		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lrw, r.WithContext(ctx))

		statusLabel := strconv.Itoa(lrw.status)
		h.httpRequests.Add(1,
			observability.L("method", r.Method),
			observability.L("route", route),
			observability.L("status", statusLabel),
		)
		h.httpDuration.Observe(time.Since(start).Seconds(),
			observability.L("method", r.Method),
			observability.L("route", route),
		)

		reqLogger.Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", route),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withSecurityHeaders sets the browser hardening headers on every response,
// error responses included.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		head := w.Header()
		head.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		head.Set("X-Frame-Options", "SAMEORIGIN")
		head.Set("X-Content-Type-Options", "nosniff")
		head.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		head.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		head.Set("X-DNS-Prefetch-Control", "on")
		head.Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}
