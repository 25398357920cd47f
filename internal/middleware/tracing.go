package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "leaderboard/http"

// unmatchedRoute labels requests no pattern matched, so 404 probes share one
// metric series.
const unmatchedRoute = "unmatched"

// Tracing opens a server span per request, continuing any trace carried in
// the incoming headers, and records request count and duration. Spans and
// metrics are labelled with the matched ServeMux pattern, never the raw path.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	var counter otelmetric.Int64Counter = noop.Int64Counter{}
	if c, err := meter.Int64Counter("http.server.request_count"); err == nil {
		counter = c
	}
	var duration otelmetric.Float64Histogram = noop.Float64Histogram{}
	if h, err := meter.Float64Histogram("http.server.duration", otelmetric.WithUnit("ms")); err == nil {
		duration = h
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.request_id", RequestIDFromCtx(r.Context())),
			),
		)
		defer span.End()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		// ServeMux records the matched pattern on the request it is given.
		req := r.WithContext(ctx)
		next.ServeHTTP(sw, req)

		route := routeOf(req.Pattern)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", sw.status),
		)
		attrs := otelmetric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_code", strconv.Itoa(sw.status)),
		)
		counter.Add(ctx, 1, attrs)
		duration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	})
}

// routeOf strips the method from a pattern such as "GET /agents/{id}".
func routeOf(pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}
