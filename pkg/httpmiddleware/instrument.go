package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// RouteFinder resolves a request to the route pattern it matches, so spans
// and log lines carry the pattern instead of the raw (high-cardinality) path.
type RouteFinder func(r *http.Request) (route string, ok bool)

// MakeRouteFinder builds a RouteFinder over the mux's registered patterns.
func MakeRouteFinder(mux *http.ServeMux) RouteFinder {
	return func(r *http.Request) (string, bool) {
		_, pattern := mux.Handler(r)
		return pattern, pattern != ""
	}
}

// Instrument returns a middleware that traces and measures each request via
// OpenTelemetry, using the providers from the telemetry bundle. Spans are
// named after the matched route.
func Instrument(service string, find RouteFinder, m *app.Telemetry) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithPropagators(m.TextMapPropagator()),
			otelhttp.WithSpanNameFormatter(spanNameFormatter(find)),
		)
	}
}

func spanNameFormatter(find RouteFinder) func(operation string, r *http.Request) string {
	return func(operation string, r *http.Request) string {
		if route, ok := find(r); ok {
			return route
		}
		return operation
	}
}

// Labeler attaches the matched route to the request metrics emitted by
// Instrument. It must run inside Instrument, which owns the context labeler.
func Labeler(find RouteFinder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if route, ok := find(r); ok {
				if labeler, found := otelhttp.LabelerFromContext(r.Context()); found {
					labeler.Add(attribute.String("http.route", route))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
