package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/router"
)

const defaultTracerName = "medapi"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "medapi").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// Propagator extracts the caller's trace context from request headers.
	// Default: the global propagator.
	Propagator propagation.TextMapPropagator

	// Filter determines which requests to trace.
	// Return true to trace the request, false to skip.
	// If nil, all requests are traced.
	Filter func(r *http.Request) bool

	// AttributeExtractor adds custom attributes per request.
	AttributeExtractor func(r *http.Request) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithPropagator sets the propagator used to read incoming trace headers.
func WithPropagator(p propagation.TextMapPropagator) OTelOption {
	return func(c *OTelConfig) {
		c.Propagator = p
	}
}

// WithRequestFilter sets a filter function for requests.
func WithRequestFilter(filter func(r *http.Request) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(r *http.Request) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing creates route middleware that wraps every request in a server
// span named "METHOD pattern".
//
// The span carries the route pattern, handler kind and source module. The
// span context is injected into the request context, so handlers reach it
// through req.Context(). Responses with status >= 500 mark the span as
// failed.
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before starting the server:
//
//	otel.SetTracerProvider(tp)
func Tracing(opts ...OTelOption) router.RouteMiddleware {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	if config.Propagator == nil {
		config.Propagator = otel.GetTextMapPropagator()
	}

	return func(reg router.Registration, next http.Handler) http.Handler {
		spanName := fmt.Sprintf("%s %s", reg.Method, reg.Pattern)
		base := []attribute.KeyValue{
			attribute.String("http.request.method", reg.Method),
			attribute.String("http.route", reg.Pattern),
			attribute.String("medapi.handler_kind", reg.Kind.String()),
			attribute.String("medapi.route_module", reg.Source),
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Filter != nil && !config.Filter(r) {
				next.ServeHTTP(w, r)
				return
			}

			attrs := append([]attribute.KeyValue{}, base...)
			attrs = append(attrs, attribute.String("url.path", r.URL.Path))
			if config.AttributeExtractor != nil {
				attrs = append(attrs, config.AttributeExtractor(r)...)
			}

			parent := config.Propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(parent, spanName,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
				trace.WithTimestamp(time.Now()),
			)
			defer span.End()

			snoop := httpsnoop.CaptureMetrics(next, w, r.WithContext(ctx))

			span.SetAttributes(
				attribute.Int("http.response.status_code", snoop.Code),
				attribute.Int64("http.response.body.size", snoop.Written),
			)
			if snoop.Code >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(snoop.Code))
			} else {
				span.SetStatus(codes.Ok, "")
			}
		})
	}
}

// SpanFromContext returns the current request span, or nil.
func SpanFromContext(ctx context.Context) trace.Span {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}
