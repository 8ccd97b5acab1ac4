// Package transport provides http.RoundTripper decorators shared by the API
// clients.
package transport

import (
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDTransport stamps every outgoing request with a unique X-Request-ID
// header so client and server logs can be correlated.
type RequestIDTransport struct {
	base http.RoundTripper
}

func WithRequestIDs(base http.RoundTripper) *RequestIDTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RequestIDTransport{base: base}
}

func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", uuid.New().String())
	return t.base.RoundTrip(req)
}

// TracingTransport opens a client span for each outgoing request.
type TracingTransport struct {
	base   http.RoundTripper
	tracer trace.Tracer
}

func WithTracing(base http.RoundTripper, tracer trace.Tracer) *TracingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &TracingTransport{base: base, tracer: tracer}
}

func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := t.tracer.Start(req.Context(), req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}
