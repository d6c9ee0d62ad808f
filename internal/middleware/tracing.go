package middleware

import (
	"pinmap/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware opens a server span per request, continuing any incoming
// trace context. Once routing is done the span is renamed to the matched route
// template, so /api/lists/7 and /api/lists/9 share "GET /api/lists/:id".
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(parent, "HTTP "+c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", c.Path()),
				attribute.String("client.address", c.IP()),
				attribute.String("user_agent.original", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Locals("spanID", span.SpanContext().SpanID().String())
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		annotateRequestSpan(c, span, err)
		return err
	}
}

func annotateRequestSpan(c *fiber.Ctx, span trace.Span, err error) {
	route := c.Route().Path
	span.SetName(c.Method() + " " + route)

	status := c.Response().StatusCode()
	if fe, ok := err.(*fiber.Error); ok {
		status = fe.Code
	}
	span.SetAttributes(
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		span.SetAttributes(attribute.String("request.id", rid))
	}
	if viewer, ok := c.Locals("userID").(uint); ok && viewer > 0 {
		span.SetAttributes(attribute.Int64("pinmap.viewer_id", int64(viewer)))
	}

	if err != nil {
		span.RecordError(err)
	}
	if status >= fiber.StatusInternalServerError {
		span.SetStatus(codes.Error, fiber.ErrInternalServerError.Message)
	}
}
