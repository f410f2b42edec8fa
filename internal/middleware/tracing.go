package middleware

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"yatube/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// routeParamAttrs maps route parameters to the span attributes they fill.
var routeParamAttrs = map[string]attribute.Key{
	"username": observability.AttrUsername,
	"slug":     observability.AttrGroupSlug,
}

// TracingMiddleware opens a server span per request. The span is renamed to
// the matched route template once routing is done, so "/leo/3" and "/amy/7"
// share the name "GET /:username/:post_id". Query strings are never recorded;
// they carry login return paths.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(ctx, "HTTP "+c.Method(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(c.Method()),
				semconv.ClientAddress(c.IP()),
				semconv.UserAgentOriginal(c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		c.Set("X-Trace-ID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.SetUserContext(context.WithValue(ctx, TraceIDKey, traceID))

		err := c.Next()

		route := c.Route().Path
		span.SetName(c.Method() + " " + route)
		span.SetAttributes(semconv.HTTPRoute(route))
		span.SetAttributes(routeAttributes(c)...)

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			span.RecordError(err)
		}
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
		if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "")
		}
		if uid, ok := c.Locals(localUserID).(uint); ok {
			span.SetAttributes(observability.UserID(uid))
		}

		return err
	}
}

// routeAttributes reads the entity parameters of the matched route.
func routeAttributes(c *fiber.Ctx) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, name := range c.Route().Params {
		if name == "post_id" {
			if id, err := strconv.ParseUint(c.Params(name), 10, 64); err == nil {
				attrs = append(attrs, observability.AttrPostID.Int64(int64(id)))
			}
			continue
		}
		key, ok := routeParamAttrs[name]
		if !ok {
			continue
		}
		raw := c.Params(name)
		if v, err := url.PathUnescape(raw); err == nil {
			raw = v
		}
		attrs = append(attrs, key.String(raw))
	}
	return attrs
}
