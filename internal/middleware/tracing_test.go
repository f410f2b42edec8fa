package middleware

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"yatube/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		observability.Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func newTracedApp() *fiber.App {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/group/:slug", func(c *fiber.Ctx) error { return c.SendString("group") })
	app.Get("/:username/:post_id", func(c *fiber.Ctx) error { return c.SendString("post") })
	return app
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingMiddleware_NamesSpansByRoute(t *testing.T) {
	rec := recordSpans(t)
	app := newTracedApp()

	for _, target := range []string{"/leo/3", "/amy/17"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	}

	spans := rec.Ended()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, "GET /:username/:post_id", s.Name())
		assert.Equal(t, "/:username/:post_id", spanAttrs(s)["http.route"].AsString())
	}
	first := spanAttrs(spans[0])
	assert.Equal(t, "leo", first[observability.AttrUsername].AsString())
	assert.Equal(t, int64(3), first[observability.AttrPostID].AsInt64())
}

func TestTracingMiddleware_RecordsGroupSlug(t *testing.T) {
	rec := recordSpans(t)
	app := newTracedApp()

	_, err := app.Test(httptest.NewRequest("GET", "/group/cats", nil))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /group/:slug", spans[0].Name())
	assert.Equal(t, "cats", spanAttrs(spans[0])[observability.AttrGroupSlug].AsString())
	assert.EqualValues(t, fiber.StatusOK, spanAttrs(spans[0])["http.response.status_code"].AsInt64())
}

func TestTracingMiddleware_OmitsQueryString(t *testing.T) {
	rec := recordSpans(t)
	app := newTracedApp()

	_, err := app.Test(httptest.NewRequest("GET", "/leo/3?next=%2Fsecret-return-path", nil))
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	for _, kv := range spans[0].Attributes() {
		assert.False(t, strings.Contains(kv.Value.Emit(), "secret-return-path"), "attribute %s leaks the query", kv.Key)
	}
}

func TestTracingMiddleware_NotFoundKeepsBoundedName(t *testing.T) {
	rec := recordSpans(t)
	app := newTracedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/a/b/c/d", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.NotContains(t, spans[0].Name(), "/a/b/c/d")
	assert.EqualValues(t, fiber.StatusNotFound, spanAttrs(spans[0])["http.response.status_code"].AsInt64())
}
