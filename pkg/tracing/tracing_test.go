package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec
}

func TestInitTracer(t *testing.T) {
	// 导出器惰性连接，没有Collector也能初始化
	shutdown, err := InitTracer("library-test", "localhost:4317")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	_ = shutdown(context.Background())
}

func TestStartSpan_ParentChild(t *testing.T) {
	rec := newRecorder(t)

	ctx, root := StartSpan(context.Background(), "library", "BorrowBook", attribute.String("isbn", "978-0"))
	_, child := StartSpan(ctx, "library", "RecordLoan")

	assert.Equal(t, root.SpanContext().TraceID(), child.SpanContext().TraceID())
	assert.NotEqual(t, root.SpanContext().SpanID(), child.SpanContext().SpanID())
	assert.Equal(t, root.SpanContext().TraceID().String(), ExtractTraceID(ctx))
	assert.Equal(t, root.SpanContext().SpanID().String(), ExtractSpanID(ctx))

	child.End()
	root.End()

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "RecordLoan", ended[0].Name())
	assert.Equal(t, "BorrowBook", ended[1].Name())
	assert.Contains(t, ended[1].Attributes(), attribute.String("isbn", "978-0"))
}

func TestEndSpan_Status(t *testing.T) {
	rec := newRecorder(t)

	_, ok := StartSpan(context.Background(), "library", "ok")
	EndSpan(ok, nil)
	_, failed := StartSpan(context.Background(), "library", "failed")
	EndSpan(failed, errors.New("store down"))

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "store down", ended[1].Status().Description)
	assert.Len(t, ended[1].Events(), 1)
}

func TestExtractTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))
}
