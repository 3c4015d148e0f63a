package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestTestLogger_Assertions(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "run finished", zap.Uint64("nodes", 90), zap.String("policy", "legacy"))

	tl.AssertLogged(t, zapcore.InfoLevel, "run finished")
	tl.AssertNotLogged(t, zapcore.ErrorLevel, "run finished")
	tl.AssertField(t, "run finished", "policy", "legacy")
	tl.AssertField(t, "run finished", "nodes", 90)
	tl.AssertField(t, "run finished", "nodes", uint64(90))
	assert.Len(t, tl.All(), 1)
}

func TestTestLogger_CapturesTrace(t *testing.T) {
	tl := NewTestLogger()
	tl.Trace(context.Background(), "frame pushed")
	tl.AssertLogged(t, TraceLevel, "frame pushed")
}

func TestTestLogger_Reset(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "first")
	tl.Reset()
	assert.Empty(t, tl.All())
}

func TestTestLogger_AssertTraceCorrelation(t *testing.T) {
	tl := NewTestLogger()
	tp := trace.NewTracerProvider(trace.WithSampler(trace.AlwaysSample()))
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	tl.Info(ctx, "correlated")
	tl.AssertTraceCorrelation(t, "correlated")
}

func TestSameInteger(t *testing.T) {
	assert.True(t, sameInteger(int64(3), uint64(3)))
	assert.True(t, sameInteger(3, int32(3)))
	assert.False(t, sameInteger(3, "3"))
	assert.False(t, sameInteger(uint64(1<<63), int64(-1)))
}
