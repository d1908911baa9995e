package util

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerFromFallsBackToGlobal(t *testing.T) {
	assert.Same(t, GetLogger(), LoggerFrom(context.Background()))

	scoped := zap.NewNop()
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, LoggerFrom(ctx))
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	tp, err := InitTracer(TracerOptions{ServiceName: "gamestore-test", Environment: "test"})
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := StartSpan(context.Background(), "test-span")
	assert.True(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}
