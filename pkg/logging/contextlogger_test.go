package logging_test

import (
	"context"
	"testing"

	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"github.com/hmpsicoterapia/prontuario-api/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogger_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := logging.NewContextLogger(zap.New(core))

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	logger.InfoCtx(ctx, "com span")
	span.End()

	logger.InfoCtx(context.Background(), "sem span")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[0].ContextMap()["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestNewLoggerWithConfig(t *testing.T) {
	_, err := logging.NewLoggerWithConfig(config.LoggingConfig{Level: "barulhento"})
	assert.Error(t, err)

	logger, err := logging.NewLoggerWithConfig(config.LoggingConfig{Level: "debug", Format: "console", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
