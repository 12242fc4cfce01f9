package telemetry_test

import (
	"testing"

	"github.com/hmpsicoterapia/prontuario-api/pkg/telemetry"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

func TestEnvironment(t *testing.T) {
	t.Setenv("PRONTUARIO_ENVIRONMENT", "")
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, "development", telemetry.Environment())

	t.Setenv("ENVIRONMENT", "staging")
	assert.Equal(t, "staging", telemetry.Environment())

	t.Setenv("PRONTUARIO_ENVIRONMENT", "production")
	assert.Equal(t, "production", telemetry.Environment())
}

func TestResource(t *testing.T) {
	t.Setenv("PRONTUARIO_ENVIRONMENT", "production")

	t.Setenv("APP_VERSION", "")
	assert.Equal(t, []attribute.KeyValue{
		semconv.ServiceNameKey.String("prontuario-api"),
		semconv.DeploymentEnvironmentKey.String("production"),
	}, telemetry.Resource("prontuario-api"))

	t.Setenv("APP_VERSION", "1.4.0")
	assert.Contains(t, telemetry.Resource("prontuario-api"), semconv.ServiceVersionKey.String("1.4.0"))
}
