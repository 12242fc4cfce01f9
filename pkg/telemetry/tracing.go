package telemetry

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// TracerProvider encapsula o provider do SDK para encerramento ordenado
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracerProvider conecta ao coletor OTLP e instala o provider global.
// Requisições sem trace pai são amostradas por cfg.SamplingRatio.
func NewTracerProvider(ctx context.Context, cfg config.TracingConfig, logger *zap.Logger) (*TracerProvider, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock())
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao coletor OTLP %s: %w", cfg.Endpoint, err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("falha ao criar exportador OTLP: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(Resource(cfg.ServiceName)...))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRatio))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetTracerProvider(tp)

	logger.Info("Rastreamento OTLP ativo",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("environment", Environment()),
		zap.Float64("sampling_ratio", cfg.SamplingRatio))

	return &TracerProvider{
		provider: tp,
		logger:   logger,
	}, nil
}

// Shutdown descarrega os spans pendentes
func (tp *TracerProvider) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := tp.provider.Shutdown(ctx); err != nil {
		tp.logger.Error("falha ao encerrar tracer provider", zap.Error(err))
	}
}

// Resource descreve o serviço nos spans exportados
func Resource(serviceName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.DeploymentEnvironmentKey.String(Environment()),
	}
	if v := Version(); v != "" {
		attrs = append(attrs, semconv.ServiceVersionKey.String(v))
	}
	return attrs
}

// Environment retorna o ambiente de implantação. PRONTUARIO_ENVIRONMENT tem
// precedência sobre ENVIRONMENT; sem nenhum dos dois, "development".
func Environment() string {
	for _, key := range []string{"PRONTUARIO_ENVIRONMENT", "ENVIRONMENT"} {
		if env := os.Getenv(key); env != "" {
			return env
		}
	}
	return "development"
}

// Version retorna a versão publicada em APP_VERSION, vazia em builds locais
func Version() string {
	return os.Getenv("APP_VERSION")
}
