package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// LimitConfig configura o comportamento do limitador
type LimitConfig struct {
	Key         string        // Chave única para identificar o limite
	Limit       int           // Número máximo de requisições
	Period      time.Duration // Janela fixa do limite
	BurstFactor float64       // Fator para permitir rajadas (1.0 = sem rajada)
}

// Result descreve a decisão do limitador para uma requisição
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAfter time.Duration
}

// Limiter decide se uma requisição cabe no limite
type Limiter interface {
	Allow(ctx context.Context, cfg LimitConfig) (Result, error)
}

// fixedWindow incrementa o contador da janela e define a expiração na primeira requisição
var fixedWindow = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIREAT', KEYS[1], tonumber(ARGV[1]))
end
return {count, tonumber(ARGV[1]) - tonumber(ARGV[2])}
`)

// RedisLimiter implementa rate limiting de janela fixa usando Redis
type RedisLimiter struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewRedisLimiter cria um novo limitador baseado em Redis
func NewRedisLimiter(client *redis.Client, logger *zap.Logger) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("prontuario-api.ratelimit"),
		now:    time.Now,
	}
}

// Allow verifica se a requisição é permitida dentro do limite de taxa.
// Em caso de erro o resultado é permissivo; cabe ao chamador decidir se deixa passar.
func (r *RedisLimiter) Allow(ctx context.Context, cfg LimitConfig) (Result, error) {
	ctx, span := r.tracer.Start(
		ctx,
		"RedisLimiter.Allow",
		trace.WithAttributes(
			attribute.Int("ratelimit.limit", cfg.Limit),
			attribute.Int64("ratelimit.period_ms", cfg.Period.Milliseconds()),
			attribute.Float64("ratelimit.burst_factor", cfg.BurstFactor),
		),
	)
	defer span.End()

	if err := validate(cfg); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{Allowed: true}, err
	}
	if cfg.BurstFactor <= 0 {
		cfg.BurstFactor = 1.0
	}

	now := r.now().Unix()
	periodSeconds := int64(cfg.Period.Seconds())
	if periodSeconds < 1 {
		periodSeconds = 1
	}
	expireAt := now - (now % periodSeconds) + periodSeconds

	permissive := Result{
		Allowed:    true,
		Limit:      cfg.Limit,
		Remaining:  cfg.Limit,
		ResetAfter: time.Duration(expireAt-now) * time.Second,
	}

	raw, err := fixedWindow.Run(ctx, r.client, []string{"ratelimit:" + cfg.Key}, expireAt, now).Result()
	if err != nil {
		r.logger.Error("erro ao executar script de rate limit", zap.Error(err))
		span.SetStatus(codes.Error, "redis script error")
		return permissive, err
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		r.logger.Error("resultado inesperado do script de rate limit", zap.Any("result", raw))
		span.SetStatus(codes.Error, "unexpected result")
		return permissive, errors.New("resultado inválido do Redis")
	}

	count, _ := strconv.Atoi(fmt.Sprint(values[0]))
	ttl, _ := strconv.ParseInt(fmt.Sprint(values[1]), 10, 64)

	burstLimit := int(float64(cfg.Limit) * cfg.BurstFactor)
	result := Result{
		Allowed:    count <= burstLimit,
		Limit:      cfg.Limit,
		Remaining:  cfg.Limit - count,
		ResetAfter: time.Duration(ttl) * time.Second,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}

	span.SetAttributes(
		attribute.Int("ratelimit.count", count),
		attribute.Int("ratelimit.burst_limit", burstLimit),
		attribute.Bool("ratelimit.allowed", result.Allowed),
	)
	if !result.Allowed {
		span.SetStatus(codes.Error, "rate limit exceeded")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return result, nil
}

func validate(cfg LimitConfig) error {
	if cfg.Limit <= 0 {
		return errors.New("limite deve ser maior que zero")
	}
	if cfg.Period <= 0 {
		return errors.New("período deve ser maior que zero")
	}
	return nil
}
