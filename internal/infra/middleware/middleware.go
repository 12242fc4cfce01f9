package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hmpsicoterapia/prontuario-api/internal/infra/metrics"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader é o cabeçalho de correlação de requisições
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey guarda o identificador no gin.Context
	RequestIDKey = "request_id"
)

// Options reúne as dependências dos middlewares; RateLimit e Metrics são opcionais
type Options struct {
	Identity       IdentityResolver
	Metrics        *metrics.APIMetrics
	RateLimit      *RateLimitMiddleware
	AllowedOrigins []string
}

// Middleware contém todos os middlewares da aplicação
type Middleware struct {
	logger              *zap.Logger
	authMiddleware      *AuthMiddleware
	recoveryMiddleware  *RecoveryMiddleware
	securityMiddleware  *SecurityMiddleware
	tracingMiddleware   *TracingMiddleware
	metricsMiddleware   *MetricsMiddleware
	rateLimitMiddleware *RateLimitMiddleware
}

// NewMiddleware cria um novo conjunto de middlewares
func NewMiddleware(logger *zap.Logger, opts Options) *Middleware {
	m := &Middleware{
		logger:              logger,
		authMiddleware:      NewAuthMiddleware(opts.Identity, logger),
		recoveryMiddleware:  NewRecoveryMiddleware(logger),
		securityMiddleware:  NewSecurityMiddleware(opts.AllowedOrigins, logger),
		tracingMiddleware:   NewTracingMiddleware(logger),
		rateLimitMiddleware: opts.RateLimit,
	}
	if opts.Metrics != nil {
		m.metricsMiddleware = NewMetricsMiddleware(opts.Metrics, logger)
	}
	return m
}

// Metrics retorna o middleware de métricas
func (m *Middleware) Metrics() gin.HandlerFunc {
	if m.metricsMiddleware != nil {
		return m.metricsMiddleware.Middleware()
	}
	return noop
}

// RateLimit retorna o limitador dos endpoints públicos de autenticação
func (m *Middleware) RateLimit() gin.HandlerFunc {
	if m.rateLimitMiddleware != nil {
		return m.rateLimitMiddleware.IPRateLimit()
	}
	return noop
}

// Authenticate estabelece a identidade a partir do token Bearer
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return m.authMiddleware.Authenticate
}

// RequireAuthenticated exige identidade estabelecida
func (m *Middleware) RequireAuthenticated() gin.HandlerFunc {
	return m.authMiddleware.RequireAuthenticated
}

// Recovery middleware para recuperação de pânicos
func (m *Middleware) Recovery() gin.HandlerFunc {
	return m.recoveryMiddleware.Recovery()
}

// IgnoreFavicon é um middleware que ignora requisições para /favicon.ico
func (m *Middleware) IgnoreFavicon() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/favicon.ico" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestID propaga ou gera o identificador da requisição
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger middleware para logging de requisições
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("path", path),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDKey)),
		}
		if email, ok := CurrentEmail(c); ok {
			fields = append(fields, zap.String("admin", email))
		}

		m.logger.Info("request completed", fields...)
	}
}

// SecurityHeaders middleware para adicionar cabeçalhos de segurança
func (m *Middleware) SecurityHeaders() gin.HandlerFunc {
	return m.securityMiddleware.Headers()
}

// CORS middleware para configurar CORS
func (m *Middleware) CORS() gin.HandlerFunc {
	return m.securityMiddleware.CORS()
}

// Tracing retorna o middleware de tracing
func (m *Middleware) Tracing() gin.HandlerFunc {
	return m.tracingMiddleware.Middleware()
}

func noop(c *gin.Context) {
	c.Next()
}
