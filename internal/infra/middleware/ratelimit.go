package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hmpsicoterapia/prontuario-api/internal/infra/metrics"
	"github.com/hmpsicoterapia/prontuario-api/pkg/ratelimit"
	"go.uber.org/zap"
)

// RateLimitMiddleware limita requisições por IP nos endpoints públicos de autenticação
type RateLimitMiddleware struct {
	limiter     ratelimit.Limiter
	metrics     *metrics.APIMetrics
	limit       int
	period      time.Duration
	burstFactor float64
	logger      *zap.Logger
}

// NewRateLimitMiddleware cria um novo middleware de rate limiting
func NewRateLimitMiddleware(limiter ratelimit.Limiter, metrics *metrics.APIMetrics, limit int, period time.Duration, burstFactor float64, logger *zap.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter:     limiter,
		metrics:     metrics,
		limit:       limit,
		period:      period,
		burstFactor: burstFactor,
		logger:      logger,
	}
}

// IPRateLimit limita requisições por IP e rota
func (m *RateLimitMiddleware) IPRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		res, err := m.limiter.Allow(c.Request.Context(), ratelimit.LimitConfig{
			Key:         "ip:" + c.ClientIP() + ":" + path,
			Limit:       m.limit,
			Period:      m.period,
			BurstFactor: m.burstFactor,
		})
		if err != nil {
			// falha do limitador não bloqueia o login
			m.logger.Error("erro ao verificar rate limit", zap.String("path", path), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(res.ResetAfter).Unix(), 10))

		if !res.Allowed {
			if m.metrics != nil {
				m.metrics.RateLimitExceeded(path, c.Request.Method)
			}
			m.logger.Warn("rate limit excedido",
				zap.String("ip", c.ClientIP()),
				zap.String("path", path))

			retryAfter := int(res.ResetAfter.Seconds())
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Muitas tentativas. Tente novamente mais tarde.",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
