package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware implementa recuperação de pânicos
type RecoveryMiddleware struct {
	logger *zap.Logger
}

// NewRecoveryMiddleware cria um novo middleware de recuperação
func NewRecoveryMiddleware(logger *zap.Logger) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger,
	}
}

// Recovery recupera de pânicos e responde 500 sem expor detalhes.
// O request id volta no corpo para que o usuário possa citá-lo ao suporte.
func (m *RecoveryMiddleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			requestID := c.GetString(RequestIDKey)
			fields := []zap.Field{
				zap.Any("error", rec),
				zap.String("request_id", requestID),
				zap.String("route", c.FullPath()),
				zap.String("method", c.Request.Method),
				zap.ByteString("stack", debug.Stack()),
			}
			if email, ok := CurrentEmail(c); ok {
				fields = append(fields, zap.String("admin", email))
			}
			m.logger.Error("recuperado de pânico", fields...)

			if c.Writer.Written() {
				// cabeçalhos já enviados; só resta interromper a cadeia
				c.Abort()
				return
			}

			body := gin.H{"error": "Erro interno do servidor"}
			if requestID != "" {
				body["request_id"] = requestID
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()

		c.Next()
	}
}
