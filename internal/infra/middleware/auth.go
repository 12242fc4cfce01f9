package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthEmailKey é a chave do email autenticado no gin.Context
const AuthEmailKey = "auth_email"

type authEmailCtxKey struct{}

// IdentityResolver resolve o email do administrador dono de um token
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (string, error)
}

// AuthMiddleware gerencia middlewares de autenticação
type AuthMiddleware struct {
	resolver    IdentityResolver
	publicPaths map[string]bool
	logger      *zap.Logger
}

// NewAuthMiddleware cria uma nova instância do middleware de autenticação
func NewAuthMiddleware(resolver IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		publicPaths: map[string]bool{
			"/api/admin/login":                  true,
			"/api/admin/register":               true,
			"/api/admin/password-reset-request": true,
			"/api/admin/reset-password":         true,
			"/health":                           true,
			"/health/liveness":                  true,
			"/health/readiness":                 true,
			"/metrics":                          true,
		},
		logger: logger,
	}
}

// Authenticate estabelece a identidade do chamador quando há um token válido.
// Sem token, ou com token inválido, a requisição segue sem identidade.
func (m *AuthMiddleware) Authenticate(c *gin.Context) {
	if c.Request.Method == http.MethodOptions || m.isPublicRoute(c.Request.URL.Path) {
		c.Next()
		return
	}

	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader || tokenString == "" {
		c.Next()
		return
	}

	email, err := m.resolver.CurrentIdentity(c.Request.Context(), tokenString)
	if err != nil {
		m.logger.Debug("token rejeitado", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.Next()
		return
	}

	SetIdentity(c, email)
	c.Next()
}

// SetIdentity registra o email autenticado no gin.Context e no contexto da requisição
func SetIdentity(c *gin.Context, email string) {
	c.Set(AuthEmailKey, email)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), authEmailCtxKey{}, email))
}

// RequireAuthenticated interrompe com 401 quando nenhuma identidade foi estabelecida
func (m *AuthMiddleware) RequireAuthenticated(c *gin.Context) {
	if _, ok := CurrentEmail(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Autenticação necessária"})
		return
	}
	c.Next()
}

// CurrentEmail retorna o email autenticado da requisição
func CurrentEmail(c *gin.Context) (string, bool) {
	email := c.GetString(AuthEmailKey)
	return email, email != ""
}

// EmailFromContext retorna o email autenticado guardado no contexto da requisição
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(authEmailCtxKey{}).(string)
	return email, ok && email != ""
}

// isPublicRoute determina se uma rota é pública
func (m *AuthMiddleware) isPublicRoute(path string) bool {
	return m.publicPaths[strings.TrimSuffix(path, "/")]
}
