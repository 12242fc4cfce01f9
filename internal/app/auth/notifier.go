package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ResetNotifier entrega o token de redefinição ao administrador
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error
}

// LogNotifier apenas registra o token em DEBUG; não há envio de email
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier cria o notificador padrão
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyPasswordReset implementa ResetNotifier
func (n *LogNotifier) NotifyPasswordReset(_ context.Context, email, token string, expiresAt time.Time) error {
	n.logger.Debug("Token de redefinição de senha gerado",
		zap.String("email", email),
		zap.String("token", token),
		zap.Time("expires_at", expiresAt))
	return nil
}
