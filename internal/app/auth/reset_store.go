package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hmpsicoterapia/prontuario-api/pkg/cache"
)

const resetKeyPrefix = "password-reset:"

// resetEntry é o valor guardado para cada token de redefinição
type resetEntry struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ResetTokenStore guarda tokens de redefinição de senha de uso único.
// O cache expira as entradas pelo TTL; a expiração também é conferida na leitura
// e a entrada vencida é removida quando detectada.
type ResetTokenStore struct {
	cache    cache.Cache
	ttl      time.Duration
	now      func() time.Time
	newToken func() string

	// serializa o resgate para que o mesmo token não seja usado duas vezes
	mu sync.Mutex
}

// NewResetTokenStore cria o repositório de tokens sobre o cache configurado
func NewResetTokenStore(c cache.Cache, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{
		cache:    c,
		ttl:      ttl,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Issue gera um token aleatório para o email e o guarda até expirar
func (s *ResetTokenStore) Issue(ctx context.Context, email string) (string, time.Time, error) {
	token := s.newToken()
	expiresAt := s.now().Add(s.ttl)

	if err := s.cache.Set(ctx, resetKeyPrefix+token, resetEntry{Email: email, ExpiresAt: expiresAt}, s.ttl); err != nil {
		return "", time.Time{}, fmt.Errorf("falha ao guardar token de redefinição: %w", err)
	}
	return token, expiresAt, nil
}

// Redeem resolve o token e executa fn com o email associado. O token só é
// removido se fn terminar sem erro; tokens ausentes ou vencidos retornam ErrInvalidResetToken.
func (s *ResetTokenStore) Redeem(ctx context.Context, token string, fn func(email string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := resetKeyPrefix + token

	var entry resetEntry
	found, err := s.cache.Get(ctx, key, &entry)
	if err != nil {
		return fmt.Errorf("falha ao consultar token de redefinição: %w", err)
	}
	if !found {
		return ErrInvalidResetToken
	}

	if !s.now().Before(entry.ExpiresAt) {
		if err := s.cache.Delete(ctx, key); err != nil {
			return fmt.Errorf("falha ao remover token expirado: %w", err)
		}
		return ErrInvalidResetToken
	}

	if err := fn(entry.Email); err != nil {
		return err
	}

	return s.cache.Delete(ctx, key)
}
