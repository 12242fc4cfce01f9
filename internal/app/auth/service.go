package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"go.uber.org/zap"
)

var (
	ErrDuplicateCPF       = errors.New("cpf já cadastrado")
	ErrDuplicateEmail     = errors.New("email já cadastrado")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidToken       = errors.New("token inválido")
	ErrInvalidResetToken  = errors.New("token de redefinição inválido ou expirado")
)

// Metrics recebe os eventos de autenticação e de redefinição de senha
type Metrics interface {
	AuthAttempt(result string)
	PasswordReset(event string)
}

// RegisterInput contém os dados de cadastro de um administrador
type RegisterInput struct {
	CPF   string
	Nome  string
	Email string
	Senha string
}

// Config contém as durações usadas pelo serviço
type Config struct {
	TokenExpiration time.Duration
}

// Service gerencia cadastro, login, identidade e redefinição de senha de administradores
type Service struct {
	admins   repository.AdminRepository
	hasher   *security.PasswordHasher
	keys     *security.KeyManager
	resets   *ResetTokenStore
	notifier ResetNotifier
	metrics  Metrics
	config   Config
	logger   *zap.Logger
}

// NewService cria um novo serviço de autenticação
func NewService(
	admins repository.AdminRepository,
	hasher *security.PasswordHasher,
	keys *security.KeyManager,
	resets *ResetTokenStore,
	notifier ResetNotifier,
	metrics Metrics,
	config Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		admins:   admins,
		hasher:   hasher,
		keys:     keys,
		resets:   resets,
		notifier: notifier,
		metrics:  metrics,
		config:   config,
		logger:   logger,
	}
}

// Register cadastra um administrador. CPF é verificado antes do email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Admin, error) {
	exists, err := s.admins.ExistsByCPF(ctx, in.CPF)
	if err != nil {
		return nil, fmt.Errorf("falha ao verificar CPF: %w", err)
	}
	if exists {
		return nil, ErrDuplicateCPF
	}

	exists, err = s.admins.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("falha ao verificar email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Senha)
	if err != nil {
		return nil, fmt.Errorf("falha ao gerar hash da senha: %w", err)
	}

	admin := &model.Admin{
		CPF:       in.CPF,
		Nome:      in.Nome,
		Email:     in.Email,
		SenhaHash: hash,
	}

	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// cadastro concorrente com o mesmo CPF ou email
			if taken, _ := s.admins.ExistsByCPF(ctx, in.CPF); taken {
				return nil, ErrDuplicateCPF
			}
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("falha ao cadastrar administrador: %w", err)
	}

	s.logger.Info("Administrador cadastrado", zap.Uint("admin_id", admin.ID), zap.String("email", admin.Email))
	return admin, nil
}

// Authenticate confere as credenciais e emite um token cujo subject é o email
func (s *Service) Authenticate(ctx context.Context, email, senha string) (string, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			s.logger.Warn("Falha na autenticação", zap.String("email", email), zap.String("reason", "admin not found"))
			s.metrics.AuthAttempt("invalid_credentials")
			return "", ErrInvalidCredentials
		}
		s.metrics.AuthAttempt("error")
		return "", fmt.Errorf("falha ao buscar administrador: %w", err)
	}

	if strings.TrimSpace(admin.SenhaHash) == "" {
		s.logger.Error("Administrador sem hash de senha armazenado", zap.Uint("admin_id", admin.ID))
		s.metrics.AuthAttempt("invalid_credentials")
		return "", ErrInvalidCredentials
	}

	if err := s.hasher.Verify(admin.SenhaHash, senha); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			s.logger.Error("Hash de senha armazenado é inválido", zap.Uint("admin_id", admin.ID), zap.Error(err))
		} else {
			s.logger.Warn("Falha na autenticação", zap.String("email", email), zap.String("reason", "password mismatch"))
		}
		s.metrics.AuthAttempt("invalid_credentials")
		return "", ErrInvalidCredentials
	}

	token, err := s.keys.GenerateToken(admin.Email, s.config.TokenExpiration)
	if err != nil {
		s.logger.Error("Falha ao gerar token", zap.Uint("admin_id", admin.ID), zap.Error(err))
		s.metrics.AuthAttempt("error")
		return "", err
	}

	s.logger.Info("Login bem-sucedido", zap.Uint("admin_id", admin.ID))
	s.metrics.AuthAttempt("success")
	return token, nil
}

// CurrentIdentity valida o token e confirma que o subject ainda é um administrador
func (s *Service) CurrentIdentity(ctx context.Context, token string) (string, error) {
	email, err := s.keys.VerifyToken(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	if _, err := s.admins.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			s.logger.Warn("Token de administrador inexistente", zap.String("email", email))
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("falha ao buscar administrador do token: %w", err)
	}

	return email, nil
}

// Me retorna o perfil do administrador autenticado
func (s *Service) Me(ctx context.Context, email string) (*model.Admin, error) {
	return s.admins.FindByEmail(ctx, email)
}

// RequestPasswordReset gera e entrega um token se o email existir. Para o chamador
// o resultado é o mesmo nos dois casos; só falhas de infraestrutura retornam erro.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.admins.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			s.logger.Info("Redefinição de senha solicitada para email não cadastrado")
			s.metrics.PasswordReset("unknown_email")
			return nil
		}
		return fmt.Errorf("falha ao buscar administrador: %w", err)
	}

	token, expiresAt, err := s.resets.Issue(ctx, email)
	if err != nil {
		return err
	}

	if err := s.notifier.NotifyPasswordReset(ctx, email, token, expiresAt); err != nil {
		s.logger.Error("Falha ao enviar token de redefinição", zap.Error(err))
	}

	s.metrics.PasswordReset("requested")
	return nil
}

// ResetPassword troca a senha do dono do token e invalida o token
func (s *Service) ResetPassword(ctx context.Context, token, novaSenha string) error {
	err := s.resets.Redeem(ctx, token, func(email string) error {
		hash, err := s.hasher.Hash(novaSenha)
		if err != nil {
			return fmt.Errorf("falha ao gerar hash da senha: %w", err)
		}
		if err := s.admins.UpdatePasswordHash(ctx, email, hash); err != nil {
			if errors.Is(err, repository.ErrAdminNotFound) {
				return ErrInvalidResetToken
			}
			return fmt.Errorf("falha ao atualizar senha: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			s.metrics.PasswordReset("rejected")
		}
		return err
	}

	s.logger.Info("Senha redefinida com sucesso")
	s.metrics.PasswordReset("completed")
	return nil
}
