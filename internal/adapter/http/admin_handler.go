package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/auth"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/hmpsicoterapia/prontuario-api/internal/infra/middleware"
	"go.uber.org/zap"
)

const passwordResetGeneric = "Se o email estiver cadastrado, você receberá instruções para redefinir sua senha."

// AdminService define as operações de conta usadas pelos handlers
type AdminService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.Admin, error)
	Authenticate(ctx context.Context, email, senha string) (string, error)
	Me(ctx context.Context, email string) (*model.Admin, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, novaSenha string) error
}

// AdminHandler implementa os endpoints de /api/admin
type AdminHandler struct {
	service     AdminService
	minPassword int
	logger      *zap.Logger
}

// NewAdminHandler cria um novo handler de administradores
func NewAdminHandler(service AdminService, minPassword int, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:     service,
		minPassword: minPassword,
		logger:      logger,
	}
}

// Register cadastra um administrador
func (h *AdminHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.Validate(h.minPassword); errs != nil {
		respondValidation(c, errs)
		return
	}

	admin, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		CPF:   req.CPF,
		Nome:  req.Nome,
		Email: req.Email,
		Senha: req.Senha,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Administrador registrado com sucesso. ID: %d", admin.ID),
		"id":      admin.ID,
	})
}

// Login autentica e devolve o token
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.service.Authenticate(c.Request.Context(), req.Email, req.Senha)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou senha inválidos"})
			return
		}
		h.logger.Error("Erro inesperado no login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno no servidor durante o processo de login."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Me devolve o perfil do administrador autenticado
func (h *AdminHandler) Me(c *gin.Context) {
	email, ok := middleware.CurrentEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuário não autenticado para buscar dados próprios."})
		return
	}

	admin, err := h.service.Me(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			h.logger.Error("Admin do token não encontrado", zap.String("email", email))
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin associado ao token não encontrado."})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, admin)
}

// RequestPasswordReset responde sempre a mesma mensagem, exista ou não o email
func (h *AdminHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email é obrigatório"})
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		// a resposta não muda para não revelar quais emails existem
		h.logger.Error("Falha ao processar pedido de redefinição de senha", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"message": passwordResetGeneric})
}

// ResetPassword troca a senha usando o token recebido
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	switch {
	case req.Token == "" || req.Senha == "" || req.ConfirmarSenha == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token e nova senha são obrigatórios"})
		return
	case req.Senha != req.ConfirmarSenha:
		c.JSON(http.StatusBadRequest, gin.H{"error": "As senhas não coincidem"})
		return
	}
	errs := FieldErrors{}
	errs.password("senha", req.Senha, h.minPassword)
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Senha); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Senha redefinida com sucesso"})
}
