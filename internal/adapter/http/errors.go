package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/auth"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/prontuario"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	apperrors "github.com/hmpsicoterapia/prontuario-api/pkg/errors"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"go.uber.org/zap"
)

// toAPIError traduz erros de domínio. Erros não mapeados viram 500 com mensagem genérica.
func toAPIError(err error) *apperrors.APIError {
	var apiErr *apperrors.APIError
	var invalidStatus *model.InvalidStatusError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, repository.ErrProntuarioNotFound):
		return apperrors.NotFound("Prontuário", err)
	case errors.Is(err, repository.ErrAdminNotFound):
		return apperrors.NotFound("Administrador", err)
	case errors.As(err, &invalidStatus):
		return apperrors.New(http.StatusBadRequest, "Status de tratamento inválido: "+invalidStatus.Value, err)
	case errors.Is(err, prontuario.ErrDuplicate):
		return apperrors.Conflict("Número do prontuário ou CPF do paciente já cadastrado.", err)
	case errors.Is(err, auth.ErrDuplicateCPF):
		return apperrors.Conflict("CPF já cadastrado.", err)
	case errors.Is(err, auth.ErrDuplicateEmail):
		return apperrors.Conflict("Email já cadastrado.", err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.Unauthorized("Email ou senha inválidos", err)
	case errors.Is(err, auth.ErrInvalidResetToken):
		return apperrors.BadRequest("Token inválido ou expirado", err)
	case errors.Is(err, security.ErrPasswordTooLong):
		return apperrors.Validation(FieldErrors{
			"senha": fmt.Sprintf("A senha deve ter no máximo %d bytes", security.MaxPasswordBytes),
		})
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.NotFound("Recurso", err)
	case errors.Is(err, apperrors.ErrDuplicate):
		return apperrors.Conflict("Registro já cadastrado.", err)
	case errors.Is(err, apperrors.ErrInvalidState):
		return apperrors.BadRequest("Operação inválida para o estado atual", err)
	}
	return apperrors.InternalServer("", err)
}

// respondError escreve o erro no formato {"error": ..., "details": ...}
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	apiErr := toAPIError(err)

	if apiErr.Code >= http.StatusInternalServerError {
		logger.Error("Erro ao processar requisição",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
	}

	body := gin.H{"error": apiErr.Message}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Code, body)
}

func respondValidation(c *gin.Context, errs FieldErrors) {
	apiErr := apperrors.Validation(errs)
	c.AbortWithStatusJSON(apiErr.Code, gin.H{"error": apiErr.Message, "details": apiErr.Details})
}

// bindJSON decodifica o corpo; JSON malformado responde 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "JSON inválido", "details": err.Error()})
		return false
	}
	return true
}

// pathID lê o parâmetro :id; valores não numéricos respondem 400
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return uint(id), true
}
