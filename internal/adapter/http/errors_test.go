package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hmpsicoterapia/prontuario-api/internal/app/auth"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	apperrors "github.com/hmpsicoterapia/prontuario-api/pkg/errors"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{"prontuário inexistente", repository.ErrProntuarioNotFound, http.StatusNotFound, "Prontuário não encontrado"},
		{"categoria não encontrado", fmt.Errorf("paciente: %w", apperrors.ErrNotFound), http.StatusNotFound, "Recurso não encontrado"},
		{"categoria duplicado", repository.ErrDuplicate, http.StatusBadRequest, "Registro já cadastrado."},
		{"status inválido", &model.InvalidStatusError{Value: "X"}, http.StatusBadRequest, "Status de tratamento inválido: X"},
		{"categoria estado inválido", fmt.Errorf("alta: %w", apperrors.ErrInvalidState), http.StatusBadRequest, "Operação inválida para o estado atual"},
		{"senha longa vinda do serviço", fmt.Errorf("falha ao gerar hash da senha: %w", security.ErrPasswordTooLong), http.StatusBadRequest, "Dados inválidos"},
		{"cpf duplicado", auth.ErrDuplicateCPF, http.StatusBadRequest, "CPF já cadastrado."},
		{"erro desconhecido", errors.New("db down"), http.StatusInternalServerError, "Erro interno do servidor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := toAPIError(tt.err)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}

	t.Run("senha longa traz detalhe do campo", func(t *testing.T) {
		apiErr := toAPIError(security.ErrPasswordTooLong)
		assert.Equal(t, map[string]string{"senha": "A senha deve ter no máximo 72 bytes"}, apiErr.Details)
	})
}
