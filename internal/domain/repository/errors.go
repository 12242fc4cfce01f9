package repository

import (
	"fmt"

	apperrors "github.com/hmpsicoterapia/prontuario-api/pkg/errors"
)

var (
	// ErrAdminNotFound indica administrador inexistente
	ErrAdminNotFound = fmt.Errorf("administrador: %w", apperrors.ErrNotFound)
	// ErrProntuarioNotFound indica prontuário inexistente
	ErrProntuarioNotFound = fmt.Errorf("prontuário: %w", apperrors.ErrNotFound)
	// ErrDuplicate indica violação de chave única
	ErrDuplicate = fmt.Errorf("registro duplicado: %w", apperrors.ErrDuplicate)
)
