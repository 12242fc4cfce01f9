package model

import (
	"errors"
	"strings"

	apperrors "github.com/hmpsicoterapia/prontuario-api/pkg/errors"
)

// ErrInvalidStatus indica um valor fora da enumeração de status de tratamento
var ErrInvalidStatus = errors.New("status de tratamento inválido")

// InvalidStatusError carrega o valor recusado. errors.Is é verdadeiro para
// ErrInvalidStatus e para a categoria apperrors.ErrInvalidState.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return ErrInvalidStatus.Error() + ": " + e.Value
}

// Is permite comparar com ErrInvalidStatus
func (e *InvalidStatusError) Is(target error) bool {
	return target == ErrInvalidStatus || target == apperrors.ErrInvalidState
}

// StatusTratamento é o estado do episódio de cuidado de um prontuário
type StatusTratamento string

const (
	StatusEmTratamento        StatusTratamento = "EM_TRATAMENTO"
	StatusAltaMedica          StatusTratamento = "ALTA_MEDICA"
	StatusAbandonouTratamento StatusTratamento = "ABANDONOU_TRATAMENTO"
	StatusTransferido         StatusTratamento = "TRANSFERIDO"
)

// StatusTratamentoValues lista os valores aceitos, na ordem de declaração
var StatusTratamentoValues = []StatusTratamento{
	StatusEmTratamento,
	StatusAltaMedica,
	StatusAbandonouTratamento,
	StatusTransferido,
}

// ParseStatusTratamento converte o texto recebido. A comparação é exata,
// apenas espaços nas pontas são ignorados.
func ParseStatusTratamento(value string) (StatusTratamento, error) {
	candidate := StatusTratamento(strings.TrimSpace(value))
	for _, s := range StatusTratamentoValues {
		if s == candidate {
			return s, nil
		}
	}
	return "", &InvalidStatusError{Value: value}
}
