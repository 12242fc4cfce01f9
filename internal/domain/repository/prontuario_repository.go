package repository

import (
	"context"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
)

// MutateFunc altera um prontuário carregado; retornar erro desfaz a transação
type MutateFunc func(p *model.Prontuario) error

// ProntuarioRepository define a interface para persistência e busca de prontuários
type ProntuarioRepository interface {
	// Create grava o paciente e depois o prontuário, na mesma transação
	Create(ctx context.Context, p *model.Prontuario) error
	FindByID(ctx context.Context, id uint) (*model.Prontuario, error)
	// Search faz busca por substring sem diferenciar maiúsculas; filtro vazio retorna todos
	Search(ctx context.Context, filtro string) ([]*model.Prontuario, error)
	// Mutate carrega, aplica fn e grava prontuário e paciente numa única transação
	Mutate(ctx context.Context, id uint, fn MutateFunc) (*model.Prontuario, error)
}
