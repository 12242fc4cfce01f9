package mocks

import (
	"context"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

// MockProntuarioRepository é um mock para repository.ProntuarioRepository.
// Mutate aplica a função sobre o prontuário configurado no primeiro retorno,
// reproduzindo o carregar-alterar-gravar do repositório real.
type MockProntuarioRepository struct {
	mock.Mock
}

func (m *MockProntuarioRepository) Create(ctx context.Context, p *model.Prontuario) error {
	args := m.Called(ctx, p)
	if id, ok := args.Get(1).(uint); ok {
		p.ID = id
	}
	return args.Error(0)
}

func (m *MockProntuarioRepository) FindByID(ctx context.Context, id uint) (*model.Prontuario, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.Prontuario), args.Error(1)
}

func (m *MockProntuarioRepository) Search(ctx context.Context, filtro string) ([]*model.Prontuario, error) {
	args := m.Called(ctx, filtro)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*model.Prontuario), args.Error(1)
}

func (m *MockProntuarioRepository) Mutate(ctx context.Context, id uint, fn repository.MutateFunc) (*model.Prontuario, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	p := args.Get(0).(*model.Prontuario)
	if err := fn(p); err != nil {
		return nil, err
	}

	return p, args.Error(1)
}
