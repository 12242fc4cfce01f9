package mocks

import (
	"context"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

// MockAdminRepository é um mock para repository.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	args := m.Called(ctx, email)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	args := m.Called(ctx, cpf)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// Create atribui o ID informado no segundo retorno, quando houver, para simular o banco
func (m *MockAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	args := m.Called(ctx, admin)
	if id, ok := args.Get(1).(uint); ok {
		admin.ID = id
	}
	return args.Error(0)
}

func (m *MockAdminRepository) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	args := m.Called(ctx, email, hash)
	return args.Error(0)
}
