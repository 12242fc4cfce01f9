package repository

import (
	"context"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
)

// AdminRepository define a interface para acesso às contas de administrador
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	ExistsByCPF(ctx context.Context, cpf string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, admin *model.Admin) error
	UpdatePasswordHash(ctx context.Context, email, hash string) error
}
