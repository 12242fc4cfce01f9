package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminRepository implementa repository.AdminRepository
type AdminRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewAdminRepository cria um novo repositório de administradores
func NewAdminRepository(db *gorm.DB, logger *zap.Logger) *AdminRepository {
	return &AdminRepository{
		db:     db,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("prontuario-api.repository.admin"),
	}
}

var _ repository.AdminRepository = (*AdminRepository)(nil)

// FindByEmail busca um administrador pelo email
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	ctx, span := r.tracer.Start(ctx, "AdminRepository.FindByEmail",
		trace.WithAttributes(attribute.String("db.operation", "select"), attribute.String("db.table", "admins")))
	defer span.End()

	var entity model.AdminEntity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAdminNotFound
		}
		span.SetStatus(codes.Error, "database error")
		return nil, fmt.Errorf("falha ao buscar administrador: %w", err)
	}

	return entity.ToDomain(), nil
}

// ExistsByCPF verifica se já existe administrador com o CPF
func (r *AdminRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	return r.exists(ctx, "cpf = ?", cpf)
}

// ExistsByEmail verifica se já existe administrador com o email
func (r *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *AdminRepository) exists(ctx context.Context, query string, value string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.AdminEntity{}).Where(query, value).Count(&count).Error; err != nil {
		return false, fmt.Errorf("falha ao verificar administrador: %w", err)
	}
	return count > 0, nil
}

// Create grava um novo administrador e preenche o ID
func (r *AdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	ctx, span := r.tracer.Start(ctx, "AdminRepository.Create",
		trace.WithAttributes(attribute.String("db.operation", "insert"), attribute.String("db.table", "admins")))
	defer span.End()

	entity := admin.ToEntity()
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		span.SetStatus(codes.Error, "database error")
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicate
		}
		r.logger.Error("falha ao criar administrador", zap.Error(err))
		return fmt.Errorf("falha ao criar administrador: %w", err)
	}

	admin.ID = entity.ID
	return nil
}

// UpdatePasswordHash substitui o hash de senha do administrador
func (r *AdminRepository) UpdatePasswordHash(ctx context.Context, email, hash string) error {
	ctx, span := r.tracer.Start(ctx, "AdminRepository.UpdatePasswordHash",
		trace.WithAttributes(attribute.String("db.operation", "update"), attribute.String("db.table", "admins")))
	defer span.End()

	result := r.db.WithContext(ctx).Model(&model.AdminEntity{}).
		Where("email = ?", email).
		Update("senha_hash", hash)
	if result.Error != nil {
		span.SetStatus(codes.Error, "database error")
		return fmt.Errorf("falha ao atualizar senha: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrAdminNotFound
	}

	return nil
}
