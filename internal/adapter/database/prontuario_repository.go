package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProntuarioRepository implementa repository.ProntuarioRepository
type ProntuarioRepository struct {
	db     *gorm.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewProntuarioRepository cria um novo repositório de prontuários
func NewProntuarioRepository(db *gorm.DB, logger *zap.Logger) *ProntuarioRepository {
	return &ProntuarioRepository{
		db:     db,
		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("prontuario-api.repository.prontuario"),
	}
}

var _ repository.ProntuarioRepository = (*ProntuarioRepository)(nil)

// Create grava o paciente, depois o prontuário com o paciente_id, numa transação
func (r *ProntuarioRepository) Create(ctx context.Context, p *model.Prontuario) error {
	ctx, span := r.startSpan(ctx, "ProntuarioRepository.Create", "insert")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.save(tx, p)
	})
	if err != nil {
		return r.fail(span, "falha ao criar prontuário", err)
	}

	span.SetAttributes(attribute.Int64("prontuario.id", int64(p.ID)))
	return nil
}

// FindByID busca um prontuário com o paciente
func (r *ProntuarioRepository) FindByID(ctx context.Context, id uint) (*model.Prontuario, error) {
	ctx, span := r.startSpan(ctx, "ProntuarioRepository.FindByID", "select")
	defer span.End()

	entity, err := r.load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, r.fail(span, "falha ao buscar prontuário", err)
	}

	return entity.ToDomain(), nil
}

// Search busca por nome do paciente, nome denormalizado, número do prontuário ou tipo de tratamento
func (r *ProntuarioRepository) Search(ctx context.Context, filtro string) ([]*model.Prontuario, error) {
	ctx, span := r.startSpan(ctx, "ProntuarioRepository.Search", "select")
	defer span.End()

	query := r.db.WithContext(ctx).
		Model(&model.ProntuarioEntity{}).
		Preload("Paciente")

	if pattern := searchPattern(filtro); pattern != "" {
		query = query.Where("termo_busca LIKE ? ESCAPE '"+likeEscape+"'", pattern)
	}

	var entities []model.ProntuarioEntity
	if err := query.Order("id").Find(&entities).Error; err != nil {
		return nil, r.fail(span, "falha ao buscar prontuários", err)
	}

	result := make([]*model.Prontuario, 0, len(entities))
	for i := range entities {
		result = append(result, entities[i].ToDomain())
	}

	span.SetAttributes(attribute.Int("prontuario.count", len(result)))
	return result, nil
}

// likeEscape é aceito como caractere de escape por sqlite, mysql e postgres sem
// depender de como cada um interpreta barras invertidas em literais
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// searchPattern converte o filtro num padrão LIKE sobre termo_busca.
// Curingas digitados valem como texto literal. Filtro vazio retorna "".
func searchPattern(filtro string) string {
	f := strings.TrimSpace(strings.ReplaceAll(filtro, model.SearchSeparator, ""))
	if f == "" {
		return ""
	}
	return "%" + likeReplacer.Replace(strings.ToLower(f)) + "%"
}

// ReindexSearchTerms preenche termo_busca dos prontuários gravados antes da coluna existir
func (r *ProntuarioRepository) ReindexSearchTerms(ctx context.Context) (int, error) {
	ctx, span := r.startSpan(ctx, "ProntuarioRepository.ReindexSearchTerms", "update")
	defer span.End()

	updated := 0
	var batch []model.ProntuarioEntity
	err := r.db.WithContext(ctx).
		Preload("Paciente").
		Where("termo_busca IS NULL OR termo_busca = ''").
		FindInBatches(&batch, 100, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				terms := batch[i].ToDomain().SearchTerms()
				if err := r.db.WithContext(ctx).
					Model(&model.ProntuarioEntity{}).
					Where("id = ?", batch[i].ID).
					UpdateColumn("termo_busca", terms).Error; err != nil {
					return err
				}
				updated++
			}
			return nil
		}).Error
	if err != nil {
		return updated, r.fail(span, "falha ao reindexar busca de prontuários", err)
	}

	span.SetAttributes(attribute.Int("prontuario.count", updated))
	return updated, nil
}

// Mutate executa leitura, alteração e gravação do prontuário e do paciente numa transação.
// Não há bloqueio de linha: atualizações concorrentes seguem a regra do último a gravar.
func (r *ProntuarioRepository) Mutate(ctx context.Context, id uint, fn repository.MutateFunc) (*model.Prontuario, error) {
	ctx, span := r.startSpan(ctx, "ProntuarioRepository.Mutate", "update")
	defer span.End()

	var result *model.Prontuario
	var fnErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entity, err := r.load(tx, id)
		if err != nil {
			return err
		}

		p := entity.ToDomain()
		if fnErr = fn(p); fnErr != nil {
			return fnErr
		}

		if err := r.save(tx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if fnErr != nil {
		// erro de regra de negócio: nada foi gravado
		span.SetAttributes(attribute.String("prontuario.rejected", fnErr.Error()))
		return nil, fnErr
	}
	if err != nil {
		return nil, r.fail(span, "falha ao atualizar prontuário", err)
	}

	return result, nil
}

func (r *ProntuarioRepository) load(db *gorm.DB, id uint) (*model.ProntuarioEntity, error) {
	var entity model.ProntuarioEntity
	if err := db.Preload("Paciente").First(&entity, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProntuarioNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// save grava primeiro o paciente, depois o prontuário sem associações
func (r *ProntuarioRepository) save(tx *gorm.DB, p *model.Prontuario) error {
	if p.Paciente != nil {
		pe := p.Paciente.ToEntity()
		if err := tx.Save(pe).Error; err != nil {
			return err
		}
		p.Paciente.ID = pe.ID
	}

	entity := p.ToEntity()
	if err := tx.Omit(clause.Associations).Save(entity).Error; err != nil {
		return err
	}
	p.ID = entity.ID
	return nil
}

func (r *ProntuarioRepository) startSpan(ctx context.Context, name, operation string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.table", "prontuarios"),
	))
}

// fail traduz erros do GORM para os erros do repositório
func (r *ProntuarioRepository) fail(span trace.Span, msg string, err error) error {
	switch {
	case errors.Is(err, repository.ErrProntuarioNotFound):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		span.SetStatus(codes.Error, "duplicate key")
		return repository.ErrDuplicate
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	r.logger.Error(msg, zap.Error(err))
	span.SetStatus(codes.Error, "database error")
	span.SetAttributes(attribute.String("error.message", err.Error()))
	return fmt.Errorf("%s: %w", msg, err)
}
