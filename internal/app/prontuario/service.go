package prontuario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/hmpsicoterapia/prontuario-api/pkg/logging"
	"go.uber.org/zap"
)

// ErrDuplicate indica número de prontuário ou CPF de paciente já cadastrado
var ErrDuplicate = errors.New("número do prontuário ou CPF do paciente já cadastrado")

// Metrics recebe as mutações bem-sucedidas
type Metrics interface {
	RecordOperation(operation string)
}

// ProntuarioInput são os campos editáveis de um prontuário
type ProntuarioInput struct {
	NomePaciente      string
	Paciente          *model.Paciente
	HistoricoMedico   string
	Medicamentos      string
	Exames            string
	CondicoesClinicas string
	TipoTratamento    string
	NumeroProntuario  string
}

// MedicacaoInput descreve uma medicação a anexar
type MedicacaoInput struct {
	Nome        string
	Dosagem     string
	Frequencia  string
	Observacoes string
}

// ExameInput descreve um exame a anexar
type ExameInput struct {
	Nome        string
	Data        string
	Resultado   string
	Observacoes string
}

// Service implementa as operações sobre prontuários
type Service struct {
	repo    repository.ProntuarioRepository
	metrics Metrics
	logger  *logging.ContextLogger
	now     func() time.Time
}

// NewService cria um novo serviço de prontuários
func NewService(repo repository.ProntuarioRepository, metrics Metrics, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		logger:  logging.NewContextLogger(logger),
		now:     time.Now,
	}
}

// Create registra um novo prontuário em tratamento
func (s *Service) Create(ctx context.Context, in ProntuarioInput, editor string) (*model.Prontuario, error) {
	now := s.now()

	p := &model.Prontuario{
		DataCriacao:      now,
		StatusTratamento: model.StatusEmTratamento,
	}
	applyInput(p, in)
	p.Touch(editor, now)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, s.translate(ctx, "create", err)
	}

	s.done(ctx, "create", p.ID, editor)
	return p, nil
}

// Update sobrescreve os campos do prontuário e do paciente
func (s *Service) Update(ctx context.Context, id uint, in ProntuarioInput, editor string) (*model.Prontuario, error) {
	p, err := s.repo.Mutate(ctx, id, func(p *model.Prontuario) error {
		applyInput(p, in)
		p.Touch(editor, s.now())
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, "update", err)
	}

	s.done(ctx, "update", id, editor)
	return p, nil
}

// Search busca prontuários por substring; filtro vazio retorna todos
func (s *Service) Search(ctx context.Context, filtro string) ([]*model.Prontuario, error) {
	return s.repo.Search(ctx, filtro)
}

// GetByID busca um prontuário
func (s *Service) GetByID(ctx context.Context, id uint) (*model.Prontuario, error) {
	return s.repo.FindByID(ctx, id)
}

// AppendHistorico anexa um registro ao histórico médico
func (s *Service) AppendHistorico(ctx context.Context, id uint, descricao, editor string) (*model.Prontuario, error) {
	return s.mutate(ctx, "append_historico", id, editor, func(p *model.Prontuario, now time.Time) error {
		p.HistoricoMedico = appendBlock(p.HistoricoMedico, historicoBlock(now, editor, descricao))
		return nil
	})
}

// AppendMedicacao anexa uma medicação ao registro de medicamentos
func (s *Service) AppendMedicacao(ctx context.Context, id uint, in MedicacaoInput, editor string) (*model.Prontuario, error) {
	return s.mutate(ctx, "append_medicacao", id, editor, func(p *model.Prontuario, now time.Time) error {
		p.Medicamentos = appendBlock(p.Medicamentos, medicacaoBlock(now, editor, in))
		return nil
	})
}

// AppendExame anexa um exame ao registro de exames
func (s *Service) AppendExame(ctx context.Context, id uint, in ExameInput, editor string) (*model.Prontuario, error) {
	return s.mutate(ctx, "append_exame", id, editor, func(p *model.Prontuario, now time.Time) error {
		p.Exames = appendBlock(p.Exames, exameBlock(now, editor, in))
		return nil
	})
}

// AppendAnotacao anexa uma anotação às condições clínicas
func (s *Service) AppendAnotacao(ctx context.Context, id uint, texto, editor string) (*model.Prontuario, error) {
	return s.mutate(ctx, "append_anotacao", id, editor, func(p *model.Prontuario, now time.Time) error {
		p.CondicoesClinicas = appendBlock(p.CondicoesClinicas, anotacaoBlock(now, editor, texto))
		return nil
	})
}

// UpdateStatus troca o status do tratamento. Qualquer valor da enumeração é aceito
// a partir de qualquer outro; ALTA_MEDICA registra data, motivo e uma nota no histórico.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status, motivo, editor string) (*model.Prontuario, error) {
	return s.mutate(ctx, "update_status", id, editor, func(p *model.Prontuario, now time.Time) error {
		novo, err := model.ParseStatusTratamento(status)
		if err != nil {
			return err
		}

		p.StatusTratamento = novo
		if novo == model.StatusAltaMedica {
			motivo = orDefault(motivo, notInformed)
			alta := now
			p.DataAlta = &alta
			p.MotivoAlta = motivo
			p.HistoricoMedico = appendBlock(p.HistoricoMedico, altaBlock(now, editor, motivo))
		}
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, operation string, id uint, editor string, fn func(p *model.Prontuario, now time.Time) error) (*model.Prontuario, error) {
	p, err := s.repo.Mutate(ctx, id, func(p *model.Prontuario) error {
		now := s.now()
		if err := fn(p, now); err != nil {
			return err
		}
		p.Touch(editor, now)
		return nil
	})
	if err != nil {
		return nil, s.translate(ctx, operation, err)
	}

	s.done(ctx, operation, id, editor)
	return p, nil
}

// applyInput copia os campos de entrada. O nome informado prevalece; sem ele
// vale o nome do paciente.
func applyInput(p *model.Prontuario, in ProntuarioInput) {
	if in.Paciente != nil {
		paciente := *in.Paciente
		paciente.ID = 0
		if p.Paciente != nil {
			paciente.ID = p.Paciente.ID
		}
		p.Paciente = &paciente
	}

	switch {
	case in.NomePaciente != "":
		p.NomePaciente = in.NomePaciente
	case p.Paciente != nil:
		p.NomePaciente = p.Paciente.Nome
	}

	p.HistoricoMedico = in.HistoricoMedico
	p.Medicamentos = in.Medicamentos
	p.Exames = in.Exames
	p.CondicoesClinicas = in.CondicoesClinicas
	p.TipoTratamento = in.TipoTratamento
	p.NumeroProntuario = in.NumeroProntuario
}

func (s *Service) translate(ctx context.Context, operation string, err error) error {
	switch {
	case errors.Is(err, repository.ErrProntuarioNotFound), errors.Is(err, model.ErrInvalidStatus):
		return err
	case errors.Is(err, repository.ErrDuplicate):
		s.logger.WarnCtx(ctx, "Prontuário duplicado", zap.String("operation", operation))
		return ErrDuplicate
	}

	s.logger.ErrorCtx(ctx, "Falha ao gravar prontuário", zap.String("operation", operation), zap.Error(err))
	return fmt.Errorf("%s: %w", operation, err)
}

func (s *Service) done(ctx context.Context, operation string, id uint, editor string) {
	s.metrics.RecordOperation(operation)
	s.logger.InfoCtx(ctx, "Prontuário alterado",
		zap.String("operation", operation),
		zap.Uint("prontuario_id", id),
		zap.String("editor", editor))
}
