package prontuario

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/adapter/database"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/hmpsicoterapia/prontuario-api/internal/mocks"
	"github.com/hmpsicoterapia/prontuario-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const editor = "admin@clinica.com"

type countingMetrics map[string]int

func (c countingMetrics) RecordOperation(operation string) { c[operation]++ }

func newTestService(t *testing.T) (*Service, countingMetrics, *time.Time) {
	db := testutils.NewTestDB(t)
	logger := testutils.TestLogger(t)
	metrics := countingMetrics{}

	svc := NewService(database.NewProntuarioRepository(db, logger), metrics, logger)
	now := time.Date(2025, 3, 1, 9, 30, 15, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, metrics, &now
}

func pacienteInput(nome, cpf string) *model.Paciente {
	return &model.Paciente{
		Nome:           nome,
		DataNascimento: "1985-07-20",
		CPF:            cpf,
		Genero:         "Masculino",
		Email:          "p@exemplo.com",
		Logradouro:     "Rua B",
		Numero:         "5",
		Bairro:         "Boa Vista",
		Cidade:         "Recife",
		Estado:         "PE",
		CEP:            "50050-000",
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("nome do paciente como fallback", func(t *testing.T) {
		svc, metrics, now := newTestService(t)

		p, err := svc.Create(ctx, ProntuarioInput{
			Paciente:         pacienteInput("José Santos", "111"),
			HistoricoMedico:  "Ansiedade",
			TipoTratamento:   "Psicoterapia",
			NumeroProntuario: "2025-001",
		}, editor)
		require.NoError(t, err)

		assert.NotZero(t, p.ID)
		assert.Equal(t, "José Santos", p.NomePaciente)
		assert.Equal(t, model.StatusEmTratamento, p.StatusTratamento)
		assert.Equal(t, *now, p.DataCriacao)
		assert.Equal(t, *now, p.DataUltimaAtualizacao)
		assert.Equal(t, *now, p.DataUltimaAlteracao)
		assert.Equal(t, editor, p.UltimaAlteracaoPor)
		assert.Nil(t, p.DataAlta)
		assert.Equal(t, 1, metrics["create"])
	})

	t.Run("nome informado prevalece", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		p, err := svc.Create(ctx, ProntuarioInput{
			NomePaciente:     "Zé",
			Paciente:         pacienteInput("José Santos", "111"),
			HistoricoMedico:  "Ansiedade",
			TipoTratamento:   "Psicoterapia",
			NumeroProntuario: "2025-001",
		}, editor)
		require.NoError(t, err)
		assert.Equal(t, "Zé", p.NomePaciente)
		assert.Equal(t, "José Santos", p.Paciente.Nome)
	})

	t.Run("número duplicado", func(t *testing.T) {
		svc, metrics, _ := newTestService(t)

		in := ProntuarioInput{
			Paciente:         pacienteInput("A", "111"),
			HistoricoMedico:  "x",
			TipoTratamento:   "y",
			NumeroProntuario: "2025-001",
		}
		_, err := svc.Create(ctx, in, editor)
		require.NoError(t, err)

		in.Paciente = pacienteInput("B", "222")
		_, err = svc.Create(ctx, in, editor)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, 1, metrics["create"])
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, now := newTestService(t)

	created, err := svc.Create(ctx, ProntuarioInput{
		Paciente:         pacienteInput("José Santos", "111"),
		HistoricoMedico:  "Ansiedade",
		TipoTratamento:   "Psicoterapia",
		NumeroProntuario: "2025-001",
	}, editor)
	require.NoError(t, err)
	pacienteID := created.Paciente.ID

	*now = now.Add(time.Hour)
	updated, err := svc.Update(ctx, created.ID, ProntuarioInput{
		Paciente:         pacienteInput("José S. Santos", "111"),
		HistoricoMedico:  "Ansiedade generalizada",
		TipoTratamento:   "Psiquiatria",
		NumeroProntuario: "2025-001",
	}, "outro@clinica.com")
	require.NoError(t, err)

	assert.Equal(t, "José S. Santos", updated.NomePaciente)
	assert.Equal(t, pacienteID, updated.Paciente.ID)
	assert.Equal(t, "Psiquiatria", updated.TipoTratamento)
	assert.Equal(t, "outro@clinica.com", updated.UltimaAlteracaoPor)

	found, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "José S. Santos", found.Paciente.Nome)
	assert.True(t, found.DataUltimaAlteracao.Equal(*now))
	assert.True(t, found.DataCriacao.Before(found.DataUltimaAlteracao))

	_, err = svc.Update(ctx, 9999, ProntuarioInput{}, editor)
	assert.ErrorIs(t, err, repository.ErrProntuarioNotFound)
}

func TestAppends(t *testing.T) {
	ctx := context.Background()
	svc, metrics, _ := newTestService(t)

	p, err := svc.Create(ctx, ProntuarioInput{
		Paciente:         pacienteInput("Maria", "111"),
		HistoricoMedico:  "Inicial",
		TipoTratamento:   "Psicoterapia",
		NumeroProntuario: "2025-001",
	}, editor)
	require.NoError(t, err)

	t.Run("histórico concatena ao texto existente", func(t *testing.T) {
		got, err := svc.AppendHistorico(ctx, p.ID, "Sessão 2", editor)
		require.NoError(t, err)
		assert.Equal(t, "Inicial\n\n--- Registro adicionado em 2025-03-01T09:30:15 por admin@clinica.com ---\nSessão 2", got.HistoricoMedico)
	})

	t.Run("primeira medicação sem linhas em branco", func(t *testing.T) {
		got, err := svc.AppendMedicacao(ctx, p.ID, MedicacaoInput{Nome: "Sertralina", Dosagem: "50mg", Frequencia: "1x ao dia"}, editor)
		require.NoError(t, err)
		assert.Equal(t,
			"--- Medicação adicionada em 2025-03-01T09:30:15 por admin@clinica.com ---\nNome: Sertralina\nDosagem: 50mg\nFrequência: 1x ao dia\nObservações: N/A",
			got.Medicamentos)
	})

	t.Run("exame", func(t *testing.T) {
		got, err := svc.AppendExame(ctx, p.ID, ExameInput{Nome: "Hemograma", Data: "2025-02-20", Resultado: "Normal", Observacoes: "Jejum"}, editor)
		require.NoError(t, err)
		assert.Equal(t,
			"--- Exame adicionado em 2025-03-01T09:30:15 por admin@clinica.com ---\nNome: Hemograma\nData: 2025-02-20\nResultado: Normal\nObservações: Jejum",
			got.Exames)
	})

	t.Run("duas anotações", func(t *testing.T) {
		_, err := svc.AppendAnotacao(ctx, p.ID, "Primeira", editor)
		require.NoError(t, err)
		got, err := svc.AppendAnotacao(ctx, p.ID, "Segunda", editor)
		require.NoError(t, err)

		assert.Equal(t,
			"--- Anotação adicionada em 2025-03-01T09:30:15 por admin@clinica.com ---\nPrimeira"+
				"\n\n--- Anotação adicionada em 2025-03-01T09:30:15 por admin@clinica.com ---\nSegunda",
			got.CondicoesClinicas)
	})

	t.Run("prontuário inexistente", func(t *testing.T) {
		_, err := svc.AppendHistorico(ctx, 9999, "x", editor)
		assert.ErrorIs(t, err, repository.ErrProntuarioNotFound)
	})

	assert.Equal(t, 1, metrics["append_historico"])
	assert.Equal(t, 2, metrics["append_anotacao"])
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc, _, now := newTestService(t)

	p, err := svc.Create(ctx, ProntuarioInput{
		Paciente:         pacienteInput("Maria", "111"),
		HistoricoMedico:  "Inicial",
		TipoTratamento:   "Psicoterapia",
		NumeroProntuario: "2025-001",
	}, editor)
	require.NoError(t, err)

	t.Run("status inválido não altera o prontuário", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, p.ID, "CURADO", "", editor)
		assert.ErrorIs(t, err, model.ErrInvalidStatus)

		found, err := svc.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusEmTratamento, found.StatusTratamento)
		assert.Equal(t, "Inicial", found.HistoricoMedico)
	})

	t.Run("troca simples", func(t *testing.T) {
		got, err := svc.UpdateStatus(ctx, p.ID, "TRANSFERIDO", "", editor)
		require.NoError(t, err)
		assert.Equal(t, model.StatusTransferido, got.StatusTratamento)
		assert.Nil(t, got.DataAlta)
		assert.Equal(t, "Inicial", got.HistoricoMedico)
	})

	t.Run("alta médica sem motivo", func(t *testing.T) {
		got, err := svc.UpdateStatus(ctx, p.ID, "ALTA_MEDICA", "  ", editor)
		require.NoError(t, err)

		assert.Equal(t, model.StatusAltaMedica, got.StatusTratamento)
		require.NotNil(t, got.DataAlta)
		assert.True(t, got.DataAlta.Equal(*now))
		assert.Equal(t, "Não informado", got.MotivoAlta)
		assert.Equal(t, 1, strings.Count(got.HistoricoMedico, "--- ALTA MÉDICA em"))
		assert.True(t, strings.HasSuffix(got.HistoricoMedico,
			"\n\n--- ALTA MÉDICA em 2025-03-01T09:30:15 por admin@clinica.com ---\nMotivo: Não informado"))
	})

	t.Run("qualquer status a partir da alta", func(t *testing.T) {
		got, err := svc.UpdateStatus(ctx, p.ID, "EM_TRATAMENTO", "", editor)
		require.NoError(t, err)
		assert.Equal(t, model.StatusEmTratamento, got.StatusTratamento)
	})
}

func TestUpdateStatus_NotFoundBeforeParse(t *testing.T) {
	repo := new(mocks.MockProntuarioRepository)
	repo.On("Mutate", mock.Anything, uint(5)).Return(nil, repository.ErrProntuarioNotFound)

	svc := NewService(repo, countingMetrics{}, testutils.TestLogger(t))
	_, err := svc.UpdateStatus(context.Background(), 5, "INVALIDO", "", editor)
	assert.ErrorIs(t, err, repository.ErrProntuarioNotFound)
	repo.AssertExpectations(t)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, in := range []ProntuarioInput{
		{Paciente: pacienteInput("Maria Silva", "1"), HistoricoMedico: "x", TipoTratamento: "Psicoterapia", NumeroProntuario: "A-1"},
		{Paciente: pacienteInput("João", "2"), HistoricoMedico: "x", TipoTratamento: "Fonoaudiologia", NumeroProntuario: "B-2"},
	} {
		_, err := svc.Create(ctx, in, editor)
		require.NoError(t, err)
	}

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := svc.Search(ctx, "SILVA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "A-1", found[0].NumeroProntuario)

	found, err = svc.Search(ctx, "fono")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "B-2", found[0].NumeroProntuario)
}

func TestAppendBlock(t *testing.T) {
	assert.Equal(t, "bloco", appendBlock("", "\n\nbloco"))
	assert.Equal(t, "bloco", appendBlock("  \n ", "\n\nbloco"))
	assert.Equal(t, "texto\n\nbloco", appendBlock("texto", "\n\nbloco"))
}
