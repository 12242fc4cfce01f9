package model

import (
	"strings"
	"time"
)

// Prontuario é o agregado do registro clínico de um paciente
type Prontuario struct {
	ID                    uint             `json:"id"`
	NomePaciente          string           `json:"nomePaciente"`
	Paciente              *Paciente        `json:"paciente"`
	HistoricoMedico       string           `json:"historicoMedico"`
	Medicamentos          string           `json:"medicamentos"`
	Exames                string           `json:"exames"`
	CondicoesClinicas     string           `json:"condicoesClinicas"`
	TipoTratamento        string           `json:"tipoTratamento"`
	NumeroProntuario      string           `json:"numeroProntuario"`
	DataCriacao           time.Time        `json:"dataCriacao"`
	DataUltimaAtualizacao time.Time        `json:"dataUltimaAtualizacao"`
	UltimaAlteracaoPor    string           `json:"ultimaAlteracaoPor"`
	DataUltimaAlteracao   time.Time        `json:"dataUltimaAlteracao"`
	StatusTratamento      StatusTratamento `json:"statusTratamento"`
	DataAlta              *time.Time       `json:"dataAlta"`
	MotivoAlta            string           `json:"motivoAlta,omitempty"`
}

// Touch atualiza os metadados de modificação
func (p *Prontuario) Touch(editor string, now time.Time) {
	p.DataUltimaAtualizacao = now
	p.DataUltimaAlteracao = now
	p.UltimaAlteracaoPor = editor
}

// SearchSeparator separa os campos em TermoBusca; a busca o remove do filtro
const SearchSeparator = "\x1f"

// SearchTerms monta o texto pesquisável do prontuário em minúsculas: nome do paciente,
// nome denormalizado, número e tipo de tratamento. A conversão é feita em Go para
// que acentos sejam tratados igual em todos os bancos.
func (p *Prontuario) SearchTerms() string {
	fields := make([]string, 0, 4)
	if p.Paciente != nil {
		fields = append(fields, p.Paciente.Nome)
	}
	fields = append(fields, p.NomePaciente, p.NumeroProntuario, p.TipoTratamento)
	return strings.ToLower(strings.Join(fields, SearchSeparator))
}

// ProntuarioEntity é a representação de banco de dados de um prontuário.
// O paciente é gravado separadamente e associado por PacienteID.
type ProntuarioEntity struct {
	ID                    uint            `gorm:"primaryKey"`
	NomePaciente          string          `gorm:"column:nome_paciente;not null"`
	PacienteID            *uint           `gorm:"column:paciente_id;uniqueIndex"`
	Paciente              *PacienteEntity `gorm:"foreignKey:PacienteID"`
	HistoricoMedico       string          `gorm:"column:historico_medico;type:text"`
	Medicamentos          string          `gorm:"type:text"`
	Exames                string          `gorm:"type:text"`
	CondicoesClinicas     string          `gorm:"column:condicoes_clinicas;type:text"`
	TipoTratamento        string          `gorm:"column:tipo_tratamento;not null"`
	NumeroProntuario      string          `gorm:"column:numero_prontuario;uniqueIndex;not null;size:64"`
	DataCriacao           time.Time       `gorm:"column:data_criacao;not null"`
	DataUltimaAtualizacao time.Time       `gorm:"column:data_ultima_atualizacao"`
	UltimaAlteracaoPor    string          `gorm:"column:ultima_alteracao_por"`
	DataUltimaAlteracao   time.Time       `gorm:"column:data_ultima_alteracao"`
	StatusTratamento      string          `gorm:"column:status_tratamento;not null;size:32;default:EM_TRATAMENTO"`
	DataAlta              *time.Time      `gorm:"column:data_alta"`
	MotivoAlta            string          `gorm:"column:motivo_alta;type:text"`
	TermoBusca            string          `gorm:"column:termo_busca;type:text"`
}

// TableName define o nome da tabela
func (ProntuarioEntity) TableName() string {
	return "prontuarios"
}

// ToEntity converte para a representação de banco, sem o paciente
func (p *Prontuario) ToEntity() *ProntuarioEntity {
	e := &ProntuarioEntity{
		ID:                    p.ID,
		NomePaciente:          p.NomePaciente,
		HistoricoMedico:       p.HistoricoMedico,
		Medicamentos:          p.Medicamentos,
		Exames:                p.Exames,
		CondicoesClinicas:     p.CondicoesClinicas,
		TipoTratamento:        p.TipoTratamento,
		NumeroProntuario:      p.NumeroProntuario,
		DataCriacao:           p.DataCriacao,
		DataUltimaAtualizacao: p.DataUltimaAtualizacao,
		UltimaAlteracaoPor:    p.UltimaAlteracaoPor,
		DataUltimaAlteracao:   p.DataUltimaAlteracao,
		StatusTratamento:      string(p.StatusTratamento),
		DataAlta:              p.DataAlta,
		MotivoAlta:            p.MotivoAlta,
		TermoBusca:            p.SearchTerms(),
	}
	if p.Paciente != nil && p.Paciente.ID != 0 {
		id := p.Paciente.ID
		e.PacienteID = &id
	}
	return e
}

// ToDomain converte para o modelo de domínio, incluindo o paciente se carregado
func (e *ProntuarioEntity) ToDomain() *Prontuario {
	p := &Prontuario{
		ID:                    e.ID,
		NomePaciente:          e.NomePaciente,
		HistoricoMedico:       e.HistoricoMedico,
		Medicamentos:          e.Medicamentos,
		Exames:                e.Exames,
		CondicoesClinicas:     e.CondicoesClinicas,
		TipoTratamento:        e.TipoTratamento,
		NumeroProntuario:      e.NumeroProntuario,
		DataCriacao:           e.DataCriacao,
		DataUltimaAtualizacao: e.DataUltimaAtualizacao,
		UltimaAlteracaoPor:    e.UltimaAlteracaoPor,
		DataUltimaAlteracao:   e.DataUltimaAlteracao,
		StatusTratamento:      StatusTratamento(e.StatusTratamento),
		DataAlta:              e.DataAlta,
		MotivoAlta:            e.MotivoAlta,
	}
	if e.Paciente != nil {
		p.Paciente = e.Paciente.ToDomain()
	}
	return p
}
