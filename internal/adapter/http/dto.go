package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hmpsicoterapia/prontuario-api/internal/app/prontuario"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
)

var validate = validator.New()

// FieldErrors mapeia campo do JSON para a mensagem de erro
type FieldErrors map[string]string

func (f FieldErrors) required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		f[field] = message
	}
}

func (f FieldErrors) email(field, value, message string) {
	if _, exists := f[field]; exists {
		return
	}
	if validate.Var(value, "required,email") != nil {
		f[field] = message
	}
}

// password confere os limites de tamanho; o máximo é em bytes, como no bcrypt
func (f FieldErrors) password(field, value string, min int) {
	switch {
	case len(value) < min:
		f[field] = fmt.Sprintf("A senha deve ter pelo menos %d caracteres", min)
	case len(value) > security.MaxPasswordBytes:
		f[field] = fmt.Sprintf("A senha deve ter no máximo %d bytes", security.MaxPasswordBytes)
	}
}

func (f FieldErrors) orNil() FieldErrors {
	if len(f) == 0 {
		return nil
	}
	return f
}

// RegisterRequest é o corpo de POST /api/admin/register
type RegisterRequest struct {
	CPF   string `json:"cpf"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Validate confere os campos obrigatórios do cadastro
func (r RegisterRequest) Validate(minSenha int) FieldErrors {
	errs := FieldErrors{}
	errs.required("cpf", r.CPF, "CPF obrigatório")
	if _, ok := errs["cpf"]; !ok && validate.Var(r.CPF, "len=11,numeric") != nil {
		errs["cpf"] = "CPF deve conter 11 dígitos"
	}
	errs.required("nome", r.Nome, "Nome obrigatório")
	errs.email("email", r.Email, "Email inválido")
	errs.required("senha", r.Senha, "Senha obrigatória")
	if _, ok := errs["senha"]; !ok {
		errs.password("senha", r.Senha, minSenha)
	}
	return errs.orNil()
}

// LoginRequest é o corpo de POST /api/admin/login
type LoginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// PasswordResetRequest é o corpo de POST /api/admin/password-reset-request
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest é o corpo de POST /api/admin/reset-password
type ResetPasswordRequest struct {
	Token          string `json:"token"`
	Senha          string `json:"senha"`
	ConfirmarSenha string `json:"confirmarSenha"`
}

// PacienteRequest contém os dados do paciente; telefone e complemento são opcionais
type PacienteRequest struct {
	Nome           string `json:"nome"`
	DataNascimento string `json:"dataNascimento"`
	CPF            string `json:"cpf"`
	Genero         string `json:"genero"`
	Telefone       string `json:"telefone"`
	Email          string `json:"email"`
	Logradouro     string `json:"logradouro"`
	Numero         string `json:"numero"`
	Complemento    string `json:"complemento"`
	Bairro         string `json:"bairro"`
	Cidade         string `json:"cidade"`
	Estado         string `json:"estado"`
	CEP            string `json:"cep"`
}

func (p *PacienteRequest) validate(errs FieldErrors) {
	required := []struct{ field, value string }{
		{"paciente.nome", p.Nome},
		{"paciente.cpf", p.CPF},
		{"paciente.genero", p.Genero},
		{"paciente.logradouro", p.Logradouro},
		{"paciente.numero", p.Numero},
		{"paciente.bairro", p.Bairro},
		{"paciente.cidade", p.Cidade},
		{"paciente.estado", p.Estado},
		{"paciente.cep", p.CEP},
	}
	for _, r := range required {
		errs.required(r.field, r.value, "não deve estar em branco")
	}

	errs.required("paciente.dataNascimento", p.DataNascimento, "não deve ser nulo")
	if _, ok := errs["paciente.dataNascimento"]; !ok && validate.Var(p.DataNascimento, "datetime=2006-01-02") != nil {
		errs["paciente.dataNascimento"] = "data deve estar no formato AAAA-MM-DD"
	}

	errs.email("paciente.email", p.Email, "deve ser um endereço de e-mail bem formado")
}

func (p *PacienteRequest) toModel() *model.Paciente {
	return &model.Paciente{
		Nome:           p.Nome,
		DataNascimento: p.DataNascimento,
		CPF:            p.CPF,
		Genero:         p.Genero,
		Telefone:       p.Telefone,
		Email:          p.Email,
		Logradouro:     p.Logradouro,
		Numero:         p.Numero,
		Complemento:    p.Complemento,
		Bairro:         p.Bairro,
		Cidade:         p.Cidade,
		Estado:         p.Estado,
		CEP:            p.CEP,
	}
}

// ProntuarioRequest é o corpo de criação e atualização de prontuário
type ProntuarioRequest struct {
	Paciente          *PacienteRequest `json:"paciente"`
	NomePaciente      string           `json:"nome_paciente"`
	HistoricoMedico   string           `json:"historicoMedico"`
	Medicamentos      string           `json:"medicamentos"`
	Exames            string           `json:"exames"`
	CondicoesClinicas string           `json:"condicoesClinicas"`
	TipoTratamento    string           `json:"tipoTratamento"`
	NumeroProntuario  string           `json:"numeroProntuario"`
}

// Validate confere o prontuário e o paciente aninhado
func (r ProntuarioRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	if r.Paciente == nil {
		errs["paciente"] = "não deve ser nulo"
	} else {
		r.Paciente.validate(errs)
	}
	errs.required("historicoMedico", r.HistoricoMedico, "Histórico médico é obrigatório")
	errs.required("tipoTratamento", r.TipoTratamento, "Tipo de tratamento é obrigatório")
	errs.required("numeroProntuario", r.NumeroProntuario, "Número do prontuário é obrigatório")
	return errs.orNil()
}

// ToInput converte para a entrada do serviço
func (r ProntuarioRequest) ToInput() prontuario.ProntuarioInput {
	in := prontuario.ProntuarioInput{
		NomePaciente:      r.NomePaciente,
		HistoricoMedico:   r.HistoricoMedico,
		Medicamentos:      r.Medicamentos,
		Exames:            r.Exames,
		CondicoesClinicas: r.CondicoesClinicas,
		TipoTratamento:    r.TipoTratamento,
		NumeroProntuario:  r.NumeroProntuario,
	}
	if r.Paciente != nil {
		in.Paciente = r.Paciente.toModel()
	}
	return in
}

// HistoricoRequest é o corpo de POST /:id/historico-medico
type HistoricoRequest struct {
	Descricao string `json:"descricao"`
}

// Validate confere a descrição
func (r HistoricoRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.required("descricao", r.Descricao, "A descrição é obrigatória")
	return errs.orNil()
}

// MedicacaoRequest é o corpo de POST /:id/medicacoes
type MedicacaoRequest struct {
	Nome        string `json:"nome"`
	Dosagem     string `json:"dosagem"`
	Frequencia  string `json:"frequencia"`
	Observacoes string `json:"observacoes"`
}

// Validate confere a medicação
func (r MedicacaoRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.required("nome", r.Nome, "O nome da medicação é obrigatório")
	errs.required("dosagem", r.Dosagem, "A dosagem é obrigatória")
	errs.required("frequencia", r.Frequencia, "A frequência é obrigatória")
	return errs.orNil()
}

// ExameRequest é o corpo de POST /:id/exames
type ExameRequest struct {
	Nome        string `json:"nome"`
	Data        string `json:"data"`
	Resultado   string `json:"resultado"`
	Observacoes string `json:"observacoes"`
}

// Validate confere o exame
func (r ExameRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.required("nome", r.Nome, "O nome do exame é obrigatório")
	errs.required("data", r.Data, "A data do exame é obrigatória")
	errs.required("resultado", r.Resultado, "O resultado do exame é obrigatório")
	return errs.orNil()
}

// AnotacaoRequest é o corpo de POST /:id/anotacoes
type AnotacaoRequest struct {
	Texto string `json:"texto"`
}

// Validate confere o texto
func (r AnotacaoRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.required("texto", r.Texto, "O texto da anotação é obrigatório")
	return errs.orNil()
}

// StatusRequest é o corpo de PATCH /:id/status-tratamento
type StatusRequest struct {
	Status     string `json:"status"`
	MotivoAlta string `json:"motivoAlta"`
}

// Validate confere o status informado; o valor é verificado pelo serviço
func (r StatusRequest) Validate() FieldErrors {
	errs := FieldErrors{}
	errs.required("status", r.Status, "O status do tratamento é obrigatório")
	return errs.orNil()
}
