package model

// Paciente pertence a exatamente um prontuário
type Paciente struct {
	ID             uint   `json:"id"`
	Nome           string `json:"nome"`
	DataNascimento string `json:"dataNascimento"` // YYYY-MM-DD
	CPF            string `json:"cpf"`
	Genero         string `json:"genero"`
	Telefone       string `json:"telefone,omitempty"`
	Email          string `json:"email"`
	Logradouro     string `json:"logradouro"`
	Numero         string `json:"numero"`
	Complemento    string `json:"complemento,omitempty"`
	Bairro         string `json:"bairro"`
	Cidade         string `json:"cidade"`
	Estado         string `json:"estado"`
	CEP            string `json:"cep"`
}

// PacienteEntity é a representação de banco de dados de um paciente
type PacienteEntity struct {
	ID             uint   `gorm:"primaryKey"`
	Nome           string `gorm:"not null"`
	DataNascimento string `gorm:"column:data_nascimento;size:10;not null"`
	CPF            string `gorm:"column:cpf;uniqueIndex;not null;size:14"`
	Genero         string `gorm:"not null;size:30"`
	Telefone       string `gorm:"size:20"`
	Email          string `gorm:"not null"`
	Logradouro     string `gorm:"not null"`
	Numero         string `gorm:"not null;size:20"`
	Complemento    string
	Bairro         string `gorm:"not null"`
	Cidade         string `gorm:"not null"`
	Estado         string `gorm:"not null;size:2"`
	CEP            string `gorm:"column:cep;not null;size:9"`
}

// TableName define o nome da tabela
func (PacienteEntity) TableName() string {
	return "pacientes"
}

// ToEntity converte para a representação de banco
func (p *Paciente) ToEntity() *PacienteEntity {
	return &PacienteEntity{
		ID:             p.ID,
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

// ToDomain converte para o modelo de domínio
func (e *PacienteEntity) ToDomain() *Paciente {
	return &Paciente{
		ID:             e.ID,
		Nome:           e.Nome,
		DataNascimento: e.DataNascimento,
		CPF:            e.CPF,
		Genero:         e.Genero,
		Telefone:       e.Telefone,
		Email:          e.Email,
		Logradouro:     e.Logradouro,
		Numero:         e.Numero,
		Complemento:    e.Complemento,
		Bairro:         e.Bairro,
		Cidade:         e.Cidade,
		Estado:         e.Estado,
		CEP:            e.CEP,
	}
}
