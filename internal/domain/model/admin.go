package model

import "time"

// Admin representa um administrador do sistema
type Admin struct {
	ID        uint   `json:"id"`
	CPF       string `json:"cpf"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	SenhaHash string `json:"-"`
}

// AdminEntity é a representação de banco de dados de um administrador
type AdminEntity struct {
	ID        uint      `gorm:"primaryKey"`
	CPF       string    `gorm:"column:cpf;uniqueIndex;not null;size:11"`
	Nome      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null;size:255"`
	SenhaHash string    `gorm:"column:senha_hash;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName define o nome da tabela
func (AdminEntity) TableName() string {
	return "admins"
}

// ToEntity converte para a representação de banco
func (a *Admin) ToEntity() *AdminEntity {
	return &AdminEntity{
		ID:        a.ID,
		CPF:       a.CPF,
		Nome:      a.Nome,
		Email:     a.Email,
		SenhaHash: a.SenhaHash,
	}
}

// ToDomain converte para o modelo de domínio
func (e *AdminEntity) ToDomain() *Admin {
	return &Admin{
		ID:        e.ID,
		CPF:       e.CPF,
		Nome:      e.Nome,
		Email:     e.Email,
		SenhaHash: e.SenhaHash,
	}
}
