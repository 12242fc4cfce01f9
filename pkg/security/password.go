package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes é o limite do bcrypt; senhas maiores são recusadas, não truncadas
const MaxPasswordBytes = 72

var (
	// ErrPasswordMismatch indica senha que não confere com o hash
	ErrPasswordMismatch = errors.New("senha não confere")
	// ErrPasswordTooLong indica senha acima de MaxPasswordBytes
	ErrPasswordTooLong = errors.New("senha excede 72 bytes")
)

// PasswordHasher gera e verifica hashes bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher cria um hasher; cost <= 0 usa bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash gera o hash salgado da senha
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify compara a senha com o hash. Hash malformado retorna um erro diferente
// de ErrPasswordMismatch, para que o chamador possa tratá-lo como falha de configuração.
func (h *PasswordHasher) Verify(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
