package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// MinSecretLength é o tamanho mínimo aceito para o segredo HMAC
	MinSecretLength = 32
	// RecommendedSecretLength é o tamanho recomendado para HS512 (512 bits)
	RecommendedSecretLength = 64
)

var (
	// ErrInvalidToken cobre token malformado, expirado, com assinatura inválida ou algoritmo não suportado
	ErrInvalidToken = errors.New("token inválido ou expirado")
	// ErrWeakSecret indica segredo abaixo do mínimo aceitável
	ErrWeakSecret = errors.New("jwt secret key muito curta")
)

// Claims são as claims emitidas para um administrador autenticado; o subject é o email
type Claims struct {
	jwt.RegisteredClaims
}

// KeyManager emite e valida tokens assinados com HS512
type KeyManager struct {
	secretKey []byte
	logger    *zap.Logger
	now       func() time.Time
}

// Option configura o KeyManager
type Option func(*KeyManager)

// WithTimeFunc substitui o relógio usado na emissão e validação
func WithTimeFunc(now func() time.Time) Option {
	return func(km *KeyManager) {
		km.now = now
	}
}

// NewKeyManager cria um KeyManager a partir do segredo configurado.
// Segredos abaixo de MinSecretLength são recusados; abaixo de RecommendedSecretLength
// a aplicação sobe, mas registra um erro em alto e bom som.
func NewKeyManager(secret string, logger *zap.Logger, opts ...Option) (*KeyManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: %d bytes, mínimo %d", ErrWeakSecret, len(secret), MinSecretLength)
	}

	if len(secret) < RecommendedSecretLength {
		logger.Error("SEGREDO JWT FRACO: HS512 exige chave de pelo menos 512 bits",
			zap.Int("secret_bytes", len(secret)),
			zap.Int("recommended_bytes", RecommendedSecretLength))
	}

	km := &KeyManager{
		secretKey: []byte(secret),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(km)
	}

	return km, nil
}

// GenerateToken emite um token para o email informado, válido por duration
func (km *KeyManager) GenerateToken(subject string, duration time.Duration) (string, error) {
	now := km.now()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokenString, err := token.SignedString(km.secretKey)
	if err != nil {
		km.logger.Error("falha ao gerar token JWT", zap.Error(err))
		return "", err
	}

	return tokenString, nil
}

// VerifyToken valida assinatura e validade e retorna o subject.
// Qualquer falha é reportada como ErrInvalidToken.
func (km *KeyManager) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return km.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(km.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		km.logger.Debug("token JWT rejeitado", zap.Error(err))
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
