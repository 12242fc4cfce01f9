package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hmpsicoterapia/prontuario-api/internal/domain/model"
	"github.com/hmpsicoterapia/prontuario-api/internal/domain/repository"
	"github.com/hmpsicoterapia/prontuario-api/internal/mocks"
	"github.com/hmpsicoterapia/prontuario-api/pkg/cache"
	"github.com/hmpsicoterapia/prontuario-api/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

type recordingMetrics struct {
	mu     sync.Mutex
	auth   []string
	resets []string
}

func (r *recordingMetrics) AuthAttempt(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = append(r.auth, result)
}

func (r *recordingMetrics) PasswordReset(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets = append(r.resets, event)
}

type fixture struct {
	service  *Service
	admins   *mocks.MockAdminRepository
	notifier *mocks.MockResetNotifier
	metrics  *recordingMetrics
	resets   *ResetTokenStore
	hasher   *security.PasswordHasher
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	logger := zaptest.NewLogger(t)
	f := &fixture{
		admins:   new(mocks.MockAdminRepository),
		notifier: new(mocks.MockResetNotifier),
		metrics:  &recordingMetrics{},
		hasher:   security.NewPasswordHasher(bcrypt.MinCost),
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	keys, err := security.NewKeyManager(testSecret, logger, security.WithTimeFunc(clock))
	require.NoError(t, err)

	f.resets = NewResetTokenStore(cache.NewMemoryCache(time.Hour, time.Minute, nil, logger), time.Hour)
	f.resets.now = clock

	f.service = NewService(f.admins, f.hasher, keys, f.resets, f.notifier, f.metrics,
		Config{TokenExpiration: 24 * time.Hour}, logger)
	return f
}

func (f *fixture) admin(t *testing.T, email, senha string) *model.Admin {
	hash, err := f.hasher.Hash(senha)
	require.NoError(t, err)
	return &model.Admin{ID: 7, CPF: "12345678901", Nome: "Ana", Email: email, SenhaHash: hash}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{CPF: "12345678901", Nome: "Ana", Email: "ana@clinica.com", Senha: "segredo1"}

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.admins.On("ExistsByCPF", ctx, in.CPF).Return(false, nil)
		f.admins.On("ExistsByEmail", ctx, in.Email).Return(false, nil)
		f.admins.On("Create", ctx, mock.MatchedBy(func(a *model.Admin) bool {
			return a.Email == in.Email && a.SenhaHash != "" && a.SenhaHash != in.Senha
		})).Return(nil, uint(42))

		admin, err := f.service.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, uint(42), admin.ID)
		assert.NoError(t, f.hasher.Verify(admin.SenhaHash, in.Senha))
		f.admins.AssertExpectations(t)
	})

	t.Run("CPF is checked before email", func(t *testing.T) {
		f := newFixture(t)
		f.admins.On("ExistsByCPF", ctx, in.CPF).Return(true, nil)

		_, err := f.service.Register(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateCPF)
		f.admins.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
		f.admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		f := newFixture(t)
		f.admins.On("ExistsByCPF", ctx, in.CPF).Return(false, nil)
		f.admins.On("ExistsByEmail", ctx, in.Email).Return(true, nil)

		_, err := f.service.Register(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("Concurrent duplicate", func(t *testing.T) {
		f := newFixture(t)
		f.admins.On("ExistsByCPF", ctx, in.CPF).Return(false, nil).Once()
		f.admins.On("ExistsByEmail", ctx, in.Email).Return(false, nil)
		f.admins.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate, nil)
		f.admins.On("ExistsByCPF", ctx, in.CPF).Return(false, nil).Once()

		_, err := f.service.Register(ctx, in)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success issues token accepted by CurrentIdentity", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "ana@clinica.com", "segredo1")
		f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(admin, nil)

		token, err := f.service.Authenticate(ctx, "ana@clinica.com", "segredo1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		email, err := f.service.CurrentIdentity(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "ana@clinica.com", email)
		assert.Equal(t, []string{"success"}, f.metrics.auth)
	})

	t.Run("Token rejected after expiry", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "ana@clinica.com", "segredo1")
		f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(admin, nil)

		token, err := f.service.Authenticate(ctx, "ana@clinica.com", "segredo1")
		require.NoError(t, err)

		f.now = f.now.Add(24*time.Hour + time.Second)
		_, err = f.service.CurrentIdentity(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	tests := []struct {
		name  string
		setup func(f *fixture)
	}{
		{
			name: "Unknown email",
			setup: func(f *fixture) {
				f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(nil, repository.ErrAdminNotFound)
			},
		},
		{
			name: "Wrong password",
			setup: func(f *fixture) {
				f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(f.admin(t, "ana@clinica.com", "outra"), nil)
			},
		},
		{
			name: "Empty stored hash",
			setup: func(f *fixture) {
				f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(&model.Admin{Email: "ana@clinica.com"}, nil)
			},
		},
		{
			name: "Malformed stored hash",
			setup: func(f *fixture) {
				f.admins.On("FindByEmail", ctx, "ana@clinica.com").
					Return(&model.Admin{Email: "ana@clinica.com", SenhaHash: "nao-e-bcrypt"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			token, err := f.service.Authenticate(ctx, "ana@clinica.com", "segredo1")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Empty(t, token)
			assert.Equal(t, []string{"invalid_credentials"}, f.metrics.auth)
		})
	}

	t.Run("Repository failure is not reported as bad credentials", func(t *testing.T) {
		f := newFixture(t)
		f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(nil, errors.New("conexão recusada"))

		_, err := f.service.Authenticate(ctx, "ana@clinica.com", "segredo1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestCurrentIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("Garbage token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CurrentIdentity(ctx, "isto.nao.e-um-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Subject no longer exists", func(t *testing.T) {
		f := newFixture(t)
		admin := f.admin(t, "ana@clinica.com", "segredo1")
		f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(admin, nil).Once()

		token, err := f.service.Authenticate(ctx, "ana@clinica.com", "segredo1")
		require.NoError(t, err)

		f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(nil, repository.ErrAdminNotFound)
		_, err = f.service.CurrentIdentity(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	requestToken := func(t *testing.T, f *fixture) string {
		var issued string
		f.admins.On("FindByEmail", ctx, "ana@clinica.com").Return(f.admin(t, "ana@clinica.com", "antiga"), nil)
		f.notifier.On("NotifyPasswordReset", ctx, "ana@clinica.com", mock.AnythingOfType("string"), f.now.Add(time.Hour)).
			Run(func(args mock.Arguments) { issued = args.String(2) }).
			Return(nil)

		require.NoError(t, f.service.RequestPasswordReset(ctx, "ana@clinica.com"))
		require.NotEmpty(t, issued)
		return issued
	}

	t.Run("Unknown email is indistinguishable", func(t *testing.T) {
		f := newFixture(t)
		f.admins.On("FindByEmail", ctx, "ninguem@clinica.com").Return(nil, repository.ErrAdminNotFound)

		err := f.service.RequestPasswordReset(ctx, "ninguem@clinica.com")
		assert.NoError(t, err)
		f.notifier.AssertNotCalled(t, "NotifyPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, []string{"unknown_email"}, f.metrics.resets)
	})

	t.Run("Token is single use", func(t *testing.T) {
		f := newFixture(t)
		token := requestToken(t, f)

		f.admins.On("UpdatePasswordHash", ctx, "ana@clinica.com", mock.MatchedBy(func(hash string) bool {
			return f.hasher.Verify(hash, "nova-senha") == nil
		})).Return(nil).Once()

		require.NoError(t, f.service.ResetPassword(ctx, token, "nova-senha"))
		assert.ErrorIs(t, f.service.ResetPassword(ctx, token, "outra-senha"), ErrInvalidResetToken)

		f.admins.AssertNumberOfCalls(t, "UpdatePasswordHash", 1)
		assert.Equal(t, []string{"requested", "completed", "rejected"}, f.metrics.resets)
	})

	t.Run("Expired token is rejected and discarded", func(t *testing.T) {
		f := newFixture(t)
		token := requestToken(t, f)

		f.now = f.now.Add(time.Hour)
		assert.ErrorIs(t, f.service.ResetPassword(ctx, token, "nova-senha"), ErrInvalidResetToken)

		// voltar o relógio não ressuscita o token
		f.now = f.now.Add(-30 * time.Minute)
		assert.ErrorIs(t, f.service.ResetPassword(ctx, token, "nova-senha"), ErrInvalidResetToken)
		f.admins.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown token", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.service.ResetPassword(ctx, "nao-existe", "nova-senha"), ErrInvalidResetToken)
	})

	t.Run("Failed update keeps the token", func(t *testing.T) {
		f := newFixture(t)
		token := requestToken(t, f)

		f.admins.On("UpdatePasswordHash", ctx, "ana@clinica.com", mock.Anything).Return(errors.New("db fora")).Once()
		f.admins.On("UpdatePasswordHash", ctx, "ana@clinica.com", mock.Anything).Return(nil).Once()

		assert.Error(t, f.service.ResetPassword(ctx, token, "nova-senha"))
		assert.NoError(t, f.service.ResetPassword(ctx, token, "nova-senha"))
	})

	t.Run("Concurrent redemption succeeds once", func(t *testing.T) {
		f := newFixture(t)
		token := requestToken(t, f)
		f.admins.On("UpdatePasswordHash", ctx, "ana@clinica.com", mock.Anything).Return(nil)

		var wg sync.WaitGroup
		results := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- f.service.ResetPassword(ctx, token, "nova-senha")
			}()
		}
		wg.Wait()
		close(results)

		var ok, rejected int
		for err := range results {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInvalidResetToken):
				rejected++
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 4, rejected)
	})
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zaptest.NewLogger(t))
	err := n.NotifyPasswordReset(context.Background(), "ana@clinica.com", strings.Repeat("x", 36), time.Now())
	assert.NoError(t, err)
}
