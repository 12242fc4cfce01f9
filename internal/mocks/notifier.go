package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockResetNotifier é um mock para auth.ResetNotifier
type MockResetNotifier struct {
	mock.Mock
}

func (m *MockResetNotifier) NotifyPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error {
	args := m.Called(ctx, email, token, expiresAt)
	return args.Error(0)
}

// MockIdentityResolver é um mock para middleware.IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) CurrentIdentity(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
