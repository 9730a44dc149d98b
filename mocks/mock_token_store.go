package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTokenStore is a mock implementation of port.TokenStore.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockTokenStore) SetToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenStore) ClearToken(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
