package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCompleter is a mock implementation of Completer using testify/mock.
type MockCompleter struct {
	mock.Mock
	ProviderName string
}

func (m *MockCompleter) Complete(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}
