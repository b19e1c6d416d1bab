package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockResponder struct {
	mock.Mock
}

func (m *MockResponder) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockResponder) Generate(ctx context.Context, req Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
