package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"execapi/internal/api"
	"execapi/internal/service"
)

type MockExecutionService struct {
	mock.Mock
}

func (m *MockExecutionService) Record(ctx context.Context, exec *api.ExecutionAPI) (*api.ExecutionAPI, error) {
	args := m.Called(ctx, exec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ExecutionAPI), args.Error(1)
}

func (m *MockExecutionService) Get(ctx context.Context, id string) (*api.ExecutionAPI, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ExecutionAPI), args.Error(1)
}

func (m *MockExecutionService) List(ctx context.Context, limit, offset int) (*service.ExecutionListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExecutionListResult), args.Error(1)
}

func (m *MockExecutionService) Children(ctx context.Context, id string) ([]api.ExecutionAPI, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.ExecutionAPI), args.Error(1)
}

func (m *MockExecutionService) Attribute(ctx context.Context, id, name string) (any, error) {
	args := m.Called(ctx, id, name)
	return args.Get(0), args.Error(1)
}
