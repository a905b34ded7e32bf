package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"execapi/internal/model"
	"execapi/internal/repository"
)

type MockExecutionRepository struct {
	mock.Mock
}

func (m *MockExecutionRepository) Insert(ctx context.Context, exec *model.ExecutionDB) (*model.ExecutionDB, error) {
	args := m.Called(ctx, exec)
	if f, ok := args.Get(0).(func(context.Context, *model.ExecutionDB) *model.ExecutionDB); ok {
		return f(ctx, exec), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExecutionDB), args.Error(1)
}

func (m *MockExecutionRepository) FindByID(ctx context.Context, id string) (*model.ExecutionDB, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExecutionDB), args.Error(1)
}

func (m *MockExecutionRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.ExecutionDB], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ExecutionDB]), args.Error(1)
}

func (m *MockExecutionRepository) FindChildren(ctx context.Context, id string) ([]model.ExecutionDB, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExecutionDB), args.Error(1)
}
