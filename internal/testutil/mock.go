package testutil

import (
	"context"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/stretchr/testify/mock"
)

// MockModule is a testify mock of module.Module.
type MockModule struct {
	mock.Mock
}

var _ module.Module = (*MockModule)(nil)

func (m *MockModule) Name() string {
	return m.Called().String(0)
}

func (m *MockModule) Type() string {
	return m.Called().String(0)
}

func (m *MockModule) Inputs() []string {
	args := m.Called()
	v, _ := args.Get(0).([]string)
	return v
}

func (m *MockModule) Outputs() []string {
	args := m.Called()
	v, _ := args.Get(0).([]string)
	return v
}

func (m *MockModule) Estimates() []module.Estimate {
	args := m.Called()
	v, _ := args.Get(0).([]module.Estimate)
	return v
}

func (m *MockModule) Setup(ctx context.Context, env *objectstore.Env) error {
	return m.Called(ctx, env).Error(0)
}

func (m *MockModule) Execute(ctx context.Context, env *objectstore.Env) error {
	return m.Called(ctx, env).Error(0)
}
