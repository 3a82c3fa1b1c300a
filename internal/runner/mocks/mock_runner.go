package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundblast/internal/runner"
)

// MockRunner is a testify mock for runner.Runner.
type MockRunner struct {
	mock.Mock
}

var _ runner.Runner = (*MockRunner)(nil)

// Run records the call. The first return value may be a
// func(runner.Command) runner.ExitResult so tests can create tool output files.
func (m *MockRunner) Run(ctx context.Context, cmd runner.Command) (runner.ExitResult, error) {
	args := m.Called(ctx, cmd)
	var res runner.ExitResult
	switch v := args.Get(0).(type) {
	case runner.ExitResult:
		res = v
	case func(runner.Command) runner.ExitResult:
		if v != nil {
			res = v(cmd)
		}
	}
	return res, args.Error(1)
}
