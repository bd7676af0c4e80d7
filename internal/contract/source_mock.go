package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of DataSource for testing.
type MockDataSource struct {
	mock.Mock
}

var _ DataSource = &MockDataSource{} // Compile-time check

// Name implements the DataSource interface.
func (m *MockDataSource) Name() string {
	args := m.Called()
	return args.String(0)
}

// Fetch implements the DataSource interface.
func (m *MockDataSource) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
