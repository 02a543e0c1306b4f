package services

import (
	"github.com/stretchr/testify/mock"

	"bvmtdash/pkg/contracts/domain"
)

// MockCatalog is a mock for SectorCatalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Names() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockCatalog) Default() string {
	return m.Called().String(0)
}

// MockTransformer is a mock for SectorTransformer
type MockTransformer struct {
	mock.Mock
}

func (m *MockTransformer) Transform(sector string) (domain.SectorView, error) {
	args := m.Called(sector)
	return args.Get(0).(domain.SectorView), args.Error(1)
}

func (m *MockTransformer) Melt(sector string) ([]domain.MeltedRow, error) {
	args := m.Called(sector)
	rows, _ := args.Get(0).([]domain.MeltedRow)
	return rows, args.Error(1)
}

func (m *MockTransformer) Summarize(sector string) (domain.SectorSummary, error) {
	args := m.Called(sector)
	return args.Get(0).(domain.SectorSummary), args.Error(1)
}
