package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-insights/internal/filter"
	"chat-insights/internal/models"
)

// SourceMock is a raw-table source that also reports a version.
type SourceMock struct {
	mock.Mock
}

func (m *SourceMock) Fetch(ctx context.Context) (models.RawTables, error) {
	args := m.Called(ctx)
	var tables models.RawTables
	if val := args.Get(0); val != nil {
		tables = val.(models.RawTables)
	}
	return tables, args.Error(1)
}

func (m *SourceMock) Version(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type InsightsServiceMock struct {
	mock.Mock
}

func (m *InsightsServiceMock) FilterOptions() (models.FilterOptions, error) {
	args := m.Called()
	var opts models.FilterOptions
	if val := args.Get(0); val != nil {
		opts = val.(models.FilterOptions)
	}
	return opts, args.Error(1)
}

func (m *InsightsServiceMock) Query(ctx context.Context, params filter.Params) (models.AggregateResult, error) {
	args := m.Called(ctx, params)
	var res models.AggregateResult
	if val := args.Get(0); val != nil {
		res = val.(models.AggregateResult)
	}
	return res, args.Error(1)
}

func (m *InsightsServiceMock) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *InsightsServiceMock) SnapshotInfo() (models.SnapshotInfo, error) {
	args := m.Called()
	var info models.SnapshotInfo
	if val := args.Get(0); val != nil {
		info = val.(models.SnapshotInfo)
	}
	return info, args.Error(1)
}

var _ interface {
	Fetch(context.Context) (models.RawTables, error)
	Version(context.Context) (string, error)
} = (*SourceMock)(nil)
