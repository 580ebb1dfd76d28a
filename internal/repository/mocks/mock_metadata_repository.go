package mocks

import (
	"context"
	"time"

	"fileintake/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMetadataRepository struct {
	mock.Mock
}

func (m *MockMetadataRepository) Put(ctx context.Context, rec *model.FileMetadata) (*model.FileMetadata, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileMetadata), args.Error(1)
}

func (m *MockMetadataRepository) FindByExtension(ctx context.Context, ext string, limit int) ([]model.FileMetadata, error) {
	args := m.Called(ctx, ext, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileMetadata), args.Error(1)
}

func (m *MockMetadataRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
