package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"soundblast/internal/model"
)

type MockTranscriptRepository struct {
	mock.Mock
}

func (m *MockTranscriptRepository) Insert(ctx context.Context, t *model.Transcript) (string, error) {
	args := m.Called(ctx, t)
	return args.String(0), args.Error(1)
}

func (m *MockTranscriptRepository) FindByFileID(ctx context.Context, fileID string) (*model.Transcript, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}
