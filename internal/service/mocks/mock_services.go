package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"soundblast/internal/model"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error) {
	args := m.Called(ctx, r, filename, size, meta)
	return args.String(0), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context) ([]model.StoredFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}

func (m *MockFileService) Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error) {
	args := m.Called(ctx, id)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	var f *model.StoredFile
	if v := args.Get(1); v != nil {
		f = v.(*model.StoredFile)
	}
	return rc, f, args.Error(2)
}

type MockTranscriptionService struct {
	mock.Mock
}

func (m *MockTranscriptionService) Transcribe(ctx context.Context, id string) (*model.Transcript, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transcript), args.Error(1)
}
