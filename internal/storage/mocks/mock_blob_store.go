package mocks

import (
	"context"
	"io"

	"soundblast/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error) {
	args := m.Called(ctx, r, filename, size, meta)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

// DownloadToPath accepts a func(dest string) error as its return value so tests
// can materialize the scratch file the way a real backend would.
func (m *MockBlobStore) DownloadToPath(ctx context.Context, id, dest string) error {
	args := m.Called(ctx, id, dest)
	if f, ok := args.Get(0).(func(string) error); ok {
		return f(dest)
	}
	return args.Error(0)
}

func (m *MockBlobStore) Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error) {
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

func (m *MockBlobStore) List(ctx context.Context) ([]model.StoredFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredFile), args.Error(1)
}
