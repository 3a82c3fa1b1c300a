package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"soundblast/internal/apperr"
	"soundblast/internal/model"
	storeMocks "soundblast/internal/storage/mocks"
)

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	wav := model.FileMetadata{ContentType: "audio/wav", Thumbnail: "thumbs/sample.png"}

	tests := []struct {
		name       string
		filename   string
		meta       model.FileMetadata
		setupMocks func(mStore *storeMocks.MockBlobStore) io.Reader
		wantID     string
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "happy path",
			filename: "sample.wav",
			meta:     wav,
			setupMocks: func(mStore *storeMocks.MockBlobStore) io.Reader {
				r := strings.NewReader("RIFF....WAVE")
				mStore.On("Upload", mock.Anything, r, "sample.wav", int64(12), wav).Return(fileID, nil)
				return r
			},
			wantID: fileID,
		},
		{
			name:     "nil reader",
			filename: "sample.wav",
			meta:     wav,
			setupMocks: func(mStore *storeMocks.MockBlobStore) io.Reader {
				return nil
			},
			wantErr: apperr.ErrInvalid,
		},
		{
			name:     "missing content type",
			filename: "sample.wav",
			setupMocks: func(mStore *storeMocks.MockBlobStore) io.Reader {
				return strings.NewReader("x")
			},
			wantErr:    apperr.ErrInvalid,
			wantErrMsg: "missing content type",
		},
		{
			name:     "storage error",
			filename: "sample.wav",
			meta:     wav,
			setupMocks: func(mStore *storeMocks.MockBlobStore) io.Reader {
				r := strings.NewReader("RIFF....WAVE")
				mStore.On("Upload", mock.Anything, r, "sample.wav", int64(12), wav).Return("", errors.New("bucket gone"))
				return r
			},
			wantErr:    apperr.ErrStorage,
			wantErrMsg: "bucket gone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockBlobStore)
			r := tt.setupMocks(mStore)
			svc := NewFileService(mStore, zerolog.Nop())

			id, err := svc.Upload(ctx, r, tt.filename, 12, tt.meta)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
				assert.Empty(t, id)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			mStore.AssertExpectations(t)
		})
	}
}

func TestFileService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mStore := new(storeMocks.MockBlobStore)
		files := []model.StoredFile{{ID: fileID, Filename: "sample.wav", Length: 12, Metadata: model.FileMetadata{ContentType: "audio/wav"}}}
		mStore.On("List", mock.Anything).Return(files, nil)

		got, err := NewFileService(mStore, zerolog.Nop()).List(ctx)

		require.NoError(t, err)
		assert.Equal(t, files, got)
	})

	t.Run("malformed entry fails the call", func(t *testing.T) {
		mStore := new(storeMocks.MockBlobStore)
		mStore.On("List", mock.Anything).
			Return(nil, apperr.E(apperr.KindStorage, "storage.metadata", "file x has no contentType metadata"))

		got, err := NewFileService(mStore, zerolog.Nop()).List(ctx)

		assert.ErrorIs(t, err, apperr.ErrStorage)
		assert.Nil(t, got)
	})
}

func TestFileService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mStore := new(storeMocks.MockBlobStore)
		rc := io.NopCloser(strings.NewReader("payload"))
		file := &model.StoredFile{ID: fileID, Filename: "sample.wav"}
		mStore.On("Open", mock.Anything, fileID).Return(rc, file, nil)

		gotRC, gotFile, err := NewFileService(mStore, zerolog.Nop()).Open(ctx, fileID)

		require.NoError(t, err)
		assert.Equal(t, file, gotFile)
		b, _ := io.ReadAll(gotRC)
		assert.Equal(t, "payload", string(b))
	})

	t.Run("empty id", func(t *testing.T) {
		mStore := new(storeMocks.MockBlobStore)
		_, _, err := NewFileService(mStore, zerolog.Nop()).Open(ctx, "")
		assert.ErrorIs(t, err, apperr.ErrInvalidIdentifier)
		mStore.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mStore := new(storeMocks.MockBlobStore)
		mStore.On("Open", mock.Anything, fileID).Return(nil, nil, apperr.E(apperr.KindNotFound, "storage.open", "file not found"))

		_, _, err := NewFileService(mStore, zerolog.Nop()).Open(ctx, fileID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
