package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundblast/internal/apperr"
	"soundblast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		meta     model.FileMetadata
		wantMsg  string
	}{
		{name: "ok", filename: "sample.wav", meta: model.FileMetadata{ContentType: "audio/wav"}},
		{name: "missing filename", filename: " ", meta: model.FileMetadata{ContentType: "audio/wav"}, wantMsg: "missing file name"},
		{name: "missing content type", filename: "sample.wav", wantMsg: "missing content type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(tt.filename, tt.meta)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestWriteToPath(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "blob")

	t.Run("creates file", func(t *testing.T) {
		n, err := writeToPath(dest, strings.NewReader("hello world"))
		require.NoError(t, err)
		assert.EqualValues(t, 11, n)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("truncates existing file", func(t *testing.T) {
		_, err := writeToPath(dest, strings.NewReader("hi"))
		require.NoError(t, err)

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "hi", string(data))
	})

	t.Run("removes partial file on read failure", func(t *testing.T) {
		partial := filepath.Join(dir, "partial")
		_, err := writeToPath(partial, &failingReader{data: "abc"})
		assert.Error(t, err)
		assert.NoFileExists(t, partial)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := writeToPath(filepath.Join(dir, "nope", "blob"), strings.NewReader("x"))
		assert.Error(t, err)
	})
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("connection reset")
	}
	r.done = true
	return copy(p, r.data), nil
}
