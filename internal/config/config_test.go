package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("FILE_DIR", "/srv/scratch")
	t.Setenv("WHISPER_MODEL", "small")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "/srv/scratch", cfg.Pipeline.WorkDir)
	assert.Equal(t, "small", cfg.Pipeline.WhisperModel)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8899", cfg.Port)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, StorageMinIO, cfg.Storage.Backend)
	assert.Equal(t, "ffmpeg", cfg.Pipeline.FFmpegBin)
	assert.Equal(t, "whisper_timestamped", cfg.Pipeline.WhisperBin)
	assert.Equal(t, "soundblast-locks", filepath.Base(cfg.Pipeline.LockDir))
	assert.Equal(t, 1<<30, cfg.MaxUploadBytes)
	assert.Equal(t, "http://localhost:7676", cfg.CORSAllowOrigins)
}

func TestLoadStorageBackend(t *testing.T) {
	t.Run("gridfs accepted case-insensitively", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", " GridFS ")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StorageGridFS, cfg.Storage.Backend)
		assert.Equal(t, "soundblast", cfg.Mongo.Database)
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "ftp")
		_, err := Load()
		assert.ErrorContains(t, err, "unsupported STORAGE_BACKEND")
	})
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "invalid")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := AppConfig{
		Storage:  StorageConfig{Backend: StorageMinIO},
		Pipeline: PipelineConfig{WorkDir: " ", FFmpegBin: "ffmpeg", WhisperBin: "whisper"},
	}
	assert.ErrorContains(t, cfg.Validate(), "FILE_DIR")

	cfg.Pipeline.WorkDir = "/tmp/x"
	cfg.Pipeline.WhisperBin = ""
	assert.ErrorContains(t, cfg.Validate(), "WHISPER_BIN")

	cfg.Pipeline.WhisperBin = "whisper"
	assert.NoError(t, cfg.Validate())
}

func TestLoadNestedKeysDoNotFallBackToBareNames(t *testing.T) {
	t.Setenv("USER", "shell-user")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Empty(t, cfg.Database.User)
	assert.Equal(t, "5432", cfg.Database.Port)
}
