package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// StorageMinIO stores blobs in an S3-compatible bucket.
	StorageMinIO = "minio"
	// StorageGridFS stores blobs in a MongoDB GridFS bucket.
	StorageGridFS = "gridfs"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string `default:"5432"`
	User               string
	Password           string
	Name               string
	SSLMode            string `envconfig:"SSLMODE" default:"disable"`
	MaxOpenConns       int    `split_words:"true" default:"10"`
	MaxIdleConns       int    `split_words:"true" default:"5"`
	ConnMaxLifetimeSec int    `split_words:"true" default:"300"`
	// StatementTimeoutSec bounds every transcript query on the server side.
	StatementTimeoutSec int `split_words:"true" default:"30"`
	// ConnectAttempts is how many pings startup makes before giving up.
	ConnectAttempts int `split_words:"true" default:"5"`
}

// StorageConfig selects the blob store backend.
type StorageConfig struct {
	Backend string `default:"minio"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string `split_words:"true"`
	SecretKey string `split_words:"true"`
	Bucket    string
	UseSSL    bool `split_words:"true" default:"false"`
}

// MongoConfig holds GridFS settings used when STORAGE_BACKEND=gridfs.
type MongoConfig struct {
	URI      string
	Database string `default:"soundblast"`
	Bucket   string `default:"fs"`
}

// PipelineConfig holds the transcription pipeline settings.
// Tool binaries are resolved through PATH unless an absolute path is given.
type PipelineConfig struct {
	WorkDir         string `envconfig:"FILE_DIR" default:"./data/scratch"`
	LockDir         string `envconfig:"LOCK_DIR"`
	FFmpegBin       string `envconfig:"FFMPEG_BIN" default:"ffmpeg"`
	WhisperBin      string `envconfig:"WHISPER_BIN" default:"whisper_timestamped"`
	WhisperModel    string `envconfig:"WHISPER_MODEL"`
	WhisperLanguage string `envconfig:"WHISPER_LANGUAGE"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"auto"` // json, console or auto
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost          string `envconfig:"APP_HOST" default:"localhost:8899"`
	Port             string `envconfig:"PORT" default:"8899"`
	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:7676"`
	MaxUploadBytes   int    `envconfig:"MAX_UPLOAD_BYTES" default:"1073741824"`

	Log      LogConfig      `envconfig:"LOG"`
	Database DatabaseConfig `envconfig:"DB"`
	Storage  StorageConfig  `envconfig:"STORAGE"`
	MinIO    MinIOConfig    `envconfig:"MINIO"`
	Mongo    MongoConfig    `envconfig:"MONGO"`
	Pipeline PipelineConfig `ignored:"true"`
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	// Pipeline keys are unprefixed (FILE_DIR, FFMPEG_BIN, ...).
	if err := envconfig.Process("", &cfg.Pipeline); err != nil {
		return nil, fmt.Errorf("load pipeline config: %w", err)
	}
	if cfg.Pipeline.LockDir == "" {
		cfg.Pipeline.LockDir = filepath.Join(os.TempDir(), "soundblast-locks")
	}
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case StorageMinIO, StorageGridFS:
	default:
		return fmt.Errorf("invalid config: unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Pipeline.WorkDir) == "" {
		return fmt.Errorf("invalid config: FILE_DIR is required")
	}
	if c.Pipeline.FFmpegBin == "" || c.Pipeline.WhisperBin == "" {
		return fmt.Errorf("invalid config: FFMPEG_BIN and WHISPER_BIN must not be empty")
	}
	return nil
}
