package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"soundblast/internal/apperr"
	"soundblast/internal/logging"
	"soundblast/internal/model"
	"soundblast/internal/storage"
)

// FileService defines the use cases for stored media files.
type FileService interface {
	// Upload streams r into the blob store and returns the new file id.
	// size may be -1 when the length is unknown.
	Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error)

	// List returns every stored file with its metadata.
	List(ctx context.Context) ([]model.StoredFile, error)

	// Open returns a reader over the blob. The caller must close it.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error)
}

type fileService struct {
	store  storage.BlobStore
	tracer trace.Tracer
	log    zerolog.Logger
}

// NewFileService constructs a new FileService.
func NewFileService(store storage.BlobStore, logger zerolog.Logger) FileService {
	return &fileService{
		store:  store,
		tracer: otel.Tracer("soundblast/internal/service"),
		log:    logger.With().Str("component", "files").Logger(),
	}
}

func (s *fileService) Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error) {
	if r == nil {
		return "", apperr.E(apperr.KindInvalid, "files.upload", "missing file content")
	}
	if err := storage.ValidateUpload(filename, meta); err != nil {
		return "", err
	}

	ctx, span := s.tracer.Start(ctx, "files.Upload", trace.WithAttributes(
		attribute.String("file.name", filename),
		attribute.String("file.content_type", meta.ContentType),
		attribute.Int64("file.size", size),
	))
	defer span.End()

	id, err := s.store.Upload(ctx, r, filename, size, meta)
	if err != nil {
		span.RecordError(err)
		return "", withKind(apperr.KindStorage, "files.upload", err)
	}
	span.SetAttributes(attribute.String("file.id", id))
	log := logging.Ctx(ctx, s.log)
	log.Info().Str("file_id", id).Str("filename", filename).Str("content_type", meta.ContentType).Msg("file uploaded")
	return id, nil
}

func (s *fileService) List(ctx context.Context) ([]model.StoredFile, error) {
	ctx, span := s.tracer.Start(ctx, "files.List")
	defer span.End()

	files, err := s.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, withKind(apperr.KindStorage, "files.list", err)
	}
	span.SetAttributes(attribute.Int("files.count", len(files)))
	return files, nil
}

func (s *fileService) Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error) {
	if id == "" {
		return nil, nil, apperr.E(apperr.KindInvalidIdentifier, "files.open", "id is required")
	}
	ctx, span := s.tracer.Start(ctx, "files.Open", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	rc, file, err := s.store.Open(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, nil, withKind(apperr.KindStorage, "files.open", err)
	}
	return rc, file, nil
}
