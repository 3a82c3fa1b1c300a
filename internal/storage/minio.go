package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"soundblast/internal/apperr"
	"soundblast/internal/config"
	"soundblast/internal/model"
)

const (
	objectPrefix = "files/"

	metaFilename  = "filename"
	metaThumbnail = "thumbnail"
)

// minioStorage implements BlobStore using an S3-compatible backend (MinIO, AWS S3, etc.).
// Blobs live under files/<uuid>; the filename and thumbnail travel as user metadata.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewMinIO creates a new S3-compatible blob store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig, logger zerolog.Logger) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	transport, err := minio.DefaultTransport(cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("create minio transport: %w", err)
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(transport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStorage{
		client: cli,
		bucket: cfg.Bucket,
		log:    logger.With().Str("component", "storage").Str("backend", "minio").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

// Upload streams r into a new object. With size -1 the client uploads in
// multipart chunks instead of buffering the payload.
func (m *minioStorage) Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error) {
	if err := ValidateUpload(filename, meta); err != nil {
		return "", err
	}

	id := uuid.NewString()
	info, err := m.client.PutObject(ctx, m.bucket, objectKey(id), r, size, minio.PutObjectOptions{
		ContentType:  meta.ContentType,
		UserMetadata: encodeUserMetadata(filename, meta),
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "storage.upload", err)
	}

	m.log.Info().Str("file_id", id).Int64("bytes", info.Size).Msg("blob uploaded")
	return id, nil
}

// FindByID stats the object behind id.
func (m *minioStorage) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	if err := validateObjectID(id); err != nil {
		return nil, err
	}

	info, err := m.client.StatObject(ctx, m.bucket, objectKey(id), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStorage, "storage.find", err)
	}

	file, err := storedFileFromObject(id, info)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Open downloads an object content as a ReadCloser along with its description.
func (m *minioStorage) Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error) {
	if err := validateObjectID(id); err != nil {
		return nil, nil, err
	}

	obj, err := m.client.GetObject(ctx, m.bucket, objectKey(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.KindStorage, "storage.open", err)
	}
	// Fetch stat to populate info; avoid reading content into memory.
	st, err := obj.Stat()
	if err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, nil, notFound("storage.open", id)
		}
		return nil, nil, apperr.Wrap(apperr.KindStorage, "storage.open", err)
	}

	file, err := storedFileFromObject(id, st)
	if err != nil {
		obj.Close()
		return nil, nil, err
	}
	return obj, &file, nil
}

// DownloadToPath streams the object into dest.
func (m *minioStorage) DownloadToPath(ctx context.Context, id, dest string) error {
	rc, _, err := m.Open(ctx, id)
	if err != nil {
		return err
	}
	defer rc.Close()

	n, err := writeToPath(dest, rc)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "storage.download", err)
	}

	m.log.Debug().Str("file_id", id).Int64("bytes", n).Str("dest", dest).Msg("blob written to disk")
	return nil
}

// List enumerates every object under the files/ prefix.
func (m *minioStorage) List(ctx context.Context) ([]model.StoredFile, error) {
	// Cancelling stops the listing goroutine when we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := make([]model.StoredFile, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    objectPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "storage.list", obj.Err)
		}

		id := strings.TrimPrefix(obj.Key, objectPrefix)
		if validateObjectID(id) != nil {
			return nil, apperr.E(apperr.KindStorage, "storage.list", fmt.Sprintf("unexpected object key %q", obj.Key))
		}

		// Listings do not carry user metadata; stat each object.
		info, err := m.client.StatObject(ctx, m.bucket, obj.Key, minio.StatObjectOptions{})
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "storage.list", err)
		}
		file, err := storedFileFromObject(id, info)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func objectKey(id string) string {
	return objectPrefix + id
}

// validateObjectID accepts only canonical lowercase UUIDs.
func validateObjectID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return apperr.E(apperr.KindInvalidIdentifier, "storage.id", fmt.Sprintf("invalid file id %q", id))
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// encodeUserMetadata escapes the filename so non-ASCII names survive HTTP headers.
// An empty thumbnail is omitted because empty header values are dropped in transit.
func encodeUserMetadata(filename string, meta model.FileMetadata) map[string]string {
	md := map[string]string{metaFilename: url.PathEscape(filename)}
	if meta.Thumbnail != "" {
		md[metaThumbnail] = url.PathEscape(meta.Thumbnail)
	}
	return md
}

// storedFileFromObject maps object info to a StoredFile. A missing filename or
// content type is a hard error.
func storedFileFromObject(id string, info minio.ObjectInfo) (model.StoredFile, error) {
	rawName, ok := lookupMeta(info.UserMetadata, metaFilename)
	if !ok || rawName == "" {
		return model.StoredFile{}, apperr.E(apperr.KindStorage, "storage.metadata", fmt.Sprintf("file %s has no filename metadata", id))
	}
	filename, err := url.PathUnescape(rawName)
	if err != nil {
		return model.StoredFile{}, apperr.Wrapf(apperr.KindStorage, "storage.metadata", fmt.Sprintf("file %s has a malformed filename", id), err)
	}
	if info.ContentType == "" {
		return model.StoredFile{}, apperr.E(apperr.KindStorage, "storage.metadata", fmt.Sprintf("file %s has no contentType metadata", id))
	}

	var thumbnail string
	if raw, ok := lookupMeta(info.UserMetadata, metaThumbnail); ok {
		thumbnail, err = url.PathUnescape(raw)
		if err != nil {
			return model.StoredFile{}, apperr.Wrapf(apperr.KindStorage, "storage.metadata", fmt.Sprintf("file %s has a malformed thumbnail", id), err)
		}
	}

	return model.StoredFile{
		ID:       id,
		Filename: filename,
		Length:   info.Size,
		Metadata: model.FileMetadata{
			ContentType: info.ContentType,
			Thumbnail:   thumbnail,
		},
	}, nil
}

// lookupMeta finds a user metadata key regardless of header canonicalization.
func lookupMeta(md map[string]string, key string) (string, bool) {
	for k, v := range md {
		k = strings.TrimPrefix(strings.ToLower(k), "x-amz-meta-")
		if k == key {
			return v, true
		}
	}
	return "", false
}
