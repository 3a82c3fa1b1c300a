package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"soundblast/internal/apperr"
	"soundblast/internal/config"
	"soundblast/internal/model"
)

// GridFSStore implements BlobStore on a MongoDB GridFS bucket. Identifiers are
// the hex form of the files collection ObjectID.
type GridFSStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
	log    zerolog.Logger
}

var _ BlobStore = (*GridFSStore)(nil)

// gridFSFile is the subset of a files collection document we read.
type gridFSFile struct {
	ID       primitive.ObjectID `bson:"_id"`
	Length   int64              `bson:"length"`
	Filename string             `bson:"filename"`
	Metadata *gridFSMetadata    `bson:"metadata"`
}

// gridFSMetadata uses pointers so absent keys can be told apart from empty ones.
type gridFSMetadata struct {
	ContentType *string `bson:"contentType"`
	Thumbnail   *string `bson:"thumbnail"`
}

// NewGridFS connects to MongoDB, verifies connectivity and opens the bucket.
// The caller owns the returned store and must Close it.
func NewGridFS(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (*GridFSStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	bucket, err := gridfs.NewBucket(client.Database(cfg.Database), options.GridFSBucket().SetName(cfg.Bucket))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}

	return &GridFSStore{
		client: client,
		bucket: bucket,
		log:    logger.With().Str("component", "storage").Str("backend", "gridfs").Logger(),
	}, nil
}

// Close disconnects the underlying client.
func (g *GridFSStore) Close(ctx context.Context) error {
	return g.client.Disconnect(ctx)
}

// Upload streams r into the bucket in chunk-sized pieces.
func (g *GridFSStore) Upload(ctx context.Context, r io.Reader, filename string, size int64, meta model.FileMetadata) (string, error) {
	if err := ValidateUpload(filename, meta); err != nil {
		return "", err
	}

	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: meta.ContentType},
		{Key: "thumbnail", Value: meta.Thumbnail},
	})
	oid, err := g.bucket.UploadFromStream(filename, r, opts)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "storage.upload", err)
	}

	g.log.Info().Str("file_id", oid.Hex()).Int64("declared_bytes", size).Msg("blob uploaded")
	return oid.Hex(), nil
}

// FindByID looks up the files collection document for id.
func (g *GridFSStore) FindByID(ctx context.Context, id string) (*model.StoredFile, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	cursor, err := g.bucket.Find(bson.M{"_id": oid})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "storage.find", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "storage.find", err)
		}
		return nil, nil
	}

	var doc gridFSFile
	if err := cursor.Decode(&doc); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "storage.find", err)
	}
	file, err := doc.storedFile()
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Open returns a download stream positioned at the start of the blob.
func (g *GridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, *model.StoredFile, error) {
	file, err := g.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if file == nil {
		return nil, nil, notFound("storage.open", id)
	}

	oid, _ := primitive.ObjectIDFromHex(id)
	stream, err := g.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, notFound("storage.open", id)
		}
		return nil, nil, apperr.Wrap(apperr.KindStorage, "storage.open", err)
	}
	return stream, file, nil
}

// DownloadToPath streams the blob into dest.
func (g *GridFSStore) DownloadToPath(ctx context.Context, id, dest string) error {
	rc, _, err := g.Open(ctx, id)
	if err != nil {
		return err
	}
	defer rc.Close()

	n, err := writeToPath(dest, rc)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, "storage.download", err)
	}

	g.log.Debug().Str("file_id", id).Int64("bytes", n).Str("dest", dest).Msg("blob written to disk")
	return nil
}

// List decodes every files collection document.
func (g *GridFSStore) List(ctx context.Context) ([]model.StoredFile, error) {
	cursor, err := g.bucket.Find(bson.D{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "storage.list", err)
	}
	defer cursor.Close(ctx)

	files := make([]model.StoredFile, 0)
	for cursor.Next(ctx) {
		var doc gridFSFile
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "storage.list", err)
		}
		file, err := doc.storedFile()
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "storage.list", err)
	}
	return files, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrapf(apperr.KindInvalidIdentifier, "storage.id", fmt.Sprintf("invalid file id %q", id), err)
	}
	return oid, nil
}

// storedFile validates the document. A missing filename or contentType is a
// hard error; thumbnail is optional.
func (d gridFSFile) storedFile() (model.StoredFile, error) {
	id := d.ID.Hex()
	if d.Filename == "" {
		return model.StoredFile{}, apperr.E(apperr.KindStorage, "storage.metadata", fmt.Sprintf("file %s has no filename", id))
	}
	if d.Metadata == nil || d.Metadata.ContentType == nil {
		return model.StoredFile{}, apperr.E(apperr.KindStorage, "storage.metadata", fmt.Sprintf("file %s has no contentType metadata", id))
	}

	meta := model.FileMetadata{ContentType: *d.Metadata.ContentType}
	if d.Metadata.Thumbnail != nil {
		meta.Thumbnail = *d.Metadata.Thumbnail
	}
	return model.StoredFile{
		ID:       id,
		Filename: d.Filename,
		Length:   d.Length,
		Metadata: meta,
	}, nil
}
