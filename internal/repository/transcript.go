package repository

import (
	"context"

	"soundblast/internal/model"
)

// TranscriptRepository persists transcripts keyed by the originating file id.
// It performs no deduplication; callers keep at most one transcript per file.
type TranscriptRepository interface {
	// Insert stores t and returns the storage id of the new row.
	Insert(ctx context.Context, t *model.Transcript) (string, error)

	// FindByFileID returns the transcript for fileID, or nil when none exists.
	FindByFileID(ctx context.Context, fileID string) (*model.Transcript, error)
}
