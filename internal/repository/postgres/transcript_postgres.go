package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"soundblast/internal/apperr"
	"soundblast/internal/model"
	"soundblast/internal/repository"
)

const dbTimeout = 10 * time.Second

// TranscriptPostgres is a PostgreSQL implementation of repository.TranscriptRepository.
// Segments are stored as a single JSONB document.
type TranscriptPostgres struct {
	db *sql.DB
}

// NewTranscriptPostgres creates a new TranscriptPostgres repository.
func NewTranscriptPostgres(db *sql.DB) *TranscriptPostgres {
	return &TranscriptPostgres{db: db}
}

var _ repository.TranscriptRepository = (*TranscriptPostgres)(nil)

// Insert writes a new transcript row and returns its id.
func (r *TranscriptPostgres) Insert(ctx context.Context, t *model.Transcript) (string, error) {
	if t == nil || t.FileID == "" {
		return "", apperr.E(apperr.KindInvalid, "transcripts.insert", "transcript has no file id")
	}

	segments := t.Segments
	if segments == nil {
		segments = []model.Segment{}
	}
	payload, err := json.Marshal(segments)
	if err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "transcripts.insert", err)
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const q = `
		INSERT INTO transcripts (file_id, text, segments)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, q, t.FileID, t.Text, payload).Scan(&id); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "transcripts.insert", err)
	}
	return id, nil
}

// FindByFileID returns the oldest transcript stored for fileID.
func (r *TranscriptPostgres) FindByFileID(ctx context.Context, fileID string) (*model.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	const q = `
		SELECT file_id, text, segments
		FROM transcripts
		WHERE file_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	var (
		t       model.Transcript
		payload []byte
	)
	if err := r.db.QueryRowContext(ctx, q, fileID).Scan(&t.FileID, &t.Text, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Wrap(apperr.KindStorage, "transcripts.find", err)
	}
	if err := json.Unmarshal(payload, &t.Segments); err != nil {
		return nil, apperr.Wrapf(apperr.KindStorage, "transcripts.find", "stored segments are not valid json", err)
	}
	return &t, nil
}
