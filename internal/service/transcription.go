package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"soundblast/internal/apperr"
	"soundblast/internal/config"
	"soundblast/internal/logging"
	"soundblast/internal/metrics"
	"soundblast/internal/model"
	"soundblast/internal/repository"
	"soundblast/internal/runner"
	"soundblast/internal/storage"
)

// Pipeline stage names, used for spans, logs and metrics.
const (
	StageResolve   = "resolve"
	StageCache     = "cache"
	StageFetch     = "fetch"
	StageNormalize = "normalize"
	StageRecognize = "recognize"
	StageParse     = "parse"
	StagePersist   = "persist"
)

// TranscriptionService produces word-level transcripts for stored files.
type TranscriptionService interface {
	// Transcribe returns the transcript for the file id, running the pipeline
	// only when no transcript has been stored yet.
	Transcribe(ctx context.Context, id string) (*model.Transcript, error)
}

type transcriptionService struct {
	store   storage.BlobStore
	repo    repository.TranscriptRepository
	runner  runner.Runner
	tools   runner.Tools
	workDir string
	guard   *inflight
	metrics *metrics.Pipeline
	tracer  trace.Tracer
	log     zerolog.Logger
}

// NewTranscriptionService wires the pipeline and creates its working
// directories.
func NewTranscriptionService(
	store storage.BlobStore,
	repo repository.TranscriptRepository,
	run runner.Runner,
	cfg config.PipelineConfig,
	m *metrics.Pipeline,
	logger zerolog.Logger,
) (TranscriptionService, error) {
	for _, dir := range []string{cfg.WorkDir, cfg.LockDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &transcriptionService{
		store:   store,
		repo:    repo,
		runner:  run,
		tools:   runner.NewTools(cfg),
		workDir: cfg.WorkDir,
		guard:   newInflight(cfg.LockDir),
		metrics: m,
		tracer:  otel.Tracer("soundblast/internal/service"),
		log:     logger.With().Str("component", "transcription").Logger(),
	}, nil
}

func (s *transcriptionService) Transcribe(ctx context.Context, id string) (*model.Transcript, error) {
	ctx, span := s.tracer.Start(ctx, "transcription.Transcribe", trace.WithAttributes(attribute.String("file.id", id)))
	defer span.End()

	t, outcome, err := s.transcribe(ctx, id)
	if err != nil {
		s.metrics.Transcription(metrics.OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log := logging.Ctx(ctx, s.log)
		log.Error().Err(err).Str("file_id", id).Str("kind", apperr.KindOf(err).String()).Msg("transcription failed")
		return nil, err
	}

	s.metrics.Transcription(outcome)
	span.SetAttributes(attribute.String("transcription.outcome", outcome))
	log := logging.Ctx(ctx, s.log)
	log.Info().Str("file_id", id).Str("outcome", outcome).Int("segments", len(t.Segments)).Msg("transcription done")
	return t, nil
}

func (s *transcriptionService) transcribe(ctx context.Context, id string) (*model.Transcript, string, error) {
	var file *model.StoredFile
	if err := s.stage(ctx, StageResolve, func(ctx context.Context) (err error) {
		file, err = s.resolve(ctx, id)
		return err
	}); err != nil {
		return nil, "", err
	}

	cached, err := s.cached(ctx, file.ID)
	if err != nil {
		return nil, "", err
	}
	if cached != nil {
		s.metrics.CacheLookup(true)
		return cached, metrics.OutcomeCached, nil
	}

	// A miss is only recorded by the lookup under the guard, which decides
	// whether the pipeline runs.
	var fresh bool
	t, leader, err := s.guard.Do(ctx, file.ID, func(ctx context.Context) (*model.Transcript, error) {
		// Another process may have finished while we waited for the lock.
		cached, err := s.cached(ctx, file.ID)
		if err != nil {
			return nil, err
		}
		s.metrics.CacheLookup(cached != nil)
		if cached != nil {
			return cached, nil
		}
		fresh = true
		return s.produce(ctx, file)
	})
	if err != nil {
		return nil, "", err
	}

	switch {
	case !leader:
		return t, metrics.OutcomeShared, nil
	case fresh:
		return t, metrics.OutcomeCreated, nil
	default:
		return t, metrics.OutcomeCached, nil
	}
}

// produce runs fetch through persist. Every scratch file it creates is gone
// when it returns.
func (s *transcriptionService) produce(ctx context.Context, file *model.StoredFile) (*model.Transcript, error) {
	if err := validScratchName(file.ID); err != nil {
		return nil, err
	}

	done := s.metrics.RunStarted()
	defer done()

	scratch := newScratchFiles(s.workDir, file.ID, s.tools, logging.Ctx(ctx, s.log).With().Str("file_id", file.ID).Logger())
	defer scratch.cleanup()

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{StageFetch, func(ctx context.Context) error { return s.fetch(ctx, file, scratch) }},
		{StageNormalize, func(ctx context.Context) error { return s.normalize(ctx, scratch) }},
		{StageRecognize, func(ctx context.Context) error { return s.recognize(ctx, scratch) }},
	}
	for _, step := range steps {
		if err := s.stage(ctx, step.name, step.fn); err != nil {
			return nil, err
		}
	}

	var t *model.Transcript
	if err := s.stage(ctx, StageParse, func(context.Context) (err error) {
		t, err = s.parse(scratch)
		return err
	}); err != nil {
		return nil, err
	}

	t.FileID = file.ID
	if err := s.stage(ctx, StagePersist, func(ctx context.Context) error { return s.persist(ctx, t) }); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *transcriptionService) resolve(ctx context.Context, id string) (*model.StoredFile, error) {
	file, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, withKind(apperr.KindStorage, "transcribe.resolve", err)
	}
	if file == nil {
		return nil, apperr.E(apperr.KindNotFound, "transcribe.resolve", fmt.Sprintf("file %s not found", id))
	}
	return file, nil
}

// cached returns the stored transcript for fileID, or nil on a miss.
func (s *transcriptionService) cached(ctx context.Context, fileID string) (*model.Transcript, error) {
	var t *model.Transcript
	err := s.stage(ctx, StageCache, func(ctx context.Context) (err error) {
		t, err = s.repo.FindByFileID(ctx, fileID)
		return err
	})
	if err != nil {
		return nil, withKind(apperr.KindStorage, "transcribe.cache", err)
	}
	return t, nil
}

func (s *transcriptionService) fetch(ctx context.Context, file *model.StoredFile, scratch *scratchFiles) error {
	if err := s.store.DownloadToPath(ctx, file.ID, scratch.source); err != nil {
		return withKind(apperr.KindStorage, "transcribe.fetch", err)
	}
	return nil
}

// normalize converts the fetched blob to wav and always removes the blob.
func (s *transcriptionService) normalize(ctx context.Context, scratch *scratchFiles) error {
	cmd := s.tools.Normalize(scratch.source, scratch.audio)
	res, runErr := s.runner.Run(ctx, cmd)

	rmErr := scratch.remove(scratch.source)
	if err := s.toolError("transcribe.normalize", cmd.Program, res, runErr); err != nil {
		if rmErr != nil {
			scratch.log.Warn().Err(rmErr).Msg("cannot remove fetched file")
		}
		return err
	}
	return rmErr
}

// recognize runs speech recognition and removes the wav once it succeeds.
func (s *transcriptionService) recognize(ctx context.Context, scratch *scratchFiles) error {
	cmd := s.tools.Recognize(scratch.audio, s.workDir)
	res, err := s.runner.Run(ctx, cmd)
	if err := s.toolError("transcribe.recognize", cmd.Program, res, err); err != nil {
		return err
	}
	return scratch.remove(scratch.audio)
}

// parse decodes the recognizer output and always removes it.
func (s *transcriptionService) parse(scratch *scratchFiles) (*model.Transcript, error) {
	data, readErr := os.ReadFile(scratch.result)
	rmErr := scratch.remove(scratch.result)

	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return nil, apperr.Wrapf(apperr.KindMalformedToolOutput, "transcribe.parse", "recognizer produced no result file", readErr)
		}
		return nil, apperr.Wrapf(apperr.KindIO, "transcribe.parse", "cannot read recognizer output", readErr)
	}

	t, err := ParseRecognizerOutput(data)
	if err != nil {
		return nil, err
	}
	if rmErr != nil {
		return nil, rmErr
	}
	return t, nil
}

func (s *transcriptionService) persist(ctx context.Context, t *model.Transcript) error {
	if _, err := s.repo.Insert(ctx, t); err != nil {
		return withKind(apperr.KindStorage, "transcribe.persist", err)
	}
	return nil
}

// toolError turns a runner outcome into the pipeline error, if any.
func (s *transcriptionService) toolError(op, program string, res runner.ExitResult, err error) error {
	if err != nil {
		s.metrics.ToolFailure(program)
		return err
	}
	if res.Success {
		return nil
	}
	s.metrics.ToolFailure(program)
	return &apperr.Error{
		Kind:       apperr.KindToolFailure,
		Op:         op,
		Msg:        fmt.Sprintf("%s exited with status %d", program, res.ExitCode),
		Diagnostic: res.Diagnostic(),
	}
}

// stage runs fn inside a span and records its duration.
func (s *transcriptionService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "transcription."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveStage(name, elapsed)

	log := logging.Ctx(ctx, s.log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug().Err(err).Str("stage", name).Dur("duration", elapsed).Msg("stage failed")
		return err
	}
	log.Debug().Str("stage", name).Dur("duration", elapsed).Msg("stage complete")
	return nil
}

// recognizerOutput mirrors the JSON written by whisper_timestamped. Pointers
// distinguish absent keys from zero values.
type recognizerOutput struct {
	Text     *string          `json:"text"`
	Segments *[]model.Segment `json:"segments"`
}

// ParseRecognizerOutput decodes recognizer JSON into a Transcript without a
// file id. Missing text or segments make the output malformed.
func ParseRecognizerOutput(data []byte) (*model.Transcript, error) {
	var out recognizerOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperr.Wrapf(apperr.KindMalformedToolOutput, "transcribe.parse", "recognizer output is not valid json", err)
	}
	if out.Text == nil {
		return nil, apperr.E(apperr.KindMalformedToolOutput, "transcribe.parse", "recognizer output has no text")
	}
	if out.Segments == nil {
		return nil, apperr.E(apperr.KindMalformedToolOutput, "transcribe.parse", "recognizer output has no segments")
	}
	return &model.Transcript{Text: *out.Text, Segments: *out.Segments}, nil
}

// withKind leaves classified errors alone and wraps anything else as kind.
func withKind(kind apperr.Kind, op string, err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Wrap(kind, op, err)
}
