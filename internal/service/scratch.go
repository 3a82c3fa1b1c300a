package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"soundblast/internal/apperr"
	"soundblast/internal/runner"
)

// scratchFiles tracks the on-disk intermediates of one pipeline run. Paths are
// derived from the file id so distinct files never collide.
type scratchFiles struct {
	source string // fetched blob
	audio  string // normalized wav
	result string // recognizer output
	log    zerolog.Logger
}

func newScratchFiles(workDir, fileID string, tools runner.Tools, log zerolog.Logger) *scratchFiles {
	source := filepath.Join(workDir, fileID)
	audio := source + ".wav"
	return &scratchFiles{
		source: source,
		audio:  audio,
		result: tools.ResultPath(audio, workDir),
		log:    log,
	}
}

func (s *scratchFiles) paths() []string {
	return []string{s.source, s.audio, s.result}
}

// remove deletes path. A file that is already gone is not an error.
func (s *scratchFiles) remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrapf(apperr.KindIO, "scratch.remove", fmt.Sprintf("cannot remove %s", path), err)
	}
	return nil
}

// cleanup removes whatever the run left behind. Failures are logged only.
func (s *scratchFiles) cleanup() {
	for _, p := range s.paths() {
		if err := s.remove(p); err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("scratch cleanup failed")
		}
	}
}

// validScratchName rejects ids that would escape the working directory.
func validScratchName(id string) error {
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id {
		return apperr.E(apperr.KindInvalidIdentifier, "scratch.path", fmt.Sprintf("file id %q cannot name a scratch file", id))
	}
	return nil
}
