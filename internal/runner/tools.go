package runner

import (
	"errors"
	"path/filepath"

	"soundblast/internal/config"
)

// resultSuffix is appended by whisper_timestamped to the input file name.
const resultSuffix = ".words.json"

// Tools builds the normalization and recognition commands.
type Tools struct {
	FFmpeg   string
	Whisper  string
	Model    string
	Language string
}

// NewTools reads the tool settings from cfg.
func NewTools(cfg config.PipelineConfig) Tools {
	return Tools{
		FFmpeg:   cfg.FFmpegBin,
		Whisper:  cfg.WhisperBin,
		Model:    cfg.WhisperModel,
		Language: cfg.WhisperLanguage,
	}
}

// Normalize converts input to 16 kHz mono signed 16-bit PCM. Stderr is
// captured for diagnostics.
func (t Tools) Normalize(input, output string) Command {
	return Command{
		Program: t.FFmpeg,
		Args: []string{
			"-hide_banner",
			"-loglevel", "error",
			"-y",
			"-i", input,
			"-vn",
			"-ar", "16000",
			"-ac", "1",
			"-acodec", "pcm_s16le",
			output,
		},
		Stdout: Discard,
		Stderr: Capture,
	}
}

// Recognize runs speech recognition on wav and writes JSON into outputDir.
// Progress output passes through to the host streams.
func (t Tools) Recognize(wav, outputDir string) Command {
	args := []string{"--output_dir", outputDir, "--output_format", "json"}
	if t.Model != "" {
		args = append(args, "--model", t.Model)
	}
	if t.Language != "" {
		args = append(args, "--language", t.Language)
	}
	args = append(args, wav)
	return Command{
		Program: t.Whisper,
		Args:    args,
		Stdout:  Inherit,
		Stderr:  Inherit,
	}
}

// ResultPath is where Recognize leaves its output for wav.
func (t Tools) ResultPath(wav, outputDir string) string {
	return filepath.Join(outputDir, filepath.Base(wav)+resultSuffix)
}

// Preflight checks that both tools resolve through PATH.
func (t Tools) Preflight() error {
	var errs []error
	for _, program := range []string{t.FFmpeg, t.Whisper} {
		if _, err := LookPath(program); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
