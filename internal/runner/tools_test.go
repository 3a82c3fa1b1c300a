package runner

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"soundblast/internal/apperr"
	"soundblast/internal/config"
)

func TestNormalizeCommand(t *testing.T) {
	tools := NewTools(config.PipelineConfig{FFmpegBin: "ffmpeg", WhisperBin: "whisper_timestamped"})

	cmd := tools.Normalize("/scratch/abc", "/scratch/abc.wav")
	assert.Equal(t, "ffmpeg", cmd.Program)
	assert.Equal(t, Capture, cmd.Stderr)
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", "/scratch/abc", "-vn", "-ar", "16000", "-ac", "1", "-acodec", "pcm_s16le",
		"/scratch/abc.wav",
	}, cmd.Args)
}

func TestRecognizeCommand(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tools := Tools{Whisper: "whisper_timestamped"}
		cmd := tools.Recognize("/scratch/abc.wav", "/scratch")
		assert.Equal(t, "whisper_timestamped", cmd.Program)
		assert.Equal(t, Inherit, cmd.Stdout)
		assert.Equal(t, Inherit, cmd.Stderr)
		assert.Equal(t, []string{"--output_dir", "/scratch", "--output_format", "json", "/scratch/abc.wav"}, cmd.Args)
	})

	t.Run("model and language", func(t *testing.T) {
		tools := Tools{Whisper: "whisper_timestamped", Model: "small", Language: "en"}
		cmd := tools.Recognize("/scratch/abc.wav", "/scratch")
		assert.Equal(t, []string{
			"--output_dir", "/scratch", "--output_format", "json",
			"--model", "small", "--language", "en",
			"/scratch/abc.wav",
		}, cmd.Args)
	})
}

func TestResultPath(t *testing.T) {
	got := Tools{}.ResultPath("/scratch/abc.wav", "/scratch")
	assert.Equal(t, filepath.Join("/scratch", "abc.wav.words.json"), got)
}

func TestPreflight(t *testing.T) {
	prev := lookPath
	t.Cleanup(func() { lookPath = prev })

	lookPath = func(file string) (string, error) {
		if file == "ffmpeg" {
			return "/usr/bin/ffmpeg", nil
		}
		return "", exec.ErrNotFound
	}

	tools := Tools{FFmpeg: "ffmpeg", Whisper: "whisper_timestamped"}
	err := tools.Preflight()
	assert.ErrorIs(t, err, apperr.ErrProcessSpawn)
	assert.Contains(t, err.Error(), "whisper_timestamped not found")

	lookPath = func(file string) (string, error) { return "/usr/bin/" + file, nil }
	assert.NoError(t, tools.Preflight())
}
