package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// FFmpegTranscoder shells out to ffmpeg to decode whatever container
// the client uploaded and re-encode it as 16kHz mono PCM WAV, the
// canonical format for recognition
type FFmpegTranscoder struct {
	Path string
}

func NewFFmpegTranscoder(path string) *FFmpegTranscoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpegTranscoder{Path: path}
}

func (t *FFmpegTranscoder) ToWAV(ctx context.Context, src, dst string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	args := []string{
		"-i", src,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-loglevel", "error",
		"-y",
		dst,
	}

	cmd := exec.CommandContext(ctx, t.Path, args...)

	zap.L().Debug("Running FFmpeg command", zap.String("cmd", cmd.String()))

	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed, %w (%s)", err, stdErr.String())
	}

	return nil
}
