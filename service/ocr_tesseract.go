package service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// TesseractRunner shells out to the tesseract CLI, printing the
// recognized text to stdout
type TesseractRunner struct {
	Path string
	Lang string
}

func NewTesseractRunner(path string) *TesseractRunner {
	if path == "" {
		path = "tesseract"
	}
	return &TesseractRunner{
		Path: path,
		Lang: "eng",
	}
}

func (t *TesseractRunner) Run(ctx context.Context, imagePath string) (string, error) {
	if _, err := exec.LookPath(t.Path); err != nil {
		return "", ErrOCRNotInstalled
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Path, imagePath, "stdout", "-l", t.Lang)

	zap.L().Debug("Running tesseract command", zap.String("cmd", cmd.String()))

	var stdOut, stdErr bytes.Buffer
	cmd.Stdout = &stdOut
	cmd.Stderr = &stdErr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed, %w (%s)", err, stdErr.String())
	}

	return stdOut.String(), nil
}
