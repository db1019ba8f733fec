package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	// Register decoders for the image formats we accept
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"toolbox/web-api/config"

	"go.uber.org/zap"
)

const (
	// MsgNoTextFound is the fixed answer for an image without any
	// recognizable text. Not an error.
	MsgNoTextFound = "No text found in the image. Please try with a clearer image containing text."

	// MsgOCRNotInstalled is the fixed answer when the OCR engine
	// binary is missing from the host
	MsgOCRNotInstalled = "ERROR: Tesseract is not installed or not found in PATH. Please install Tesseract OCR."
)

var ErrOCRNotInstalled = errors.New("ocr engine not installed")

// OCRRunner invokes the text extraction engine over an image file
type OCRRunner interface {
	Run(ctx context.Context, imagePath string) (string, error)
}

type OCRService struct {
	cfg    *config.Config
	runner OCRRunner
}

func NewOCRService(cfg *config.Config, runner OCRRunner) *OCRService {
	return &OCRService{
		cfg:    cfg,
		runner: runner,
	}
}

// ExtractText runs OCR over a saved upload and always produces a user
// facing string: the recognized text, the fixed no-text message, or
// an error message with the cause. The upload is removed before
// returning no matter what.
func (s *OCRService) ExtractText(ctx context.Context, imagePath string) string {
	defer removeQuiet(imagePath)

	f, err := os.Open(imagePath)
	if err != nil {
		return fmt.Sprintf("ERROR: Could not process image: %v", err)
	}

	_, _, err = image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return fmt.Sprintf("ERROR: Could not process image: %v", err)
	}

	out, err := s.runner.Run(ctx, imagePath)
	if err != nil {
		if errors.Is(err, ErrOCRNotInstalled) {
			return MsgOCRNotInstalled
		}

		zap.L().Error("OCR failed", zap.Error(err))
		return fmt.Sprintf("ERROR: Could not process image: %v", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return MsgNoTextFound
	}

	return out
}
