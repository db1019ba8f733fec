package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"toolbox/web-api/config"

	"github.com/go-audio/wav"
	"go.uber.org/zap"
)

var (
	// ErrNoSpeech means the recognizer understood nothing. Recoverable
	// by retrying with clearer audio.
	ErrNoSpeech = errors.New("no speech recognized")

	// ErrConversion means the upload couldn't be transcoded to the
	// canonical format. Terminal for the request.
	ErrConversion = errors.New("could not convert audio")
)

// RequestError wraps a failure of the remote recognition service so
// handlers can surface the underlying cause
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("speech recognition service error: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Transcoder converts an arbitrary audio container into the canonical
// format the recognizer needs
type Transcoder interface {
	ToWAV(ctx context.Context, src, dst string) error
}

// Recognizer submits canonical audio and returns the transcript.
// Implementations return ErrNoSpeech or *RequestError for the two
// distinguished failure modes.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

type STTService struct {
	cfg        *config.Config
	transcoder Transcoder
	recognizer Recognizer
}

func NewSTTService(cfg *config.Config, t Transcoder, r Recognizer) *STTService {
	return &STTService{
		cfg:        cfg,
		transcoder: t,
		recognizer: r,
	}
}

// Leading window used to sample ambient noise, in seconds
const calibrationWindow = 0.5

// Transcribe runs the full pipeline over a saved upload: transcode to
// canonical WAV when needed, calibrate against ambient noise, then
// recognize. The upload and any transcoded intermediate are removed
// before returning, whatever the outcome.
func (s *STTService) Transcribe(ctx context.Context, uploadPath string) (string, error) {
	defer removeQuiet(uploadPath)

	wavPath := uploadPath
	if !strings.HasSuffix(strings.ToLower(uploadPath), ".wav") {
		wavPath = strings.TrimSuffix(uploadPath, ext(uploadPath)) + ".wav"

		if err := s.transcoder.ToWAV(ctx, uploadPath, wavPath); err != nil {
			zap.L().Error("Audio conversion failed", zap.Error(err))
			return "", ErrConversion
		}

		defer removeQuiet(wavPath)
	}

	// Ambient noise calibration over the leading window. If nothing in
	// the rest of the signal rises above the ambient level there's no
	// point in asking the recognizer.
	hasSpeech, err := calibrateAndGate(wavPath)
	if err != nil {
		zap.L().Warn("Ambient calibration failed, submitting anyway", zap.Error(err))
	} else if !hasSpeech {
		return "", ErrNoSpeech
	}

	return s.recognizer.Recognize(ctx, wavPath)
}

// calibrateAndGate measures the RMS energy of the leading window and
// reports whether any later frame exceeds the derived threshold
func calibrateAndGate(wavPath string) (bool, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return false, err
	}
	if buf == nil || buf.Format == nil || buf.Format.SampleRate == 0 || len(buf.Data) == 0 {
		return false, errors.New("empty audio")
	}

	frame := buf.Format.SampleRate / 10 // 100ms frames
	if frame == 0 {
		frame = 1
	}

	lead := int(float64(buf.Format.SampleRate) * calibrationWindow * float64(buf.Format.NumChannels))
	if lead >= len(buf.Data) {
		lead = len(buf.Data) / 2
	}

	ambient := rms(buf.Data[:max(lead, 1)])

	// Anything under the floor is treated as silence even when the
	// leading window is digitally quiet
	threshold := math.Max(ambient*1.5, 300)

	for start := lead; start < len(buf.Data); start += frame {
		end := min(start+frame, len(buf.Data))
		if rms(buf.Data[start:end]) > threshold {
			return true, nil
		}
	}

	return false, nil
}

func rms(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}

	return math.Sqrt(sum / float64(len(samples)))
}

func ext(p string) string {
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i:]
	}
	return ""
}

func removeQuiet(p string) {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		zap.L().Debug("Couldn't remove transient file", zap.String("path", p), zap.Error(err))
	}
}
