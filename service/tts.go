package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"toolbox/web-api/config"
	"toolbox/web-api/model"

	"go.uber.org/zap"
)

var ErrTextTooLong = errors.New("text too long")

// VoiceConfig describes one synthesis option. TLD selects the
// regional accent of the upstream engine.
type VoiceConfig struct {
	Key     string `json:"key"`
	Lang    string `json:"lang"`
	TLD     string `json:"-"`
	Name    string `json:"name"`
	Premium bool   `json:"premium"`
}

const DefaultVoice = "en"

// Closed voice set. Everything except the default accent is a paid
// feature.
var voiceTable = map[string]VoiceConfig{
	"en":    {Key: "en", Lang: "en", TLD: "com", Name: "English (US) - Female"},
	"en-uk": {Key: "en-uk", Lang: "en", TLD: "co.uk", Name: "English (UK) - Male", Premium: true},
	"en-au": {Key: "en-au", Lang: "en", TLD: "com.au", Name: "English (AU) - Female", Premium: true},
	"en-in": {Key: "en-in", Lang: "en", TLD: "co.in", Name: "English (IN) - Female", Premium: true},
}

// Voices lists all synthesis options in a stable order
func Voices() []VoiceConfig {
	out := make([]VoiceConfig, 0, len(voiceTable))
	for _, v := range voiceTable {
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ResolveVoice maps a requested voice key and the account role to the
// voice that will actually be used. Unknown keys fall back to the
// default; premium voices silently downgrade for non paid accounts
// with downgraded=true so the handler can surface a warning.
func ResolveVoice(requested, role string) (v VoiceConfig, downgraded bool) {
	v, ok := voiceTable[requested]
	if !ok {
		return voiceTable[DefaultVoice], false
	}

	if v.Premium && role != model.RolePaid {
		return voiceTable[DefaultVoice], true
	}

	return v, false
}

// Synthesizer turns text into audio bytes using one voice
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice VoiceConfig) ([]byte, error)
}

type TTSService struct {
	cfg   *config.Config
	synth Synthesizer
}

func NewTTSService(cfg *config.Config, synth Synthesizer) *TTSService {
	return &TTSService{
		cfg:   cfg,
		synth: synth,
	}
}

// ArtifactName derives the output file name from the synthesis time
// and a short hash of the input, so identical requests are easy to
// spot when auditing the artifact directory
func ArtifactName(text string, at time.Time) string {
	sum := md5.Sum([]byte(text))
	return fmt.Sprintf("tts_%v_%v.mp3", at.Format("20060102150405"), hex.EncodeToString(sum[:])[:12])
}

// Synthesize runs the full pipeline: length check, role aware voice
// resolution, synthesis, artifact write and the retention sweep.
// Returns the artifact file name relative to the audio directory.
func (s *TTSService) Synthesize(ctx context.Context, text, requestedVoice, role string) (name string, voice VoiceConfig, downgraded bool, err error) {
	text = strings.TrimSpace(text)

	if len(text) > s.cfg.TTS.MaxChars {
		return "", voice, false, ErrTextTooLong
	}

	voice, downgraded = ResolveVoice(requestedVoice, role)

	audio, err := s.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return "", voice, downgraded, fmt.Errorf("synthesis failed, %w", err)
	}

	name = ArtifactName(text, time.Now())
	if err := os.WriteFile(filepath.Join(s.cfg.Paths.Audio, name), audio, 0o644); err != nil {
		return "", voice, downgraded, fmt.Errorf("failed to write audio file, %w", err)
	}

	s.RetentionSweep()

	return name, voice, downgraded, nil
}

// RetentionSweep caps the artifact directory at the configured count,
// deleting the oldest files by modification time. Everything here is
// best effort: a concurrent sweep may have removed a file already and
// that's fine.
func (s *TTSService) RetentionSweep() {
	entries, err := os.ReadDir(s.cfg.Paths.Audio)
	if err != nil {
		zap.L().Warn("Retention sweep can't list audio dir", zap.Error(err))
		return
	}

	type artifact struct {
		path  string
		mtime time.Time
	}

	var files []artifact
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "tts_") || !strings.HasSuffix(e.Name(), ".mp3") {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		files = append(files, artifact{
			path:  filepath.Join(s.cfg.Paths.Audio, e.Name()),
			mtime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].mtime.After(files[j].mtime) })

	for _, f := range files[min(s.cfg.TTS.KeepCount, len(files)):] {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			zap.L().Debug("Retention sweep couldn't remove artifact", zap.String("path", f.path), zap.Error(err))
		}
	}
}
