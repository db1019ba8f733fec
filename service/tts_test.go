package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"toolbox/web-api/config"
	"toolbox/web-api/model"

	"github.com/stretchr/testify/require"
)

type stubSynth struct {
	audio    []byte
	err      error
	gotText  string
	gotVoice VoiceConfig
}

func (s *stubSynth) Synthesize(_ context.Context, text string, voice VoiceConfig) ([]byte, error) {
	s.gotText = text
	s.gotVoice = voice
	return s.audio, s.err
}

func newTTSTestService(t *testing.T, synth Synthesizer) *TTSService {
	t.Helper()

	cfg := &config.Config{}
	cfg.Paths.Audio = t.TempDir()
	cfg.TTS.KeepCount = 20
	cfg.TTS.MaxChars = 5000

	return NewTTSService(cfg, synth)
}

func TestResolveVoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		requested  string
		role       string
		wantKey    string
		downgraded bool
	}{
		{"en", model.RoleFree, "en", false},
		{"en", model.RolePaid, "en", false},
		{"en-uk", model.RolePaid, "en-uk", false},
		{"en-uk", model.RoleFree, "en", true},
		{"en-au", model.RoleFree, "en", true},
		{"en-in", model.RoleFree, "en", true},
		{"klingon", model.RoleFree, "en", false},
		{"klingon", model.RolePaid, "en", false},
		{"", model.RolePaid, "en", false},
	}

	for _, tt := range tests {
		v, downgraded := ResolveVoice(tt.requested, tt.role)
		if v.Key != tt.wantKey || downgraded != tt.downgraded {
			t.Errorf("ResolveVoice(%q, %q) = (%q, %v), want (%q, %v)",
				tt.requested, tt.role, v.Key, downgraded, tt.wantKey, tt.downgraded)
		}
	}
}

func TestVoicesSorted(t *testing.T) {
	t.Parallel()

	voices := Voices()
	require.Len(t, voices, 4)

	for i := 1; i < len(voices); i++ {
		require.Less(t, voices[i-1].Key, voices[i].Key)
	}
}

func TestArtifactName(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	name := ArtifactName("hello world", at)

	require.Regexp(t, regexp.MustCompile(`^tts_\d{14}_[0-9a-f]{12}\.mp3$`), name)
	require.True(t, strings.HasPrefix(name, "tts_20260314150926_"))

	// Same text and time, same name
	require.Equal(t, name, ArtifactName("hello world", at))
	require.NotEqual(t, name, ArtifactName("other text", at))
}

func TestSynthesizeWritesArtifact(t *testing.T) {
	synth := &stubSynth{audio: []byte("fake-mp3-bytes")}
	svc := newTTSTestService(t, synth)

	name, voice, downgraded, err := svc.Synthesize(context.Background(), "  hello there  ", "en", model.RoleFree)
	require.NoError(t, err)
	require.False(t, downgraded)
	require.Equal(t, "en", voice.Key)
	require.Equal(t, "hello there", synth.gotText, "text must be trimmed before synthesis")

	data, err := os.ReadFile(filepath.Join(svc.cfg.Paths.Audio, name))
	require.NoError(t, err)
	require.Equal(t, synth.audio, data)
}

func TestSynthesizeTextTooLong(t *testing.T) {
	svc := newTTSTestService(t, &stubSynth{audio: []byte("x")})
	svc.cfg.TTS.MaxChars = 10

	_, _, _, err := svc.Synthesize(context.Background(), strings.Repeat("a", 11), "en", model.RoleFree)
	require.ErrorIs(t, err, ErrTextTooLong)

	// Surrounding whitespace doesn't count against the limit
	_, _, _, err = svc.Synthesize(context.Background(), "   "+strings.Repeat("a", 10)+"   ", "en", model.RoleFree)
	require.NoError(t, err)
}

func TestSynthesizePremiumDowngrade(t *testing.T) {
	synth := &stubSynth{audio: []byte("x")}
	svc := newTTSTestService(t, synth)

	_, voice, downgraded, err := svc.Synthesize(context.Background(), "hello", "en-uk", model.RoleFree)
	require.NoError(t, err)
	require.True(t, downgraded)
	require.Equal(t, "en", voice.Key)
	require.Equal(t, "en", synth.gotVoice.Key, "synthesis must run with the downgraded voice")
}

func TestRetentionSweep(t *testing.T) {
	svc := newTTSTestService(t, &stubSynth{})
	svc.cfg.TTS.KeepCount = 20

	base := time.Now().Add(-time.Hour)
	var names []string
	for i := range 25 {
		name := fmt.Sprintf("tts_2026010100%04d_%012x.mp3", i, i)
		path := filepath.Join(svc.cfg.Paths.Audio, name)
		require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
		require.NoError(t, os.Chtimes(path, base.Add(time.Duration(i)*time.Minute), base.Add(time.Duration(i)*time.Minute)))
		names = append(names, name)
	}

	// Unrelated files are never touched
	other := filepath.Join(svc.cfg.Paths.Audio, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(other, base, base))

	svc.RetentionSweep()

	for i, name := range names {
		_, err := os.Stat(filepath.Join(svc.cfg.Paths.Audio, name))
		if i < 5 {
			require.True(t, os.IsNotExist(err), "oldest artifact %v should be removed", name)
		} else {
			require.NoError(t, err, "newest artifact %v should survive", name)
		}
	}

	_, err := os.Stat(other)
	require.NoError(t, err)

	// A second sweep over the already trimmed directory is a no-op
	svc.RetentionSweep()

	entries, err := os.ReadDir(svc.cfg.Paths.Audio)
	require.NoError(t, err)
	require.Len(t, entries, 21)
}
