package util

import (
	"regexp"
	"strings"
	"testing"
)

func TestSafeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"/absolute/path/clip.wav", "clip.wav"},
		{"spaces and (things).jpg", "spaces_and__things_.jpg"},
		{"", "upload"},
		{"....", "upload"},
	}

	for _, tt := range tests {
		if got := SafeFilename(tt.in); got != tt.want {
			t.Errorf("SafeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUploadName(t *testing.T) {
	t.Parallel()

	got := UploadName("stt", "my clip.mp3")

	re := regexp.MustCompile(`^stt_\d{14}_my_clip\.mp3$`)
	if !re.MatchString(got) {
		t.Errorf("UploadName() = %q, want match for %v", got, re)
	}

	if strings.ContainsAny(got, "/\\") {
		t.Errorf("UploadName() contains path separators: %q", got)
	}
}
