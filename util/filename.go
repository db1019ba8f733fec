package util

import (
	"path/filepath"
	"strings"
	"time"
)

// SafeFilename strips any path components and characters that could
// escape the uploads directory from a client-provided file name.
func SafeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		return "upload"
	}

	return b.String()
}

// UploadName builds the transient upload name used for STT/OCR
// artifacts: <prefix>_<timestamp>_<original name>
func UploadName(prefix, original string) string {
	return prefix + "_" + time.Now().Format("20060102150405") + "_" + SafeFilename(original)
}
