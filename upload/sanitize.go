package upload

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	maxSanitizedLength = 255
	fallbackName       = "file"
)

var specialCharReplacer = strings.NewReplacer(
	"<", "_",
	">", "_",
	":", "_",
	`"`, "_",
	"|", "_",
	"?", "_",
	"*", "_",
)

// Sanitize strips path traversal and separator characters from a filename,
// replaces the characters < > : " | ? * with underscores, and bounds the
// length to 255 bytes preserving the extension. An empty or "." result is
// replaced with a fixed fallback. Sanitize is idempotent.
func Sanitize(name string) string {
	// Separators go first so removing them cannot form a new ".." that the
	// dot-dot pass would miss.
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, `\`, "")

	for strings.Contains(name, "..") {
		name = strings.ReplaceAll(name, "..", "")
	}

	name = specialCharReplacer.Replace(name)

	if len(name) > maxSanitizedLength {
		ext := filepath.Ext(name)
		if len(ext) > maxSanitizedLength {
			ext = ext[:maxSanitizedLength]
		}
		base := strings.TrimSuffix(name, ext)
		name = base[:maxSanitizedLength-len(ext)] + ext
	}

	if name == "" || name == "." {
		return fallbackName
	}
	return name
}

// GenerateSecureName builds a collision-resistant storage key of the form
// {epoch-millis}_{random-base36}{ext}. The original filename never reaches
// the storage backend; callers keep it as metadata.
func GenerateSecureName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(Sanitize(originalName)))
	return fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), randomBase36(13), ext)
}

func randomBase36(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
