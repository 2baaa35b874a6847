package upload

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config describes one upload context: what may be stored and how large it
// may be. Extensions are lower-case and include the leading dot.
type Config struct {
	MaxSizeBytes      int64
	AllowedMimeTypes  []string
	AllowedExtensions []string
	MaxFilenameLength int
}

// MaterialConfig is the upload context for study materials: documents,
// slides, plain text, and scanned images up to 20 MB.
var MaterialConfig = Config{
	MaxSizeBytes: 20 * 1024 * 1024,
	AllowedMimeTypes: []string{
		MimePDF,
		MimeDOC,
		MimeDOCX,
		MimePPTX,
		MimeText,
		MimeJPEG,
		MimePNG,
		MimeGIF,
		MimeWEBP,
	},
	AllowedExtensions: []string{
		".pdf", ".doc", ".docx", ".pptx", ".txt", ".jpg", ".jpeg", ".png", ".gif", ".webp",
	},
	MaxFilenameLength: 255,
}

// Result is the outcome of validating one file. Message is set on failure;
// DetectedMime carries the content-recognized type, falling back to the
// declared type when no signature matched.
type Result struct {
	Valid        bool
	Message      string
	DetectedMime string
}

// ValidationError carries a validation failure through the service layer so
// handlers can render the fixed 400 contract.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return e.Details
}

// Validate runs the sequential checks against an in-memory file, stopping at
// the first failure. It is a pure function over its inputs and the fixed
// signature table: the same bytes and filename always produce the same
// result.
func Validate(filename, declaredMime string, content []byte, cfg Config) Result {
	size := int64(len(content))
	if size > cfg.MaxSizeBytes {
		return fail(fmt.Sprintf("File size %.2f MB exceeds maximum allowed size %.2f MB",
			toMB(size), toMB(cfg.MaxSizeBytes)))
	}

	if len(filename) > cfg.MaxFilenameLength {
		return fail(fmt.Sprintf("Filename exceeds maximum length of %d characters", cfg.MaxFilenameLength))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !containsString(cfg.AllowedExtensions, ext) {
		return fail(fmt.Sprintf("File extension %q is not allowed", ext))
	}

	if !containsString(cfg.AllowedMimeTypes, declaredMime) {
		return fail(fmt.Sprintf("File type %q is not allowed", declaredMime))
	}

	detected := sniffContentType(content)
	if detected != "" {
		if detected == MimeZIP {
			// The ZIP signatures form one coarse bucket: any allowed
			// ZIP-container type satisfies them.
			if !allowsZipContainer(cfg.AllowedMimeTypes) {
				return fail(mismatchMessage(detected, declaredMime))
			}
			if isZipContainerType(declaredMime) {
				detected = declaredMime
			}
		} else if !containsString(cfg.AllowedMimeTypes, detected) {
			return fail(mismatchMessage(detected, declaredMime))
		}
	}

	lowerName := strings.ToLower(filename)
	if strings.Contains(lowerName, "virus") || strings.Contains(lowerName, "malware") {
		return fail("Suspicious filename detected")
	}

	if len(content) >= 2 && content[0] == 0x4D && content[1] == 0x5A {
		return fail("Executable files are not allowed")
	}

	if detected == "" {
		detected = declaredMime
	}
	return Result{Valid: true, DetectedMime: detected}
}

func fail(message string) Result {
	return Result{Valid: false, Message: message}
}

func mismatchMessage(detected, declared string) string {
	return fmt.Sprintf("File content (%s) does not match declared type (%s)", detected, declared)
}

func toMB(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func allowsZipContainer(allowed []string) bool {
	for _, mime := range allowed {
		if isZipContainerType(mime) {
			return true
		}
	}
	return false
}
