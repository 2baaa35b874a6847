package upload

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfHeader = []byte{0x25, 0x50, 0x44, 0x46, 0x0A} // "%PDF\n"

func pdfOnlyConfig() Config {
	return Config{
		MaxSizeBytes:      1024,
		AllowedMimeTypes:  []string{MimePDF},
		AllowedExtensions: []string{".pdf"},
		MaxFilenameLength: 255,
	}
}

func TestValidate_PDFPasses(t *testing.T) {
	res := Validate("notes.pdf", MimePDF, pdfHeader, pdfOnlyConfig())

	require.True(t, res.Valid, res.Message)
	assert.Equal(t, MimePDF, res.DetectedMime)
	assert.Empty(t, res.Message)
}

func TestValidate_ContentMismatch(t *testing.T) {
	cfg := Config{
		MaxSizeBytes:      1024,
		AllowedMimeTypes:  []string{MimePNG},
		AllowedExtensions: []string{".png"},
		MaxFilenameLength: 255,
	}

	// PDF bytes declared as PNG: the recognized type is not allowed.
	res := Validate("diagram.png", MimePNG, pdfHeader, cfg)

	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "does not match declared type")
	assert.Contains(t, res.Message, MimePDF)
	assert.Contains(t, res.Message, MimePNG)
}

func TestValidate_ExecutableRejected(t *testing.T) {
	cfg := pdfOnlyConfig()
	content := append([]byte{0x4D, 0x5A}, []byte("fake pdf body")...)

	res := Validate("report.pdf", MimePDF, content, cfg)

	require.False(t, res.Valid)
	assert.Equal(t, "Executable files are not allowed", res.Message)
}

func TestValidate_SizeBoundary(t *testing.T) {
	cfg := Config{
		MaxSizeBytes:      int64(len(pdfHeader)) + 3,
		AllowedMimeTypes:  []string{MimePDF},
		AllowedExtensions: []string{".pdf"},
		MaxFilenameLength: 255,
	}

	exact := append(append([]byte{}, pdfHeader...), []byte("abc")...)
	require.Len(t, exact, int(cfg.MaxSizeBytes))
	res := Validate("exact.pdf", MimePDF, exact, cfg)
	assert.True(t, res.Valid, "a file of exactly MaxSizeBytes must pass")

	over := append(append([]byte{}, exact...), 'x')
	res = Validate("over.pdf", MimePDF, over, cfg)
	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "exceeds maximum allowed size")
}

func TestValidate_SizeMessagePrecision(t *testing.T) {
	cfg := Config{
		MaxSizeBytes:      1024 * 1024, // 1 MB
		AllowedMimeTypes:  []string{MimePDF},
		AllowedExtensions: []string{".pdf"},
		MaxFilenameLength: 255,
	}

	content := make([]byte, cfg.MaxSizeBytes+512*1024) // 1.5 MB
	copy(content, pdfHeader)

	res := Validate("big.pdf", MimePDF, content, cfg)
	require.False(t, res.Valid)
	assert.Equal(t, "File size 1.50 MB exceeds maximum allowed size 1.00 MB", res.Message)
}

func TestValidate_FilenameTooLong(t *testing.T) {
	cfg := pdfOnlyConfig()
	cfg.MaxFilenameLength = 20

	res := Validate(strings.Repeat("a", 30)+".pdf", MimePDF, pdfHeader, cfg)

	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "maximum length of 20")
}

func TestValidate_ExtensionNotAllowed(t *testing.T) {
	res := Validate("notes.exe", MimePDF, pdfHeader, pdfOnlyConfig())

	require.False(t, res.Valid)
	assert.Contains(t, res.Message, `".exe"`)
}

func TestValidate_ExtensionCaseInsensitive(t *testing.T) {
	res := Validate("NOTES.PDF", MimePDF, pdfHeader, pdfOnlyConfig())
	assert.True(t, res.Valid, res.Message)
}

func TestValidate_DeclaredTypeNotAllowed(t *testing.T) {
	res := Validate("notes.pdf", "application/x-sh", pdfHeader, pdfOnlyConfig())

	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "is not allowed")
	assert.Contains(t, res.Message, "application/x-sh")
}

func TestValidate_SuspiciousFilename(t *testing.T) {
	for _, name := range []string{"Virus_notes.pdf", "my-MALWARE.pdf", "virus.pdf"} {
		res := Validate(name, MimePDF, pdfHeader, pdfOnlyConfig())
		require.False(t, res.Valid, name)
		assert.Equal(t, "Suspicious filename detected", res.Message)
	}
}

func TestValidate_UnknownContentFallsBackToDeclared(t *testing.T) {
	cfg := Config{
		MaxSizeBytes:      1024,
		AllowedMimeTypes:  []string{MimeText},
		AllowedExtensions: []string{".txt"},
		MaxFilenameLength: 255,
	}

	// Plain ASCII with no BOM matches no signature.
	res := Validate("summary.txt", MimeText, []byte("chapter one"), cfg)

	require.True(t, res.Valid, res.Message)
	assert.Equal(t, MimeText, res.DetectedMime)
}

func TestValidate_ZipBucketAcceptsOOXML(t *testing.T) {
	cfg := Config{
		MaxSizeBytes:      1024,
		AllowedMimeTypes:  []string{MimeDOCX},
		AllowedExtensions: []string{".docx"},
		MaxFilenameLength: 255,
	}

	zipHeader := []byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}
	res := Validate("thesis.docx", MimeDOCX, zipHeader, cfg)

	require.True(t, res.Valid, res.Message)
	assert.Equal(t, MimeDOCX, res.DetectedMime, "the detected type refines to the declared OOXML type")
}

func TestValidate_ZipBucketRejectedWhenNoContainerTypeAllowed(t *testing.T) {
	cfg := pdfOnlyConfig()
	zipHeader := []byte{0x50, 0x4B, 0x03, 0x04}

	res := Validate("archive.pdf", MimePDF, zipHeader, cfg)

	require.False(t, res.Valid)
	assert.Contains(t, res.Message, MimeZIP)
	assert.Contains(t, res.Message, MimePDF)
}

func TestValidate_ChecksShortCircuit(t *testing.T) {
	cfg := pdfOnlyConfig()
	cfg.MaxSizeBytes = 2

	// Oversized AND suspicious AND executable: the size message wins.
	content := []byte{0x4D, 0x5A, 0x00}
	res := Validate("virus.exe", MimePDF, content, cfg)

	require.False(t, res.Valid)
	assert.Contains(t, res.Message, "exceeds maximum allowed size")
}

func TestValidate_Deterministic(t *testing.T) {
	cfg := pdfOnlyConfig()

	first := Validate("notes.pdf", MimePDF, pdfHeader, cfg)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Validate("notes.pdf", MimePDF, pdfHeader, cfg))
	}
}

func TestSniffContentType(t *testing.T) {
	webp := append([]byte("RIFF"), 0x10, 0x20, 0x30, 0x40)
	webp = append(webp, []byte("WEBP")...)

	cases := []struct {
		name    string
		content []byte
		want    string
	}{
		{"pdf", pdfHeader, MimePDF},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, MimeJPEG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, MimePNG},
		{"gif87a", []byte("GIF87a...."), MimeGIF},
		{"gif89a", []byte("GIF89a...."), MimeGIF},
		{"webp", webp, MimeWEBP},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, MimeText},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0}, MimeText},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h'}, MimeText},
		{"zip local header", []byte{0x50, 0x4B, 0x03, 0x04}, MimeZIP},
		{"zip empty archive", []byte{0x50, 0x4B, 0x05, 0x06}, MimeZIP},
		{"zip spanned", []byte{0x50, 0x4B, 0x07, 0x08}, MimeZIP},
		{"unknown", []byte("hello world"), ""},
		{"riff but not webp", append([]byte("RIFF"), 0, 0, 0, 0, 'W', 'A', 'V', 'E'), ""},
		{"empty", nil, ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, sniffContentType(tc.content), tc.name)
	}
}

func TestMaterialConfig(t *testing.T) {
	require.NotZero(t, MaterialConfig.MaxSizeBytes)

	content := make([]byte, 64)
	copy(content, pdfHeader)
	res := Validate("past_paper_2023.pdf", MimePDF, content, MaterialConfig)
	assert.True(t, res.Valid, res.Message)

	res = Validate("malware.pdf", MimePDF, content, MaterialConfig)
	assert.False(t, res.Valid)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Details: "File extension \".exe\" is not allowed"}
	assert.Equal(t, "File extension \".exe\" is not allowed", err.Error())

	wrapped := fmt.Errorf("upload rejected: %w", err)
	var vErr *ValidationError
	require.ErrorAs(t, wrapped, &vErr)
	assert.Equal(t, err.Details, vErr.Details)
}

func TestSignatureMatch_ShortContent(t *testing.T) {
	// Shorter than any pattern must not panic or match.
	assert.Equal(t, "", sniffContentType([]byte{0x25}))
	assert.Equal(t, "", sniffContentType([]byte{}))

	var b bytes.Buffer
	b.Write([]byte{0xFF})
	assert.Equal(t, "", sniffContentType(b.Bytes()))
}
