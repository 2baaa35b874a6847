package upload

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_PathTraversal(t *testing.T) {
	got := Sanitize("../../etc/passwd")

	assert.NotContains(t, got, "/")
	assert.NotContains(t, got, `\`)
	assert.NotContains(t, got, "..")
	assert.Equal(t, "etcpasswd", got)
}

func TestSanitize_SpecialCharacters(t *testing.T) {
	got := Sanitize(`exam<1>:"answers"|v?2*.pdf`)

	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
	assert.NotContains(t, got, ":")
	assert.NotContains(t, got, `"`)
	assert.NotContains(t, got, "|")
	assert.NotContains(t, got, "?")
	assert.NotContains(t, got, "*")
	assert.Equal(t, `exam_1___answers__v_2_.pdf`, got)
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"../../etc/passwd",
		"notes.pdf",
		"a/b\\c.txt",
		`exam<>:"|?*.docx`,
		"....",
		"...",
		"./.",
		".",
		"",
		"normal file name.pdf",
		strings.Repeat("x", 300) + ".pdf",
		"..hidden",
		"tr..icky../..name..",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "Sanitize must be idempotent for %q", in)
		assert.NotContains(t, once, "..", "no dot-dot may survive for %q", in)
	}
}

func TestSanitize_Truncation(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"
	got := Sanitize(long)

	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, strings.HasSuffix(got, ".pdf"), "extension must be preserved")
	assert.Equal(t, 255, len(got))
}

func TestSanitize_Fallback(t *testing.T) {
	assert.Equal(t, "file", Sanitize(""))
	assert.Equal(t, "file", Sanitize("."))
	assert.Equal(t, "file", Sanitize("...."))
	assert.Equal(t, "file", Sanitize("/\\"))
	assert.Equal(t, "file", Sanitize("./."))
}

func TestSanitize_PlainNameUntouched(t *testing.T) {
	assert.Equal(t, "calculus_week3.pdf", Sanitize("calculus_week3.pdf"))
	assert.Equal(t, "past paper 2022.docx", Sanitize("past paper 2022.docx"))
}

func TestGenerateSecureName_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+_[0-9a-z]{13}\.pdf$`)

	name := GenerateSecureName("My Notes (final).PDF")
	assert.Regexp(t, pattern, name)
}

func TestGenerateSecureName_NoExtension(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+_[0-9a-z]{13}$`)

	name := GenerateSecureName("README")
	assert.Regexp(t, pattern, name)
}

func TestGenerateSecureName_StripsTraversal(t *testing.T) {
	name := GenerateSecureName("../../evil/../name.txt")

	assert.NotContains(t, name, "/")
	assert.NotContains(t, name, "..")
	assert.True(t, strings.HasSuffix(name, ".txt"))
}

func TestGenerateSecureName_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		name := GenerateSecureName("notes.pdf")
		require.False(t, seen[name], "storage keys must not collide: %s", name)
		seen[name] = true
	}
}
