package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"crlf", "Jane Doe\r\nEngineer\r\n", "Jane Doe\nEngineer"},
		{"lone cr", "Jane Doe\rEngineer", "Jane Doe\nEngineer"},
		{"bom", "\uFEFFJane Doe", "Jane Doe"},
		{"nul bytes", "Ja\x00ne", "Jane"},
		{"trailing spaces", "Jane Doe   \nEngineer\t", "Jane Doe\nEngineer"},
		{"keeps interior spacing", "Skills    Go    SQL", "Skills    Go    SQL"},
		{"keeps indentation", "  • Built APIs", "  • Built APIs"},
		{"keeps blank lines", "A\n\n\n\nB", "A\n\n\n\nB"},
		{"invalid utf8", "Caf\xe9", "Caf\uFFFD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NormalizeText(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeText_Metadata(t *testing.T) {
	_, meta := NormalizeText("\uFEFFJane\x00\r\nDoe\r\n")
	assert.True(t, meta.StrippedBOM)
	assert.Equal(t, 1, meta.RemovedNULs)
	assert.Equal(t, 2, meta.CRLFLines)
	assert.Equal(t, 2, meta.Lines)
	assert.Equal(t, len("Jane\nDoe"), meta.OutputBytes)
	assert.True(t, meta.Changed())
}

func TestNormalizeText_Idempotent(t *testing.T) {
	once, _ := NormalizeText("\uFEFFA  \r\nB\r\n\r\nC")
	twice, meta := NormalizeText(once)
	assert.Equal(t, once, twice)
	assert.False(t, meta.Changed())
}

func TestReadDocument_TooLarge(t *testing.T) {
	_, _, err := ReadDocument(strings.NewReader(strings.Repeat("a", MaxDocumentBytes+1)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\r\njane@example.com\r\n"), 0o600))

	text, meta, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com", text)
	assert.Equal(t, path, meta.Source)
}

func TestReadFile_NotFound(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "file not found")
}
