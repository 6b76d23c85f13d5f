// Package ingestion prepares raw document text for analysis.
package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxDocumentBytes bounds the size of a document accepted for analysis.
const MaxDocumentBytes = 1 << 20

// ErrTooLarge is returned for documents over MaxDocumentBytes.
var ErrTooLarge = fmt.Errorf("document exceeds %d bytes", MaxDocumentBytes)

// NormalizeText makes text safe for line-based analysis. It strips a leading byte order mark
// and NUL bytes, converts CRLF and lone CR line endings to LF, replaces invalid UTF-8 and
// trims trailing whitespace from each line. Interior spacing is kept since layout detection
// depends on it.
func NormalizeText(content string) (string, *Metadata) {
	meta := &Metadata{InputBytes: len(content)}
	if content == "" {
		return "", meta
	}

	if strings.HasPrefix(content, "\uFEFF") {
		content = strings.TrimPrefix(content, "\uFEFF")
		meta.StrippedBOM = true
	}
	if n := strings.Count(content, "\x00"); n > 0 {
		content = strings.ReplaceAll(content, "\x00", "")
		meta.RemovedNULs = n
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
		meta.RepairedUTF8 = true
	}

	meta.CRLFLines = strings.Count(content, "\r\n")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")
	content = strings.TrimRight(content, "\n")

	meta.Lines = strings.Count(content, "\n") + 1
	meta.OutputBytes = len(content)
	return content, meta
}

// ReadDocument reads up to MaxDocumentBytes from r and normalizes it.
func ReadDocument(r io.Reader) (string, *Metadata, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentBytes+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(data) > MaxDocumentBytes {
		return "", nil, ErrTooLarge
	}
	text, meta := NormalizeText(string(data))
	return text, meta, nil
}

// ReadFile reads and normalizes the document at path.
func ReadFile(path string) (string, *Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	text, meta, err := ReadDocument(f)
	if err != nil {
		return "", nil, err
	}
	meta.Source = path
	return text, meta, nil
}
