package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractTextPlainFile(t *testing.T) {
	extractor := NewDocumentExtractor(zap.NewNop().Sugar())

	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\nGo engineer"), 0o644))

	text, err := extractor.ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo engineer", text)
}

func TestExtractTextRejectsUnsupportedAndMissing(t *testing.T) {
	extractor := NewDocumentExtractor(zap.NewNop().Sugar())

	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := extractor.ExtractText(path)
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = extractor.ExtractText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestExtractBatchOmitsFailures(t *testing.T) {
	extractor := NewDocumentExtractor(zap.NewNop().Sugar())

	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("content"), 0o644))
	bad := filepath.Join(dir, "bad.docx")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))

	texts := extractor.ExtractBatch([]string{good, bad, filepath.Join(dir, "gone.txt")})

	assert.Equal(t, map[string]string{good: "content"}, texts)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims line edges", "  Jane Doe  \n  engineer ", "Jane Doe\nengineer"},
		{"collapses blank runs", "a\n\n\n\nb", "a\n\nb"},
		{"keeps paragraph break", "para one\n\npara two", "para one\n\npara two"},
		{"empty input", "   \n \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}
