package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker(1000, 200)

	assert.Empty(t, chunker.SplitText(""))
	assert.Empty(t, chunker.SplitText("   "))
	assert.Empty(t, chunker.SplitText("\n\n\t  \n"))
}

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunker := NewTextChunker(1000, 200)

	chunks := chunker.SplitText("A short resume paragraph.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short resume paragraph.", chunks[0])
}

func TestSplitTextDeterministic(t *testing.T) {
	chunker := NewTextChunker(120, 20)

	text := strings.Repeat("Led a team of engineers building APIs.\n\nShipped three releases.\n\n", 20)

	first := chunker.SplitText(text)
	second := chunker.SplitText(text)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestSplitTextRespectsSizeBound(t *testing.T) {
	const (
		chunkSize = 120
		overlap   = 20
	)
	chunker := NewTextChunker(chunkSize, overlap)

	text := strings.Repeat("Worked on backend systems with Go and Postgres for several years. ", 40)

	chunks := chunker.SplitText(text)
	require.Greater(t, len(chunks), 1)

	for i, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk), "chunk %d", i)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), chunkSize+overlap, "chunk %d", i)
	}
}

func TestSplitTextCharacterFallbackOverlap(t *testing.T) {
	chunker := NewTextChunker(1000, 200)

	// No separators at all forces the raw character split
	text := strings.Repeat("a", 2500)

	chunks := chunker.SplitText(text)
	require.GreaterOrEqual(t, len(chunks), 2)

	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-200:]
		assert.True(t, strings.HasPrefix(chunks[i], prevTail),
			"chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestSplitTextPrefersParagraphBoundaries(t *testing.T) {
	chunker := NewTextChunker(100, 0)

	text := "First paragraph about skills.\n\nSecond paragraph about experience.\n\nThird paragraph about education."

	chunks := chunker.SplitText(text)
	require.NotEmpty(t, chunks)

	// Paragraphs fit intact, none split mid-word
	joined := strings.Join(chunks, " ")
	assert.Contains(t, joined, "First paragraph about skills.")
	assert.Contains(t, joined, "Third paragraph about education.")
}

func TestNewTextChunkerSanitizesConfig(t *testing.T) {
	// Invalid settings fall back to workable defaults rather than panic
	chunker := NewTextChunker(0, -5)
	chunks := chunker.SplitText("some text")
	assert.NotEmpty(t, chunks)

	chunker = NewTextChunker(100, 100)
	chunks = chunker.SplitText(strings.Repeat("word ", 100))
	assert.NotEmpty(t, chunks)
}
