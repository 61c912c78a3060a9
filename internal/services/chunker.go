package services

import (
	"strings"
	"unicode/utf8"
)

type TextChunker interface {
	SplitText(text string) []string
}

type textChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewTextChunker(chunkSize, overlap int) TextChunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	return &textChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		// Coarsest first; the empty separator means a raw character split.
		separators: []string{"\n\n", "\n", ". ", " ", ""},
	}
}

// SplitText implements TextChunker.
func (tc *textChunker) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return tc.split(text, tc.separators)
}

// split recursively breaks text on the coarsest separator that occurs in
// it, descending to finer separators for pieces that still exceed the
// chunk size.
func (tc *textChunker) split(text string, separators []string) []string {
	separator := ""
	var remaining []string

	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	if separator == "" {
		return tc.splitByCharacters(text)
	}

	// SplitAfter keeps the separator attached so no characters are lost
	// between chunks.
	pieces := strings.SplitAfter(text, separator)

	var chunks []string
	var fitting []string

	for _, piece := range pieces {
		if utf8.RuneCountInString(piece) <= tc.chunkSize {
			fitting = append(fitting, piece)
			continue
		}

		if len(fitting) > 0 {
			chunks = append(chunks, tc.merge(fitting)...)
			fitting = nil
		}

		chunks = append(chunks, tc.split(piece, remaining)...)
	}

	if len(fitting) > 0 {
		chunks = append(chunks, tc.merge(fitting)...)
	}

	return chunks
}

// merge combines small pieces into chunks up to the configured size,
// seeding each new chunk with the tail of the previous one so context is
// preserved across boundaries.
func (tc *textChunker) merge(pieces []string) []string {
	var chunks []string
	var current strings.Builder
	seeded := false

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		current.Reset()
		seeded = false
		if tc.overlap > 0 && chunk != "" {
			current.WriteString(lastNRunes(chunk, tc.overlap))
			seeded = current.Len() > 0
		}
	}

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		currentLen := utf8.RuneCountInString(current.String())

		if currentLen > 0 && currentLen+pieceLen > tc.chunkSize {
			// A chunk consisting only of the overlap seed must still
			// accept the next piece or merging would stall.
			if !seeded || currentLen > tc.overlap {
				flush()
			}
		}

		current.WriteString(piece)
		seeded = false
	}

	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		// The trailing chunk may be pure overlap of the previous one.
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], chunk) {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}

// splitByCharacters is the last resort for a run with no separators at
// all: fixed-size rune windows advanced by chunkSize-overlap.
func (tc *textChunker) splitByCharacters(text string) []string {
	runes := []rune(text)

	stride := tc.chunkSize - tc.overlap
	if stride < 1 {
		stride = 1
	}

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + tc.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end == len(runes) {
			break
		}
	}

	return chunks
}

func lastNRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
