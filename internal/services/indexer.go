package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	docTypeJobDescription = "job_description"
	docTypeCV             = "cv"

	// Bounded excerpt of each chunk stored alongside the vector for
	// diagnostics.
	payloadExcerptLen = 500
)

// VectorIndexer chunks documents, embeds the chunks, and upserts them
// into the session partition of the vector store.
type VectorIndexer interface {
	IngestJobDescription(ctx context.Context, sessionID, jdText string) ([]string, error)
	IngestCVs(ctx context.Context, sessionID string, cvData map[string]string) (map[string][]string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type vectorIndexer struct {
	chunker   TextChunker
	embedder  Embedder
	store     VectorStore
	batchSize int
	logger    *zap.SugaredLogger
}

func NewVectorIndexer(
	chunker TextChunker,
	embedder Embedder,
	store VectorStore,
	batchSize int,
	logger *zap.SugaredLogger,
) VectorIndexer {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &vectorIndexer{
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// IngestJobDescription implements VectorIndexer. Vector keys follow
// jd_{session}_{index}, so re-ingesting the same JD overwrites its
// previous vectors.
func (v *vectorIndexer) IngestJobDescription(ctx context.Context, sessionID, jdText string) ([]string, error) {
	chunks := v.chunker.SplitText(jdText)
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := v.embedder.GenerateEmbeddings(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to embed job description: %w", err)
	}

	keys := make([]string, 0, len(chunks))
	records := make([]VectorRecord, 0, len(chunks))
	for i, chunk := range chunks {
		key := fmt.Sprintf("jd_%s_%d", sessionID, i)
		keys = append(keys, key)

		records = append(records, VectorRecord{
			ID:     deterministicPointID(key),
			Vector: vectors[i],
			Payload: map[string]interface{}{
				"vector_key":  key,
				"doc_type":    docTypeJobDescription,
				"session_id":  sessionID,
				"chunk_index": i,
				"text":        excerpt(chunk, payloadExcerptLen),
			},
		})
	}

	if err := v.upsertBatched(ctx, records); err != nil {
		return nil, err
	}

	v.logger.Infow("ingested job description",
		"session_id", sessionID,
		"chunks", len(records),
	)
	return keys, nil
}

// IngestCVs implements VectorIndexer. Returns the vector keys per CV
// file path. A batch failure aborts the whole ingest.
func (v *vectorIndexer) IngestCVs(ctx context.Context, sessionID string, cvData map[string]string) (map[string][]string, error) {
	var allRecords []VectorRecord
	cvKeys := make(map[string][]string, len(cvData))

	for filePath, text := range cvData {
		if strings.TrimSpace(text) == "" {
			continue
		}

		candidateName := ExtractCandidateName(filePath, text)

		chunks := v.chunker.SplitText(text)
		if len(chunks) == 0 {
			continue
		}

		vectors, err := v.embedder.GenerateEmbeddings(ctx, chunks)
		if err != nil {
			return nil, fmt.Errorf("failed to embed CV %s: %w", filePath, err)
		}

		stem := fileStem(filePath)
		keys := make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			key := fmt.Sprintf("cv_%s_%s_%d", sessionID, stem, i)
			keys = append(keys, key)

			allRecords = append(allRecords, VectorRecord{
				ID:     deterministicPointID(key),
				Vector: vectors[i],
				Payload: map[string]interface{}{
					"vector_key":     key,
					"doc_type":       docTypeCV,
					"session_id":     sessionID,
					"file_path":      filePath,
					"candidate_name": candidateName,
					"chunk_index":    i,
					"text":           excerpt(chunk, payloadExcerptLen),
				},
			})
		}

		cvKeys[filePath] = keys
	}

	if err := v.upsertBatched(ctx, allRecords); err != nil {
		return nil, err
	}

	v.logger.Infow("ingested CVs",
		"session_id", sessionID,
		"cv_count", len(cvKeys),
		"total_chunks", len(allRecords),
	)
	return cvKeys, nil
}

// DeleteSession implements VectorIndexer.
func (v *vectorIndexer) DeleteSession(ctx context.Context, sessionID string) error {
	if err := v.store.DeleteBySession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s vectors: %w", sessionID, err)
	}

	v.logger.Infow("deleted session vectors", "session_id", sessionID)
	return nil
}

func (v *vectorIndexer) upsertBatched(ctx context.Context, records []VectorRecord) error {
	for start := 0; start < len(records); start += v.batchSize {
		end := start + v.batchSize
		if end > len(records) {
			end = len(records)
		}

		if err := v.store.UpsertBatch(ctx, records[start:end]); err != nil {
			return fmt.Errorf("failed to upsert batch starting at %d: %w", start, err)
		}
	}

	return nil
}

// ExtractCandidateName derives a display name for a candidate. It
// prefers a name-like filename stem, then a short name-shaped line near
// the top of the text, then the raw stem.
func ExtractCandidateName(filePath, text string) string {
	stem := fileStem(filePath)

	name := strings.ReplaceAll(stem, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.Join(strings.Fields(name), " ")
	name = titleCase(name)

	if len(strings.Fields(name)) <= 3 && isAlphabetic(strings.ReplaceAll(name, " ", "")) && name != "" {
		return name
	}

	lines := strings.Split(text, "\n")
	if len(lines) > 5 {
		lines = lines[:5]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(strings.Fields(line)) > 3 {
			continue
		}

		nameShaped := true
		for _, word := range strings.Fields(line) {
			if !isAlphabetic(strings.ReplaceAll(word, ".", "")) {
				nameShaped = false
				break
			}
		}
		if nameShaped {
			return line
		}
	}

	return stem
}

func deterministicPointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func fileStem(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
