package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// SemanticScorer computes document-level similarity between the job
// description and a candidate document. Both texts are embedded whole
// (after truncation) with the same embedder the indexer uses.
type SemanticScorer interface {
	Similarity(ctx context.Context, jdText, cvText string) (float64, error)
	ScoreAll(ctx context.Context, jdText string, cvData map[string]string) map[string]float64
}

type semanticScorer struct {
	embedder Embedder
	maxChars int
	logger   *zap.SugaredLogger
}

func NewSemanticScorer(embedder Embedder, maxChars int, logger *zap.SugaredLogger) SemanticScorer {
	if maxChars <= 0 {
		maxChars = 8000
	}

	return &semanticScorer{
		embedder: embedder,
		maxChars: maxChars,
		logger:   logger,
	}
}

// Similarity implements SemanticScorer. The result is cosine similarity
// floored at 0; mildly negative cosines carry no anti-match meaning here.
func (s *semanticScorer) Similarity(ctx context.Context, jdText, cvText string) (float64, error) {
	jdVector, err := s.embedder.GenerateEmbedding(ctx, truncate(jdText, s.maxChars))
	if err != nil {
		return 0, fmt.Errorf("failed to embed job description: %w", err)
	}

	cvVector, err := s.embedder.GenerateEmbedding(ctx, truncate(cvText, s.maxChars))
	if err != nil {
		return 0, fmt.Errorf("failed to embed candidate document: %w", err)
	}

	similarity, err := CosineSimilarity(jdVector, cvVector)
	if err != nil {
		return 0, err
	}

	if similarity < 0 {
		similarity = 0
	}

	return similarity, nil
}

// ScoreAll implements SemanticScorer. Candidates are scored
// independently and in parallel; a failed candidate scores 0 and never
// aborts the others.
func (s *semanticScorer) ScoreAll(ctx context.Context, jdText string, cvData map[string]string) map[string]float64 {
	scores := make(map[string]float64, len(cvData))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for filePath, cvText := range cvData {
		if strings.TrimSpace(cvText) == "" {
			// Earlier iterations may already have goroutines writing the
			// map, so even the fast path takes the lock.
			mu.Lock()
			scores[filePath] = 0
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(filePath, cvText string) {
			defer wg.Done()

			similarity, err := s.Similarity(ctx, jdText, cvText)
			if err != nil {
				s.logger.Warnw("semantic scoring failed",
					"file_path", filePath,
					"error", err,
				)
				similarity = 0
			}

			mu.Lock()
			scores[filePath] = similarity
			mu.Unlock()
		}(filePath, cvText)
	}

	wg.Wait()
	return scores
}

// CosineSimilarity returns the cosine of the angle between two vectors
// of equal dimension.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// truncate bounds text to maxChars bytes without splitting a multibyte
// rune at the cut point.
func truncate(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}

	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
