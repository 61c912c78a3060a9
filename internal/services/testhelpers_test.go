package services

import (
	"context"
	"fmt"
	"sync"

	"hragent/cv-ranker/internal/models"
)

// stubEmbedder returns canned vectors by exact text, falling back to a
// default vector for texts it has no entry for.
type stubEmbedder struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	defaultVec []float32
	failFor    map[string]bool
	calls      int
}

func (s *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.failFor[text] {
		return nil, fmt.Errorf("embedding unavailable")
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	if s.defaultVec != nil {
		return s.defaultVec, nil
	}
	return nil, fmt.Errorf("no vector for text")
}

func (s *stubEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := s.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// stubGenerator plays the structured-assessment capability.
type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return s.GenerateText(ctx, prompt, temperature)
}

// stubAnalyzer returns preset analysis results keyed by CV text.
type stubAnalyzer struct {
	results map[string]*models.AnalysisResult
}

func (s *stubAnalyzer) AnalyzeMatch(_ context.Context, _, cvText string) *models.AnalysisResult {
	if result, ok := s.results[cvText]; ok {
		return result
	}
	return models.DefaultAnalysisResult("")
}

func (s *stubAnalyzer) ExtractRequirements(_ context.Context, _ string) *models.JobRequirements {
	return models.DefaultJobRequirements()
}

// stubChunker emits a fixed number of synthetic chunks regardless of input.
type stubChunker struct {
	count int
}

func (s *stubChunker) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	chunks := make([]string, s.count)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk-%d", i)
	}
	return chunks
}

// memoryVectorStore is an in-memory VectorStore keyed by record ID, so
// re-upserting the same IDs overwrites instead of growing.
type memoryVectorStore struct {
	mu         sync.Mutex
	records    map[string]VectorRecord
	batchSizes []int
	failBatch  int // 1-based batch index to fail on, 0 = never
}

func newMemoryVectorStore() *memoryVectorStore {
	return &memoryVectorStore{
		records: make(map[string]VectorRecord),
	}
}

func (m *memoryVectorStore) EnsureCollection(context.Context, int) error { return nil }

func (m *memoryVectorStore) UpsertBatch(_ context.Context, records []VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.batchSizes = append(m.batchSizes, len(records))
	if m.failBatch > 0 && len(m.batchSizes) == m.failBatch {
		return fmt.Errorf("batch %d rejected", m.failBatch)
	}

	for _, record := range records {
		m.records[record.ID] = record
	}
	return nil
}

func (m *memoryVectorStore) DeleteBySession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, record := range m.records {
		if record.Payload["session_id"] == sessionID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *memoryVectorStore) CountBySession(_ context.Context, sessionID string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count uint64
	for _, record := range m.records {
		if record.Payload["session_id"] == sessionID {
			count++
		}
	}
	return count, nil
}
