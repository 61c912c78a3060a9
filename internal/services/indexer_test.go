package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndexer(chunker TextChunker, store VectorStore, batchSize int) VectorIndexer {
	embedder := &stubEmbedder{defaultVec: []float32{0.1, 0.2, 0.3}}
	return NewVectorIndexer(chunker, embedder, store, batchSize, zap.NewNop().Sugar())
}

func TestIngestJobDescriptionKeys(t *testing.T) {
	store := newMemoryVectorStore()
	indexer := newTestIndexer(&stubChunker{count: 3}, store, 100)

	keys, err := indexer.IngestJobDescription(context.Background(), "s1", "some job description")
	require.NoError(t, err)

	assert.Equal(t, []string{"jd_s1_0", "jd_s1_1", "jd_s1_2"}, keys)

	count, err := store.CountBySession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIngestEmptyDocumentIsNoop(t *testing.T) {
	store := newMemoryVectorStore()
	indexer := newTestIndexer(NewTextChunker(1000, 200), store, 100)

	keys, err := indexer.IngestJobDescription(context.Background(), "s1", "   ")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Empty(t, store.batchSizes)
}

func TestReingestSameDocumentDoesNotGrowStore(t *testing.T) {
	store := newMemoryVectorStore()
	indexer := newTestIndexer(&stubChunker{count: 4}, store, 100)

	cvData := map[string]string{"/tmp/s1/john_smith.pdf": "cv body"}

	first, err := indexer.IngestCVs(context.Background(), "s1", cvData)
	require.NoError(t, err)

	countAfterFirst, err := store.CountBySession(context.Background(), "s1")
	require.NoError(t, err)

	second, err := indexer.IngestCVs(context.Background(), "s1", cvData)
	require.NoError(t, err)

	countAfterSecond, err := store.CountBySession(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, countAfterFirst, countAfterSecond)
	assert.Equal(t, uint64(4), countAfterSecond)
}

func TestUpsertBatching(t *testing.T) {
	store := newMemoryVectorStore()
	indexer := newTestIndexer(&stubChunker{count: 250}, store, 100)

	_, err := indexer.IngestJobDescription(context.Background(), "s1", "long job description")
	require.NoError(t, err)

	assert.Equal(t, []int{100, 100, 50}, store.batchSizes)
}

func TestUpsertBatchFailureAbortsIngest(t *testing.T) {
	store := newMemoryVectorStore()
	store.failBatch = 2
	indexer := newTestIndexer(&stubChunker{count: 250}, store, 100)

	_, err := indexer.IngestJobDescription(context.Background(), "s1", "long job description")
	assert.Error(t, err)
}

func TestDeleteSessionRemovesAllSessionVectors(t *testing.T) {
	store := newMemoryVectorStore()
	indexer := newTestIndexer(&stubChunker{count: 4}, store, 100)

	ctx := context.Background()

	// 1 JD + 2 CVs, 12 chunks total in session s1
	_, err := indexer.IngestJobDescription(ctx, "s1", "job")
	require.NoError(t, err)
	_, err = indexer.IngestCVs(ctx, "s1", map[string]string{
		"a.pdf": "cv a",
		"b.pdf": "cv b",
	})
	require.NoError(t, err)

	// Second session must survive the delete
	_, err = indexer.IngestJobDescription(ctx, "s2", "job")
	require.NoError(t, err)

	count, err := store.CountBySession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, uint64(12), count)

	require.NoError(t, indexer.DeleteSession(ctx, "s1"))

	count, err = store.CountBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	count, err = store.CountBySession(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	// Idempotent: deleting again is a no-op, not an error
	assert.NoError(t, indexer.DeleteSession(ctx, "s1"))
}

func TestDeterministicPointIDs(t *testing.T) {
	a := deterministicPointID("cv_s1_john_0")
	b := deterministicPointID("cv_s1_john_0")
	c := deterministicPointID("cv_s1_john_1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestExtractCandidateName(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		text     string
		want     string
	}{
		{
			name:     "name-like filename",
			filePath: "/tmp/s1/john_smith.pdf",
			text:     "whatever",
			want:     "John Smith",
		},
		{
			name:     "hyphenated filename",
			filePath: "jane-doe.pdf",
			text:     "whatever",
			want:     "Jane Doe",
		},
		{
			name:     "numeric filename falls back to text line",
			filePath: "resume_12345.pdf",
			text:     "Jane Doe\nSenior Software Engineer\n...",
			want:     "Jane Doe",
		},
		{
			name:     "name with initial in text",
			filePath: "cv_export_final_v2.pdf",
			text:     "John Q. Public\njohn.q@example.com",
			want:     "John Q. Public",
		},
		{
			name:     "no name anywhere falls back to stem",
			filePath: "resume_12345.pdf",
			text:     "Objective: to obtain a challenging position in software engineering\n10 years of experience across 4 companies",
			want:     "resume_12345",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCandidateName(tt.filePath, tt.text))
		})
	}
}
