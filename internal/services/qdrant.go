package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
)

// VectorRecord is one embedded chunk ready for storage. ID must be a
// UUID string derived deterministically from the chunk key so that
// re-ingesting a document overwrites rather than duplicates.
type VectorRecord struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// VectorStore is the session-partitioned write side of the pipeline.
// The stored vectors are an audit index; similarity itself is computed
// by the semantic scorer, so no search is exposed here.
type VectorStore interface {
	EnsureCollection(ctx context.Context, dimension int) error
	UpsertBatch(ctx context.Context, records []VectorRecord) error
	DeleteBySession(ctx context.Context, sessionID string) error
	CountBySession(ctx context.Context, sessionID string) (uint64, error)
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.SugaredLogger
}

func NewQdrantStore(urlStr, apiKey, collectionName string, logger *zap.SugaredLogger) (VectorStore, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		logger:         logger,
	}, nil
}

// EnsureCollection implements VectorStore. A dimension mismatch against
// an existing collection is fatal: serving with the wrong dimension
// would produce silently wrong similarity scores.
func (q *qdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", dimension)
	}

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		info, err := q.client.GetCollectionInfo(ctx, q.collectionName)
		if err != nil {
			return fmt.Errorf("failed to describe collection: %w", err)
		}

		existing := collectionDimension(info)
		if existing != 0 && existing != uint64(dimension) {
			return fmt.Errorf(
				"collection %q has dimension %d but embeddings use %d; recreate the collection",
				q.collectionName, existing, dimension,
			)
		}

		q.logger.Infow("using existing collection",
			"collection", q.collectionName,
			"dimension", dimension,
		)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.logger.Infow("created collection",
		"collection", q.collectionName,
		"dimension", dimension,
	)
	return nil
}

// UpsertBatch implements VectorStore.
func (q *qdrantStore) UpsertBatch(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, record := range records {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(record.ID),
			Vectors: qdrant.NewVectors(record.Vector...),
			Payload: qdrant.NewValueMap(record.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	return nil
}

// DeleteBySession implements VectorStore. Deleting a session with no
// stored vectors is a no-op.
func (q *qdrantStore) DeleteBySession(ctx context.Context, sessionID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("session_id", sessionID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete session vectors: %w", err)
	}

	return nil
}

// CountBySession implements VectorStore.
func (q *qdrantStore) CountBySession(ctx context.Context, sessionID string) (uint64, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("session_id", sessionID),
		},
	}

	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.collectionName,
		Filter:         filter,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count session vectors: %w", err)
	}

	return count, nil
}

func collectionDimension(info *qdrant.CollectionInfo) uint64 {
	if info == nil || info.Config == nil || info.Config.Params == nil {
		return 0
	}

	vectors := info.Config.Params.VectorsConfig
	if vectors == nil {
		return 0
	}

	params := vectors.GetParams()
	if params == nil {
		return 0
	}

	return params.Size
}
