package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/TumiLabsJN/rumiai-go/logging"
	"github.com/TumiLabsJN/rumiai-go/precompute"
)

// featureVectorDim is the fixed width of stored analysis vectors. Bundles
// with fewer numeric features are zero-padded, larger ones truncated, so the
// vector column stays comparable across videos.
const featureVectorDim = 64

// PostgresStore keeps per-analysis feature vectors for cross-video
// similarity queries. It is optional: the file layout remains the source of
// truth.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresStore connects and ensures the schema.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		pool:   pool,
		logger: logging.WithFields(logging.Fields{"component": "postgres_store"}),
	}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS analysis_features (
			id BIGSERIAL PRIMARY KEY,
			video_id TEXT NOT NULL,
			analysis TEXT NOT NULL,
			features vector(%d),
			created_at TIMESTAMPTZ DEFAULT now(),
			UNIQUE (video_id, analysis)
		)`, featureVectorDim),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// StoreBundle flattens a feature bundle into a dense vector and upserts it.
func (s *PostgresStore) StoreBundle(ctx context.Context, videoID, analysisType string, bundle precompute.FeatureBundle) error {
	vec := FlattenBundle(bundle, featureVectorDim)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_features (video_id, analysis, features)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (video_id, analysis) DO UPDATE SET features = $3, created_at = now()`,
		videoID, analysisType, pgvector.NewVector(vec))
	if err != nil {
		return fmt.Errorf("store features for %s/%s: %w", videoID, analysisType, err)
	}
	s.logger.Debug("stored feature vector",
		logging.Fields{"video_id": videoID, "analysis": analysisType})
	return nil
}

// SimilarVideos returns the ids of videos whose stored vector for the given
// analysis is nearest to the query video's.
func (s *PostgresStore) SimilarVideos(ctx context.Context, videoID, analysisType string, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT b.video_id
		 FROM analysis_features a
		 JOIN analysis_features b ON b.analysis = a.analysis AND b.video_id <> a.video_id
		 WHERE a.video_id = $1 AND a.analysis = $2
		 ORDER BY b.features <-> a.features
		 LIMIT $3`,
		videoID, analysisType, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar videos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// FlattenBundle projects a bundle's numeric features into a fixed-width
// vector, keys sorted for a stable layout.
func FlattenBundle(bundle precompute.FeatureBundle, dim int) []float32 {
	keys := make([]string, 0, len(bundle))
	for k := range bundle {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vec := make([]float32, 0, dim)
	for _, k := range keys {
		vec = appendNumeric(vec, bundle[k], dim)
		if len(vec) >= dim {
			break
		}
	}
	for len(vec) < dim {
		vec = append(vec, 0)
	}
	return vec[:dim]
}

func appendNumeric(vec []float32, v any, dim int) []float32 {
	if len(vec) >= dim {
		return vec
	}
	switch n := v.(type) {
	case float64:
		vec = append(vec, float32(n))
	case int:
		vec = append(vec, float32(n))
	case int64:
		vec = append(vec, float32(n))
	case bool:
		if n {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	case []int:
		for _, x := range n {
			if len(vec) >= dim {
				break
			}
			vec = append(vec, float32(x))
		}
	case []float64:
		for _, x := range n {
			if len(vec) >= dim {
				break
			}
			vec = append(vec, float32(x))
		}
	}
	return vec
}
