package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"google.golang.org/genai"

	"github.com/pustakabot/pustaka/internal/log"
)

// VectorDimension is the embedding width of the documents table.
// The Gemini embedder is asked to truncate its output to this size.
const VectorDimension int32 = 768

// searchTimeout bounds a single vector search round-trip.
const searchTimeout = 10 * time.Second

// diversityPoolFactor is how many candidates per requested result the
// diversity mode fetches before MMR re-ranking.
const diversityPoolFactor = 4

// querier is the common interface satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresBackend implements Backend over PostgreSQL + pgvector.
// Query embedding is generated through the injected ai.Embedder.
type PostgresBackend struct {
	db              querier
	embedder        ai.Embedder
	logger          log.Logger
	diversityLambda float32
}

// NewPostgresBackend creates a PostgresBackend.
func NewPostgresBackend(pool *pgxpool.Pool, embedder ai.Embedder, diversityLambda float32, logger log.Logger) (*PostgresBackend, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if diversityLambda <= 0 || diversityLambda > 1 {
		diversityLambda = 0.5
	}
	return &PostgresBackend{db: pool, embedder: embedder, logger: logger, diversityLambda: diversityLambda}, nil
}

// embed generates a vector embedding for the given text.
func (b *PostgresBackend) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	dim := VectorDimension
	resp, err := b.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   []*ai.Document{ai.DocumentFromText(text, nil)},
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return pgvector.Vector{}, fmt.Errorf("empty embedding response")
	}
	return pgvector.NewVector(resp.Embeddings[0].Embedding), nil
}

// Search implements Backend. Similarity mode orders purely by cosine
// distance; diversity mode fetches a larger candidate pool and re-ranks it
// with maximal marginal relevance.
func (b *PostgresBackend) Search(ctx context.Context, collection, question string, k int, mode Mode) ([]Document, error) {
	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	qvec, err := b.embed(queryCtx, question)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return nil, err
	}

	switch mode {
	case ModeDiversity:
		return b.searchDiversity(queryCtx, collection, qvec, k)
	default:
		return b.searchSimilarity(queryCtx, collection, qvec, k)
	}
}

func (b *PostgresBackend) searchSimilarity(ctx context.Context, collection string, qvec pgvector.Vector, k int) ([]Document, error) {
	rows, err := b.db.Query(ctx,
		`SELECT content, metadata
		   FROM documents
		  WHERE collection = $1
		  ORDER BY embedding <=> $2
		  LIMIT $3`,
		collection, qvec, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search in %q: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var content string
		var metadataJSON []byte
		if err := rows.Scan(&content, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		docs = append(docs, Document{Content: content, Metadata: b.parseMetadata(metadataJSON)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return docs, nil
}

// searchDiversity fetches diversityPoolFactor*k nearest candidates with
// their embeddings, then greedily selects k of them by maximal marginal
// relevance: lambda*relevance - (1-lambda)*max similarity to the picked set.
func (b *PostgresBackend) searchDiversity(ctx context.Context, collection string, qvec pgvector.Vector, k int) ([]Document, error) {
	rows, err := b.db.Query(ctx,
		`SELECT content, metadata, embedding, 1 - (embedding <=> $2) AS similarity
		   FROM documents
		  WHERE collection = $1
		  ORDER BY embedding <=> $2
		  LIMIT $3`,
		collection, qvec, k*diversityPoolFactor)
	if err != nil {
		return nil, fmt.Errorf("diversity search in %q: %w", collection, err)
	}
	defer rows.Close()

	type candidate struct {
		doc       Document
		vec       []float32
		relevance float32
	}
	var cands []candidate
	for rows.Next() {
		var content string
		var metadataJSON []byte
		var vec pgvector.Vector
		var similarity float32
		if err := rows.Scan(&content, &metadataJSON, &vec, &similarity); err != nil {
			return nil, fmt.Errorf("scanning candidate row: %w", err)
		}
		cands = append(cands, candidate{
			doc:       Document{Content: content, Metadata: b.parseMetadata(metadataJSON)},
			vec:       vec.Slice(),
			relevance: similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading candidate rows: %w", err)
	}

	lambda := b.diversityLambda
	selected := make([]candidate, 0, k)
	remaining := cands
	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := float32(-2)
		for i, c := range remaining {
			var maxSim float32
			for _, s := range selected {
				if sim := cosineSimilarity(c.vec, s.vec); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*c.relevance - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	docs := make([]Document, len(selected))
	for i, c := range selected {
		docs[i] = c.doc
	}
	return docs, nil
}

// ListCollections implements Backend. Collections are returned in
// first-indexed order so catalog iteration stays stable across restarts.
func (b *PostgresBackend) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := b.db.Query(ctx,
		`SELECT collection
		   FROM documents
		  GROUP BY collection
		  ORDER BY MIN(created_at), collection`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection name: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading collection rows: %w", err)
	}
	return out, nil
}

// ListMetadataPage implements Backend.
func (b *PostgresBackend) ListMetadataPage(ctx context.Context, collection string, offset, limit int) ([]map[string]string, error) {
	rows, err := b.db.Query(ctx,
		`SELECT metadata
		   FROM documents
		  WHERE collection = $1
		  ORDER BY id
		  LIMIT $2 OFFSET $3`,
		collection, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing metadata for %q: %w", collection, err)
	}
	defer rows.Close()

	var out []map[string]string
	for rows.Next() {
		var metadataJSON []byte
		if err := rows.Scan(&metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning metadata row: %w", err)
		}
		out = append(out, b.parseMetadata(metadataJSON))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata rows: %w", err)
	}
	return out, nil
}

// parseMetadata unmarshals a JSONB metadata column. A malformed value is
// logged and replaced with an empty map; accessors then fall back to their
// defaults.
func (b *PostgresBackend) parseMetadata(raw []byte) map[string]string {
	var md map[string]string
	if err := json.Unmarshal(raw, &md); err != nil {
		b.logger.Warn("failed to parse document metadata", "error", err)
		return make(map[string]string)
	}
	return md
}

// cosineSimilarity computes the cosine similarity of two vectors.
// Mismatched or empty vectors yield 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float32
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (sqrt32(na) * sqrt32(nb))
}

func sqrt32(f float32) float32 {
	return float32(math.Sqrt(float64(f)))
}
