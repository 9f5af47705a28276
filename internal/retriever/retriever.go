package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"docrag/internal/domain"
)

// Retriever embeds a query and runs a document-scoped similarity search,
// then applies diversity selection so one highly relevant page does not
// crowd out the rest of the document.
type Retriever struct {
	embedder       domain.Embedder
	store          domain.VectorStore
	scoreThreshold float64
	logger         *slog.Logger
}

var (
	// ErrEmbedding marks a failed or zero-vector query embedding.
	ErrEmbedding = errors.New("query embedding failed")
	// ErrSearch marks a failed vector store call.
	ErrSearch = errors.New("vector search failed")
)

const defaultScoreThreshold = 0.2

func New(embedder domain.Embedder, store domain.VectorStore, scoreThreshold float64, logger *slog.Logger) *Retriever {
	if scoreThreshold <= 0 {
		scoreThreshold = defaultScoreThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, store: store, scoreThreshold: scoreThreshold, logger: logger}
}

// Retrieve returns at most limit hits for the query, restricted to one
// document, best score first. The error is one of the sentinel kinds above;
// callers absorb it and treat the query as having no context.
func (r *Retriever) Retrieve(ctx context.Context, collection, query, documentID string, limit int) ([]domain.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if domain.IsZeroVector(vec) {
		r.logger.Warn("embedder returned zero vector for query")
		return nil, ErrEmbedding
	}
	raw, err := r.store.Search(ctx, collection, vec, domain.Filter{DocumentID: documentID}, limit*2, r.scoreThreshold)
	if err != nil {
		r.logger.Warn("vector search failed", "collection", collection, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	hits := raw[:0:0]
	for _, h := range raw {
		if h.Chunk.DocumentID == documentID {
			hits = append(hits, h)
		}
	}
	return diversitySelect(hits, limit), nil
}

// diversitySelect keeps the top half of limit by score outright, then fills
// the remaining slots by score while preferring pages not yet selected.
// Output order is score descending with ties broken by original rank.
func diversitySelect(hits []domain.SearchHit, limit int) []domain.SearchHit {
	if len(hits) <= limit {
		return hits
	}
	keep := limit / 2
	selected := make([]int, 0, limit)
	used := make([]bool, len(hits))
	pages := make(map[int]bool)
	for i := 0; i < keep; i++ {
		selected = append(selected, i)
		used[i] = true
		pages[hits[i].Chunk.Page] = true
	}
	for i := keep; i < len(hits) && len(selected) < limit; i++ {
		if pages[hits[i].Chunk.Page] {
			continue
		}
		selected = append(selected, i)
		used[i] = true
		pages[hits[i].Chunk.Page] = true
	}
	for i := keep; i < len(hits) && len(selected) < limit; i++ {
		if used[i] {
			continue
		}
		selected = append(selected, i)
		used[i] = true
	}
	sort.Ints(selected)
	out := make([]domain.SearchHit, 0, len(selected))
	for _, i := range selected {
		out = append(out, hits[i])
	}
	return out
}
