package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"docrag/internal/domain"
)

// Store is an in-memory vector store using brute-force cosine similarity.
// It mirrors the filtered-search semantics of the Qdrant client and serves
// offline runs and tests.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

var _ domain.VectorStore = (*Store)(nil)

type collection struct {
	dimension int
	points    []domain.Point
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) CollectionDimension(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return 0, nil
	}
	return col.dimension, nil
}

func (s *Store) CreateCollection(_ context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{dimension: dimension}
	return nil
}

func (s *Store) DropCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *Store) Upsert(_ context.Context, name string, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("upsert %s: %w", name, domain.ErrCollectionNotFound)
	}
	for _, p := range points {
		if len(p.Vector) != col.dimension {
			return fmt.Errorf("vector dimension %d, collection expects %d", len(p.Vector), col.dimension)
		}
	}
	col.points = append(col.points, points...)
	return nil
}

func (s *Store) Search(_ context.Context, name string, vector []float64, filter domain.Filter, limit int, scoreThreshold float64) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("search %s: %w", name, domain.ErrCollectionNotFound)
	}
	if limit <= 0 {
		limit = 5
	}
	var hits []domain.SearchHit
	for _, p := range col.points {
		if !matches(p, filter) {
			continue
		}
		score := cosine(p.Vector, vector)
		if score < scoreThreshold {
			continue
		}
		hits = append(hits, domain.SearchHit{Chunk: p.Payload, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) Scroll(_ context.Context, name string, filter domain.Filter, cursor string, limit int) ([]domain.SearchHit, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, "", fmt.Errorf("scroll %s: %w", name, domain.ErrCollectionNotFound)
	}
	if limit <= 0 {
		limit = 100
	}
	start := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q", cursor)
		}
		start = n
	}
	var hits []domain.SearchHit
	i := start
	for ; i < len(col.points) && len(hits) < limit; i++ {
		if matches(col.points[i], filter) {
			hits = append(hits, domain.SearchHit{Chunk: col.points[i].Payload, Score: 1})
		}
	}
	next := ""
	if i < len(col.points) {
		next = strconv.Itoa(i)
	}
	return hits, next, nil
}

func (s *Store) DeleteByDocument(_ context.Context, name, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("delete %s: %w", name, domain.ErrCollectionNotFound)
	}
	kept := col.points[:0]
	for _, p := range col.points {
		if p.Payload.DocumentID != documentID {
			kept = append(kept, p)
		}
	}
	col.points = kept
	return nil
}

func matches(p domain.Point, f domain.Filter) bool {
	return f.DocumentID == "" || p.Payload.DocumentID == f.DocumentID
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
