package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func point(id, doc string, page int, vec []float64) domain.Point {
	return domain.Point{
		ID:     id,
		Vector: vec,
		Payload: domain.Chunk{
			DocumentID:  doc,
			Page:        page,
			ContentType: domain.ContentText,
			Text:        "text " + id,
		},
	}
}

func TestCollectionLifecycle(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	dim, err := s.CollectionDimension(ctx, "col")
	require.NoError(t, err)
	assert.Zero(t, dim)

	require.NoError(t, s.CreateCollection(ctx, "col", 3))
	dim, err = s.CollectionDimension(ctx, "col")
	require.NoError(t, err)
	assert.Equal(t, 3, dim)

	require.NoError(t, s.DropCollection(ctx, "col"))
	dim, err = s.CollectionDimension(ctx, "col")
	require.NoError(t, err)
	assert.Zero(t, dim)
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateCollection(ctx, "col", 3))

	err := s.Upsert(ctx, "col", []domain.Point{point("a", "d", 1, []float64{1, 0})})
	assert.Error(t, err)
}

func TestSearchFiltersAndThreshold(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateCollection(ctx, "col", 2))
	require.NoError(t, s.Upsert(ctx, "col", []domain.Point{
		point("a", "doc-1", 1, []float64{1, 0}),
		point("b", "doc-2", 1, []float64{1, 0}),
		point("c", "doc-1", 2, []float64{0, 1}),
	}))

	hits, err := s.Search(ctx, "col", []float64{1, 0}, domain.Filter{DocumentID: "doc-1"}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-1", hits[0].Chunk.DocumentID)
	assert.Equal(t, 1, hits[0].Chunk.Page)
}

func TestSearchUnknownCollection(t *testing.T) {
	s := NewStore()

	_, err := s.Search(context.Background(), "missing", []float64{1}, domain.Filter{}, 5, 0)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestScrollPagesThroughDocument(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateCollection(ctx, "col", 1))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Upsert(ctx, "col", []domain.Point{
			point(string(rune('a'+i)), "doc-1", i+1, []float64{1}),
		}))
	}

	var got []domain.SearchHit
	cursor := ""
	for {
		batch, next, err := s.Scroll(ctx, "col", domain.Filter{DocumentID: "doc-1"}, cursor, 2)
		require.NoError(t, err)
		got = append(got, batch...)
		if next == "" {
			break
		}
		cursor = next
	}
	assert.Len(t, got, 5)
}

func TestDeleteByDocument(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateCollection(ctx, "col", 1))
	require.NoError(t, s.Upsert(ctx, "col", []domain.Point{
		point("a", "doc-1", 1, []float64{1}),
		point("b", "doc-2", 1, []float64{1}),
	}))

	require.NoError(t, s.DeleteByDocument(ctx, "col", "doc-1"))
	hits, err := s.Search(ctx, "col", []float64{1}, domain.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc-2", hits[0].Chunk.DocumentID)
}
