package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func openTest(t *testing.T) *SQLite {
	t.Helper()
	r, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func doc(id, name string) domain.Document {
	return domain.Document{
		ID:         id,
		Name:       name,
		Collection: "docs",
		Pages:      3,
		Chunks:     12,
		CreatedAt:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	r := openTest(t)
	ctx := context.Background()

	require.NoError(t, r.SaveDocument(ctx, doc("doc-1", "report.pdf")))
	got, err := r.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.Name)
	assert.Equal(t, "docs", got.Collection)
	assert.Equal(t, 3, got.Pages)
	assert.Equal(t, 12, got.Chunks)
}

func TestSaveOverwritesExisting(t *testing.T) {
	r := openTest(t)
	ctx := context.Background()

	require.NoError(t, r.SaveDocument(ctx, doc("doc-1", "v1.pdf")))
	updated := doc("doc-1", "v2.pdf")
	updated.Chunks = 20
	require.NoError(t, r.SaveDocument(ctx, updated))

	got, err := r.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2.pdf", got.Name)
	assert.Equal(t, 20, got.Chunks)
}

func TestGetMissingDocument(t *testing.T) {
	r := openTest(t)

	_, err := r.GetDocument(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestListDocuments(t *testing.T) {
	r := openTest(t)
	ctx := context.Background()

	require.NoError(t, r.SaveDocument(ctx, doc("doc-1", "a.pdf")))
	require.NoError(t, r.SaveDocument(ctx, doc("doc-2", "b.pdf")))

	docs, err := r.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, "doc-2", docs[1].ID)
}

func TestDeleteDocument(t *testing.T) {
	r := openTest(t)
	ctx := context.Background()

	require.NoError(t, r.SaveDocument(ctx, doc("doc-1", "a.pdf")))
	require.NoError(t, r.DeleteDocument(ctx, "doc-1"))

	_, err := r.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	err = r.DeleteDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}
