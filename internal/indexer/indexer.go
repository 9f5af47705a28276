package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"docrag/internal/chunker"
	"docrag/internal/domain"
)

// Indexer embeds document chunks and upserts them into the vector store with
// document-scoped payloads, so retrieval can later filter to one document
// without a separate index.
type Indexer struct {
	chunker   *chunker.Chunker
	embedder  domain.Embedder
	store     domain.VectorStore
	batchSize int
	logger    *slog.Logger
}

// Stats summarizes one ingestion run. Skipped counts chunks whose embedding
// came back as the zero-vector failure fallback.
type Stats struct {
	Pages   int
	Chunks  int
	Skipped int
}

const defaultBatchSize = 50

func New(ch *chunker.Chunker, embedder domain.Embedder, store domain.VectorStore, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{chunker: ch, embedder: embedder, store: store, batchSize: defaultBatchSize, logger: logger}
}

// EnsureCollection verifies the target collection exists with the embedder's
// dimensionality. A missing collection is created; a collection with a
// mismatched dimensionality is dropped and recreated, which destroys its
// points. A one-time migration path, not a routine operation.
func (ix *Indexer) EnsureCollection(ctx context.Context, collection string) error {
	want := ix.embedder.Dimension()
	if want <= 0 {
		return fmt.Errorf("embedder %s reports no dimension", ix.embedder.Name())
	}
	dim, err := ix.store.CollectionDimension(ctx, collection)
	if err != nil {
		return fmt.Errorf("inspect collection %s: %w", collection, err)
	}
	switch {
	case dim == 0:
		ix.logger.Info("creating collection", "collection", collection, "dimension", want)
		return ix.store.CreateCollection(ctx, collection, want)
	case dim != want:
		ix.logger.Warn("collection dimension mismatch, recreating",
			"collection", collection, "have", dim, "want", want)
		if err := ix.store.DropCollection(ctx, collection); err != nil {
			return fmt.Errorf("drop collection %s: %w", collection, err)
		}
		return ix.store.CreateCollection(ctx, collection, want)
	default:
		return nil
	}
}

// IndexDocument chunks, embeds and upserts all pages of one document.
// Chunks whose embedding fails are logged and skipped; the batch continues.
func (ix *Indexer) IndexDocument(ctx context.Context, collection, docID, docName string, pages []domain.PageContent) (Stats, error) {
	if err := ix.EnsureCollection(ctx, collection); err != nil {
		return Stats{}, err
	}
	var stats Stats
	var batch []domain.Point
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ix.store.Upsert(ctx, collection, batch); err != nil {
			return fmt.Errorf("upsert %d points: %w", len(batch), err)
		}
		batch = batch[:0]
		return nil
	}
	for _, page := range pages {
		stats.Pages++
		chunks := ix.chunker.ChunkPage(docID, docName, page)
		for _, img := range page.Images {
			chunks = append(chunks, domain.Chunk{
				DocumentID:   docID,
				DocumentName: docName,
				Page:         page.Number,
				ContentType:  domain.ContentImage,
				ImagePath:    img,
			})
		}
		for _, ch := range chunks {
			input := ch.Text
			if ch.ContentType == domain.ContentImage {
				input = ch.ImagePath
			}
			vec, err := ix.embedder.Embed(ctx, input)
			if err != nil || domain.IsZeroVector(vec) {
				stats.Skipped++
				ix.logger.Warn("skipping chunk, embedding failed",
					"document", docID, "page", ch.Page, "chunk", ch.Index, "err", err)
				continue
			}
			batch = append(batch, domain.Point{ID: uuid.NewString(), Vector: vec, Payload: ch})
			stats.Chunks++
			if len(batch) >= ix.batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	ix.logger.Info("document indexed",
		"document", docID, "pages", stats.Pages, "chunks", stats.Chunks, "skipped", stats.Skipped)
	return stats, nil
}
