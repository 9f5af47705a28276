package domain

import "context"

// Embedder converts text into a fixed-length numeric vector. Implementations
// return the all-zero vector of their dimension when the backing model fails,
// so callers can detect failure without unwinding a batch.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Point is one vector plus its chunk payload, ready for upsert.
type Point struct {
	ID      string
	Vector  []float64
	Payload Chunk
}

// Filter restricts a search or scroll to one document.
type Filter struct {
	DocumentID string
}

// VectorStore persists embedded chunks in named, dimension-fixed collections
// and supports filtered similarity search.
type VectorStore interface {
	// CollectionDimension returns the vector size of an existing collection,
	// or 0 with a nil error when the collection does not exist.
	CollectionDimension(ctx context.Context, collection string) (int, error)
	CreateCollection(ctx context.Context, collection string, dimension int) error
	DropCollection(ctx context.Context, collection string) error
	Upsert(ctx context.Context, collection string, points []Point) error
	// Search returns hits above scoreThreshold matching the filter, best first.
	Search(ctx context.Context, collection string, vector []float64, filter Filter, limit int, scoreThreshold float64) ([]SearchHit, error)
	// Scroll pages through all points matching the filter. An empty cursor
	// starts from the beginning; an empty next cursor means exhaustion.
	Scroll(ctx context.Context, collection string, filter Filter, cursor string, limit int) ([]SearchHit, string, error)
	DeleteByDocument(ctx context.Context, collection, documentID string) error
}

// GenerateOptions tune a single completion request.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// Generator produces a text completion for a prompt. A connectivity failure
// surfaces as an error; a substantive-but-unhelpful completion does not.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Registry records ingested documents so they can be listed and deleted.
type Registry interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	DeleteDocument(ctx context.Context, id string) error
}
