package domain

import "errors"

// FailureKind tells callers which collaborator failed while the query was
// being answered. The answer text stays a calm fallback either way; the kind
// lets callers and tests distinguish "no relevant content" from "service
// unreachable".
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureEmbedding
	FailureRetrieval
	FailureGeneration
)

func (k FailureKind) String() string {
	switch k {
	case FailureEmbedding:
		return "embedding"
	case FailureRetrieval:
		return "retrieval"
	case FailureGeneration:
		return "generation"
	default:
		return "none"
	}
}

var (
	// ErrCollectionNotFound is returned by vector stores when the named
	// collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDocumentNotFound is returned by the registry for unknown document IDs.
	ErrDocumentNotFound = errors.New("document not found")
)
