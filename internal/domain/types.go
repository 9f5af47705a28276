package domain

import "time"

// ContentType distinguishes what a chunk carries.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
)

// Document is one ingested source file. Immutable after ingestion.
type Document struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Collection string    `db:"collection"`
	Pages      int       `db:"pages"`
	Chunks     int       `db:"chunks"`
	CreatedAt  time.Time `db:"created_at"`
}

// PageContent is the extracted content of a single page, as handed over by
// the (out of scope) extraction step. Number is 1-based; Images holds
// paths/handles of images extracted from the page.
type PageContent struct {
	Number int
	Text   string
	Images []string
}

// Chunk is a retrievable unit of document content.
type Chunk struct {
	DocumentID   string
	DocumentName string
	Page         int
	Index        int
	TotalOnPage  int
	ContentType  ContentType
	Text         string
	ImagePath    string
}

// SearchHit is a matching chunk with its similarity score. Not persisted.
type SearchHit struct {
	Chunk Chunk
	Score float64
}

// Source is a citation record surfaced alongside an answer. Ordinal is the
// 1-based position of the chunk in the assembled context and doubles as the
// bracket citation token.
type Source struct {
	Ordinal  int     `json:"ordinal"`
	Page     int     `json:"page"`
	Document string  `json:"document"`
	Score    float64 `json:"score"`
}

// ConversationTurn is one prior user/assistant exchange supplied by the
// caller. Read-only input; never persisted.
type ConversationTurn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// QueryResult is the outcome of answering one query.
type QueryResult struct {
	Answer  string      `json:"answer"`
	Sources []Source    `json:"sources"`
	Failure FailureKind `json:"failure,omitempty"`
}

// IsZeroVector reports whether v is the all-zero fallback an embedder
// returns on failure.
func IsZeroVector(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
