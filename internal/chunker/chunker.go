package chunker

import (
	"strings"

	"docrag/internal/domain"
)

// Chunker splits extracted page text into overlapping retrievable pieces.
// Pieces longer than the size threshold are cut preferably at a paragraph
// boundary, else a sentence boundary, else a word boundary, searched within a
// small window around the target cut point. Overlap between neighbouring
// pieces keeps sentences that straddle a cut retrievable from both sides.
type Chunker struct {
	size    int
	overlap int
	window  int
}

const (
	defaultSize    = 500
	defaultOverlap = 100
	cutWindow      = 80
)

func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = defaultOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &Chunker{size: size, overlap: overlap, window: cutWindow}
}

// ChunkPage splits one page into chunks carrying document metadata.
func (c *Chunker) ChunkPage(docID, docName string, page domain.PageContent) []domain.Chunk {
	pieces := c.Split(page.Text)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, domain.Chunk{
			DocumentID:   docID,
			DocumentName: docName,
			Page:         page.Number,
			Index:        i,
			TotalOnPage:  len(pieces),
			ContentType:  domain.ContentText,
			Text:         p,
		})
	}
	return chunks
}

// Split returns the overlapping pieces of text. Input at or below the size
// threshold yields exactly one piece; blank input yields none. No returned
// piece is empty after trimming.
func (c *Chunker) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	runes := []rune(trimmed)
	if len(runes) <= c.size {
		return []string{trimmed}
	}
	var pieces []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			if p := strings.TrimSpace(string(runes[start:])); p != "" {
				pieces = append(pieces, p)
			}
			break
		}
		cut := c.findCut(runes, start, end)
		if p := strings.TrimSpace(string(runes[start:cut])); p != "" {
			pieces = append(pieces, p)
		}
		next := cut - c.overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return pieces
}

// findCut picks the cut position near target, preferring paragraph over
// sentence over word boundaries. Falls back to a hard cut at target.
func (c *Chunker) findCut(runes []rune, start, target int) int {
	lo := target - c.window
	if lo <= start {
		lo = start + 1
	}
	hi := target + c.window
	if hi > len(runes) {
		hi = len(runes)
	}
	window := string(runes[lo:hi])
	for _, sep := range []string{"\n\n", ". ", " "} {
		if i := strings.LastIndex(window, sep); i >= 0 {
			return lo + len([]rune(window[:i])) + len([]rune(sep))
		}
	}
	return target
}
