package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"docrag/internal/domain"
)

// Embedder maps text into a fixed-size vector by hashing tokens into
// buckets. It needs no model server and no corpus state, so two processes
// embed the same text to the same vector. Quality is far below a neural
// model; it exists for offline runs and tests.
type Embedder struct {
	dimension int
}

var _ domain.Embedder = (*Embedder)(nil)

const defaultDimension = 256

func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Name() string { return "local" }

func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns an L2-normalized bag-of-tokens vector. Text with no tokens
// produces an all-zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dimension)
	tokens := tokenize(text)
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dimension))
		// high bit picks the sign so collisions cancel rather than pile up
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
