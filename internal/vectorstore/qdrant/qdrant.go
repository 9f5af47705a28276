package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docrag/internal/domain"
)

// Store is a minimal REST client to Qdrant. Collections use cosine distance;
// every point carries a document-scoped payload so searches can filter to
// one document without a separate index.
type Store struct {
	url    string
	apiKey string
	client *http.Client
}

var _ domain.VectorStore = (*Store)(nil)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *Store) CollectionDimension(ctx context.Context, collection string) (int, error) {
	var resp struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/collections/%s", s.url, collection), nil, &resp)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status >= 300 {
		return 0, fmt.Errorf("qdrant GET collection %s: status %d", collection, status)
	}
	return resp.Result.Config.Params.Vectors.Size, nil
}

func (s *Store) CreateCollection(ctx context.Context, collection string, dimension int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.expectOK(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s", s.url, collection), body)
}

func (s *Store) DropCollection(ctx context.Context, collection string) error {
	return s.expectOK(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, collection), nil)
}

func (s *Store) Upsert(ctx context.Context, collection string, points []domain.Point) error {
	if len(points) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": encodePayload(p.Payload),
		}
	}
	body := map[string]any{"points": payload}
	return s.expectOK(ctx, http.MethodPut, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, collection), body)
}

func (s *Store) Search(ctx context.Context, collection string, vector []float64, filter domain.Filter, limit int, scoreThreshold float64) ([]domain.SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"filter":       encodeFilter(filter),
	}
	if scoreThreshold > 0 {
		req["score_threshold"] = scoreThreshold
	}
	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/search", s.url, collection), req, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("search %s: %w", collection, domain.ErrCollectionNotFound)
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant search %s: status %d", collection, status)
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, p := range resp.Result {
		hits = append(hits, domain.SearchHit{Chunk: decodePayload(p.Payload), Score: p.Score})
	}
	return hits, nil
}

func (s *Store) Scroll(ctx context.Context, collection string, filter domain.Filter, cursor string, limit int) ([]domain.SearchHit, string, error) {
	if limit <= 0 {
		limit = 100
	}
	req := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"filter":       encodeFilter(filter),
	}
	if cursor != "" {
		req["offset"] = cursor
	}
	var resp struct {
		Result struct {
			Points         []scoredPoint `json:"points"`
			NextPageOffset *string       `json:"next_page_offset"`
		} `json:"result"`
	}
	status, err := s.doJSON(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/scroll", s.url, collection), req, &resp)
	if err != nil {
		return nil, "", err
	}
	if status == http.StatusNotFound {
		return nil, "", fmt.Errorf("scroll %s: %w", collection, domain.ErrCollectionNotFound)
	}
	if status >= 300 {
		return nil, "", fmt.Errorf("qdrant scroll %s: status %d", collection, status)
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		hits = append(hits, domain.SearchHit{Chunk: decodePayload(p.Payload), Score: p.Score})
	}
	next := ""
	if resp.Result.NextPageOffset != nil {
		next = *resp.Result.NextPageOffset
	}
	return hits, next, nil
}

func (s *Store) DeleteByDocument(ctx context.Context, collection, documentID string) error {
	body := map[string]any{
		"filter": encodeFilter(domain.Filter{DocumentID: documentID}),
	}
	return s.expectOK(ctx, http.MethodPost, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, collection), body)
}

type scoredPoint struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func encodeFilter(f domain.Filter) map[string]any {
	must := []map[string]any{}
	if f.DocumentID != "" {
		must = append(must, map[string]any{
			"key":   "document_id",
			"match": map[string]any{"value": f.DocumentID},
		})
	}
	return map[string]any{"must": must}
}

func encodePayload(c domain.Chunk) map[string]any {
	p := map[string]any{
		"document_id":   c.DocumentID,
		"document_name": c.DocumentName,
		"page":          c.Page,
		"chunk":         c.Index,
		"total_chunks":  c.TotalOnPage,
		"content_type":  string(c.ContentType),
	}
	if c.ContentType == domain.ContentImage {
		p["image_path"] = c.ImagePath
	} else {
		p["text"] = c.Text
	}
	return p
}

func decodePayload(p map[string]any) domain.Chunk {
	c := domain.Chunk{ContentType: domain.ContentText}
	if v, ok := p["document_id"].(string); ok {
		c.DocumentID = v
	}
	if v, ok := p["document_name"].(string); ok {
		c.DocumentName = v
	}
	if v, ok := p["page"].(float64); ok {
		c.Page = int(v)
	}
	if v, ok := p["chunk"].(float64); ok {
		c.Index = int(v)
	}
	if v, ok := p["total_chunks"].(float64); ok {
		c.TotalOnPage = int(v)
	}
	if v, ok := p["content_type"].(string); ok && v != "" {
		c.ContentType = domain.ContentType(v)
	}
	if v, ok := p["text"].(string); ok {
		c.Text = v
	}
	if v, ok := p["image_path"].(string); ok {
		c.ImagePath = v
	}
	return c
}

func (s *Store) expectOK(ctx context.Context, method, url string, body any) error {
	status, err := s.doJSON(ctx, method, url, body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant %s %s: status %d", method, url, status)
	}
	return nil
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return 0, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode qdrant response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
