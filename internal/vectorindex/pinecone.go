package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/horitsu/internal/models"
)

// PineconeIndex is a REST client to a Pinecone-style vector index data
// plane. The index itself owns the similarity metric (cosine) and the
// vector dimension (384 for this corpus).
type PineconeIndex struct {
	host       string
	apiKey     string
	namespace  string
	httpClient *http.Client
	// textLimit caps metadata text size on upsert, in bytes.
	textLimit int
}

// PineconeConfig configures the index client.
type PineconeConfig struct {
	Host      string
	APIKey    string
	Namespace string
	TextLimit int
	Timeout   time.Duration
}

// NewPineconeIndex creates an index client. TextLimit defaults to 8000
// bytes and the HTTP timeout to 30 seconds.
func NewPineconeIndex(cfg PineconeConfig) *PineconeIndex {
	if cfg.TextLimit <= 0 {
		cfg.TextLimit = 8000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &PineconeIndex{
		host:       strings.TrimRight(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		namespace:  cfg.Namespace,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		textLimit:  cfg.TextLimit,
	}
}

type upsertVector struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []upsertVector `json:"vectors"`
	Namespace string         `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string   `json:"id"`
		Score    float64  `json:"score"`
		Metadata Metadata `json:"metadata"`
	} `json:"matches"`
}

// Upsert inserts or replaces vectors by ID. Metadata text is truncated to
// the configured limit before upload. Used during offline ingestion only.
func (p *PineconeIndex) Upsert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	vectors := make([]upsertVector, len(items))
	for i, it := range items {
		md := it.Metadata
		if len(md.Text) > p.textLimit {
			md.Text = md.Text[:p.textLimit]
		}
		vectors[i] = upsertVector{ID: it.ID, Values: it.Values, Metadata: md}
	}
	return p.post(ctx, "/vectors/upsert", upsertRequest{Vectors: vectors, Namespace: p.namespace}, nil)
}

// Query returns the topK nearest matches for vector, with metadata, in the
// service's best-first order.
func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	var resp queryResponse
	req := queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       p.namespace,
	}
	if err := p.post(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}
	matches := make([]models.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, models.Match{
			ID:         m.ID,
			Score:      m.Score,
			SourceFile: m.Metadata.SourceFile,
			Page:       m.Metadata.Page,
			Text:       m.Metadata.Text,
		})
	}
	return matches, nil
}

// Close releases idle connections held by the HTTP client.
func (p *PineconeIndex) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *PineconeIndex) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Api-Key", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("index request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("index request %s failed: %s: %s", path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode index response: %w", err)
		}
	}
	return nil
}
