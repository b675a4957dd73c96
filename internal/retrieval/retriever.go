// Package retrieval issues similarity queries against the vector index and
// re-ranks the candidates with a legal-keyword heuristic.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/horitsu/internal/embedding"
	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/internal/vectorindex"
)

// Retriever embeds queries and searches the vector index, then adjusts the
// ranking with a keyword boost. It holds no per-query state and is safe for
// concurrent use.
type Retriever struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	config   *Config
	logger   *zap.Logger // optional; when set, logs debug events
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithLogger sets a logger for debug output (candidate counts, boosts).
func WithLogger(l *zap.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// NewRetriever creates a retriever with the given collaborators.
func NewRetriever(embedder embedding.Embedder, index vectorindex.Index, cfg *Config, opts ...RetrieverOption) *Retriever {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()
	r := &Retriever{
		embedder: embedder,
		index:    index,
		config:   cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query, over-fetches OverfetchRatio*topK candidates
// from the index, re-ranks them by adjusted score (raw similarity plus
// keyword boost, stable order on ties), and returns at most topK matches.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Match, error) {
	if topK <= 0 {
		topK = r.config.DefaultTopK
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	candidates, err := r.index.Query(ctx, vec, r.config.OverfetchRatio*topK)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}
	if r.logger != nil {
		r.logger.Debug("retrieved candidates",
			zap.String("query", query), zap.Int("candidates", len(candidates)), zap.Int("top_k", topK))
	}

	for i := range candidates {
		boost := r.keywordBoost(candidates[i].Text)
		candidates[i].Boost = boost
		candidates[i].AdjustedScore = candidates[i].Score + boost
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AdjustedScore > candidates[j].AdjustedScore
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// keywordBoost counts configured keywords appearing in text (substring,
// case-insensitive) and scales by the boost weight.
func (r *Retriever) keywordBoost(text string) float64 {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range r.config.BoostKeywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return float64(count) * r.config.BoostWeight
}
