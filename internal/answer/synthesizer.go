// Package answer turns retrieved passages into a response, either by
// quoting them directly or by prompting a hosted language model.
package answer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hyperjump/horitsu/internal/models"
	"github.com/hyperjump/horitsu/internal/retrieval"
)

// User-facing messages for classified chat failures.
const (
	msgAuthError      = "The language model rejected the configured API key. Check the credential and try again."
	msgQuotaError     = "The language model account has exhausted its quota. Check the billing status of the account."
	msgRateLimitError = "The language model is rate limiting requests. Wait a moment and try again."
	msgGenericError   = "The language model request failed. Try again, or use local mode."
)

// Synthesizer builds answers from retrieved matches. It holds no per-call
// state; each invocation is independent of the last.
type Synthesizer struct {
	chat    ChatClient // nil disables generative mode
	persona string
	logger  *zap.Logger
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithLogger sets a logger for chat failure diagnostics.
func WithLogger(l *zap.Logger) SynthesizerOption {
	return func(s *Synthesizer) { s.logger = l }
}

// NewSynthesizer creates a synthesizer. chat may be nil, in which case
// generative requests return a configuration error answer. An empty persona
// falls back to the built-in default.
func NewSynthesizer(chat ChatClient, persona string, opts ...SynthesizerOption) *Synthesizer {
	if persona == "" {
		persona = defaultPersona
	}
	s := &Synthesizer{chat: chat, persona: persona}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize produces an answer for query from matches using the given
// strategy. The result always carries either a non-empty Answer or a
// non-empty Error, never a panic or a raw provider payload.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, matches []models.Match, mode models.Mode) models.Answer {
	switch mode {
	case models.ModeLocal:
		return s.synthesizeLocal(query, matches)
	default:
		return s.synthesizeGenerative(ctx, query, matches)
	}
}

func (s *Synthesizer) synthesizeLocal(query string, matches []models.Match) models.Answer {
	return models.Answer{
		Query:       query,
		Answer:      buildLocalAnswer(matches),
		Sources:     dedupeSources(matches),
		Confidence:  retrieval.AssessConfidence(matches),
		ContextUsed: len(matches),
		Mode:        models.ModeLocal,
	}
}

func (s *Synthesizer) synthesizeGenerative(ctx context.Context, query string, matches []models.Match) models.Answer {
	result := models.Answer{
		Query:       query,
		Sources:     positionalSources(matches),
		Confidence:  retrieval.AssessConfidence(matches),
		ContextUsed: len(matches),
		Mode:        models.ModeGenerative,
	}
	if s.chat == nil {
		result.Error = "Generative mode is not configured on this server. Use local mode instead."
		return result
	}

	text, err := s.chat.Chat(ctx, s.persona, buildUserPrompt(query, matches))
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("chat completion failed", zap.String("query", query), zap.Error(err))
		}
		result.Error = chatErrorMessage(err)
		return result
	}
	result.Answer = text
	return result
}

// chatErrorMessage maps a classified chat error to its user-facing string.
func chatErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return msgAuthError
	case errors.Is(err, ErrQuota):
		return msgQuotaError
	case errors.Is(err, ErrRateLimit):
		return msgRateLimitError
	default:
		return msgGenericError
	}
}
