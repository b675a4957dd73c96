package answer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/horitsu/internal/models"
)

type stubChat struct {
	reply     string
	err       error
	gotSystem string
	gotUser   string
	calls     int
}

func (s *stubChat) Chat(ctx context.Context, system, user string) (string, error) {
	s.calls++
	s.gotSystem = system
	s.gotUser = user
	return s.reply, s.err
}

func (s *stubChat) Close() error { return nil }

func sampleMatches() []models.Match {
	page := 12
	return []models.Match{
		{ID: "ipc-0-0", Score: 0.91, AdjustedScore: 1.01, SourceFile: "ipc.pdf", Page: &page, Text: "Section 378 defines theft."},
		{ID: "ipc-0-1", Score: 0.85, AdjustedScore: 0.95, SourceFile: "ipc.pdf", Text: "Section 379 prescribes punishment for theft."},
		{ID: "crpc-0-0", Score: 0.70, AdjustedScore: 0.70, SourceFile: "crpc.pdf", Text: "Arrest procedure is covered here."},
	}
}

func TestSynthesize_localEmptyMatches(t *testing.T) {
	s := NewSynthesizer(nil, "")
	got := s.Synthesize(context.Background(), "what is theft", nil, models.ModeLocal)

	assert.Equal(t, noMatchesMessage, got.Answer)
	assert.Empty(t, got.Error)
	assert.Equal(t, models.ConfidenceVeryLow, got.Confidence)
	assert.Empty(t, got.Sources)
	assert.Equal(t, 0, got.ContextUsed)
	assert.Equal(t, models.ModeLocal, got.Mode)
}

func TestSynthesize_localFormatsPassages(t *testing.T) {
	s := NewSynthesizer(nil, "")
	got := s.Synthesize(context.Background(), "what is theft", sampleMatches(), models.ModeLocal)

	// The relevance figure is the raw similarity score, not the
	// keyword-boosted one the passages were ranked by.
	assert.Contains(t, got.Answer, "[1] From ipc.pdf (Relevance: 0.91):")
	assert.NotContains(t, got.Answer, "1.01")
	assert.Contains(t, got.Answer, "Section 378 defines theft.")
	assert.Contains(t, got.Answer, "[3] From crpc.pdf")
	// Sources are de-duplicated for the extractive strategy.
	assert.Equal(t, []string{"ipc.pdf", "crpc.pdf"}, got.Sources)
	assert.Equal(t, 3, got.ContextUsed)
}

func TestSynthesize_localShowsTopThreeOnly(t *testing.T) {
	matches := make([]models.Match, 5)
	for i := range matches {
		matches[i] = models.Match{
			ID:         fmt.Sprintf("doc-%d-0", i),
			Score:      0.9,
			SourceFile: fmt.Sprintf("doc%d.pdf", i),
			Text:       "Some provision text.",
		}
	}
	s := NewSynthesizer(nil, "")
	got := s.Synthesize(context.Background(), "q", matches, models.ModeLocal)

	assert.Contains(t, got.Answer, "[3] From doc2.pdf")
	assert.NotContains(t, got.Answer, "[4]")
	assert.Contains(t, got.Answer, "5 relevant passages were found in total")
	// Confidence still considers every match, not just the shown ones.
	assert.Equal(t, models.ConfidenceHigh, got.Confidence)
}

func TestSynthesize_localTruncatesLongPassages(t *testing.T) {
	long := strings.Repeat("w ", 300) + "END"
	matches := []models.Match{{ID: "a", Score: 0.9, SourceFile: "ipc.pdf", Text: long}}

	s := NewSynthesizer(nil, "")
	got := s.Synthesize(context.Background(), "q", matches, models.ModeLocal)

	assert.NotContains(t, got.Answer, "END")
	assert.Contains(t, got.Answer, "...")
}

func TestSynthesize_generativeIncludesContext(t *testing.T) {
	chat := &stubChat{reply: "Theft is defined in Section 378 IPC."}
	s := NewSynthesizer(chat, "You are a legal assistant.")
	got := s.Synthesize(context.Background(), "what is theft", sampleMatches(), models.ModeGenerative)

	require.Empty(t, got.Error)
	assert.Equal(t, "Theft is defined in Section 378 IPC.", got.Answer)
	assert.Equal(t, "You are a legal assistant.", chat.gotSystem)
	assert.Contains(t, chat.gotUser, "Legal Documents:")
	assert.Contains(t, chat.gotUser, "Document 1 (ipc.pdf):")
	assert.Contains(t, chat.gotUser, "Document 3 (crpc.pdf):")
	assert.Contains(t, chat.gotUser, "User Question: what is theft")
	// Positional sources keep duplicates.
	assert.Equal(t, []string{"ipc.pdf", "ipc.pdf", "crpc.pdf"}, got.Sources)
}

func TestSynthesize_greetingSkipsContext(t *testing.T) {
	chat := &stubChat{reply: "Hello! Ask me about Indian law."}
	s := NewSynthesizer(chat, "")
	got := s.Synthesize(context.Background(), "hi", sampleMatches(), models.ModeGenerative)

	require.Empty(t, got.Error)
	assert.NotContains(t, chat.gotUser, "Legal Documents:")
	assert.Contains(t, chat.gotUser, "User Question: hi")
}

func TestSynthesize_generativeEmptyMatchesPlaceholder(t *testing.T) {
	chat := &stubChat{reply: "I have no documents on that."}
	s := NewSynthesizer(chat, "")
	got := s.Synthesize(context.Background(), "what is theft", nil, models.ModeGenerative)

	require.Empty(t, got.Error)
	assert.Contains(t, chat.gotUser, emptyContextPlaceholder)
	assert.Equal(t, models.ConfidenceVeryLow, got.Confidence)
}

func TestSynthesize_chatErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", fmt.Errorf("wrapped: %w", ErrAuth), msgAuthError},
		{"quota", fmt.Errorf("wrapped: %w", ErrQuota), msgQuotaError},
		{"rate limit", fmt.Errorf("wrapped: %w", ErrRateLimit), msgRateLimitError},
		{"generic", fmt.Errorf("connection reset"), msgGenericError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &stubChat{err: tt.err}
			s := NewSynthesizer(chat, "")
			got := s.Synthesize(context.Background(), "q", sampleMatches(), models.ModeGenerative)

			assert.Equal(t, tt.want, got.Error)
			assert.Empty(t, got.Answer)
			// Retrieval metadata still accompanies the error payload.
			assert.Equal(t, 3, got.ContextUsed)
		})
	}
}

func TestSynthesize_generativeWithoutChatClient(t *testing.T) {
	s := NewSynthesizer(nil, "")
	got := s.Synthesize(context.Background(), "q", nil, models.ModeGenerative)

	assert.NotEmpty(t, got.Error)
	assert.Empty(t, got.Answer)
}

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"hi", true},
		{"Hello there", true},
		{"good morning", true},
		{"HOW ARE YOU", true},
		{"what is theft", false},
		{"hello can you explain section 378 of the ipc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isGreeting(tt.query); got != tt.want {
			t.Errorf("isGreeting(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
