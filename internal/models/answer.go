package models

import "fmt"

// Mode selects the answer synthesis strategy.
type Mode string

const (
	// ModeLocal builds an extractive answer from retrieved passages only.
	ModeLocal Mode = "local"
	// ModeGenerative prompts the hosted language model with retrieved context.
	ModeGenerative Mode = "generative"
)

// ParseMode validates a mode string. An empty string defaults to ModeGenerative.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeGenerative:
		return Mode(s), nil
	case "":
		return ModeGenerative, nil
	default:
		return "", fmt.Errorf("unknown mode: %q (supported: local, generative)", s)
	}
}

// Answer is the payload returned to the caller for one question. Exactly one
// of Answer or Error is populated; callers must check Error before reading
// Answer.
type Answer struct {
	Query       string     `json:"query"`
	Answer      string     `json:"answer,omitempty"`
	Error       string     `json:"error,omitempty"`
	Sources     []string   `json:"sources"`
	Confidence  Confidence `json:"confidence"`
	ContextUsed int        `json:"context_used"`
	Mode        Mode       `json:"mode"`
}

// AskQuery is an incoming question with optional retrieval and mode settings.
type AskQuery struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// Validate ensures the query is non-empty and normalizes TopK into [1, 50].
func (q *AskQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.TopK <= 0 {
		q.TopK = 5
	}
	if q.TopK > 50 {
		q.TopK = 50
	}
	if _, err := ParseMode(q.Mode); err != nil {
		return err
	}
	return nil
}
