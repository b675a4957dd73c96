package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Chat failure categories. The synthesizer maps each to a distinct
// user-facing message instead of leaking provider payloads.
var (
	ErrAuth      = errors.New("chat: authentication failed")
	ErrQuota     = errors.New("chat: quota exceeded")
	ErrRateLimit = errors.New("chat: rate limited")
)

// ChatClient produces a completion for a system/user message pair.
type ChatClient interface {
	Chat(ctx context.Context, system, user string) (string, error)
	Close() error
}

// ChatConfig configures the hosted chat completion client.
type ChatConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAIChatClient calls an OpenAI-compatible chat completions endpoint.
type OpenAIChatClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// NewOpenAIChatClient creates a chat client. Timeout defaults to 60 seconds,
// temperature to 0.7 and max tokens to 500.
func NewOpenAIChatClient(cfg ChatConfig) *OpenAIChatClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 500
	}
	return &OpenAIChatClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Chat sends the system and user messages and returns the first choice.
func (c *OpenAIChatClient) Chat(ctx context.Context, system, user string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", classifyChatError(resp.StatusCode, string(msg))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// Close releases idle connections held by the HTTP client.
func (c *OpenAIChatClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// classifyChatError buckets a provider failure by status code and body
// keywords so callers can present a stable message per category.
func classifyChatError(status int, body string) error {
	lower := strings.ToLower(body)
	switch {
	case status == http.StatusUnauthorized || strings.Contains(lower, "api key") || strings.Contains(lower, "authentication"):
		return fmt.Errorf("%w: %s", ErrAuth, strings.TrimSpace(body))
	case strings.Contains(lower, "quota") || strings.Contains(lower, "billing"):
		return fmt.Errorf("%w: %s", ErrQuota, strings.TrimSpace(body))
	case status == http.StatusTooManyRequests || strings.Contains(lower, "rate limit") || strings.Contains(lower, "rate_limit"):
		return fmt.Errorf("%w: %s", ErrRateLimit, strings.TrimSpace(body))
	default:
		return fmt.Errorf("chat request failed with status %d: %s", status, strings.TrimSpace(body))
	}
}
