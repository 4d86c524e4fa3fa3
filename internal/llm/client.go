// Package llm wraps the hosted chat-completion and embedding providers
// behind small interfaces so pipelines can be tested without network calls.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
)

var (
	// ErrEmptyPrompt is returned when the user prompt is empty.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
	// ErrNoAPIKey is returned when the selected provider has no key configured.
	ErrNoAPIKey = errors.New("no API key configured for LLM provider")
	// ErrNoContent is returned when the provider reply carries no text.
	ErrNoContent = errors.New("no text content in provider response")
)

// ChatClient is a single-turn chat completion: prompt in, text out.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config selects and configures a chat provider.
type Config struct {
	Provider        string // "openai" or "anthropic"
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// NewChatClient builds the chat client for the configured provider.
func NewChatClient(cfg Config) (ChatClient, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model), nil
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, ErrNoAPIKey
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
