// Package providers connects the LLM order parser to chat completion backends.
package providers

import (
	"context"
	"errors"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrUnknownProvider    = errors.New("unknown llm provider")
	ErrMissingCredentials = errors.New("llm provider credentials missing")
	ErrEmptyResponse      = errors.New("empty response from llm provider")
)

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat completion backend
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Settings selects and tunes a provider. Empty fields fall back to the
// provider defaults and its environment variables.
type Settings struct {
	Type        Type    `json:"type"`
	Model       string  `json:"model"`
	BaseURL     string  `json:"base_url,omitempty"`
	APIKey      string  `json:"-"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}
