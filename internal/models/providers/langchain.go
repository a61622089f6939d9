package providers

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// LangChainProvider runs completions through any langchaingo model
type LangChainProvider struct {
	name        string
	model       llms.Model
	modelName   string
	temperature float64
	maxTokens   int
}

func NewLangChainProvider(name string, model llms.Model, s Settings) *LangChainProvider {
	return &LangChainProvider{
		name:        name,
		model:       model,
		modelName:   s.Model,
		temperature: s.Temperature,
		maxTokens:   s.MaxTokens,
	}
}

// Name returns the provider name
func (p *LangChainProvider) Name() string {
	return p.name
}

// Complete implements the Provider interface
func (p *LangChainProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		var msgType schema.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			msgType = schema.ChatMessageTypeSystem
		case RoleAssistant:
			msgType = schema.ChatMessageTypeAI
		default:
			msgType = schema.ChatMessageTypeHuman
		}
		content[i] = llms.TextParts(msgType, msg.Content)
	}

	opts := []llms.CallOption{llms.WithTemperature(p.temperature)}
	if p.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.maxTokens))
	}
	if p.modelName != "" {
		opts = append(opts, llms.WithModel(p.modelName))
	}

	resp, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return resp.Choices[0].Content, nil
}
