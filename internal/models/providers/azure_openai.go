package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
)

// AzureOpenAIProvider implements the Provider interface for Azure OpenAI
type AzureOpenAIProvider struct {
	client         *azopenai.Client
	deploymentName string
	temperature    float32
	maxTokens      int32
}

// NewAzureOpenAIProvider creates an Azure OpenAI provider. The endpoint,
// key and deployment come from the settings or from AZURE_OPENAI_ENDPOINT,
// AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT_NAME.
func NewAzureOpenAIProvider(s Settings) (*AzureOpenAIProvider, error) {
	endpoint := firstNonEmpty(s.BaseURL, os.Getenv("AZURE_OPENAI_ENDPOINT"))
	apiKey := firstNonEmpty(s.APIKey, os.Getenv("AZURE_OPENAI_API_KEY"))
	deploymentName := firstNonEmpty(s.Model, os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"))

	if endpoint == "" || apiKey == "" || deploymentName == "" {
		return nil, fmt.Errorf("%w: azure openai needs AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT_NAME", ErrMissingCredentials)
	}

	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}

	p := &AzureOpenAIProvider{
		client:         client,
		deploymentName: deploymentName,
		temperature:    float32(s.Temperature),
		maxTokens:      int32(s.MaxTokens),
	}
	if p.maxTokens <= 0 {
		p.maxTokens = 1000
	}
	return p, nil
}

// Name returns the provider name
func (p *AzureOpenAIProvider) Name() string {
	return string(TypeAzureOpenAI)
}

// Complete implements the Provider interface. System and assistant turns are
// folded into the user prompt.
func (p *AzureOpenAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := p.client.GetChatCompletions(ctx, azopenai.ChatCompletionsOptions{
		Messages: []azopenai.ChatRequestMessageClassification{
			&azopenai.ChatRequestUserMessage{
				Content: azopenai.NewChatRequestUserMessageContent(flatten(messages)),
			},
		},
		MaxTokens:      to.Ptr(p.maxTokens),
		Temperature:    to.Ptr(p.temperature),
		DeploymentName: to.Ptr(p.deploymentName),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("azure openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("azure openai: %w", ErrEmptyResponse)
	}
	return *resp.Choices[0].Message.Content, nil
}

// flatten renders a conversation as one prompt
func flatten(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleUser || msg.Role == "" {
			parts = append(parts, msg.Content)
			continue
		}
		parts = append(parts, strings.ToUpper(msg.Role)+": "+msg.Content)
	}
	return strings.Join(parts, "\n\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
