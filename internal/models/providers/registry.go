package providers

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Type names a provider backend
type Type string

const (
	TypeOllama       Type = "ollama"
	TypeOpenAI       Type = "openai"
	TypeGitHubModels Type = "github_models"
	TypeAzureOpenAI  Type = "azure_openai"
)

// Defaults for the local ollama backend
const (
	DefaultOllamaModel  = "llama2"
	DefaultOllamaURL    = "http://localhost:11434"
	DefaultOpenAIModel  = "gpt-4o-mini"
	GitHubModelsBaseURL = "https://models.inference.ai.azure.com"
)

// Factory builds a provider from settings
type Factory func(Settings) (Provider, error)

// Registry creates providers by type and caches one instance per settings
type Registry struct {
	mu        sync.RWMutex
	factories map[Type]Factory
	instances map[Settings]Provider
}

// NewRegistry returns a registry with every built-in backend
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[Type]Factory),
		instances: make(map[Settings]Provider),
	}
	r.Register(TypeOllama, newOllama)
	r.Register(TypeOpenAI, newOpenAI)
	r.Register(TypeGitHubModels, newGitHubModels)
	r.Register(TypeAzureOpenAI, func(s Settings) (Provider, error) {
		return NewAzureOpenAIProvider(s)
	})
	return r
}

// Register adds or replaces the factory for a type
func (r *Registry) Register(t Type, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = f
	for s := range r.instances {
		if s.Type == t {
			delete(r.instances, s)
		}
	}
}

// Types lists the registered backends
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]Type, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Get returns the cached provider for the settings, creating it on first use.
// An empty type selects ollama.
func (r *Registry) Get(s Settings) (Provider, error) {
	if s.Type == "" {
		s.Type = TypeOllama
	}

	r.mu.RLock()
	p, ok := r.instances[s]
	factory, known := r.factories[s.Type]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, s.Type)
	}

	p, err := factory(s)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instances[s]; ok {
		return existing, nil
	}
	r.instances[s] = p
	return p, nil
}

func newOllama(s Settings) (Provider, error) {
	s.Model = firstNonEmpty(s.Model, DefaultOllamaModel)
	llm, err := ollama.New(
		ollama.WithModel(s.Model),
		ollama.WithServerURL(firstNonEmpty(s.BaseURL, DefaultOllamaURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama model: %w", err)
	}
	return NewLangChainProvider(string(TypeOllama), llm, s), nil
}

func newOpenAI(s Settings) (Provider, error) {
	apiKey := firstNonEmpty(s.APIKey, os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrMissingCredentials)
	}
	s.Model = firstNonEmpty(s.Model, DefaultOpenAIModel)

	opts := []openai.Option{openai.WithToken(apiKey), openai.WithModel(s.Model)}
	if s.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(s.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI model: %w", err)
	}
	return NewLangChainProvider(string(TypeOpenAI), llm, s), nil
}

// newGitHubModels uses the OpenAI-compatible GitHub Models endpoint
func newGitHubModels(s Settings) (Provider, error) {
	token := firstNonEmpty(s.APIKey, os.Getenv("GITHUB_TOKEN"))
	if token == "" {
		return nil, fmt.Errorf("%w: GITHUB_TOKEN is required for GitHub Models", ErrMissingCredentials)
	}
	s.Model = firstNonEmpty(s.Model, DefaultOpenAIModel)

	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithModel(s.Model),
		openai.WithBaseURL(firstNonEmpty(s.BaseURL, GitHubModelsBaseURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
	}
	return NewLangChainProvider(string(TypeGitHubModels), llm, s), nil
}
