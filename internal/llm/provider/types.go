package provider

import (
	"context"
	"net/http"

	"github.com/openai/openai-go/v2"
)

// Provider defines the minimal interface for LLM completion.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Validate() error
}

// Request is a single-turn chat completion: one system message, one user
// message, and the sampling parameters fixed for the calling operation.
type Request struct {
	Model        string
	Temperature  float64
	MaxTokens    int64
	SystemPrompt string
	UserPrompt   string
}

// OpenAIProvider implements Provider using the official openai-go client.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	Client openai.Client
}

type OpenAIProviderOption func(*OpenAIProvider)

func WithAPIKey(apiKey string) OpenAIProviderOption {
	return func(p *OpenAIProvider) {
		p.apiKey = apiKey
	}
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) OpenAIProviderOption {
	return func(p *OpenAIProvider) {
		p.baseURL = baseURL
	}
}

func WithHTTPClient(c *http.Client) OpenAIProviderOption {
	return func(p *OpenAIProvider) {
		p.httpClient = c
	}
}
