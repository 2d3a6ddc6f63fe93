package ai

import (
	"context"
	"sync"
	"time"
)

const (
	openRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel  = "deepseek/deepseek-chat"

	// ProviderNameOpenRouter identifies the OpenRouter backend.
	ProviderNameOpenRouter = "openrouter"
)

// OpenRouterProvider talks to OpenRouter, which proxies many models
// behind the same OpenAI-compatible wire format.
type OpenRouterProvider struct {
	client    *chatClient
	closeOnce sync.Once
}

var _ ChatProvider = (*OpenRouterProvider)(nil)

// NewOpenRouterProvider creates an OpenRouter provider.
func NewOpenRouterProvider(apiKey string, maxTokens int, temperature float64, timeout time.Duration) *OpenRouterProvider {
	client := newChatClient(ProviderNameOpenRouter, openRouterAPIURL, apiKey, openRouterModel, maxTokens, temperature, timeout)
	// OpenRouter attribution headers
	client.headers["HTTP-Referer"] = "https://github.com/midas-bot"
	client.headers["X-Title"] = "midas"
	return &OpenRouterProvider{client: client}
}

// Name returns provider name.
func (p *OpenRouterProvider) Name() string { return ProviderNameOpenRouter }

// Complete sends a chat completion request through OpenRouter.
func (p *OpenRouterProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.client.complete(ctx, systemPrompt, userPrompt)
}

// Close releases idle connections. Safe to call repeatedly.
func (p *OpenRouterProvider) Close() error {
	p.closeOnce.Do(p.client.close)
	return nil
}
