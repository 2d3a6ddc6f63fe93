package ai

import (
	"context"
	"sync"
	"time"
)

const (
	deepseekAPIURL = "https://api.deepseek.com/v1/chat/completions"
	deepseekModel  = "deepseek-chat"

	// ProviderNameDeepSeek identifies the DeepSeek backend.
	ProviderNameDeepSeek = "deepseek"
)

// DeepSeekProvider talks to the DeepSeek chat completions API.
type DeepSeekProvider struct {
	client    *chatClient
	closeOnce sync.Once
}

var _ ChatProvider = (*DeepSeekProvider)(nil)

// NewDeepSeekProvider creates a DeepSeek provider.
func NewDeepSeekProvider(apiKey string, maxTokens int, temperature float64, timeout time.Duration) *DeepSeekProvider {
	return &DeepSeekProvider{
		client: newChatClient(ProviderNameDeepSeek, deepseekAPIURL, apiKey, deepseekModel, maxTokens, temperature, timeout),
	}
}

// Name returns provider name.
func (p *DeepSeekProvider) Name() string { return ProviderNameDeepSeek }

// Complete sends a chat completion request to DeepSeek.
func (p *DeepSeekProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return p.client.complete(ctx, systemPrompt, userPrompt)
}

// Close releases idle connections. Safe to call repeatedly.
func (p *DeepSeekProvider) Close() error {
	p.closeOnce.Do(p.client.close)
	return nil
}
