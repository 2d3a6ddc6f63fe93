package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"midas/pkg/errors"
)

// chatClient speaks the OpenAI-compatible chat completions wire format
// shared by DeepSeek and OpenRouter.
type chatClient struct {
	name        string
	apiURL      string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	headers     map[string]string
	httpClient  *http.Client
}

func newChatClient(name, apiURL, apiKey, model string, maxTokens int, temperature float64, timeout time.Duration) *chatClient {
	return &chatClient{
		name:        name,
		apiURL:      apiURL,
		apiKey:      apiKey,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		headers:     map[string]string{},
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// OpenAI-compatible request/response types
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *chatClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.NewProviderError(c.name, 0, "API key not configured", errors.ErrInvalidInput)
	}

	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.NewProviderError(c.name, 0, "request timeout", errors.ErrTimeout)
		}
		return "", errors.NewProviderError(c.name, 0, err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewProviderError(c.name, resp.StatusCode, "read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp chatErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return "", errors.NewProviderError(c.name, resp.StatusCode, errResp.Error.Message, nil)
		}
		return "", errors.NewProviderError(c.name, resp.StatusCode, string(respBody), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.NewProviderError(c.name, resp.StatusCode, "unmarshal response", err)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.NewProviderError(c.name, resp.StatusCode, "empty choices in response", nil)
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *chatClient) close() {
	c.httpClient.CloseIdleConnections()
}
