package ai

import "context"

// ChatProvider is the contract each AI backend implementation must
// satisfy. Complete returns the assistant's text for a prompt pair or a
// *errors.ProviderError describing why the backend could not answer.
type ChatProvider interface {
	Name() string

	// Complete sends one system+user prompt pair and returns the
	// response text.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Close releases any network resources held by the provider.
	// It must be safe to call more than once.
	Close() error
}

// ProviderInfo is the observable router state. Available lists only the
// named backends; the local fallback is reported separately because it
// is not a real provider and never becomes active.
type ProviderInfo struct {
	Active            string
	Available         []string
	Count             int
	FallbackAvailable bool
}

// ResponseClassifier decides whether a provider response is
// error-shaped. It exists as an interface because substring sniffing is
// a known-fragile heuristic; a structured status contract can replace
// it without touching the router.
type ResponseClassifier interface {
	IsError(response string) bool
}
