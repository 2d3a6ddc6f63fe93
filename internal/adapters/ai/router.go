package ai

import (
	"context"
	"sync"
	"time"

	"midas/internal/metrics"
	"midas/pkg/errors"
	"midas/pkg/logger"
)

// Router dispatches prompts to the active AI provider and fails over to
// the remaining providers in registration order when the active one
// errors. A switch is sticky: once a provider answers, it stays active
// until it fails in turn. The local fallback provider is terminal and
// never becomes active, so a later call retries the real backends.
type Router struct {
	mu         sync.RWMutex
	active     string
	providers  []ChatProvider
	fallback   ChatProvider
	classifier ResponseClassifier
	log        *logger.Logger
}

// NewRouter creates a router over the given providers. The first
// provider becomes the initial active one; with no providers every
// request goes straight to the fallback.
func NewRouter(providers []ChatProvider, fallback ChatProvider, classifier ResponseClassifier) *Router {
	r := &Router{
		providers:  providers,
		fallback:   fallback,
		classifier: classifier,
		log:        logger.Get().With("component", "ai_router"),
	}
	if len(providers) > 0 {
		r.active = providers[0].Name()
	} else {
		r.active = ProviderNameFallback
	}
	return r
}

// Respond sends the prompt pair to the active provider, failing over
// through the remaining providers and finally the local fallback. It
// returns the response text together with the name of the provider that
// produced it. Respond only errors when even the fallback cannot
// answer, which for the template fallback means never.
func (r *Router) Respond(ctx context.Context, systemPrompt, userPrompt string) (string, string, error) {
	previous := r.ActiveProvider()

	for _, p := range r.ordered(previous) {
		text, err := r.tryProvider(ctx, p, systemPrompt, userPrompt)
		if err != nil {
			r.log.Warnf("provider %s failed: %v", p.Name(), err)
			continue
		}
		if p.Name() != previous {
			metrics.ProviderFailovers.WithLabelValues(previous, p.Name()).Inc()
			r.log.Infof("switched active provider: %s -> %s", previous, p.Name())
		}
		r.setActive(p.Name())
		return text, p.Name(), nil
	}

	text, err := r.tryProvider(ctx, r.fallback, systemPrompt, userPrompt)
	if err != nil {
		return "", "", errors.Wrap(errors.ErrNoProviders, "all providers failed")
	}
	if previous != ProviderNameFallback {
		metrics.ProviderFailovers.WithLabelValues(previous, ProviderNameFallback).Inc()
		r.log.Warnf("all providers failed, served from fallback (active stays %s)", previous)
	}
	return text, ProviderNameFallback, nil
}

// tryProvider runs one completion and applies the response classifier:
// an error-shaped body counts as a failure even when the transport
// succeeded.
func (r *Router) tryProvider(ctx context.Context, p ChatProvider, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	text, err := p.Complete(ctx, systemPrompt, userPrompt)
	metrics.ProviderLatency.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(p.Name(), "error").Inc()
		return "", err
	}
	if r.classifier != nil && r.classifier.IsError(text) {
		metrics.ProviderCalls.WithLabelValues(p.Name(), "error").Inc()
		return "", errors.NewProviderError(p.Name(), 0, "error-shaped response", errors.ErrProviderUnavailable)
	}
	metrics.ProviderCalls.WithLabelValues(p.Name(), "success").Inc()
	return text, nil
}

// ordered returns the providers with the active one first and the rest
// in registration order.
func (r *Router) ordered(active string) []ChatProvider {
	out := make([]ChatProvider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Name() == active {
			out = append(out, p)
		}
	}
	for _, p := range r.providers {
		if p.Name() != active {
			out = append(out, p)
		}
	}
	return out
}

// ActiveProvider returns the name of the currently active provider.
func (r *Router) ActiveProvider() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *Router) setActive(name string) {
	r.mu.Lock()
	r.active = name
	r.mu.Unlock()
}

// Info reports the router state: the active provider and the registered
// backends. The fallback is not listed among them.
func (r *Router) Info() ProviderInfo {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return ProviderInfo{
		Active:            r.ActiveProvider(),
		Available:         names,
		Count:             len(names),
		FallbackAvailable: r.fallback != nil,
	}
}

// Close shuts down every provider. Close errors are logged, not
// propagated, so one misbehaving backend cannot skip the rest.
func (r *Router) Close() {
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			r.log.Warnf("close %s: %v", p.Name(), err)
		}
	}
	if r.fallback == nil {
		return
	}
	if err := r.fallback.Close(); err != nil {
		r.log.Warnf("close %s: %v", r.fallback.Name(), err)
	}
}
