package ai

import (
	"strings"

	"midas/internal/adapters/config"
	"midas/pkg/logger"
)

// Key prefixes the providers hand out. Probing them locally avoids
// burning a network round-trip on a key that cannot possibly work.
const (
	openRouterKeyPrefix = "sk-or-"
	deepseekKeyPrefix   = "sk-"
)

// BuildRouter assembles the provider chain from configuration.
// OpenRouter is registered before DeepSeek, matching the preferred
// order of the backends. Keys that fail the prefix probe are skipped
// with a warning rather than rejected, so a single misconfigured
// credential never takes the whole chain down. The local fallback is
// always attached, which makes the router total: it can answer even
// with zero valid keys.
func BuildRouter(cfg config.AIConfig) *Router {
	log := logger.Get().With("component", "ai_factory")

	var providers []ChatProvider

	if key := strings.TrimSpace(cfg.OpenRouterKey); key != "" {
		if strings.HasPrefix(key, openRouterKeyPrefix) {
			providers = append(providers, NewOpenRouterProvider(key, cfg.MaxTokens, cfg.Temperature, cfg.RequestTimeout))
		} else {
			log.Warnf("openrouter key does not look valid (expected %q prefix), skipping", openRouterKeyPrefix)
		}
	}

	if key := strings.TrimSpace(cfg.DeepSeekKey); key != "" {
		if strings.HasPrefix(key, deepseekKeyPrefix) && !strings.HasPrefix(key, openRouterKeyPrefix) {
			providers = append(providers, NewDeepSeekProvider(key, cfg.MaxTokens, cfg.Temperature, cfg.RequestTimeout))
		} else {
			log.Warnf("deepseek key does not look valid (expected %q prefix), skipping", deepseekKeyPrefix)
		}
	}

	if len(providers) == 0 {
		log.Warn("no ai providers configured, responses will come from the local fallback")
	}

	return NewRouter(providers, NewFallbackProvider(), NewMarkerClassifier())
}
