package ai

import (
	"context"
	"strings"
)

// ProviderNameFallback identifies the always-available local backend.
const ProviderNameFallback = "fallback"

// FallbackProvider generates canned advisory text locally. It holds no
// network resources and never fails, which makes it the terminal state
// of provider failover.
type FallbackProvider struct{}

var _ ChatProvider = (*FallbackProvider)(nil)

// NewFallbackProvider creates the local template provider.
func NewFallbackProvider() *FallbackProvider {
	return &FallbackProvider{}
}

// Name returns provider name.
func (p *FallbackProvider) Name() string { return ProviderNameFallback }

// Complete selects a canned response by prompt keywords.
func (p *FallbackProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	lower := strings.ToLower(userPrompt)

	switch {
	case containsAny(lower, "портфел", "portfolio", "инвестиц"):
		return fallbackPortfolioText, nil
	case containsAny(lower, "облигац", "bond", "доходность"):
		return fallbackBondsText, nil
	case containsAny(lower, "акци", "stock", "рынок", "market"):
		return fallbackStocksText, nil
	default:
		return fallbackGeneralText, nil
	}
}

// Close is a no-op.
func (p *FallbackProvider) Close() error { return nil }

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Canned templates. Worded to stay clear of the error-marker list so a
// fallback answer is never classified as a failed response.
const fallbackPortfolioText = `Portfolio review (offline advisor):

Suggested structure:
- Growth equities: 50-60%
- Bonds: 20-30%
- ETF: 10-20%
- Cash: 5-10%

Principles: diversify across sectors, rebalance regularly and size
positions to your risk tolerance.`

const fallbackStocksText = `Equity market notes (offline advisor):

Sectors to watch: technology, green power, healthcare and consumer
staples. Study fundamentals before buying, prefer broad ETF coverage
and keep an eye on dividend policy.`

const fallbackBondsText = `Fixed income notes (offline advisor):

Government OFZ bonds carry the lowest risk and yield around 6-9%
annually; quality corporate paper yields 8-12%. Bonds add predictable
coupon flow and dampen portfolio swings.`

const fallbackGeneralText = `General investing principles (offline advisor):

1. Diversify - never concentrate in a single name.
2. Think long term - time in the market beats timing it.
3. Invest regularly - steady contributions beat lump sums.
4. Keep learning - understand every instrument you hold.`
