package tariff

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"midas/pkg/logger"
)

// AccountMeta is the slice of account metadata the detection heuristic
// inspects. It mirrors what the brokerage user endpoint exposes.
type AccountMeta struct {
	ID   string
	Name string
	Type string
}

// UserMeta is the raw user metadata used for tariff detection.
type UserMeta struct {
	PremiumStatus bool
	TariffCode    string
	Accounts      []AccountMeta
}

// Policy resolves the broker fee schedule once per session and serves it
// from cache afterwards. Resolution is total: detection failures fall back
// to the standard tier, never to an error. Duplicate resolution under
// concurrent first use is harmless (idempotent write).
type Policy struct {
	mu       sync.Mutex
	resolved *Info
	log      *logger.Logger
}

// NewPolicy creates an unresolved policy.
func NewPolicy() *Policy {
	return &Policy{log: logger.Get().With("component", "tariff_policy")}
}

// Resolve detects the tariff from user metadata, memoizing the result.
// Subsequent calls return the cached schedule regardless of input.
func (p *Policy) Resolve(meta UserMeta) Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved != nil {
		return *p.resolved
	}

	info := InfoFor(detectTier(meta))
	p.resolved = &info
	p.log.Infof("tariff detected: %s", info.Name)
	return info
}

// Current returns the resolved schedule, resolving with empty metadata
// (standard tier) if Resolve was never called.
func (p *Policy) Current() Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.resolved == nil {
		info := InfoFor(TierStandard)
		p.resolved = &info
	}
	return *p.resolved
}

// CommissionRate returns the rate for a trade direction ("buy"/"sell").
func (p *Policy) CommissionRate(direction string) decimal.Decimal {
	return p.Current().RateFor(direction)
}

// MinCommission returns the flat commission floor.
func (p *Policy) MinCommission() decimal.Decimal {
	return p.Current().MinCommission
}

// detectTier is a best-effort heuristic over account metadata. The broker
// API gives no authoritative tariff confirmation, so the output is
// advisory: premium flag wins, then an explicit tariff code, then the
// account-type mix.
func detectTier(meta UserMeta) Tier {
	if meta.PremiumStatus {
		return TierPremium
	}

	if code := Tier(strings.ToLower(strings.TrimSpace(meta.TariffCode))); code.Valid() {
		return code
	}

	var hasIIS, hasBrokerage bool
	for _, acc := range meta.Accounts {
		accType := strings.ToLower(acc.Type)
		switch {
		case strings.Contains(accType, "iis"):
			hasIIS = true
		case strings.Contains(accType, "broker"):
			hasBrokerage = true
		}
	}

	switch {
	case hasIIS && hasBrokerage:
		return TierInvestor
	case len(meta.Accounts) > 2:
		return TierTrader
	default:
		return TierStandard
	}
}
