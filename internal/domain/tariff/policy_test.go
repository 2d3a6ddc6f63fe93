package tariff_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midas/internal/domain/tariff"
)

func TestDetectionHeuristic(t *testing.T) {
	testCases := []struct {
		name string
		meta tariff.UserMeta
		tier tariff.Tier
	}{
		{
			name: "premium flag wins",
			meta: tariff.UserMeta{PremiumStatus: true, TariffCode: "trader"},
			tier: tariff.TierPremium,
		},
		{
			name: "explicit tariff code",
			meta: tariff.UserMeta{TariffCode: "Trader"},
			tier: tariff.TierTrader,
		},
		{
			name: "unknown code falls through to account mix",
			meta: tariff.UserMeta{
				TariffCode: "vip-2000",
				Accounts: []tariff.AccountMeta{
					{ID: "1", Type: "ACCOUNT_TYPE_TINKOFF_IIS"},
					{ID: "2", Type: "ACCOUNT_TYPE_BROKER"},
				},
			},
			tier: tariff.TierInvestor,
		},
		{
			name: "more than two accounts means trader",
			meta: tariff.UserMeta{
				Accounts: []tariff.AccountMeta{
					{ID: "1", Type: "ACCOUNT_TYPE_BROKER"},
					{ID: "2", Type: "ACCOUNT_TYPE_BROKER"},
					{ID: "3", Type: "ACCOUNT_TYPE_BROKER"},
				},
			},
			tier: tariff.TierTrader,
		},
		{
			name: "no signal defaults to standard",
			meta: tariff.UserMeta{},
			tier: tariff.TierStandard,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			policy := tariff.NewPolicy()
			info := policy.Resolve(tc.meta)
			assert.Equal(t, tc.tier, info.Tier)
		})
	}
}

func TestResolveMemoizes(t *testing.T) {
	policy := tariff.NewPolicy()

	first := policy.Resolve(tariff.UserMeta{PremiumStatus: true})
	require.Equal(t, tariff.TierPremium, first.Tier)

	// A different metadata snapshot must not change the cached schedule.
	second := policy.Resolve(tariff.UserMeta{})
	assert.Equal(t, tariff.TierPremium, second.Tier)
}

func TestCurrentWithoutResolveIsStandard(t *testing.T) {
	policy := tariff.NewPolicy()

	info := policy.Current()
	assert.Equal(t, tariff.TierStandard, info.Tier)
	assert.True(t, info.MinCommission.Equal(decimal.NewFromInt(1)))
}

func TestRateForDirection(t *testing.T) {
	info := tariff.InfoFor(tariff.TierStandard)

	assert.True(t, info.RateFor("buy").Equal(decimal.RequireFromString("0.05")))
	assert.True(t, info.RateFor("SELL").Equal(decimal.RequireFromString("0.05")))

	trader := tariff.InfoFor(tariff.TierTrader)
	assert.True(t, trader.RateFor("sell").Equal(decimal.RequireFromString("0.04")))
	assert.True(t, trader.MonthlyFee.Equal(decimal.NewFromInt(390)))
}

func TestInfoForUnknownTierIsStandard(t *testing.T) {
	info := tariff.InfoFor(tariff.Tier("vip"))
	assert.Equal(t, tariff.TierStandard, info.Tier)
}
