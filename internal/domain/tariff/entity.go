package tariff

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tier identifies a broker fee schedule
type Tier string

const (
	TierInvestor Tier = "investor"
	TierTrader   Tier = "trader"
	TierPremium  Tier = "premium"
	TierStandard Tier = "standard"
)

// String returns string representation
func (t Tier) String() string {
	return string(t)
}

// Valid checks if the tier is known
func (t Tier) Valid() bool {
	switch t {
	case TierInvestor, TierTrader, TierPremium, TierStandard:
		return true
	}
	return false
}

// Info is a resolved broker fee schedule. Rates are percentages of the
// gross trade amount; MinCommission is a flat floor per trade.
type Info struct {
	Name          string
	Tier          Tier
	BuyRatePct    decimal.Decimal
	SellRatePct   decimal.Decimal
	MinCommission decimal.Decimal
	MonthlyFee    decimal.Decimal
	Features      []string
}

// RateFor returns the commission rate for a trade direction.
// Buy rate is the default for unrecognized directions.
func (i Info) RateFor(direction string) decimal.Decimal {
	if strings.EqualFold(direction, "sell") {
		return i.SellRatePct
	}
	return i.BuyRatePct
}

func rate(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// tierTable is the static fee schedule per tier. This is configuration
// data carried from the broker's published tariffs, not derived values.
var tierTable = map[Tier]Info{
	TierInvestor: {
		Name:          "Investor",
		Tier:          TierInvestor,
		BuyRatePct:    rate("0.3"),
		SellRatePct:   rate("0.3"),
		MinCommission: decimal.Zero,
		MonthlyFee:    decimal.Zero,
		Features: []string{
			"0.3% per trade",
			"No monthly fee",
			"Suited for long-term investing",
		},
	},
	TierTrader: {
		Name:          "Trader",
		Tier:          TierTrader,
		BuyRatePct:    rate("0.04"),
		SellRatePct:   rate("0.04"),
		MinCommission: decimal.Zero,
		MonthlyFee:    rate("390"),
		Features: []string{
			"0.04% per trade",
			"Monthly fee up to 390 RUB",
			"Suited for active trading",
		},
	},
	TierPremium: {
		Name:          "Premium",
		Tier:          TierPremium,
		BuyRatePct:    rate("0.025"),
		SellRatePct:   rate("0.025"),
		MinCommission: decimal.Zero,
		MonthlyFee:    decimal.Zero,
		Features: []string{
			"Premium terms",
			"Personal manager",
			"Lowest commissions",
		},
	},
	TierStandard: {
		Name:          "Standard",
		Tier:          TierStandard,
		BuyRatePct:    rate("0.05"),
		SellRatePct:   rate("0.05"),
		MinCommission: rate("1.0"),
		MonthlyFee:    decimal.Zero,
		Features: []string{
			"Standard terms",
			"0.05% per trade",
			"No monthly fee",
		},
	},
}

// InfoFor returns the fee schedule for a tier, standard if unknown.
func InfoFor(tier Tier) Info {
	if info, ok := tierTable[tier]; ok {
		return info
	}
	return tierTable[TierStandard]
}
