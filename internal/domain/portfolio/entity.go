package portfolio

import (
	"github.com/shopspring/decimal"

	"midas/internal/domain/instrument"
	"midas/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Position is one holding inside one account, enriched from the
// instrument reference and carrying its derived values.
type Position struct {
	Ticker       string
	Name         string
	Kind         instrument.Kind
	Sector       string
	Quantity     int64
	CurrentPrice decimal.Decimal
	AverageCost  decimal.Decimal

	// Derived at aggregation time
	MarketValue   decimal.Decimal
	InvestedValue decimal.Decimal
	UnrealizedPnL decimal.Decimal
	YieldPct      decimal.Decimal
}

// Account is a brokerage sub-ledger with consolidated positions and
// base-currency cash.
type Account struct {
	ID          string
	Name        string
	Type        string
	Positions   []Position
	CashBalance decimal.Decimal

	// Derived at aggregation time
	TotalValue    decimal.Decimal
	TotalInvested decimal.Decimal
}

// Consolidated is the aggregate view across all accounts for one user.
// It is rebuilt fresh on every request and read-only once built.
type Consolidated struct {
	Accounts      []Account
	TotalValue    decimal.Decimal
	TotalInvested decimal.Decimal
	TotalCash     decimal.Decimal
	TotalYield    decimal.Decimal
	TotalYieldPct decimal.Decimal
}

// Validate checks structural sanity of the portfolio.
func (c *Consolidated) Validate() error {
	if c == nil {
		return errors.Wrap(errors.ErrInvalidPortfolio, "nil portfolio")
	}
	if c.TotalValue.IsNegative() || c.TotalInvested.IsNegative() || c.TotalCash.IsNegative() {
		return errors.Wrap(errors.ErrInvalidPortfolio, "negative totals")
	}
	return nil
}

// AllPositions flattens positions across accounts.
func (c *Consolidated) AllPositions() []Position {
	var out []Position
	for _, acc := range c.Accounts {
		out = append(out, acc.Positions...)
	}
	return out
}

// PositionsValue is the market value of all holdings, excluding cash.
func (c *Consolidated) PositionsValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range c.AllPositions() {
		total = total.Add(pos.MarketValue)
	}
	return total
}

// KindWeights returns the percentage weight of each asset class over the
// invested (non-cash) part of the portfolio.
func (c *Consolidated) KindWeights() map[instrument.Kind]decimal.Decimal {
	weights := make(map[instrument.Kind]decimal.Decimal)
	total := c.PositionsValue()
	if total.IsZero() {
		return weights
	}
	for _, pos := range c.AllPositions() {
		weights[pos.Kind] = weights[pos.Kind].Add(pos.MarketValue.Div(total).Mul(hundred))
	}
	return weights
}

// SectorWeights returns the percentage weight of each sector over the
// invested (non-cash) part of the portfolio.
func (c *Consolidated) SectorWeights() map[string]decimal.Decimal {
	weights := make(map[string]decimal.Decimal)
	total := c.PositionsValue()
	if total.IsZero() {
		return weights
	}
	for _, pos := range c.AllPositions() {
		weights[pos.Sector] = weights[pos.Sector].Add(pos.MarketValue.Div(total).Mul(hundred))
	}
	return weights
}

// HoldsTicker reports whether any account holds the ticker.
func (c *Consolidated) HoldsTicker(ticker string) bool {
	for _, pos := range c.AllPositions() {
		if pos.Ticker == ticker {
			return true
		}
	}
	return false
}
