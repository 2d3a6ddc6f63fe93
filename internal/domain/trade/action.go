package trade

import (
	"github.com/shopspring/decimal"

	"midas/pkg/errors"
)

// Side is the trade direction
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid checks if the side is known
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// String returns string representation
func (s Side) String() string {
	return string(s)
}

// Urgency ranks how soon an action should be executed
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Source records which engine proposed an action
type Source string

const (
	SourceAI        Source = "ai"
	SourceAlgorithm Source = "algorithm-fallback"
)

// Action is a proposed trade. PriceHint may be zero, in which case the
// costing engine substitutes the instrument's typical price.
type Action struct {
	Side             Side
	Ticker           string
	Quantity         int64
	PriceHint        decimal.Decimal
	Rationale        string
	ExpectedYieldPct decimal.Decimal
	Urgency          Urgency
	Source           Source

	// Cost is attached by the costing engine; nil until priced.
	Cost *CostBreakdown
}

// Validate checks structural validity of the action.
func (a Action) Validate() error {
	if !a.Side.Valid() {
		return errors.Wrapf(errors.ErrInvalidAction, "unknown side %q", a.Side)
	}
	if a.Ticker == "" {
		return errors.Wrap(errors.ErrInvalidAction, "empty ticker")
	}
	if a.Quantity <= 0 {
		return errors.Wrapf(errors.ErrInvalidAction, "non-positive quantity %d", a.Quantity)
	}
	if a.PriceHint.IsNegative() {
		return errors.Wrap(errors.ErrInvalidAction, "negative price hint")
	}
	return nil
}

// CostBreakdown is the commission-aware price of one action.
// TotalCost is net cost for a BUY and net proceeds for a SELL.
type CostBreakdown struct {
	Price         decimal.Decimal
	PriceEstimate bool // true when Price came from the typical-price table
	GrossAmount   decimal.Decimal
	Commission    decimal.Decimal
	CommissionPct decimal.Decimal
	TotalCost     decimal.Decimal
}
