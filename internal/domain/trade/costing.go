package trade

import (
	"github.com/shopspring/decimal"

	"midas/internal/domain/instrument"
	"midas/internal/domain/tariff"
)

var hundred = decimal.NewFromInt(100)

// DefaultPriceHint is used when the ticker is absent from the reference
// table as well. Cost estimates built on it are flagged as estimates
// instead of failing, which keeps the surface usable for unlisted tickers.
var DefaultPriceHint = decimal.NewFromInt(100)

// Engine computes commission-aware cost breakdowns. It is pure and
// deterministic given the same tariff and action.
type Engine struct {
	ref *instrument.Reference
}

// NewEngine creates a costing engine over the instrument reference.
func NewEngine(ref *instrument.Reference) *Engine {
	return &Engine{ref: ref}
}

// Cost prices one action under a fee schedule.
func (e *Engine) Cost(action Action, schedule tariff.Info) (CostBreakdown, error) {
	if err := action.Validate(); err != nil {
		return CostBreakdown{}, err
	}

	price, estimated := e.resolvePrice(action)
	gross := decimal.NewFromInt(action.Quantity).Mul(price)

	rate := schedule.RateFor(action.Side.String())
	commission := gross.Mul(rate).Div(hundred)
	if commission.LessThan(schedule.MinCommission) {
		commission = schedule.MinCommission
	}

	commissionPct := decimal.Zero
	if gross.IsPositive() {
		commissionPct = commission.Div(gross).Mul(hundred)
	}

	total := gross.Add(commission)
	if action.Side == SideSell {
		total = gross.Sub(commission)
	}

	return CostBreakdown{
		Price:         price,
		PriceEstimate: estimated,
		GrossAmount:   gross,
		Commission:    commission,
		CommissionPct: commissionPct,
		TotalCost:     total,
	}, nil
}

// resolvePrice returns the action's price hint, falling back to the
// typical-price table and finally to DefaultPriceHint.
func (e *Engine) resolvePrice(action Action) (decimal.Decimal, bool) {
	if action.PriceHint.IsPositive() {
		return action.PriceHint, false
	}
	if typical, ok := e.ref.TypicalPriceOf(action.Ticker); ok {
		return typical, true
	}
	return DefaultPriceHint, true
}
