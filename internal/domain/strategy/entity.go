package strategy

import (
	"github.com/shopspring/decimal"

	"midas/internal/domain/trade"
)

// RiskLevel is the overall risk posture of a strategy.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether the risk level is one of the known values.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Target-return band. Structured model output outside it rejects the
// whole parse: a model promising 300% went off the rails, and clamping
// its number would dress up garbage as an AI-sourced plan.
var (
	MinTargetReturnPct = decimal.NewFromInt(5)
	MaxTargetReturnPct = decimal.NewFromInt(50)
)

// Strategy is a structured trading plan. Every action carries a
// CostBreakdown by the time the strategy leaves the synthesizer.
type Strategy struct {
	Name             string
	TargetReturnPct  decimal.Decimal
	RiskLevel        RiskLevel
	TimeHorizon      string
	Actions          []trade.Action
	TargetAllocation map[string]decimal.Decimal
	Source           trade.Source
}

// TotalCost sums the net cost of all BUY actions minus the net proceeds
// of all SELL actions. Unpriced actions contribute nothing.
func (s *Strategy) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Actions {
		if a.Cost == nil {
			continue
		}
		switch a.Side {
		case trade.SideBuy:
			total = total.Add(a.Cost.TotalCost)
		case trade.SideSell:
			total = total.Sub(a.Cost.TotalCost)
		}
	}
	return total
}

// targetReturnInBand reports whether the value is acceptable.
func targetReturnInBand(v decimal.Decimal) bool {
	return !v.LessThan(MinTargetReturnPct) && !v.GreaterThan(MaxTargetReturnPct)
}
