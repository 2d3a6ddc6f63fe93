package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"midas/internal/domain/instrument"
	"midas/internal/domain/portfolio"
	"midas/internal/domain/trade"
)

// Allocation thresholds for the rule-based strategy. Mirrors a classic
// 70/30 equity/bond split for a growth-oriented portfolio.
var (
	targetStockPct = decimal.NewFromInt(70)
	targetBondPct  = decimal.NewFromInt(30)

	minCashForStocks = decimal.NewFromInt(10000)
	minCashForBonds  = decimal.NewFromInt(5000)

	lowYieldThresholdPct = decimal.NewFromInt(8)
)

// maxHeuristicActions caps the rule-based plan so a degenerate
// portfolio cannot produce an unbounded shopping list.
const maxHeuristicActions = 5

// Budget split when free cash is deployed: 70% equities, 30% bonds,
// with the equity slice spread over two growth names and one dividend
// name.
var (
	stockBudgetShare    = decimal.NewFromFloat(0.7)
	bondBudgetShare     = decimal.NewFromFloat(0.3)
	growthPositionShare = decimal.NewFromFloat(0.4)
	divPositionShare    = decimal.NewFromFloat(0.2)
)

// Candidate tickers, in preference order. Fixed order keeps the
// heuristic deterministic.
var (
	growthTickers   = []string{"YNDX", "TCSG", "POLY", "GMKN"}
	dividendTickers = []string{"SBER", "GAZP", "LKOH"}
	bondTickers     = []string{"SU26230", "SU26238", "SU26242"}
)

// Heuristic produces a deterministic rule-based strategy from the
// portfolio's current allocation. It never calls an AI backend, so it
// is the terminal state of strategy synthesis: when every model fails
// or returns garbage, this path still yields a costed plan.
type Heuristic struct {
	ref *instrument.Reference
}

// NewHeuristic creates the rule-based strategy builder.
func NewHeuristic(ref *instrument.Reference) *Heuristic {
	return &Heuristic{ref: ref}
}

// Build derives a strategy from the portfolio allocation. The result
// may legitimately carry zero actions when the portfolio is already
// balanced or there is no free cash to deploy.
func (h *Heuristic) Build(p *portfolio.Consolidated) *Strategy {
	weights := p.KindWeights()
	stockPct := weights[instrument.KindStock]
	bondPct := weights[instrument.KindBond]
	cash := p.TotalCash

	var actions []trade.Action

	if stockPct.LessThan(targetStockPct) && cash.GreaterThan(minCashForStocks) {
		budget := cash.Mul(stockBudgetShare)
		actions = append(actions, h.stockActions(p, budget)...)
	}

	if bondPct.LessThan(targetBondPct) && cash.GreaterThan(minCashForBonds) {
		if a, ok := h.bondAction(cash.Mul(bondBudgetShare)); ok {
			actions = append(actions, a)
		}
	}

	// A lagging portfolio gets a growth name even when the equity share
	// is already on target.
	if len(actions) == 0 && p.TotalYieldPct.LessThan(lowYieldThresholdPct) && cash.GreaterThan(minCashForStocks) {
		actions = h.stockActions(p, cash.Mul(stockBudgetShare))
	}

	if len(actions) > maxHeuristicActions {
		actions = actions[:maxHeuristicActions]
	}

	return &Strategy{
		Name:            "Balanced Growth Strategy",
		TargetReturnPct: decimal.NewFromFloat(10.5),
		RiskLevel:       RiskMedium,
		TimeHorizon:     "3-6 months",
		Actions:         actions,
		TargetAllocation: map[string]decimal.Decimal{
			"stocks": decimal.NewFromInt(65),
			"bonds":  decimal.NewFromInt(25),
			"cash":   decimal.NewFromInt(10),
		},
		Source: trade.SourceAlgorithm,
	}
}

// stockActions proposes up to two growth buys and one dividend buy,
// preferring tickers the portfolio does not already hold.
func (h *Heuristic) stockActions(p *portfolio.Consolidated, budget decimal.Decimal) []trade.Action {
	var actions []trade.Action

	growth := 0
	for _, ticker := range growthTickers {
		if growth == 2 {
			break
		}
		if p.HoldsTicker(ticker) {
			continue
		}
		if a, ok := h.buyWithin(ticker, budget.Mul(growthPositionShare), "Рост сектора, потенциал выше рынка"); ok {
			actions = append(actions, a)
			growth++
		}
	}

	for _, ticker := range dividendTickers {
		if p.HoldsTicker(ticker) {
			continue
		}
		if a, ok := h.buyWithin(ticker, budget.Mul(divPositionShare), "Стабильный дивидендный доход"); ok {
			actions = append(actions, a)
		}
		break
	}

	return actions
}

func (h *Heuristic) bondAction(budget decimal.Decimal) (trade.Action, bool) {
	for _, ticker := range bondTickers {
		if a, ok := h.buyWithin(ticker, budget, "Защитная часть портфеля, предсказуемый купон"); ok {
			return a, true
		}
	}
	return trade.Action{}, false
}

// buyWithin sizes a BUY so its gross amount fits the budget at the
// instrument's typical price. Instruments too expensive for the budget
// are skipped.
func (h *Heuristic) buyWithin(ticker string, budget decimal.Decimal, rationale string) (trade.Action, bool) {
	price, ok := h.ref.TypicalPriceOf(ticker)
	if !ok || price.IsZero() || budget.LessThan(price) {
		return trade.Action{}, false
	}
	qty := budget.Div(price).IntPart()
	if qty <= 0 {
		return trade.Action{}, false
	}
	return trade.Action{
		Side:      trade.SideBuy,
		Ticker:    ticker,
		Quantity:  qty,
		Rationale: fmt.Sprintf("%s (бюджет %s руб.)", rationale, budget.StringFixed(0)),
		Urgency:   trade.UrgencyMedium,
		Source:    trade.SourceAlgorithm,
	}, true
}
