package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"midas/internal/adapters/broker"
	"midas/internal/domain/instrument"
	"midas/pkg/errors"
	"midas/pkg/logger"
)

// PartialError reports accounts that could not be aggregated. It is
// returned by AggregatePartial alongside the successfully consolidated
// remainder so callers can disclose the gap instead of presenting a
// silently shrunken portfolio.
type PartialError struct {
	FailedAccounts []string
}

// Error implements the error interface
func (e *PartialError) Error() string {
	return fmt.Sprintf("aggregation incomplete: %d account(s) failed: %s",
		len(e.FailedAccounts), strings.Join(e.FailedAccounts, ", "))
}

// Unwrap returns the aggregation sentinel
func (e *PartialError) Unwrap() error {
	return errors.ErrAggregation
}

// Aggregator consolidates per-account positions and cash into a single
// portfolio view. It is stateless; every call pulls fresh data.
type Aggregator struct {
	client       broker.Client
	ref          *instrument.Reference
	baseCurrency string
	log          *logger.Logger
}

// NewAggregator creates an aggregator over a brokerage client.
// baseCurrency selects which cash rows count toward totals; cash in any
// other currency is ignored (no FX conversion is attempted).
func NewAggregator(client broker.Client, ref *instrument.Reference, baseCurrency string) *Aggregator {
	return &Aggregator{
		client:       client,
		ref:          ref,
		baseCurrency: strings.ToLower(baseCurrency),
		log:          logger.Get().With("component", "portfolio_aggregator"),
	}
}

// Aggregate builds the consolidated portfolio, failing the whole
// aggregation if any account's data cannot be fetched.
func (a *Aggregator) Aggregate(ctx context.Context) (*Consolidated, error) {
	consolidated, failed, err := a.aggregate(ctx)
	if err != nil {
		return nil, err
	}
	if len(failed) > 0 {
		return nil, &PartialError{FailedAccounts: failed}
	}
	return consolidated, nil
}

// AggregatePartial builds the consolidated portfolio from the accounts
// that could be fetched, returning the IDs of those that failed. It
// errors only when account listing fails or no account succeeded.
func (a *Aggregator) AggregatePartial(ctx context.Context) (*Consolidated, []string, error) {
	consolidated, failed, err := a.aggregate(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(consolidated.Accounts) == 0 && len(failed) > 0 {
		return nil, failed, &PartialError{FailedAccounts: failed}
	}
	return consolidated, failed, nil
}

func (a *Aggregator) aggregate(ctx context.Context) (*Consolidated, []string, error) {
	rawAccounts, err := a.client.ListAccounts(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrAggregation, err.Error())
	}

	consolidated := &Consolidated{}
	var failed []string

	for _, raw := range rawAccounts {
		account, err := a.buildAccount(ctx, raw)
		if err != nil {
			a.log.Warnf("account %s skipped: %v", raw.ID, err)
			failed = append(failed, raw.ID)
			continue
		}

		consolidated.Accounts = append(consolidated.Accounts, *account)
		consolidated.TotalValue = consolidated.TotalValue.Add(account.TotalValue)
		consolidated.TotalInvested = consolidated.TotalInvested.Add(account.TotalInvested)
		consolidated.TotalCash = consolidated.TotalCash.Add(account.CashBalance)
	}

	consolidated.TotalYield = consolidated.TotalValue.Sub(consolidated.TotalInvested)
	if consolidated.TotalInvested.IsPositive() {
		consolidated.TotalYieldPct = consolidated.TotalYield.Div(consolidated.TotalInvested).Mul(hundred)
	}

	return consolidated, failed, nil
}

func (a *Aggregator) buildAccount(ctx context.Context, raw broker.RawAccount) (*Account, error) {
	rawPositions, err := a.client.GetPositions(ctx, raw.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get positions")
	}

	cashRows, err := a.client.GetCashBalances(ctx, raw.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get cash balances")
	}

	account := &Account{
		ID:   raw.ID,
		Name: raw.Name,
		Type: raw.Type,
	}

	for _, rawPos := range rawPositions {
		// Zero and negative balances are dropped, never kept with
		// zero weight.
		if rawPos.Quantity <= 0 {
			continue
		}
		pos := a.buildPosition(rawPos)
		account.Positions = append(account.Positions, pos)
		account.TotalValue = account.TotalValue.Add(pos.MarketValue)
		account.TotalInvested = account.TotalInvested.Add(pos.InvestedValue)
	}

	// Only base-currency cash counts; other currencies are fetched but
	// discarded, matching broker statement behavior.
	for _, row := range cashRows {
		if strings.ToLower(row.Currency) == a.baseCurrency {
			account.CashBalance = account.CashBalance.Add(row.Amount)
		}
	}

	account.TotalValue = account.TotalValue.Add(account.CashBalance)
	return account, nil
}

func (a *Aggregator) buildPosition(raw broker.RawPosition) Position {
	quantity := decimal.NewFromInt(raw.Quantity)
	marketValue := quantity.Mul(raw.CurrentPrice)
	investedValue := quantity.Mul(raw.AveragePrice)
	pnl := marketValue.Sub(investedValue)

	yieldPct := decimal.Zero
	if investedValue.IsPositive() {
		yieldPct = pnl.Div(investedValue).Mul(hundred)
	}

	name := raw.Name
	sector := a.ref.SectorOf(raw.Ticker)
	if inst, ok := a.ref.Lookup(raw.Ticker); ok && name == "" {
		name = inst.Name
	}

	return Position{
		Ticker:        strings.ToUpper(raw.Ticker),
		Name:          name,
		Kind:          mapKind(raw.InstrumentType),
		Sector:        sector,
		Quantity:      raw.Quantity,
		CurrentPrice:  raw.CurrentPrice,
		AverageCost:   raw.AveragePrice,
		MarketValue:   marketValue,
		InvestedValue: investedValue,
		UnrealizedPnL: pnl,
		YieldPct:      yieldPct,
	}
}

func mapKind(instrumentType string) instrument.Kind {
	switch strings.ToLower(instrumentType) {
	case "share", "stock":
		return instrument.KindStock
	case "bond":
		return instrument.KindBond
	case "etf":
		return instrument.KindETF
	case "currency":
		return instrument.KindCurrency
	default:
		return instrument.KindStock
	}
}
