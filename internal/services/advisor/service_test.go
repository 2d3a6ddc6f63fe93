package advisor

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midas/internal/adapters/ai"
	"midas/internal/adapters/broker"
	"midas/internal/domain/instrument"
	"midas/internal/domain/portfolio"
	"midas/internal/domain/strategy"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/pkg/errors"
	"midas/pkg/logger"
)

type stubProviders struct {
	info ai.ProviderInfo
}

func (s stubProviders) Info() ai.ProviderInfo { return s.info }

type stubResponder struct {
	response string
	err      error
}

func (s stubResponder) Respond(context.Context, string, string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return s.response, "deepseek", nil
}

// failingBroker wraps the sandbox client and fails a chosen method.
type failingBroker struct {
	broker.Client
	failUserInfo bool
	failOrders   bool
}

func (b *failingBroker) GetUserInfo(ctx context.Context) (broker.UserInfo, error) {
	if b.failUserInfo {
		return broker.UserInfo{}, errors.ErrUnavailable
	}
	return b.Client.GetUserInfo(ctx)
}

func (b *failingBroker) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	if b.failOrders {
		return broker.Order{}, errors.ErrOrderRejected
	}
	return b.Client.PlaceOrder(ctx, req)
}

func newTestService(t *testing.T, client broker.Client, responder strategy.Responder) *Service {
	t.Helper()
	ref := instrument.NewReference()
	policy := tariff.NewPolicy()
	engine := trade.NewEngine(ref)
	synth := strategy.NewSynthesizer(responder, strategy.NewParser(ref), strategy.NewHeuristic(ref), engine, policy)
	aggregator := portfolio.NewAggregator(client, ref, "rub")

	return NewService(
		client,
		aggregator,
		policy,
		engine,
		synth,
		stubProviders{info: ai.ProviderInfo{Active: "deepseek", Available: []string{"openrouter", "deepseek"}, Count: 2, FallbackAvailable: true}},
		logger.Get().With("component", "advisor_test"),
	)
}

func TestService_GetConsolidatedPortfolio(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{})

	p, err := s.GetConsolidatedPortfolio(t.Context())
	require.NoError(t, err)
	require.Len(t, p.Accounts, 2)

	// SBER 30000 + GAZP 8500 + VTBR 6 + rub 10000, then OFZ 10100 + rub 5000.
	// USD cash is excluded from the base-currency total.
	assert.True(t, p.TotalValue.Equal(decimal.NewFromFloat(63606)), "got %s", p.TotalValue)
	assert.True(t, p.TotalCash.Equal(decimal.NewFromInt(15000)))

	// Zero-quantity position is dropped.
	for _, pos := range p.AllPositions() {
		assert.NotEqual(t, "ROSN", pos.Ticker)
	}
}

func TestService_GetTariffInfo(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{})

	info := s.GetTariffInfo(t.Context())
	// IIS + brokerage account mix detects the investor tier.
	assert.Equal(t, tariff.TierInvestor, info.Tier)

	// Memoized on second call.
	assert.Equal(t, info, s.GetTariffInfo(t.Context()))
}

func TestService_GetTariffInfoTotalOnBrokerFailure(t *testing.T) {
	client := &failingBroker{Client: broker.NewSandboxClient(), failUserInfo: true}
	s := newTestService(t, client, stubResponder{})

	info := s.GetTariffInfo(t.Context())
	assert.Equal(t, tariff.TierStandard, info.Tier)
}

func TestService_EstimateCost(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{})

	action := trade.Action{
		Side:      trade.SideBuy,
		Ticker:    "SBER",
		Quantity:  10,
		PriceHint: decimal.NewFromInt(300),
	}
	cost, err := s.EstimateCost(action)
	require.NoError(t, err)
	assert.True(t, cost.GrossAmount.Equal(decimal.NewFromInt(3000)))
	assert.True(t, cost.TotalCost.GreaterThan(cost.GrossAmount))

	_, err = s.EstimateCost(trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: 0})
	assert.ErrorIs(t, err, errors.ErrInvalidAction)
}

func TestService_BuildStrategyDegradesWithoutAI(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{err: errors.ErrProviderUnavailable})

	p, err := s.GetConsolidatedPortfolio(t.Context())
	require.NoError(t, err)

	result, err := s.BuildStrategy(t.Context(), p, "")
	require.NoError(t, err)
	assert.Equal(t, trade.SourceAlgorithm, result.Source)
	for _, a := range result.Actions {
		assert.NotNil(t, a.Cost)
	}
}

func TestService_ProviderInfo(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{})

	info := s.ProviderInfo()
	assert.Equal(t, "deepseek", info.Active)
	assert.Equal(t, 2, info.Count)
}

func TestService_ExecuteActionsOnlyHighUrgency(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{})

	actions := []trade.Action{
		{Side: trade.SideBuy, Ticker: "SBER", Quantity: 10, Urgency: trade.UrgencyHigh},
		{Side: trade.SideSell, Ticker: "GAZP", Quantity: 5, Urgency: trade.UrgencyMedium},
		{Side: trade.SideBuy, Ticker: "YNDX", Quantity: 1, Urgency: trade.UrgencyLow},
	}
	results := s.ExecuteActions(t.Context(), "sandbox-001", actions)
	require.Len(t, results, 1)
	assert.Equal(t, "SBER", results[0].Action.Ticker)
	assert.NotEmpty(t, results[0].OrderID)
	assert.NoError(t, results[0].Err)
}

func TestService_PlaceOrderValidation(t *testing.T) {
	s := newTestService(t, broker.NewSandboxClient(), stubResponder{})

	_, err := s.PlaceOrder(t.Context(), "sandbox-001", trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: -1})
	assert.ErrorIs(t, err, errors.ErrInvalidAction)

	order, err := s.PlaceOrder(t.Context(), "sandbox-001", trade.Action{Side: trade.SideSell, Ticker: "GAZP", Quantity: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
}

func TestService_PlaceOrderRejected(t *testing.T) {
	client := &failingBroker{Client: broker.NewSandboxClient(), failOrders: true}
	s := newTestService(t, client, stubResponder{})

	_, err := s.PlaceOrder(t.Context(), "sandbox-001", trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: 1})
	assert.ErrorIs(t, err, errors.ErrOrderRejected)
}
