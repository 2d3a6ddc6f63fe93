package portfolio_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midas/internal/adapters/broker"
	"midas/internal/domain/instrument"
	"midas/internal/domain/portfolio"
	"midas/pkg/errors"
)

// mockBroker is a scriptable broker.Client for aggregation tests.
type mockBroker struct {
	accounts  []broker.RawAccount
	positions map[string][]broker.RawPosition
	cash      map[string][]broker.CashBalance
	failList  error
	failAcct  map[string]error
}

func (m *mockBroker) ListAccounts(ctx context.Context) ([]broker.RawAccount, error) {
	if m.failList != nil {
		return nil, m.failList
	}
	return m.accounts, nil
}

func (m *mockBroker) GetPositions(ctx context.Context, accountID string) ([]broker.RawPosition, error) {
	if err := m.failAcct[accountID]; err != nil {
		return nil, err
	}
	return m.positions[accountID], nil
}

func (m *mockBroker) GetCashBalances(ctx context.Context, accountID string) ([]broker.CashBalance, error) {
	if err := m.failAcct[accountID]; err != nil {
		return nil, err
	}
	return m.cash[accountID], nil
}

func (m *mockBroker) GetUserInfo(ctx context.Context) (broker.UserInfo, error) {
	return broker.UserInfo{}, nil
}

func (m *mockBroker) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	return broker.Order{OrderID: "test"}, nil
}

func (m *mockBroker) Close() error { return nil }

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func twoAccountFixture() *mockBroker {
	return &mockBroker{
		accounts: []broker.RawAccount{
			{ID: "acc-1", Name: "Main", Type: "ACCOUNT_TYPE_BROKER"},
			{ID: "acc-2", Name: "Spare", Type: "ACCOUNT_TYPE_BROKER"},
		},
		positions: map[string][]broker.RawPosition{
			"acc-1": {
				{Ticker: "SBER", InstrumentType: "share", Quantity: 100, CurrentPrice: dec("300"), AveragePrice: dec("250")},
			},
			"acc-2": {},
		},
		cash: map[string][]broker.CashBalance{
			"acc-1": {{Currency: "rub", Amount: dec("10000")}},
			"acc-2": {{Currency: "rub", Amount: dec("5000")}},
		},
		failAcct: map[string]error{},
	}
}

// Two accounts: one SBER position plus cash, one cash-only account.
func TestAggregateTwoAccounts(t *testing.T) {
	agg := portfolio.NewAggregator(twoAccountFixture(), instrument.NewReference(), "rub")

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	assert.True(t, got.TotalValue.Equal(dec("45000")), "total value %s", got.TotalValue)
	assert.True(t, got.TotalInvested.Equal(dec("25000")), "total invested %s", got.TotalInvested)
	assert.True(t, got.TotalCash.Equal(dec("15000")))
	assert.True(t, got.TotalYield.Equal(dec("20000")))

	require.Len(t, got.Accounts, 2)
	assert.True(t, got.Accounts[0].TotalValue.Equal(dec("40000")))
	assert.True(t, got.Accounts[1].TotalValue.Equal(dec("5000")))
	assert.Empty(t, got.Accounts[1].Positions)
}

// Consolidated total must equal the exact sum of per-account totals.
func TestAggregateSumInvariant(t *testing.T) {
	mock := twoAccountFixture()
	mock.positions["acc-2"] = []broker.RawPosition{
		{Ticker: "VTBR", InstrumentType: "share", Quantity: 333, CurrentPrice: dec("0.0281"), AveragePrice: dec("0.0263")},
		{Ticker: "SU26238", InstrumentType: "bond", Quantity: 7, CurrentPrice: dec("1013.37"), AveragePrice: dec("997.01")},
	}
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	sum := decimal.Zero
	for _, acc := range got.Accounts {
		sum = sum.Add(acc.TotalValue)
	}
	assert.True(t, got.TotalValue.Equal(sum), "want %s got %s", sum, got.TotalValue)
}

func TestAggregateDropsZeroQuantity(t *testing.T) {
	mock := twoAccountFixture()
	mock.positions["acc-1"] = append(mock.positions["acc-1"],
		broker.RawPosition{Ticker: "ROSN", InstrumentType: "share", Quantity: 0, CurrentPrice: dec("580"), AveragePrice: dec("540")},
	)
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Accounts[0].Positions, 1)
	assert.Equal(t, "SBER", got.Accounts[0].Positions[0].Ticker)
	assert.True(t, got.TotalValue.Equal(dec("45000")))
}

func TestAggregateIgnoresForeignCash(t *testing.T) {
	mock := twoAccountFixture()
	mock.cash["acc-1"] = append(mock.cash["acc-1"],
		broker.CashBalance{Currency: "usd", Amount: dec("500")},
		broker.CashBalance{Currency: "eur", Amount: dec("200")},
	)
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	assert.True(t, got.TotalCash.Equal(dec("15000")))
	assert.True(t, got.TotalValue.Equal(dec("45000")))
}

func TestAggregateEnrichesSector(t *testing.T) {
	agg := portfolio.NewAggregator(twoAccountFixture(), instrument.NewReference(), "rub")

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	pos := got.Accounts[0].Positions[0]
	assert.Equal(t, "Finance", pos.Sector)
	assert.True(t, pos.UnrealizedPnL.Equal(dec("5000")))
	assert.True(t, pos.YieldPct.Equal(dec("20")))
}

func TestAggregateFailsWholeOnAccountError(t *testing.T) {
	mock := twoAccountFixture()
	mock.failAcct["acc-2"] = errors.New("connection reset")
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	_, err := agg.Aggregate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAggregation))

	var partial *portfolio.PartialError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, []string{"acc-2"}, partial.FailedAccounts)
}

func TestAggregatePartialKeepsHealthyAccounts(t *testing.T) {
	mock := twoAccountFixture()
	mock.failAcct["acc-2"] = errors.New("connection reset")
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	got, failed, err := agg.AggregatePartial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acc-2"}, failed)
	require.Len(t, got.Accounts, 1)
	assert.True(t, got.TotalValue.Equal(dec("40000")))
}

func TestAggregatePartialAllFailed(t *testing.T) {
	mock := twoAccountFixture()
	mock.failAcct["acc-1"] = errors.New("down")
	mock.failAcct["acc-2"] = errors.New("down")
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	_, failed, err := agg.AggregatePartial(context.Background())
	require.Error(t, err)
	assert.Len(t, failed, 2)
}

func TestAggregateListFailure(t *testing.T) {
	mock := &mockBroker{failList: errors.New("unauthenticated")}
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	_, err := agg.Aggregate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAggregation))
}

func TestKindWeights(t *testing.T) {
	mock := twoAccountFixture()
	mock.positions["acc-2"] = []broker.RawPosition{
		{Ticker: "SU26238", InstrumentType: "bond", Quantity: 10, CurrentPrice: dec("1000"), AveragePrice: dec("1000")},
	}
	agg := portfolio.NewAggregator(mock, instrument.NewReference(), "rub")

	got, err := agg.Aggregate(context.Background())
	require.NoError(t, err)

	weights := got.KindWeights()
	// 30000 stock + 10000 bond invested
	assert.True(t, weights[instrument.KindStock].Equal(dec("75")))
	assert.True(t, weights[instrument.KindBond].Equal(dec("25")))
}
