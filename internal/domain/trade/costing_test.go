package trade_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midas/internal/domain/instrument"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/pkg/errors"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func testSchedule(buyRate, sellRate, minCommission string) tariff.Info {
	return tariff.Info{
		Name:          "test",
		Tier:          tariff.TierStandard,
		BuyRatePct:    dec(buyRate),
		SellRatePct:   dec(sellRate),
		MinCommission: dec(minCommission),
	}
}

// BUY SBER 10 @ 300 on 0.05%/min 1.0: gross 3000, commission 1.5, total 3001.5.
func TestCostBuyWithCommission(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())
	action := trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: 10, PriceHint: dec("300")}

	got, err := engine.Cost(action, testSchedule("0.05", "0.05", "1.0"))
	require.NoError(t, err)

	assert.True(t, got.GrossAmount.Equal(dec("3000")))
	assert.True(t, got.Commission.Equal(dec("1.5")))
	assert.True(t, got.TotalCost.Equal(dec("3001.5")))
	assert.False(t, got.PriceEstimate)
}

func TestCostSellNetProceeds(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())
	action := trade.Action{Side: trade.SideSell, Ticker: "GAZP", Quantity: 50, PriceHint: dec("160")}

	got, err := engine.Cost(action, testSchedule("0.05", "0.3", "0"))
	require.NoError(t, err)

	// gross 8000, sell commission 24, proceeds 7976
	assert.True(t, got.GrossAmount.Equal(dec("8000")))
	assert.True(t, got.Commission.Equal(dec("24")))
	assert.True(t, got.TotalCost.Equal(dec("7976")))
}

// Commission floor applies when the percentage commission is below it,
// including the degenerate zero-gross case.
func TestCommissionFloor(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())

	testCases := []struct {
		name       string
		quantity   int64
		price      string
		commission string
	}{
		{"floor wins on small trades", 1, "10", "1.0"},
		{"rate wins on large trades", 1000, "300", "150"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			action := trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: tc.quantity, PriceHint: dec(tc.price)}
			got, err := engine.Cost(action, testSchedule("0.05", "0.05", "1.0"))
			require.NoError(t, err)
			assert.True(t, got.Commission.Equal(dec(tc.commission)), "commission %s", got.Commission)
		})
	}
}

// BUY/SELL symmetry: total-gross == commission for BUY, gross-total == commission for SELL.
func TestCostSymmetry(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())
	schedule := testSchedule("0.3", "0.3", "1.0")

	buy := trade.Action{Side: trade.SideBuy, Ticker: "LKOH", Quantity: 7, PriceHint: dec("760")}
	sell := trade.Action{Side: trade.SideSell, Ticker: "LKOH", Quantity: 7, PriceHint: dec("760")}

	buyCost, err := engine.Cost(buy, schedule)
	require.NoError(t, err)
	sellCost, err := engine.Cost(sell, schedule)
	require.NoError(t, err)

	assert.True(t, buyCost.TotalCost.Sub(buyCost.GrossAmount).Equal(buyCost.Commission))
	assert.True(t, sellCost.GrossAmount.Sub(sellCost.TotalCost).Equal(sellCost.Commission))
}

func TestTypicalPriceFallback(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())
	action := trade.Action{Side: trade.SideBuy, Ticker: "YNDX", Quantity: 2}

	got, err := engine.Cost(action, testSchedule("0.05", "0.05", "1.0"))
	require.NoError(t, err)

	assert.True(t, got.Price.Equal(dec("3500")))
	assert.True(t, got.PriceEstimate)
	assert.True(t, got.GrossAmount.Equal(dec("7000")))
}

func TestUnknownTickerDefaultPrice(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())
	action := trade.Action{Side: trade.SideBuy, Ticker: "ZZZZ", Quantity: 3}

	got, err := engine.Cost(action, testSchedule("0.05", "0.05", "0"))
	require.NoError(t, err)

	assert.True(t, got.Price.Equal(trade.DefaultPriceHint))
	assert.True(t, got.PriceEstimate)
	assert.True(t, got.GrossAmount.Equal(dec("300")))
}

func TestCostRejectsInvalidActions(t *testing.T) {
	engine := trade.NewEngine(instrument.NewReference())
	schedule := testSchedule("0.05", "0.05", "1.0")

	testCases := []struct {
		name   string
		action trade.Action
	}{
		{"zero quantity", trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: 0}},
		{"negative quantity", trade.Action{Side: trade.SideSell, Ticker: "SBER", Quantity: -5}},
		{"unknown side", trade.Action{Side: trade.Side("HOLD"), Ticker: "SBER", Quantity: 1}},
		{"empty ticker", trade.Action{Side: trade.SideBuy, Quantity: 1}},
		{"negative price hint", trade.Action{Side: trade.SideBuy, Ticker: "SBER", Quantity: 1, PriceHint: dec("-1")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Cost(tc.action, schedule)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidAction))
		})
	}
}
