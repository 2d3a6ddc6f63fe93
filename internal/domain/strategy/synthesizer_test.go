package strategy

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"midas/internal/domain/instrument"
	"midas/internal/domain/portfolio"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/pkg/errors"
)

// stubResponder scripts the AI router for synthesizer tests.
type stubResponder struct {
	response string
	provider string
	err      error
	prompts  []string
}

func (s *stubResponder) Respond(_ context.Context, _, userPrompt string) (string, string, error) {
	s.prompts = append(s.prompts, userPrompt)
	if s.err != nil {
		return "", "", s.err
	}
	return s.response, s.provider, nil
}

func newSynthesizer(r Responder) *Synthesizer {
	ref := instrument.NewReference()
	return NewSynthesizer(r, NewParser(ref), NewHeuristic(ref), trade.NewEngine(ref), tariff.NewPolicy())
}

func TestSynthesizer_AIPath(t *testing.T) {
	responder := &stubResponder{response: structuredResponse, provider: "deepseek"}
	s := newSynthesizer(responder)

	p := fixturePortfolio(50000, stockPosition("SBER", 100, 300, 250))
	result, err := s.Synthesize(t.Context(), p, "спокойный рынок")
	require.NoError(t, err)

	assert.Equal(t, trade.SourceAI, result.Source)
	assert.Equal(t, "Агрессивный рост", result.Name)
	require.Len(t, result.Actions, 2)
	for _, a := range result.Actions {
		require.NotNil(t, a.Cost, "every action must be priced")
		assert.True(t, a.Cost.TotalCost.IsPositive())
	}

	// The prompt embeds portfolio totals and the supplied context.
	require.Len(t, responder.prompts, 1)
	assert.Contains(t, responder.prompts[0], "SBER")
	assert.Contains(t, responder.prompts[0], "спокойный рынок")
}

func TestSynthesizer_ProviderErrorDegradesToHeuristic(t *testing.T) {
	responder := &stubResponder{err: errors.Wrap(errors.ErrNoProviders, "all down")}
	s := newSynthesizer(responder)

	result, err := s.Synthesize(t.Context(), fixturePortfolio(100000), "")
	require.NoError(t, err, "provider failure must not surface")

	assert.Equal(t, trade.SourceAlgorithm, result.Source)
	assert.LessOrEqual(t, len(result.Actions), maxHeuristicActions)
	for _, a := range result.Actions {
		require.NotNil(t, a.Cost)
	}
}

func TestSynthesizer_UnparsableResponseDegradesToHeuristic(t *testing.T) {
	// Prose with no JSON block and no BUY/SELL lines.
	responder := &stubResponder{
		response: "Рынок выглядит стабильно, рекомендую сохранять текущую структуру портфеля.",
		provider: "deepseek",
	}
	s := newSynthesizer(responder)

	result, err := s.Synthesize(t.Context(), fixturePortfolio(100000), "")
	require.NoError(t, err)
	assert.Equal(t, trade.SourceAlgorithm, result.Source)
}

func TestSynthesizer_OutOfBandTargetReturnDegradesToHeuristic(t *testing.T) {
	responder := &stubResponder{
		response: `{
    "strategy_name": "Фантастика",
    "target_return": 300,
    "risk_level": "high",
    "actions": [
        {
            "action": "BUY",
            "ticker": "SBER",
            "quantity": 10,
            "reason": "x"
        }
    ]
}`,
		provider: "deepseek",
	}
	s := newSynthesizer(responder)

	result, err := s.Synthesize(t.Context(), fixturePortfolio(100000), "")
	require.NoError(t, err)
	assert.Equal(t, trade.SourceAlgorithm, result.Source)
}

func TestSynthesizer_BalancedPortfolioYieldsEmptyPlan(t *testing.T) {
	responder := &stubResponder{err: errors.ErrProviderUnavailable}
	s := newSynthesizer(responder)

	// Little cash, healthy yield: nothing to do, and that is a valid
	// outcome rather than an error.
	p := fixturePortfolio(1000, stockPosition("SBER", 100, 300, 250))
	result, err := s.Synthesize(t.Context(), p, "")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Actions)
	assert.Equal(t, trade.SourceAlgorithm, result.Source)
}

func TestSynthesizer_InvalidPortfolioRejected(t *testing.T) {
	responder := &stubResponder{response: structuredResponse, provider: "deepseek"}
	s := newSynthesizer(responder)

	p := &portfolio.Consolidated{TotalValue: decimal.NewFromInt(-1)}
	_, err := s.Synthesize(t.Context(), p, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidPortfolio)
	assert.Empty(t, responder.prompts, "no AI call on invalid input")
}

func TestSynthesizer_AnalyzePortfolio(t *testing.T) {
	responder := &stubResponder{response: "Портфель выглядит сбалансированным.", provider: "deepseek"}
	s := newSynthesizer(responder)

	text, err := s.AnalyzePortfolio(t.Context(), fixturePortfolio(10000), "")
	require.NoError(t, err)
	assert.Equal(t, "Портфель выглядит сбалансированным.", text)

	_, err = s.AnalyzePortfolio(t.Context(), &portfolio.Consolidated{TotalCash: decimal.NewFromInt(-1)}, "")
	assert.ErrorIs(t, err, errors.ErrInvalidPortfolio)
}

func TestStrategy_TotalCost(t *testing.T) {
	buyCost := trade.CostBreakdown{TotalCost: decimal.NewFromInt(3000)}
	sellCost := trade.CostBreakdown{TotalCost: decimal.NewFromInt(1000)}
	s := &Strategy{Actions: []trade.Action{
		{Side: trade.SideBuy, Cost: &buyCost},
		{Side: trade.SideSell, Cost: &sellCost},
		{Side: trade.SideBuy}, // unpriced
	}}

	assert.True(t, s.TotalCost().Equal(decimal.NewFromInt(2000)))
}
