package strategy

import (
	"context"

	"midas/internal/domain/portfolio"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/internal/metrics"
	"midas/pkg/logger"
)

// Responder is the slice of the AI provider router the synthesizer
// needs: one prompt pair in, response text and the serving provider
// name out.
type Responder interface {
	Respond(ctx context.Context, systemPrompt, userPrompt string) (string, string, error)
}

// Synthesizer turns a consolidated portfolio into a costed strategy.
// The AI path is best-effort: any failure there degrades to the
// deterministic heuristic, never to an error. The only error it
// returns is a structurally invalid portfolio.
type Synthesizer struct {
	responder Responder
	parser    *Parser
	heuristic *Heuristic
	engine    *trade.Engine
	policy    *tariff.Policy
	log       *logger.Logger
}

// NewSynthesizer wires the strategy pipeline.
func NewSynthesizer(responder Responder, parser *Parser, heuristic *Heuristic, engine *trade.Engine, policy *tariff.Policy) *Synthesizer {
	return &Synthesizer{
		responder: responder,
		parser:    parser,
		heuristic: heuristic,
		engine:    engine,
		policy:    policy,
		log:       logger.Get().With("component", "strategy_synthesizer"),
	}
}

// Synthesize builds a strategy for the portfolio. Every action in the
// returned strategy carries a cost breakdown.
func (s *Synthesizer) Synthesize(ctx context.Context, p *portfolio.Consolidated, marketContext string) (*Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result := s.synthesizeAI(ctx, p, marketContext)
	if result == nil {
		result = s.heuristic.Build(p)
	}

	s.costActions(result)
	metrics.StrategiesBuilt.WithLabelValues(string(result.Source)).Inc()
	s.log.Infow("strategy synthesized",
		"source", result.Source,
		"actions", len(result.Actions),
		"target_return_pct", result.TargetReturnPct.String(),
	)
	return result, nil
}

// AnalyzePortfolio returns a free-text portfolio review. The router is
// total (its local fallback always answers), so the only failure mode
// is an invalid portfolio.
func (s *Synthesizer) AnalyzePortfolio(ctx context.Context, p *portfolio.Consolidated, marketContext string) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	response, provider, err := s.responder.Respond(ctx, analysisSystemPrompt, buildAnalysisPrompt(p, marketContext))
	if err != nil {
		return "", err
	}
	s.log.Infow("portfolio analysis served", "provider", provider)
	return response, nil
}

// synthesizeAI runs the AI leg: prompt, respond, parse. A nil return
// means the heuristic should take over.
func (s *Synthesizer) synthesizeAI(ctx context.Context, p *portfolio.Consolidated, marketContext string) *Strategy {
	userPrompt := buildAnalysisPrompt(p, marketContext)

	response, provider, err := s.responder.Respond(ctx, analysisSystemPrompt, userPrompt)
	if err != nil {
		s.log.Warnf("ai respond failed, using heuristic: %v", err)
		return nil
	}

	parsed, ok := s.parser.Parse(response)
	if !ok {
		s.log.Warnf("unparsable response from %s, using heuristic", provider)
		return nil
	}
	return parsed
}

// costActions prices every action through the costing engine. An action
// the engine rejects is dropped rather than left unpriced.
func (s *Synthesizer) costActions(result *Strategy) {
	schedule := s.policy.Current()

	priced := result.Actions[:0]
	for _, a := range result.Actions {
		breakdown, err := s.engine.Cost(a, schedule)
		if err != nil {
			s.log.Warnf("dropping uncostable action %s %s x%d: %v", a.Side, a.Ticker, a.Quantity, err)
			continue
		}
		a.Cost = &breakdown
		priced = append(priced, a)
	}
	result.Actions = priced
}
