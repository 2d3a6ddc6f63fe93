package advisor

import (
	"context"
	"strings"
	"time"

	"midas/internal/adapters/ai"
	"midas/internal/adapters/broker"
	"midas/internal/domain/portfolio"
	"midas/internal/domain/strategy"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/internal/metrics"
	"midas/pkg/errors"
	"midas/pkg/logger"
)

// ProviderSource exposes the AI router state to callers without handing
// them the router itself.
type ProviderSource interface {
	Info() ai.ProviderInfo
}

// Service is the facade the chat adapter talks to. It owns no state of
// its own; every call is request-scoped except the tariff policy's
// one-time resolution.
type Service struct {
	broker     broker.Client
	aggregator *portfolio.Aggregator
	policy     *tariff.Policy
	engine     *trade.Engine
	synth      *strategy.Synthesizer
	providers  ProviderSource
	log        *logger.Logger
}

// NewService creates the advisor facade.
func NewService(
	brokerClient broker.Client,
	aggregator *portfolio.Aggregator,
	policy *tariff.Policy,
	engine *trade.Engine,
	synth *strategy.Synthesizer,
	providers ProviderSource,
	log *logger.Logger,
) *Service {
	return &Service{
		broker:     brokerClient,
		aggregator: aggregator,
		policy:     policy,
		engine:     engine,
		synth:      synth,
		providers:  providers,
		log:        log,
	}
}

// GetConsolidatedPortfolio aggregates all accounts into one view.
func (s *Service) GetConsolidatedPortfolio(ctx context.Context) (*portfolio.Consolidated, error) {
	start := time.Now()
	consolidated, err := s.aggregator.Aggregate(ctx)
	metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.AggregationRuns.WithLabelValues("success").Inc()
	return consolidated, nil
}

// GetPartialPortfolio aggregates what it can, reporting failed account
// IDs alongside the partial result.
func (s *Service) GetPartialPortfolio(ctx context.Context) (*portfolio.Consolidated, []string, error) {
	consolidated, failed, err := s.aggregator.AggregatePartial(ctx)
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("error").Inc()
		return nil, failed, err
	}
	if len(failed) > 0 {
		metrics.AggregationRuns.WithLabelValues("partial").Inc()
	} else {
		metrics.AggregationRuns.WithLabelValues("success").Inc()
	}
	return consolidated, failed, nil
}

// GetTariffInfo returns the broker fee schedule. It is total: any
// failure fetching user metadata falls back to the standard tier.
func (s *Service) GetTariffInfo(ctx context.Context) tariff.Info {
	userInfo, err := s.broker.GetUserInfo(ctx)
	if err != nil {
		s.log.Warnf("user info fetch failed, assuming standard tariff: %v", err)
		return s.policy.Current()
	}

	meta := tariff.UserMeta{
		PremiumStatus: userInfo.PremiumStatus,
		TariffCode:    userInfo.TariffCode,
	}
	if accounts, err := s.broker.ListAccounts(ctx); err == nil {
		for _, acc := range accounts {
			meta.Accounts = append(meta.Accounts, tariff.AccountMeta{ID: acc.ID, Name: acc.Name, Type: acc.Type})
		}
	}
	return s.policy.Resolve(meta)
}

// EstimateCost prices one trade action against the resolved tariff.
func (s *Service) EstimateCost(action trade.Action) (trade.CostBreakdown, error) {
	return s.engine.Cost(action, s.policy.Current())
}

// BuildStrategy synthesizes a costed strategy for the portfolio.
func (s *Service) BuildStrategy(ctx context.Context, p *portfolio.Consolidated, marketContext string) (*strategy.Strategy, error) {
	return s.synth.Synthesize(ctx, p, marketContext)
}

// AnalyzePortfolio returns a free-text AI review of the portfolio.
func (s *Service) AnalyzePortfolio(ctx context.Context, p *portfolio.Consolidated, marketContext string) (string, error) {
	return s.synth.AnalyzePortfolio(ctx, p, marketContext)
}

// ProviderInfo reports the AI router state.
func (s *Service) ProviderInfo() ai.ProviderInfo {
	return s.providers.Info()
}

// ExecutionResult is the outcome of one submitted strategy action.
type ExecutionResult struct {
	Action  trade.Action
	OrderID string
	Status  string
	Err     error
}

// ExecuteActions submits the high-urgency actions of a strategy as
// market orders on the given account. Lower-urgency actions are left
// for the user to confirm; one rejected order does not stop the rest.
func (s *Service) ExecuteActions(ctx context.Context, accountID string, actions []trade.Action) []ExecutionResult {
	var results []ExecutionResult
	for _, a := range actions {
		if a.Urgency != trade.UrgencyHigh {
			continue
		}
		results = append(results, s.placeAction(ctx, accountID, a))
	}
	return results
}

// PlaceOrder validates and submits a single action as a market order.
func (s *Service) PlaceOrder(ctx context.Context, accountID string, action trade.Action) (broker.Order, error) {
	if err := action.Validate(); err != nil {
		return broker.Order{}, err
	}
	order, err := s.broker.PlaceOrder(ctx, broker.OrderRequest{
		AccountID: accountID,
		Ticker:    action.Ticker,
		Direction: strings.ToLower(string(action.Side)),
		Quantity:  action.Quantity,
	})
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(strings.ToLower(string(action.Side)), "rejected").Inc()
		return broker.Order{}, errors.Wrapf(err, "place %s %s x%d", action.Side, action.Ticker, action.Quantity)
	}
	metrics.OrdersPlaced.WithLabelValues(strings.ToLower(string(action.Side)), "accepted").Inc()
	s.log.Infow("order placed",
		"order_id", order.OrderID,
		"ticker", action.Ticker,
		"side", action.Side,
		"quantity", action.Quantity,
	)
	return order, nil
}

func (s *Service) placeAction(ctx context.Context, accountID string, a trade.Action) ExecutionResult {
	order, err := s.PlaceOrder(ctx, accountID, a)
	if err != nil {
		return ExecutionResult{Action: a, Status: "failed", Err: err}
	}
	return ExecutionResult{Action: a, OrderID: order.OrderID, Status: order.Status}
}
