package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"midas/internal/adapters/ai"
	"midas/internal/adapters/broker"
	"midas/internal/adapters/config"
	"midas/internal/adapters/errors/noop"
	"midas/internal/adapters/errors/sentry"
	"midas/internal/adapters/telegram"
	"midas/internal/domain/instrument"
	"midas/internal/domain/portfolio"
	"midas/internal/domain/strategy"
	"midas/internal/domain/tariff"
	"midas/internal/domain/trade"
	"midas/internal/metrics"
	"midas/internal/services/advisor"
	"midas/pkg/errors"
	"midas/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Metrics
	metrics.Register()
	if cfg.Metrics.Enabled {
		go func() {
			log.Infof("Metrics server listening on %s", cfg.Metrics.Addr)
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				log.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	// Brokerage client
	brokerClient := initBroker(cfg, log)
	defer brokerClient.Close()

	// AI provider chain
	router := ai.BuildRouter(cfg.AI)
	defer router.Close()

	// Domain wiring
	ref := instrument.NewReference()
	policy := tariff.NewPolicy()
	engine := trade.NewEngine(ref)
	aggregator := portfolio.NewAggregator(brokerClient, ref, cfg.Broker.BaseCurrency)
	synth := strategy.NewSynthesizer(router, strategy.NewParser(ref), strategy.NewHeuristic(ref), engine, policy)
	advisorService := advisor.NewService(brokerClient, aggregator, policy, engine, synth, router, log)

	// Telegram bot
	bot, err := telegram.NewBot(telegram.Config{
		Token:   cfg.Telegram.BotToken,
		Debug:   cfg.App.Debug,
		Timeout: cfg.Telegram.Timeout,
	}, log)
	if err != nil {
		log.Fatalf("Failed to create telegram bot: %v", err)
	}
	telegram.NewHandler(bot, advisorService, log)

	log.Info("System initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := bot.Start(ctx); err != nil {
			log.Errorf("Telegram bot stopped: %v", err)
		}
	}()

	waitForShutdown(ctx, cancel, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initBroker selects the brokerage client. The live Tinkoff transport
// is an external collaborator; until it is plugged in, sandbox mode is
// the only mode, and a configured live token still runs against the
// sandbox with a warning.
func initBroker(cfg *config.Config, log *logger.Logger) broker.Client {
	if !cfg.Broker.SandboxMode && cfg.Broker.Token != "" {
		log.Warn("Live broker transport not configured, falling back to sandbox")
	}
	log.Info("Using sandbox broker client")
	return broker.NewSandboxClient()
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, errorTracker errors.Tracker, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down...")

	cancel()

	if errorTracker != nil {
		if err := errorTracker.Flush(ctx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
