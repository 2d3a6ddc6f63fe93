package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"midas/pkg/errors"
)

type Config struct {
	App           AppConfig
	Telegram      TelegramConfig
	Broker        BrokerConfig
	AI            AIConfig
	ErrorTracking ErrorTrackingConfig
	Metrics       MetricsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"midas"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type TelegramConfig struct {
	BotToken string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	AdminIDs []int64 `envconfig:"TELEGRAM_ADMIN_IDS"`
	Timeout  int     `envconfig:"TELEGRAM_UPDATE_TIMEOUT" default:"60"`
}

type BrokerConfig struct {
	Token        string `envconfig:"TINKOFF_TOKEN"`
	SandboxMode  bool   `envconfig:"TINKOFF_SANDBOX_MODE" default:"true"`
	BaseCurrency string `envconfig:"BROKER_BASE_CURRENCY" default:"rub"`
}

type AIConfig struct {
	DeepSeekKey    string        `envconfig:"DEEPSEEK_API_KEY"`
	OpenRouterKey  string        `envconfig:"OPENROUTER_API_KEY"`
	RequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"30s"`
	MaxTokens      int           `envconfig:"AI_MAX_TOKENS" default:"1000"`
	Temperature    float64       `envconfig:"AI_TEMPERATURE" default:"0.3"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
