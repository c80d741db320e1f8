package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finedge"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"finedge.signals"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Market struct {
		BaseURL      string        `yaml:"base_url"`
		Timeout      time.Duration `yaml:"timeout" default:"15s"`
		LookbackDays int           `yaml:"lookback_days" default:"365"`
	} `yaml:"market"`
	News      NewsConfig    `yaml:"news"`
	Model     ModelConfig   `yaml:"model"`
	Scoring   ScoringConfig `yaml:"scoring"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Watchlist []WatchlistSeed `yaml:"watchlist"`
}

// SchedulerConfig controls the background refresh and retrain cadence.
type SchedulerConfig struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	RefreshEvery time.Duration `yaml:"refresh_every" default:"15m"`
	RetrainEvery time.Duration `yaml:"retrain_every" default:"6h"`
	QueueWorkers int           `yaml:"queue_workers" default:"2"`
}

// AlertsConfig configures webhook alerting. Only signals with an absolute
// edge score at or above MinEdge are dispatched.
type AlertsConfig struct {
	Enabled    bool    `yaml:"enabled"`
	WebhookURL string  `yaml:"webhook_url"`
	BotName    string  `yaml:"bot_name" default:"FinEdge"`
	MinEdge    float64 `yaml:"min_edge" default:"60"`
}

// WatchlistSeed is a default instrument added on first start.
type WatchlistSeed struct {
	Symbol    string `yaml:"symbol"`
	Name      string `yaml:"name"`
	AssetType string `yaml:"asset_type" default:"stock"`
}

// NewsConfig configures the headline fetcher. Feed URLs may contain a
// {symbol} placeholder.
type NewsConfig struct {
	Enabled  bool          `yaml:"enabled" default:"true"`
	Feeds    []string      `yaml:"feeds"`
	MaxItems int           `yaml:"max_items" default:"20"`
	Timeout  time.Duration `yaml:"timeout" default:"10s"`
}

// ModelConfig configures the prediction engine. Family selects the
// classifier algorithm.
type ModelConfig struct {
	Dir                string  `yaml:"dir" default:"data/models"`
	Family             string  `yaml:"family" default:"gradient_boosting"`
	MinTrainingSamples int     `yaml:"min_training_samples" default:"60"`
	Estimators         int     `yaml:"estimators" default:"100"`
	MaxDepth           int     `yaml:"max_depth" default:"4"`
	MinSamplesSplit    int     `yaml:"min_samples_split" default:"10"`
	MinSamplesLeaf     int     `yaml:"min_samples_leaf" default:"5"`
	LearningRate       float64 `yaml:"learning_rate" default:"0.1"`
	Seed               int64   `yaml:"seed" default:"42"`
	CVFolds            int     `yaml:"cv_folds" default:"5"`
}

// ScoringConfig carries the fusion weights, classification bands, and
// technical thresholds. Components receive it at construction and must not
// hard-code any of these values.
type ScoringConfig struct {
	WeightML        float64             `yaml:"weight_ml" default:"0.45"`
	WeightTechnical float64             `yaml:"weight_technical" default:"0.35"`
	WeightSentiment float64             `yaml:"weight_sentiment" default:"0.2"`
	Bands           Bands               `yaml:"bands"`
	Technical       TechnicalThresholds `yaml:"technical"`
}

// Bands partitions [-100,100] into signal classes. HOLD is closed on both
// ends; SELL and BUY are closed at their outer boundary; the STRONG bands
// are the open tails.
type Bands struct {
	StrongSellBelow float64 `yaml:"strong_sell_below" default:"-60"`
	SellBelow       float64 `yaml:"sell_below" default:"-25"`
	BuyAbove        float64 `yaml:"buy_above" default:"25"`
	StrongBuyAbove  float64 `yaml:"strong_buy_above" default:"60"`
}

// TechnicalThresholds are the indicator trigger levels for the technical
// scorer.
type TechnicalThresholds struct {
	MinBars         int     `yaml:"min_bars" default:"50"`
	RSIOversold     float64 `yaml:"rsi_oversold" default:"30"`
	RSIBullish      float64 `yaml:"rsi_bullish" default:"40"`
	RSIBearish      float64 `yaml:"rsi_bearish" default:"60"`
	RSIOverbought   float64 `yaml:"rsi_overbought" default:"70"`
	MACDCap         float64 `yaml:"macd_cap" default:"25"`
	BBLowerPct      float64 `yaml:"bb_lower_pct" default:"0.1"`
	BBUpperPct      float64 `yaml:"bb_upper_pct" default:"0.9"`
	VolumeHigh      float64 `yaml:"volume_high" default:"2.0"`
	VolumeLow       float64 `yaml:"volume_low" default:"0.5"`
	StochOversold   float64 `yaml:"stoch_oversold" default:"20"`
	StochOverbought float64 `yaml:"stoch_overbought" default:"80"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FINEDGE_CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("FINEDGE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("FINEDGE_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FINEDGE_MARKET_BASE_URL"); v != "" {
		c.Market.BaseURL = v
	}
	if v := os.Getenv("FINEDGE_WEBHOOK_URL"); v != "" {
		c.Alerts.WebhookURL = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	switch c.Model.Family {
	case "gradient_boosting", "random_forest":
	default:
		return fmt.Errorf("model.family must be 'gradient_boosting' or 'random_forest', got '%s'", c.Model.Family)
	}
	if c.Model.MinTrainingSamples < 2 {
		return fmt.Errorf("model.min_training_samples must be at least 2")
	}
	if c.Scoring.WeightML < 0 || c.Scoring.WeightTechnical < 0 || c.Scoring.WeightSentiment < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	b := c.Scoring.Bands
	if !(b.StrongSellBelow < b.SellBelow && b.SellBelow < b.BuyAbove && b.BuyAbove < b.StrongBuyAbove) {
		return fmt.Errorf("scoring.bands must be strictly ordered")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
