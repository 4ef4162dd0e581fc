package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"dex_trader/internal/exchange"
	"dex_trader/internal/models"
	"dex_trader/internal/scoring"
	"dex_trader/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
)

// Config ...
type Config struct {
	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Log logger.Config `yaml:"log"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	Sources   Sources        `yaml:"sources"`
	Solana    Solana         `yaml:"solana"`
	Execution Execution      `yaml:"execution"`
	Discovery Discovery      `yaml:"discovery"`
	Scoring   scoring.Config `yaml:"scoring"`
	Admission Admission      `yaml:"admission"`
	Position  Position       `yaml:"position"`

	// Blacklist: адреса токенов, которые никогда не покупаем.
	Blacklist []string `yaml:"blacklist"`
}

type Source struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	MinInterval time.Duration `yaml:"min_interval"` // минимальный интервал между запросами
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

type Sources struct {
	DexScreener   Source        `yaml:"dexscreener"`
	GeckoTerminal Source        `yaml:"geckoterminal"`
	Moralis       Source        `yaml:"moralis"`
	OHLCVCacheTTL time.Duration `yaml:"ohlcv_cache_ttl"`
}

type Solana struct {
	RPCURL string `yaml:"rpc_url"`
	WSURL  string `yaml:"ws_url"`
	Wallet string `yaml:"wallet"`
}

type Execution struct {
	ExecutorURL string               `yaml:"executor_url"`
	Timeout     time.Duration        `yaml:"timeout"`
	Retry       exchange.RetryPolicy `yaml:"retry"`
	// ConfirmTimeout: ожидание подтверждения по websocket.
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
	// ExtendedWait: пауза перед финальным опросом статуса.
	ExtendedWait time.Duration `yaml:"extended_wait"`
}

type BoostedFilter struct {
	MinPriceChange24h float64 `yaml:"min_price_change_24h"`
	MinLiquidity      float64 `yaml:"min_liquidity"`
	MinVolume24h      float64 `yaml:"min_volume_24h"`
}

type TrendingFilter struct {
	MinLiquidity float64 `yaml:"min_liquidity"`
	MinVolume6h  float64 `yaml:"min_volume_6h"`
}

type Validation struct {
	Enabled        bool          `yaml:"enabled"`
	MaxSnipers     int           `yaml:"max_snipers"`
	HolderLookback time.Duration `yaml:"holder_lookback"`
}

type Discovery struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`

	BoostedCap    int `yaml:"boosted_cap"`
	CombinedCap   int `yaml:"combined_cap"`
	UptrendCap    int `yaml:"uptrend_cap"`
	IndicatorCap  int `yaml:"indicator_cap"`
	OutputCap     int `yaml:"output_cap"`
	FallbackCount int `yaml:"fallback_count"`

	Boosted  BoostedFilter         `yaml:"boosted"`
	Trending TrendingFilter        `yaml:"trending"`
	Quality  scoring.QualityConfig `yaml:"quality"`

	MinUptrendScore float64 `yaml:"min_uptrend_score"`
	MinPreScore     float64 `yaml:"min_pre_score"`

	OHLCVTimeframe exchange.Timeframe `yaml:"ohlcv_timeframe"`
	OHLCVAggregate int                `yaml:"ohlcv_aggregate"`

	Validation Validation `yaml:"validation"`
}

const (
	AdmissionAll    = "all"
	AdmissionPoints = "points"
)

type Admission struct {
	Mode            string  `yaml:"mode"`
	MinScore        float64 `yaml:"min_score"`
	MaxRSI          float64 `yaml:"max_rsi"`
	MinBuySellRatio float64 `yaml:"min_buy_sell_ratio"`
	MinHolderGrowth float64 `yaml:"min_holder_growth"`
	MinPoints       float64 `yaml:"min_points"`
}

type ATRStep struct {
	ProfitPct  float64 `yaml:"profit_pct"`
	Multiplier float64 `yaml:"multiplier"`
}

type Trailing struct {
	Percent              float64   `yaml:"percent"`
	UseMax               bool      `yaml:"use_max"`
	DefaultATRMultiplier float64   `yaml:"default_atr_multiplier"`
	ATRTable             []ATRStep `yaml:"atr_table"`
}

type Exit struct {
	// RSIOverbought = 0 выключает выход по RSI.
	RSIOverbought        float64 `yaml:"rsi_overbought"`
	BelowBollingerMiddle bool    `yaml:"below_bollinger_middle"`
	// HolderFloorPct < 0; 0 выключает выход по холдерам.
	HolderFloorPct float64 `yaml:"holder_floor_pct"`
}

type Position struct {
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	BuyAmountSOL    float64       `yaml:"buy_amount_sol"`
	SlippageBps     int           `yaml:"slippage_bps"`

	Tiers         []models.Tier `yaml:"tiers"`
	TakeProfitPct float64       `yaml:"take_profit_pct"`
	StopLossPct   float64       `yaml:"stop_loss_pct"`
	Trailing      Trailing      `yaml:"trailing"`
	Exit          Exit          `yaml:"exit"`

	RollbackTierOnFailure bool `yaml:"rollback_tier_on_failure"`

	OHLCVTimeframe exchange.Timeframe `yaml:"ohlcv_timeframe"`
	OHLCVAggregate int                `yaml:"ohlcv_aggregate"`
}

// Default: значения по умолчанию, файл и env их перекрывают.
func Default() Config {
	cfg := Config{
		Log: logger.Config{Level: "info"},
		Sources: Sources{
			DexScreener: Source{
				BaseURL:     "https://api.dexscreener.com",
				MinInterval: time.Second,
				Timeout:     10 * time.Second,
				MaxRetries:  3,
			},
			GeckoTerminal: Source{
				BaseURL:     "https://api.geckoterminal.com/api/v2",
				MinInterval: 2 * time.Second,
				Timeout:     10 * time.Second,
				MaxRetries:  3,
			},
			Moralis: Source{
				BaseURL:     "https://solana-gateway.moralis.io",
				MinInterval: 500 * time.Millisecond,
				Timeout:     10 * time.Second,
				MaxRetries:  3,
			},
			OHLCVCacheTTL: 60 * time.Second,
		},
		Solana: Solana{
			RPCURL: "https://api.mainnet-beta.solana.com",
			WSURL:  "wss://api.mainnet-beta.solana.com",
		},
		Execution: Execution{
			Timeout:        30 * time.Second,
			Retry:          exchange.DefaultRetryPolicy(),
			ConfirmTimeout: 60 * time.Second,
			ExtendedWait:   30 * time.Second,
		},
		Discovery: Discovery{
			Interval:      5 * time.Minute,
			Concurrency:   4,
			BoostedCap:    50,
			CombinedCap:   30,
			UptrendCap:    15,
			IndicatorCap:  7,
			OutputCap:     5,
			FallbackCount: 3,
			Boosted: BoostedFilter{
				MinPriceChange24h: -20,
				MinLiquidity:      20_000,
				MinVolume24h:      20_000,
			},
			Trending: TrendingFilter{
				MinLiquidity: 5_000,
				MinVolume6h:  1_000,
			},
			Quality: scoring.QualityConfig{
				MinVolume1h:  1_000,
				MinVolume24h: 10_000,
			},
			MinUptrendScore: 50,
			MinPreScore:     15,
			OHLCVTimeframe:  exchange.TimeframeHour,
			OHLCVAggregate:  1,
			Validation: Validation{
				Enabled:        true,
				MaxSnipers:     50,
				HolderLookback: 48 * time.Hour,
			},
		},
		Scoring: scoring.DefaultConfig(),
		Admission: Admission{
			Mode:            AdmissionAll,
			MinScore:        40,
			MaxRSI:          75,
			MinBuySellRatio: 1.2,
			MinHolderGrowth: 0,
			MinPoints:       60,
		},
		Position: Position{
			MonitorInterval: 10 * time.Second,
			BuyAmountSOL:    0.1,
			SlippageBps:     500,
			Tiers: []models.Tier{
				{ProfitThresholdPct: 15, PositionFractionPct: 25},
				{ProfitThresholdPct: 30, PositionFractionPct: 25},
				{ProfitThresholdPct: 60, PositionFractionPct: 25},
			},
			TakeProfitPct: 100,
			StopLossPct:   15,
			Trailing: Trailing{
				Percent:              10,
				UseMax:               true,
				DefaultATRMultiplier: 3,
				ATRTable: []ATRStep{
					{ProfitPct: 50, Multiplier: 1.5},
					{ProfitPct: 30, Multiplier: 2},
					{ProfitPct: 15, Multiplier: 2.5},
				},
			},
			Exit: Exit{
				RSIOverbought:        80,
				BelowBollingerMiddle: true,
				HolderFloorPct:       -5,
			},
			RollbackTierOnFailure: true,
			OHLCVTimeframe:        exchange.TimeframeMinute,
			OHLCVAggregate:        5,
		},
	}
	cfg.Service.AdminPort = 8080
	cfg.Tracing.Port = 6831
	return cfg
}

// NewConfig читает configs/$CONFIG_FILE поверх дефолтов и применяет env.
func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	dir := os.Getenv(configDirENV)
	if dir == "" {
		dir = "configs"
	}
	return Load(filepath.Join(dir, configFileName))
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open config %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}

	applyEnv(&config, viper.New())

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if c.Discovery.Interval <= 0 {
		return errors.New("discovery.interval must be positive")
	}
	if c.Position.MonitorInterval <= 0 {
		return errors.New("position.monitor_interval must be positive")
	}
	if c.Position.BuyAmountSOL <= 0 {
		return errors.New("position.buy_amount_sol must be positive")
	}
	if c.Scoring.MaxScore <= 0 || c.Scoring.UptrendMax <= 0 {
		return errors.New("scoring.max_score and scoring.uptrend_max must be positive")
	}
	switch c.Admission.Mode {
	case AdmissionAll, AdmissionPoints:
	default:
		return errors.Errorf("admission.mode %q: want %q or %q", c.Admission.Mode, AdmissionAll, AdmissionPoints)
	}

	var sum float64
	for i, t := range c.Position.Tiers {
		if t.ProfitThresholdPct <= 0 {
			return errors.Errorf("position.tiers[%d]: profit_pct must be positive", i)
		}
		if t.PositionFractionPct <= 0 || t.PositionFractionPct > 100 {
			return errors.Errorf("position.tiers[%d]: fraction_pct must be in (0,100]", i)
		}
		sum += t.PositionFractionPct
	}
	if sum > 100 {
		return errors.Errorf("position.tiers: fractions sum to %.2f%%, max 100%%", sum)
	}
	if c.Position.StopLossPct < 0 || c.Position.Trailing.Percent < 0 {
		return errors.New("position: stop_loss_pct and trailing.percent must not be negative")
	}
	return nil
}

// applyEnv: переопределения из окружения, только если переменная задана.
func applyEnv(cfg *Config, v *viper.Viper) {
	v.AutomaticEnv()

	stringFromEnv(v, "TELEGRAM_TOKEN", &cfg.Telegram.Token)
	intFromEnv(v, "TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID)
	stringFromEnv(v, "LOG_LEVEL", &cfg.Log.Level)

	stringFromEnv(v, "MORALIS_API_KEY", &cfg.Sources.Moralis.APIKey)
	stringFromEnv(v, "SOLANA_RPC_URL", &cfg.Solana.RPCURL)
	stringFromEnv(v, "SOLANA_WS_URL", &cfg.Solana.WSURL)
	stringFromEnv(v, "WALLET_ADDRESS", &cfg.Solana.Wallet)
	stringFromEnv(v, "EXECUTOR_URL", &cfg.Execution.ExecutorURL)

	durationFromEnv(v, "DISCOVERY_INTERVAL", &cfg.Discovery.Interval)
	durationFromEnv(v, "MONITOR_INTERVAL", &cfg.Position.MonitorInterval)
	floatFromEnv(v, "BUY_AMOUNT_SOL", &cfg.Position.BuyAmountSOL)
	floatFromEnv(v, "STOP_LOSS_PCT", &cfg.Position.StopLossPct)
	floatFromEnv(v, "TAKE_PROFIT_PCT", &cfg.Position.TakeProfitPct)
	boolFromEnv(v, "VALIDATION_ENABLED", &cfg.Discovery.Validation.Enabled)
	boolFromEnv(v, "TRACING_ENABLED", &cfg.Tracing.Enabled)

	if v.IsSet("BLACKLIST") {
		for _, a := range strings.Split(v.GetString("BLACKLIST"), ",") {
			if a = strings.TrimSpace(a); a != "" {
				cfg.Blacklist = append(cfg.Blacklist, a)
			}
		}
	}
}

func stringFromEnv(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func intFromEnv(v *viper.Viper, key string, dst *int64) {
	if v.IsSet(key) {
		*dst = v.GetInt64(key)
	}
}

func floatFromEnv(v *viper.Viper, key string, dst *float64) {
	if v.IsSet(key) {
		*dst = v.GetFloat64(key)
	}
}

func boolFromEnv(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func durationFromEnv(v *viper.Viper, key string, dst *time.Duration) {
	if v.IsSet(key) {
		if d := v.GetDuration(key); d > 0 {
			*dst = d
		}
	}
}
