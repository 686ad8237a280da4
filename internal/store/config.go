package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stock-signal-bot/internal/errs"
	"stock-signal-bot/internal/types"
)

type Config struct {
	Mode        string   `yaml:"mode"`
	Universe    []string `yaml:"universe"`
	PollSeconds int      `yaml:"poll_seconds"`

	Indicators struct {
		SMAShort     int `yaml:"sma_short"`
		SMALong      int `yaml:"sma_long"`
		RSIPeriod    int `yaml:"rsi_period"`
		VolumeWindow int `yaml:"volume_window"`
		RecentWindow int `yaml:"recent_window"`
	} `yaml:"indicators"`

	Thresholds struct {
		RSIOverbought        float64 `yaml:"rsi_overbought"`
		RSIOversold          float64 `yaml:"rsi_oversold"`
		RSIExtreme           float64 `yaml:"rsi_extreme"`
		MinVolume            float64 `yaml:"min_volume"`
		MinPriceChangePct    float64 `yaml:"min_price_change_pct"`
		PriceDropPct         float64 `yaml:"price_drop_pct"`
		CrashDropPct         float64 `yaml:"crash_drop_pct"`
		HighVolumeMultiplier float64 `yaml:"high_volume_multiplier"`
		CrossoverConfirmBars int     `yaml:"crossover_confirm_bars"`
		DivergenceLookback   int     `yaml:"divergence_lookback"`
		DivergenceRSIFloor   float64 `yaml:"divergence_rsi_floor"`
	} `yaml:"thresholds"`

	Risk struct {
		StopLossPct   float64 `yaml:"stop_loss_pct"`
		TakeProfitPct float64 `yaml:"take_profit_pct"`
	} `yaml:"risk"`

	Confidence struct {
		WeightVolume        float64 `yaml:"weight_volume"`
		WeightRSI           float64 `yaml:"weight_rsi"`
		WeightTrend         float64 `yaml:"weight_trend"`
		ReliabilityHigh     float64 `yaml:"reliability_high"`
		ReliabilityMedium   float64 `yaml:"reliability_medium"`
		StatWeight          float64 `yaml:"stat_weight"`
		AIWeight            float64 `yaml:"ai_weight"`
		SentimentWeight     float64 `yaml:"sentiment_weight"`
		DisagreementPenalty float64 `yaml:"disagreement_penalty"`
		DefaultThreshold    float64 `yaml:"default_threshold"`
	} `yaml:"confidence"`

	Hold struct {
		Enabled         bool    `yaml:"enabled"`
		Threshold       float64 `yaml:"threshold"`
		BypassThreshold bool    `yaml:"bypass_threshold"`
	} `yaml:"hold"`

	Watchlist struct {
		Enabled    bool     `yaml:"enabled"`
		Symbols    []string `yaml:"symbols"`
		Multiplier float64  `yaml:"multiplier"`
		Threshold  float64  `yaml:"threshold"`
	} `yaml:"watchlist"`

	AI struct {
		Enabled          bool    `yaml:"enabled"`
		VisionEnabled    bool    `yaml:"vision_enabled"`
		SentimentEnabled bool    `yaml:"sentiment_enabled"`
		Model            string  `yaml:"model"`
		VisionModel      string  `yaml:"vision_model"`
		MaxRetries       int     `yaml:"max_retries"`
		TimeoutSeconds   int     `yaml:"timeout_seconds"`
		MaxTokens        int     `yaml:"max_tokens"`
		Temperature      float32 `yaml:"temperature"`
		RateCapacity     int     `yaml:"rate_capacity"`
		RateRefillPerSec float64 `yaml:"rate_refill_per_sec"`
	} `yaml:"ai"`

	Run struct {
		Workers             int    `yaml:"workers"`
		CycleTimeoutSeconds int    `yaml:"cycle_timeout_seconds"`
		AdminAddr           string `yaml:"admin_addr"`
	} `yaml:"run"`

	Notify struct {
		Channel string `yaml:"channel"`
	} `yaml:"notify"`
}

// WatchlistEntries expands the watchlist section into per-symbol entries.
func (c *Config) WatchlistEntries() []types.WatchlistEntry {
	if !c.Watchlist.Enabled {
		return nil
	}
	out := make([]types.WatchlistEntry, 0, len(c.Watchlist.Symbols))
	for _, s := range c.Watchlist.Symbols {
		out = append(out, types.WatchlistEntry{
			Symbol:     s,
			Multiplier: c.Watchlist.Multiplier,
			Threshold:  c.Watchlist.Threshold,
		})
	}
	return out
}

// MinHistory is the shortest bar history the indicator stage accepts.
func (c *Config) MinHistory() int {
	n := c.Indicators.SMAShort
	for _, v := range []int{c.Indicators.SMALong, c.Indicators.RSIPeriod, c.Indicators.VolumeWindow} {
		if v > n {
			n = v
		}
	}
	return n + 1
}

func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", errs.ErrConfiguration, fmt.Sprintf(format, args...))
	}
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fail("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Universe) == 0 {
		return fail("universe cannot be empty")
	}
	if c.Indicators.SMAShort <= 0 || c.Indicators.SMALong <= 0 || c.Indicators.SMAShort >= c.Indicators.SMALong {
		return fail("sma windows must satisfy 0 < short < long, got %d/%d", c.Indicators.SMAShort, c.Indicators.SMALong)
	}
	if c.Indicators.RSIPeriod <= 1 {
		return fail("rsi_period must be > 1, got %d", c.Indicators.RSIPeriod)
	}
	if c.Thresholds.RSIOversold >= c.Thresholds.RSIOverbought {
		return fail("rsi_oversold (%.1f) must be below rsi_overbought (%.1f)", c.Thresholds.RSIOversold, c.Thresholds.RSIOverbought)
	}
	if c.Thresholds.RSIExtreme < c.Thresholds.RSIOverbought {
		return fail("rsi_extreme (%.1f) must be at or above rsi_overbought (%.1f)", c.Thresholds.RSIExtreme, c.Thresholds.RSIOverbought)
	}
	if c.Thresholds.CrossoverConfirmBars < 1 {
		return fail("crossover_confirm_bars must be >= 1, got %d", c.Thresholds.CrossoverConfirmBars)
	}
	if c.Thresholds.CrashDropPct < c.Thresholds.PriceDropPct {
		return fail("crash_drop_pct (%.1f) must be >= price_drop_pct (%.1f)", c.Thresholds.CrashDropPct, c.Thresholds.PriceDropPct)
	}
	if t := c.Confidence.DefaultThreshold; t <= 0 || t > 1 {
		return fail("default_threshold must be in (0,1], got %.2f", t)
	}
	if c.Watchlist.Enabled {
		if c.Watchlist.Threshold >= c.Confidence.DefaultThreshold {
			return fail("watchlist threshold (%.2f) must be strictly below default (%.2f)", c.Watchlist.Threshold, c.Confidence.DefaultThreshold)
		}
		if c.Watchlist.Multiplier <= 1.0 {
			return fail("watchlist multiplier must be > 1.0, got %.2f", c.Watchlist.Multiplier)
		}
	}
	wsum := c.Confidence.WeightVolume + c.Confidence.WeightRSI + c.Confidence.WeightTrend
	if wsum <= 0 {
		return fail("confidence sub-score weights must sum to a positive value")
	}
	if c.Confidence.ReliabilityMedium >= c.Confidence.ReliabilityHigh {
		return fail("reliability_medium (%.0f) must be below reliability_high (%.0f)", c.Confidence.ReliabilityMedium, c.Confidence.ReliabilityHigh)
	}
	if p := c.Confidence.DisagreementPenalty; p <= 0 || p > 1 {
		return fail("disagreement_penalty must be in (0,1], got %.2f", p)
	}
	if c.AI.Enabled && c.AI.MaxRetries < 0 {
		return fail("ai max_retries cannot be negative")
	}
	if c.Run.Workers < 1 {
		return fail("run.workers must be >= 1, got %d", c.Run.Workers)
	}
	return nil
}

// Default returns a config with every field at its documented default.
func Default() *Config {
	var c Config
	c.Universe = []string{"AAPL"}
	c.applyDefaults()
	return &c
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 86400
	}
	if c.Indicators.SMAShort == 0 {
		c.Indicators.SMAShort = 20
	}
	if c.Indicators.SMALong == 0 {
		c.Indicators.SMALong = 50
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.VolumeWindow == 0 {
		c.Indicators.VolumeWindow = 20
	}
	if c.Indicators.RecentWindow == 0 {
		c.Indicators.RecentWindow = 10
	}
	if c.Thresholds.RSIOverbought == 0 {
		c.Thresholds.RSIOverbought = 80
	}
	if c.Thresholds.RSIOversold == 0 {
		c.Thresholds.RSIOversold = 20
	}
	if c.Thresholds.RSIExtreme == 0 {
		c.Thresholds.RSIExtreme = 85
	}
	if c.Thresholds.MinVolume == 0 {
		c.Thresholds.MinVolume = 1_000_000
	}
	if c.Thresholds.MinPriceChangePct == 0 {
		c.Thresholds.MinPriceChangePct = 3.0
	}
	if c.Thresholds.PriceDropPct == 0 {
		c.Thresholds.PriceDropPct = 5.0
	}
	if c.Thresholds.CrashDropPct == 0 {
		c.Thresholds.CrashDropPct = 10.0
	}
	if c.Thresholds.HighVolumeMultiplier == 0 {
		c.Thresholds.HighVolumeMultiplier = 3.0
	}
	if c.Thresholds.CrossoverConfirmBars == 0 {
		c.Thresholds.CrossoverConfirmBars = 2
	}
	if c.Thresholds.DivergenceLookback == 0 {
		c.Thresholds.DivergenceLookback = 10
	}
	if c.Thresholds.DivergenceRSIFloor == 0 {
		c.Thresholds.DivergenceRSIFloor = 70
	}
	if c.Risk.StopLossPct == 0 {
		c.Risk.StopLossPct = 15.0
	}
	if c.Risk.TakeProfitPct == 0 {
		c.Risk.TakeProfitPct = 25.0
	}
	if c.Confidence.WeightVolume == 0 && c.Confidence.WeightRSI == 0 && c.Confidence.WeightTrend == 0 {
		c.Confidence.WeightVolume = 0.35
		c.Confidence.WeightRSI = 0.30
		c.Confidence.WeightTrend = 0.35
	}
	if c.Confidence.ReliabilityHigh == 0 {
		c.Confidence.ReliabilityHigh = 75
	}
	if c.Confidence.ReliabilityMedium == 0 {
		c.Confidence.ReliabilityMedium = 50
	}
	if c.Confidence.StatWeight == 0 && c.Confidence.AIWeight == 0 {
		c.Confidence.StatWeight = 0.4
		c.Confidence.AIWeight = 0.6
	}
	if c.Confidence.SentimentWeight == 0 {
		c.Confidence.SentimentWeight = 0.3
	}
	if c.Confidence.DisagreementPenalty == 0 {
		c.Confidence.DisagreementPenalty = 0.8
	}
	if c.Confidence.DefaultThreshold == 0 {
		c.Confidence.DefaultThreshold = 0.7
	}
	if c.Hold.Threshold == 0 {
		c.Hold.Threshold = 0.3
	}
	if c.Watchlist.Multiplier == 0 {
		c.Watchlist.Multiplier = 1.2
	}
	if c.Watchlist.Threshold == 0 {
		c.Watchlist.Threshold = 0.5
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o-mini"
	}
	if c.AI.VisionModel == "" {
		c.AI.VisionModel = "gpt-4o"
	}
	if c.AI.MaxRetries == 0 {
		c.AI.MaxRetries = 2
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 2000
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.3
	}
	if c.AI.RateCapacity == 0 {
		c.AI.RateCapacity = 3
	}
	if c.AI.RateRefillPerSec == 0 {
		c.AI.RateRefillPerSec = 0.5
	}
	if c.Run.Workers == 0 {
		c.Run.Workers = 4
	}
	if c.Run.CycleTimeoutSeconds == 0 {
		c.Run.CycleTimeoutSeconds = 600
	}
	if c.Run.AdminAddr == "" {
		c.Run.AdminAddr = ":9090"
	}
	if c.Notify.Channel == "" {
		c.Notify.Channel = "LOG"
	}
}
