package types

import "time"

type Bar struct {
	Ts                          time.Time
	Open, High, Low, Close, Vol float64
}

type SignalType string

const (
	SignalBuy        SignalType = "BUY"
	SignalSell       SignalType = "SELL"
	SignalStrongSell SignalType = "STRONG_SELL"
	SignalHold       SignalType = "HOLD"
)

type Strength string

const (
	StrengthWeak       Strength = "WEAK"
	StrengthModerate   Strength = "MODERATE"
	StrengthStrong     Strength = "STRONG"
	StrengthVeryStrong Strength = "VERY_STRONG"
)

// IndicatorSet holds the indicator state for the latest bar plus enough
// trailing history (oldest first) to detect crossovers, confirm them over
// several bars, and check divergences. Trailing slices share one length,
// at least 2.
type IndicatorSet struct {
	ShortSMA []float64
	LongSMA  []float64
	RSI      []float64
	Closes   []float64

	Close          float64
	PrevClose      float64
	PriceChangePct float64
	Volume         float64
	VolumeMA       float64
	VolumeRatio    float64
	RecentHigh     float64
	RecentLow      float64
}

func (s IndicatorSet) LatestRSI() float64      { return s.RSI[len(s.RSI)-1] }
func (s IndicatorSet) LatestShortSMA() float64 { return s.ShortSMA[len(s.ShortSMA)-1] }
func (s IndicatorSet) LatestLongSMA() float64  { return s.LongSMA[len(s.LongSMA)-1] }

// Signal is immutable once created; one per instrument per analysis cycle.
type Signal struct {
	Symbol     string     `json:"symbol"`
	Type       SignalType `json:"signal"`
	Reason     string     `json:"reason"`
	Reasons    []string   `json:"reasons,omitempty"`
	Strength   Strength   `json:"strength"`
	Price      float64    `json:"price"`
	PrevClose  float64    `json:"prev_close"`
	ChangePct  float64    `json:"change_pct"`
	Volume     float64    `json:"volume"`
	VolRatio   float64    `json:"vol_ratio"`
	RSI        float64    `json:"rsi"`
	SMAShort   float64    `json:"sma_short"`
	SMALong    float64    `json:"sma_long"`
	StopLoss   float64    `json:"stop_loss"`
	TakeProfit float64    `json:"take_profit"`
	RecentHigh float64    `json:"recent_high"`
	RecentLow  float64    `json:"recent_low"`
	Ts         time.Time  `json:"ts"`
}

// Day returns the analysis day the signal belongs to, used by the
// notification gate for same-day deduplication.
func (s Signal) Day() string {
	return s.Ts.UTC().Format("2006-01-02")
}

type ValidationResult struct {
	Signal     Signal   `json:"signal"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

type Reliability string

const (
	ReliabilityHigh   Reliability = "HIGH"
	ReliabilityMedium Reliability = "MEDIUM"
	ReliabilityLow    Reliability = "LOW"
)

// ConfidenceScore is the statistical confidence for a signal, 0-100.
type ConfidenceScore struct {
	Score       float64     `json:"score"`
	VolumeScore float64     `json:"volume_score"`
	RSIScore    float64     `json:"rsi_score"`
	TrendScore  float64     `json:"trend_score"`
	Reliability Reliability `json:"reliability"`
}

type Recommendation string

const (
	RecommendConfirm Recommendation = "CONFIRM"
	RecommendReject  Recommendation = "REJECT"
	RecommendModify  Recommendation = "MODIFY"
	RecommendCaution Recommendation = "PROCEED_WITH_CAUTION"
)

type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

type Agreement string

const (
	AgreementConfirms    Agreement = "CONFIRMS"
	AgreementContradicts Agreement = "CONTRADICTS"
	AgreementNeutral     Agreement = "NEUTRAL"
)

// VisualAnalysis is present only when the confirmation call included a
// rendered chart image.
type VisualAnalysis struct {
	Pattern           string    `json:"chart_pattern"`
	TrendDirection    string    `json:"trend_direction"`
	SupportResistance string    `json:"support_resistance"`
	Agreement         Agreement `json:"visual_confirmation"`
}

type SentimentAnalysis struct {
	Overall string  `json:"overall_sentiment"`
	Score   float64 `json:"sentiment_score"`
	Summary string  `json:"sentiment_reasoning,omitempty"`
}

// ConfirmationResult is the normalized verdict from the external judgment
// service. Unavailable is set when the service could not be reached or
// returned garbage; it is distinct from an explicit REJECT.
type ConfirmationResult struct {
	Recommendation Recommendation     `json:"recommendation"`
	Confidence     float64            `json:"confidence"`
	Risk           RiskTier           `json:"risk_assessment"`
	Analysis       string             `json:"analysis"`
	KeyFactors     []string           `json:"key_factors,omitempty"`
	Sentiment      *SentimentAnalysis `json:"sentiment_analysis,omitempty"`
	Visual         *VisualAnalysis    `json:"visual_analysis,omitempty"`
	Unavailable    bool               `json:"unavailable,omitempty"`
}

// AggregateDecision is the single gate deciding notification eligibility.
// ConfirmRequest carries everything the AI confirmation call needs.
type ConfirmRequest struct {
	Symbol     string           `json:"symbol"`
	Signal     Signal           `json:"signal"`
	Validation ValidationResult `json:"validation"`
	Confidence ConfidenceScore  `json:"confidence"`
	ChartPNG   []byte           `json:"-"`
}

type AggregateDecision struct {
	Symbol        string  `json:"symbol"`
	Combined      float64 `json:"combined"`
	Statistical   float64 `json:"statistical"`
	AIConfidence  float64 `json:"ai_confidence"`
	Threshold     float64 `json:"threshold"`
	Multiplier    float64 `json:"multiplier"`
	Pass          bool    `json:"pass"`
	AIUnavailable bool    `json:"ai_unavailable,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// Notification is the payload handed to the external dispatcher.
type Notification struct {
	Signal     Signal             `json:"signal"`
	Validation ValidationResult   `json:"validation"`
	Confidence ConfidenceScore    `json:"confidence"`
	AI         ConfirmationResult `json:"ai"`
	Decision   AggregateDecision  `json:"decision"`
}

type WatchlistEntry struct {
	Symbol     string  `json:"symbol" yaml:"symbol"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
}
