package signal

import (
	"math"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// Scorer turns a classified signal into a 0-100 statistical confidence
// score from three weighted sub-scores.
type Scorer struct {
	cfg *store.Config
}

func NewScorer(cfg *store.Config) *Scorer {
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Score(sig types.Signal, ind types.IndicatorSet) types.ConfidenceScore {
	cc := s.cfg.Confidence

	vs := volumeScore(sig.VolRatio)
	rs := rsiScore(sig.Type, sig.RSI)
	ts := trendScore(sig.Type, ind)

	wsum := cc.WeightVolume + cc.WeightRSI + cc.WeightTrend
	total := (cc.WeightVolume*vs + cc.WeightRSI*rs + cc.WeightTrend*ts) / wsum

	score := types.ConfidenceScore{
		Score:       clamp(total, 0, 100),
		VolumeScore: vs,
		RSIScore:    rs,
		TrendScore:  ts,
	}
	switch {
	case score.Score >= cc.ReliabilityHigh:
		score.Reliability = types.ReliabilityHigh
	case score.Score >= cc.ReliabilityMedium:
		score.Reliability = types.ReliabilityMedium
	default:
		score.Reliability = types.ReliabilityLow
	}
	return score
}

// volumeScore maps the volume ratio onto 0-100. A ratio of 1.0 (average
// volume) scores 50; the scale saturates at 2x average.
func volumeScore(ratio float64) float64 {
	if ratio <= 0 || math.IsNaN(ratio) {
		return 0
	}
	return clamp(ratio*50.0, 0, 100)
}

// rsiScore rewards RSI positioning that agrees with the signal
// direction: below the midpoint for buys, above it for sells. HOLD is
// scored by proximity to neutral.
func rsiScore(t types.SignalType, rsi float64) float64 {
	if math.IsNaN(rsi) {
		return 0
	}
	switch t {
	case types.SignalBuy:
		return clamp(50.0+(50.0-rsi), 0, 100)
	case types.SignalSell, types.SignalStrongSell:
		return clamp(50.0+(rsi-50.0), 0, 100)
	default:
		return clamp(100.0-math.Abs(rsi-50.0)*2.0, 0, 100)
	}
}

// trendScore measures agreement between the SMA ordering and slope and
// the fired signal direction.
func trendScore(t types.SignalType, ind types.IndicatorSet) float64 {
	short, long := ind.LatestShortSMA(), ind.LatestLongSMA()
	if math.IsNaN(short) || math.IsNaN(long) {
		return 0
	}
	bullOrder := short > long
	rising := smaRising(ind.ShortSMA)

	switch t {
	case types.SignalBuy:
		switch {
		case bullOrder && rising:
			return 100
		case bullOrder || rising:
			return 60
		default:
			return 20
		}
	case types.SignalSell, types.SignalStrongSell:
		switch {
		case !bullOrder && !rising:
			return 100
		case !bullOrder || !rising:
			return 60
		default:
			return 20
		}
	default:
		return 50
	}
}

func smaRising(series []float64) bool {
	n := len(series)
	if n < 2 || math.IsNaN(series[n-1]) || math.IsNaN(series[n-2]) {
		return false
	}
	return series[n-1] > series[n-2]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
