package signal

import (
	"math"
	"strings"
	"time"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// Classifier applies the ordered rule table to an indicator set and
// produces at most one signal per instrument per bar.
type Classifier struct {
	cfg *store.Config
}

func NewClassifier(cfg *store.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

func (c *Classifier) Classify(symbol string, ind types.IndicatorSet, ts time.Time) types.Signal {
	th := c.cfg.Thresholds

	buyReasons := c.buyReasons(ind)
	sellReasons := c.sellReasons(ind)

	sig := types.Signal{
		Symbol:     symbol,
		Price:      ind.Close,
		PrevClose:  ind.PrevClose,
		ChangePct:  ind.PriceChangePct,
		Volume:     ind.Volume,
		VolRatio:   ind.VolumeRatio,
		RSI:        ind.LatestRSI(),
		SMAShort:   ind.LatestShortSMA(),
		SMALong:    ind.LatestLongSMA(),
		RecentHigh: ind.RecentHigh,
		RecentLow:  ind.RecentLow,
		Ts:         ts,
	}

	highVolume := ind.VolumeRatio > th.HighVolumeMultiplier

	switch {
	case len(buyReasons) > 0 && len(sellReasons) > 0:
		sig.Type = types.SignalHold
		sig.Reasons = []string{"contradictory indicators"}
		sig.Strength = types.StrengthWeak

	case c.isStrongSell(ind, sellReasons, highVolume):
		sig.Type = types.SignalStrongSell
		sig.Reasons = sellReasons
		sig.Strength = types.StrengthVeryStrong

	case len(sellReasons) > 0:
		sig.Type = types.SignalSell
		sig.Reasons = sellReasons
		sig.Strength = strengthFor(len(sellReasons))

	case len(buyReasons) > 0:
		sig.Type = types.SignalBuy
		sig.Reasons = buyReasons
		sig.Strength = strengthFor(len(buyReasons))

	default:
		sig.Type = types.SignalHold
		sig.Reasons = []string{"no condition met"}
		sig.Strength = types.StrengthWeak
	}

	sig.Reason = strings.Join(sig.Reasons, "; ")

	// Price levels accompany every signal, sells included.
	sig.StopLoss = ind.Close * (1 - c.cfg.Risk.StopLossPct/100.0)
	sig.TakeProfit = ind.Close * (1 + c.cfg.Risk.TakeProfitPct/100.0)
	return sig
}

func (c *Classifier) buyReasons(ind types.IndicatorSet) []string {
	th := c.cfg.Thresholds
	var reasons []string

	short, long := ind.LatestShortSMA(), ind.LatestLongSMA()
	rsi := ind.LatestRSI()
	if math.IsNaN(short) || math.IsNaN(long) || math.IsNaN(rsi) {
		return nil
	}

	if bullishCross(ind.ShortSMA, ind.LongSMA) && rsi < th.RSIOverbought {
		reasons = append(reasons, "bullish SMA crossover")
	}
	if oversoldRecovery(ind.RSI, th.RSIOversold) && short > long {
		reasons = append(reasons, "RSI oversold recovery in uptrend")
	}
	return reasons
}

func (c *Classifier) sellReasons(ind types.IndicatorSet) []string {
	th := c.cfg.Thresholds
	var reasons []string

	rsi := ind.LatestRSI()
	if math.IsNaN(rsi) {
		return nil
	}

	if confirmedBearishCross(ind.ShortSMA, ind.LongSMA, th.CrossoverConfirmBars) {
		reasons = append(reasons, "confirmed bearish SMA crossover")
	}
	if rsi > th.RSIOverbought {
		reasons = append(reasons, "RSI overbought")
	}
	if ind.VolumeRatio > th.HighVolumeMultiplier && ind.PriceChangePct < -th.PriceDropPct {
		reasons = append(reasons, "high-volume sell-off")
	}
	if bearishDivergence(ind.Closes, ind.RSI, th.DivergenceLookback, th.DivergenceRSIFloor) {
		reasons = append(reasons, "bearish RSI divergence")
	}
	return reasons
}

func (c *Classifier) isStrongSell(ind types.IndicatorSet, sellReasons []string, highVolume bool) bool {
	if len(sellReasons) == 0 {
		return false
	}
	th := c.cfg.Thresholds
	if len(sellReasons) >= 2 {
		return true
	}
	if ind.LatestRSI() > th.RSIExtreme && highVolume {
		return true
	}
	if ind.PriceChangePct < -th.CrashDropPct && highVolume {
		return true
	}
	return false
}

func strengthFor(fired int) types.Strength {
	switch {
	case fired >= 3:
		return types.StrengthVeryStrong
	case fired == 2:
		return types.StrengthStrong
	case fired == 1:
		return types.StrengthModerate
	default:
		return types.StrengthWeak
	}
}

// bullishCross fires when the short SMA closed above the long SMA on the
// latest bar after being at or below it on the previous bar.
func bullishCross(short, long []float64) bool {
	n := len(short)
	if n < 2 || len(long) != n {
		return false
	}
	if anyNaN(short[n-2:]) || anyNaN(long[n-2:]) {
		return false
	}
	return short[n-1] > long[n-1] && short[n-2] <= long[n-2]
}

// confirmedBearishCross requires the bearish ordering to have held for the
// last confirm bars, with the bullish ordering immediately before that.
func confirmedBearishCross(short, long []float64, confirm int) bool {
	if confirm < 1 {
		confirm = 1
	}
	n := len(short)
	if n < confirm+1 || len(long) != n {
		return false
	}
	if anyNaN(short[n-confirm-1:]) || anyNaN(long[n-confirm-1:]) {
		return false
	}
	for i := n - confirm; i < n; i++ {
		if short[i] >= long[i] {
			return false
		}
	}
	return short[n-confirm-1] >= long[n-confirm-1]
}

// oversoldRecovery fires when RSI was below the oversold floor on the
// previous bar and has climbed back above it.
func oversoldRecovery(rsi []float64, oversold float64) bool {
	n := len(rsi)
	if n < 2 || anyNaN(rsi[n-2:]) {
		return false
	}
	return rsi[n-2] < oversold && rsi[n-1] >= oversold
}

// bearishDivergence fires when price rose over the lookback while RSI
// fell, with RSI still elevated.
func bearishDivergence(closes, rsi []float64, lookback int, rsiFloor float64) bool {
	n := len(closes)
	if lookback < 1 || n < lookback+1 || len(rsi) != n {
		return false
	}
	then, now := n-lookback-1, n-1
	if math.IsNaN(rsi[then]) || math.IsNaN(rsi[now]) {
		return false
	}
	return closes[now] > closes[then] && rsi[now] < rsi[then] && rsi[now] > rsiFloor
}

func anyNaN(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
