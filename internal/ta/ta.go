package ta

import (
	"fmt"
	"math"

	"stock-signal-bot/internal/errs"
	"stock-signal-bot/internal/types"
)

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// SMASeries returns the rolling mean aligned to closes; positions before
// the window fills are NaN.
func SMASeries(closes []float64, n int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if n <= 0 || len(closes) < n {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= n {
			sum -= closes[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// RSISeries computes Wilder-smoothed RSI aligned to closes. The first
// period positions are NaN; the seed average uses the first period diffs
// and subsequent values use avg = (avg*(period-1) + new) / period.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 1 || len(closes) < period+1 {
		return out
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiFrom(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

type Params struct {
	SMAShort     int
	SMALong      int
	RSIPeriod    int
	VolumeWindow int
	RecentWindow int
	Trailing     int
}

func (p Params) minBars() int {
	n := p.SMAShort
	for _, v := range []int{p.SMALong, p.RSIPeriod, p.VolumeWindow} {
		if v > n {
			n = v
		}
	}
	return n + 1
}

// Compute derives the full indicator set from daily bars, oldest first.
func Compute(bars []types.Bar, p Params) (types.IndicatorSet, error) {
	var out types.IndicatorSet
	if len(bars) < p.minBars() {
		return out, fmt.Errorf("%w: have %d bars, need %d", errs.ErrInsufficientHistory, len(bars), p.minBars())
	}

	closes := make([]float64, len(bars))
	vols := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		vols[i] = b.Vol
	}

	trailing := p.Trailing
	if trailing < 2 {
		trailing = 2
	}
	if trailing > len(bars) {
		trailing = len(bars)
	}

	shortSeries := SMASeries(closes, p.SMAShort)
	longSeries := SMASeries(closes, p.SMALong)
	rsiSeries := RSISeries(closes, p.RSIPeriod)

	last := len(bars) - 1
	out.ShortSMA = shortSeries[len(shortSeries)-trailing:]
	out.LongSMA = longSeries[len(longSeries)-trailing:]
	out.RSI = rsiSeries[len(rsiSeries)-trailing:]
	out.Closes = closes[len(closes)-trailing:]

	out.Close = closes[last]
	out.PrevClose = closes[last-1]
	if out.PrevClose != 0 {
		out.PriceChangePct = (out.Close - out.PrevClose) / out.PrevClose * 100.0
	}
	out.Volume = vols[last]
	out.VolumeMA = SMA(vols, p.VolumeWindow)
	if out.VolumeMA > 0 {
		out.VolumeRatio = out.Volume / out.VolumeMA
	}

	rw := p.RecentWindow
	if rw <= 0 || rw > len(bars) {
		rw = len(bars)
	}
	out.RecentHigh = bars[len(bars)-rw].High
	out.RecentLow = bars[len(bars)-rw].Low
	for _, b := range bars[len(bars)-rw:] {
		if b.High > out.RecentHigh {
			out.RecentHigh = b.High
		}
		if b.Low < out.RecentLow {
			out.RecentLow = b.Low
		}
	}
	return out, nil
}
