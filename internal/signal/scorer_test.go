package signal

import (
	"math"
	"testing"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

func TestScoreAlignedBuy(t *testing.T) {
	s := NewScorer(store.Default())
	ind := testInd(
		[]float64{50, 51, 52},
		[]float64{50, 50, 50},
		[]float64{28, 29, 30},
		2.0, 2.0,
	)
	sig := types.Signal{Type: types.SignalBuy, RSI: 30, VolRatio: 2.0}

	score := s.Score(sig, ind)
	// vs=100 (2x volume saturates), rs=70 (RSI 20 below midpoint), ts=100.
	want := 0.35*100 + 0.30*70 + 0.35*100
	if math.Abs(score.Score-want) > 1e-9 {
		t.Errorf("expected score %.1f, got %.1f", want, score.Score)
	}
	if score.Reliability != types.ReliabilityHigh {
		t.Errorf("expected HIGH reliability, got %s", score.Reliability)
	}
	if score.VolumeScore != 100 || score.RSIScore != 70 || score.TrendScore != 100 {
		t.Errorf("unexpected sub-scores %f/%f/%f", score.VolumeScore, score.RSIScore, score.TrendScore)
	}
}

func TestScoreMisalignedBuyIsLow(t *testing.T) {
	s := NewScorer(store.Default())
	// Bearish ordering and falling short SMA against a BUY.
	ind := testInd(
		[]float64{49, 48, 47},
		[]float64{50, 50, 50},
		[]float64{74, 74, 75},
		0.2, 1.0,
	)
	sig := types.Signal{Type: types.SignalBuy, RSI: 75, VolRatio: 0.2}

	score := s.Score(sig, ind)
	if score.Reliability != types.ReliabilityLow {
		t.Errorf("expected LOW reliability, got %s (score %.1f)", score.Reliability, score.Score)
	}
	if score.TrendScore != 20 {
		t.Errorf("expected trend score 20 for full disagreement, got %f", score.TrendScore)
	}
}

func TestScoreHoldNeutralRSI(t *testing.T) {
	s := NewScorer(store.Default())
	ind := testInd(
		[]float64{50, 50, 50},
		[]float64{50, 50, 50},
		[]float64{50, 50, 50},
		1.0, 0.0,
	)
	sig := types.Signal{Type: types.SignalHold, RSI: 50, VolRatio: 1.0}

	score := s.Score(sig, ind)
	// vs=50, rs=100 (dead neutral), ts=50.
	want := 0.35*50 + 0.30*100 + 0.35*50
	if math.Abs(score.Score-want) > 1e-9 {
		t.Errorf("expected score %.1f, got %.1f", want, score.Score)
	}
	if score.Reliability != types.ReliabilityMedium {
		t.Errorf("expected MEDIUM reliability, got %s", score.Reliability)
	}
}

func TestScoreSellRewardsElevatedRSI(t *testing.T) {
	s := NewScorer(store.Default())
	ind := testInd(
		[]float64{49, 48, 47},
		[]float64{50, 50, 50},
		[]float64{86, 85, 85},
		3.5, -6.0,
	)
	sig := types.Signal{Type: types.SignalStrongSell, RSI: 85, VolRatio: 3.5}

	score := s.Score(sig, ind)
	if score.RSIScore != 85 {
		t.Errorf("expected RSI sub-score 85, got %f", score.RSIScore)
	}
	if score.VolumeScore != 100 {
		t.Errorf("volume sub-score should cap at 100, got %f", score.VolumeScore)
	}
	if score.Reliability != types.ReliabilityHigh {
		t.Errorf("expected HIGH reliability, got %s (score %.1f)", score.Reliability, score.Score)
	}
}

func TestScoreBoundedZeroToHundred(t *testing.T) {
	s := NewScorer(store.Default())
	ind := testInd(
		[]float64{50, 50, 50},
		[]float64{50, 50, 50},
		[]float64{99, 99, 99},
		10.0, -20.0,
	)
	sig := types.Signal{Type: types.SignalStrongSell, RSI: 99, VolRatio: 10.0}

	score := s.Score(sig, ind)
	if score.Score < 0 || score.Score > 100 {
		t.Errorf("score out of bounds: %f", score.Score)
	}
	if score.VolumeScore > 100 {
		t.Errorf("volume sub-score out of bounds: %f", score.VolumeScore)
	}
}
