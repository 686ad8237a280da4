package notify

import (
	"strings"
	"sync"
	"testing"

	"stock-signal-bot/internal/types"
)

func TestGateSuppressesSameDayRepeat(t *testing.T) {
	g := NewGate()

	if !g.ShouldNotify("AAPL", types.SignalSell, "2024-06-03") {
		t.Fatal("first notification must pass")
	}
	if g.ShouldNotify("AAPL", types.SignalSell, "2024-06-03") {
		t.Error("same-day repeat of the same type must be suppressed")
	}
}

func TestGateAllowsTypeChange(t *testing.T) {
	g := NewGate()

	g.ShouldNotify("AAPL", types.SignalSell, "2024-06-03")
	if !g.ShouldNotify("AAPL", types.SignalStrongSell, "2024-06-03") {
		t.Error("a different signal type must clear the suppression")
	}
	// The escalation replaced the recorded state; SELL is fresh again.
	if !g.ShouldNotify("AAPL", types.SignalSell, "2024-06-03") {
		t.Error("type change must reset the recorded pair")
	}
}

func TestGateAllowsNextDay(t *testing.T) {
	g := NewGate()

	g.ShouldNotify("AAPL", types.SignalBuy, "2024-06-03")
	if !g.ShouldNotify("AAPL", types.SignalBuy, "2024-06-04") {
		t.Error("a new analysis day must clear the suppression")
	}
}

func TestGateIsPerInstrument(t *testing.T) {
	g := NewGate()

	g.ShouldNotify("AAPL", types.SignalBuy, "2024-06-03")
	if !g.ShouldNotify("MSFT", types.SignalBuy, "2024-06-03") {
		t.Error("suppression must not leak across instruments")
	}
}

func TestGateConcurrentSameInstrument(t *testing.T) {
	g := NewGate()

	var wg sync.WaitGroup
	passed := make(chan struct{}, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.ShouldNotify("AAPL", types.SignalSell, "2024-06-03") {
				passed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(passed)

	count := 0
	for range passed {
		count++
	}
	if count != 1 {
		t.Errorf("exactly one concurrent notification must pass, got %d", count)
	}
}

func TestFormatMessage(t *testing.T) {
	n := types.Notification{
		Signal: types.Signal{
			Symbol:     "AAPL",
			Type:       types.SignalBuy,
			Reason:     "bullish SMA crossover",
			Strength:   types.StrengthModerate,
			Price:      100.0,
			ChangePct:  3.4,
			VolRatio:   2.1,
			RSI:        41.0,
			SMAShort:   101.0,
			SMALong:    99.0,
			StopLoss:   85.0,
			TakeProfit: 125.0,
		},
		Validation: types.ValidationResult{Valid: true},
		Confidence: types.ConfidenceScore{Score: 81, Reliability: types.ReliabilityHigh},
		AI:         types.ConfirmationResult{Recommendation: types.RecommendConfirm, Confidence: 0.82},
		Decision:   types.AggregateDecision{Combined: 0.81, Threshold: 0.5, Multiplier: 1.2},
	}

	msg := FormatMessage(n)
	for _, want := range []string{"BUY AAPL", "bullish SMA crossover", "Stop: 85.00", "Target: 125.00", "CONFIRM 0.82", "watchlist x1.2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "Filtered") {
		t.Errorf("valid signal must not show filter violations:\n%s", msg)
	}
}

func TestFormatMessageSellIncludesRiskLevels(t *testing.T) {
	n := types.Notification{
		Signal: types.Signal{
			Symbol:     "TSLA",
			Type:       types.SignalStrongSell,
			Reason:     "RSI overbought; high-volume sell-off",
			Strength:   types.StrengthVeryStrong,
			Price:      200.0,
			StopLoss:   170.0,
			TakeProfit: 250.0,
		},
		Validation: types.ValidationResult{Valid: true},
		Confidence: types.ConfidenceScore{Score: 88, Reliability: types.ReliabilityHigh},
		AI:         types.ConfirmationResult{Recommendation: types.RecommendConfirm, Confidence: 0.9},
		Decision:   types.AggregateDecision{Combined: 0.89, Threshold: 0.7, Multiplier: 1.0},
	}

	msg := FormatMessage(n)
	for _, want := range []string{"STRONG_SELL TSLA", "Stop: 170.00", "Target: 250.00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
