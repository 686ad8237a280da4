package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"stock-signal-bot/internal/errs"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

// fakeProvider serves canned bars per symbol.
type fakeProvider struct {
	bars map[string][]types.Bar
	errs map[string]error
}

func (f *fakeProvider) RecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.bars[symbol], nil
}

type fakeConfirmer struct {
	mu     sync.Mutex
	calls  int
	result types.ConfirmationResult
}

func (f *fakeConfirmer) Confirm(ctx context.Context, req types.ConfirmRequest) (types.ConfirmationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, nil
}

func (f *fakeConfirmer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []types.Notification
}

func (f *fakeNotifier) Send(ctx context.Context, n types.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func smallCfg() *store.Config {
	cfg := store.Default()
	cfg.Indicators.SMAShort = 2
	cfg.Indicators.SMALong = 3
	cfg.Indicators.RSIPeriod = 2
	cfg.Indicators.VolumeWindow = 3
	cfg.Indicators.RecentWindow = 3
	cfg.Thresholds.CrossoverConfirmBars = 1
	cfg.Run.Workers = 2
	cfg.AI.Enabled = true
	return cfg
}

// risingBars produces a steep uptrend: RSI pins at 100, well past the
// overbought line, and the last bar moves more than the price-change
// floor.
func risingBars(n int, stepPct float64) []types.Bar {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
	bars := make([]types.Bar, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price *= 1.0 + stepPct/100.0
		bars[i] = types.Bar{
			Ts: ts.AddDate(0, 0, i), Open: price, High: price * 1.01,
			Low: price * 0.99, Close: price, Vol: 2_000_000,
		}
	}
	return bars
}

func TestAnalyzeOneEmitsConfirmedSell(t *testing.T) {
	cfg := smallCfg()
	provider := &fakeProvider{bars: map[string][]types.Bar{"AAPL": risingBars(15, 4.0)}}
	confirmer := &fakeConfirmer{result: types.ConfirmationResult{
		Recommendation: types.RecommendConfirm, Confidence: 0.9, Risk: types.RiskLow,
	}}
	notifier := &fakeNotifier{}

	p := New(cfg, Options{Provider: provider, Confirmer: confirmer, Notifier: notifier})
	res := p.AnalyzeOne(context.Background(), "AAPL")

	if res.Err != nil {
		t.Fatalf("AnalyzeOne: %v", res.Err)
	}
	if res.Signal.Type != types.SignalSell {
		t.Fatalf("expected SELL from RSI pinned at 100, got %s (%s)", res.Signal.Type, res.Signal.Reason)
	}
	if !res.Validation.Valid {
		t.Fatalf("expected a valid signal, got violations %v", res.Validation.Violations)
	}
	if confirmer.callCount() != 1 {
		t.Errorf("expected one AI call, got %d", confirmer.callCount())
	}
	if !res.Decision.Pass {
		t.Fatalf("expected a passing decision, combined %.2f threshold %.2f", res.Decision.Combined, res.Decision.Threshold)
	}
	if !res.Notified || notifier.count() != 1 {
		t.Errorf("expected one notification, sent=%d notified=%v", notifier.count(), res.Notified)
	}
}

func TestAnalyzeOneSuppressesSameDayRepeat(t *testing.T) {
	cfg := smallCfg()
	provider := &fakeProvider{bars: map[string][]types.Bar{"AAPL": risingBars(15, 4.0)}}
	confirmer := &fakeConfirmer{result: types.ConfirmationResult{
		Recommendation: types.RecommendConfirm, Confidence: 0.9,
	}}
	notifier := &fakeNotifier{}
	p := New(cfg, Options{Provider: provider, Confirmer: confirmer, Notifier: notifier})

	first := p.AnalyzeOne(context.Background(), "AAPL")
	second := p.AnalyzeOne(context.Background(), "AAPL")

	if !first.Notified {
		t.Fatal("first run must notify")
	}
	if second.Notified || !second.Suppressed {
		t.Errorf("second run must be suppressed, got notified=%v suppressed=%v", second.Notified, second.Suppressed)
	}
	if notifier.count() != 1 {
		t.Errorf("expected exactly one delivery, got %d", notifier.count())
	}
}

func TestAnalyzeOneInvalidSignalSkipsAI(t *testing.T) {
	cfg := smallCfg()
	// A 1% move stays under the 3% price-change floor.
	bars := risingBars(15, 4.0)
	last := &bars[len(bars)-1]
	prev := bars[len(bars)-2]
	last.Close = prev.Close * 1.01
	last.High = last.Close * 1.01
	last.Low = last.Close * 0.99

	provider := &fakeProvider{bars: map[string][]types.Bar{"AAPL": bars}}
	confirmer := &fakeConfirmer{result: types.ConfirmationResult{Recommendation: types.RecommendConfirm, Confidence: 0.9}}
	notifier := &fakeNotifier{}
	p := New(cfg, Options{Provider: provider, Confirmer: confirmer, Notifier: notifier})

	res := p.AnalyzeOne(context.Background(), "AAPL")
	if res.Err != nil {
		t.Fatalf("AnalyzeOne: %v", res.Err)
	}
	if res.Validation.Valid {
		t.Fatal("expected the price-change floor to invalidate the signal")
	}
	if confirmer.callCount() != 0 {
		t.Errorf("invalid signals must not spend AI budget, got %d calls", confirmer.callCount())
	}
	if res.Notified || notifier.count() != 0 {
		t.Error("invalid signals must never notify")
	}
	if res.AI == nil || !res.AI.Unavailable {
		t.Error("the AI slot must carry the unavailable sentinel")
	}
	if res.Decision == nil {
		t.Fatal("aggregation must still run for filtered signals")
	}
}

func TestAnalyzeOneInsufficientHistory(t *testing.T) {
	cfg := smallCfg()
	provider := &fakeProvider{bars: map[string][]types.Bar{"AAPL": risingBars(2, 1.0)}}
	p := New(cfg, Options{Provider: provider, Confirmer: &fakeConfirmer{}, Notifier: &fakeNotifier{}})

	res := p.AnalyzeOne(context.Background(), "AAPL")
	if res.Err == nil {
		t.Fatal("expected an error for two bars")
	}
	if res.Kind != errs.KindInsufficientHistory {
		t.Errorf("expected INSUFFICIENT_HISTORY, got %s", res.Kind)
	}
	if res.Signal != nil {
		t.Error("no signal may be produced without enough history")
	}
}

// choppyBars oscillates around a level: RSI near the midpoint, moves
// under the price-change floor.
func choppyBars(n int) []types.Bar {
	bars := risingBars(n, 0.0)
	for i := range bars {
		f := 1.0 + 0.004*float64(1-2*(i%2))
		bars[i].Close *= f
		bars[i].Open = bars[i].Close
		bars[i].High = bars[i].Close * 1.01
		bars[i].Low = bars[i].Close * 0.99
	}
	return bars
}

func TestRunCycleSummarizesOutcomes(t *testing.T) {
	cfg := smallCfg()
	cfg.Universe = []string{"AAPL", "MSFT", "FAIL"}
	provider := &fakeProvider{
		bars: map[string][]types.Bar{
			"AAPL": risingBars(15, 4.0),
			"MSFT": choppyBars(15), // chops sideways, never actionable
		},
		errs: map[string]error{"FAIL": errs.ErrDataUnavailable},
	}
	confirmer := &fakeConfirmer{result: types.ConfirmationResult{Recommendation: types.RecommendConfirm, Confidence: 0.9}}
	notifier := &fakeNotifier{}
	p := New(cfg, Options{Provider: provider, Confirmer: confirmer, Notifier: notifier})

	sum := p.RunCycle(context.Background())
	if sum.Analyzed != 3 {
		t.Errorf("expected 3 analyzed, got %d", sum.Analyzed)
	}
	if sum.Emitted != 1 {
		t.Errorf("expected 1 emitted, got %d", sum.Emitted)
	}
	if sum.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", sum.Failed)
	}
	if sum.ByKind[errs.KindDataUnavailable] != 1 {
		t.Errorf("expected the failure classified DATA_UNAVAILABLE, got %v", sum.ByKind)
	}
	if sum.ByType[types.SignalSell] != 1 || sum.ByType[types.SignalHold] != 1 {
		t.Errorf("expected one SELL and one HOLD classified, got %v", sum.ByType)
	}
}

func TestRunCycleDeadlineReportsTimeouts(t *testing.T) {
	cfg := smallCfg()
	cfg.Universe = []string{"A", "B", "C", "D"}
	cfg.Run.Workers = 1
	cfg.Run.CycleTimeoutSeconds = 1

	slow := &slowProvider{delay: 600 * time.Millisecond, bars: risingBars(15, 0.1)}
	p := New(cfg, Options{Provider: slow, Confirmer: &fakeConfirmer{}, Notifier: &fakeNotifier{}})

	sum := p.RunCycle(context.Background())
	if sum.Analyzed != 4 {
		t.Fatalf("every instrument must be accounted for, got %d", sum.Analyzed)
	}
	if sum.ByKind[errs.KindTimeout] == 0 {
		t.Errorf("expected timed-out instruments to be reported, got %v", sum.ByKind)
	}
}

type slowProvider struct {
	delay time.Duration
	bars  []types.Bar
}

func (s *slowProvider) RecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return s.bars, nil
	}
}
