package pipeline

import (
	"context"
	"sync"
	"time"

	"stock-signal-bot/internal/errs"
	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/notify"
	"stock-signal-bot/internal/ratelimit"
	"stock-signal-bot/internal/signal"
	"stock-signal-bot/internal/signallog"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/ta"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/types"
	"stock-signal-bot/internal/watchlist"
)

// InstrumentResult is the outcome of one instrument's pass through the
// pipeline.
type InstrumentResult struct {
	Symbol     string
	Signal     *types.Signal
	Validation *types.ValidationResult
	Confidence *types.ConfidenceScore
	AI         *types.ConfirmationResult
	Decision   *types.AggregateDecision
	Notified   bool
	Suppressed bool
	Err        error
	Kind       errs.Kind
}

// CycleSummary aggregates one full pass over the universe.
type CycleSummary struct {
	Analyzed   int
	Emitted    int
	Suppressed int
	Filtered   int
	Failed     int
	ByKind     map[errs.Kind]int
	ByType     map[types.SignalType]int
	Elapsed    time.Duration
}

// Pipeline wires the per-instrument stages together. Every stage is
// stateless; the notification gate holds the only cross-cycle memory.
type Pipeline struct {
	cfg        *store.Config
	provider   interfaces.Provider
	classifier *signal.Classifier
	validator  *signal.Validator
	scorer     *signal.Scorer
	confirmer  interfaces.Confirmer
	renderer   interfaces.Renderer
	aggregator *Aggregator
	gate       *notify.Gate
	notifier   interfaces.Notifier
	limiter    *ratelimit.Limiter
	m          *metrics.Metrics
	slog       *signallog.Log
	now        func() time.Time
}

type Options struct {
	Provider  interfaces.Provider
	Confirmer interfaces.Confirmer
	Renderer  interfaces.Renderer
	Notifier  interfaces.Notifier
	Watchlist *watchlist.Store
	Gate      *notify.Gate
	Limiter   *ratelimit.Limiter
	Metrics   *metrics.Metrics
	SignalLog *signallog.Log
	Now       func() time.Time
}

func New(cfg *store.Config, opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	wl := opts.Watchlist
	if wl == nil {
		wl = watchlist.NewStore(cfg.WatchlistEntries())
	}
	gate := opts.Gate
	if gate == nil {
		gate = notify.NewGate()
	}
	return &Pipeline{
		cfg:        cfg,
		provider:   opts.Provider,
		classifier: signal.NewClassifier(cfg),
		validator:  signal.NewValidator(cfg),
		scorer:     signal.NewScorer(cfg),
		confirmer:  opts.Confirmer,
		renderer:   opts.Renderer,
		aggregator: NewAggregator(cfg, wl),
		gate:       gate,
		notifier:   opts.Notifier,
		limiter:    opts.Limiter,
		m:          opts.Metrics,
		slog:       opts.SignalLog,
		now:        now,
	}
}

func (p *Pipeline) taParams() ta.Params {
	th := p.cfg.Thresholds
	trailing := th.CrossoverConfirmBars + 1
	if th.DivergenceLookback+1 > trailing {
		trailing = th.DivergenceLookback + 1
	}
	if trailing < 2 {
		trailing = 2
	}
	return ta.Params{
		SMAShort:     p.cfg.Indicators.SMAShort,
		SMALong:      p.cfg.Indicators.SMALong,
		RSIPeriod:    p.cfg.Indicators.RSIPeriod,
		VolumeWindow: p.cfg.Indicators.VolumeWindow,
		RecentWindow: p.cfg.Indicators.RecentWindow,
		Trailing:     trailing,
	}
}

// AnalyzeOne runs the full pipeline for a single instrument. Both the
// scheduled cycle and the on-demand admin path call it.
func (p *Pipeline) AnalyzeOne(ctx context.Context, symbol string) *InstrumentResult {
	ctx, span := trace.StartSpan(ctx, "pipeline.AnalyzeOne")
	defer span.End()

	res := &InstrumentResult{Symbol: symbol}
	params := p.taParams()

	want := p.cfg.MinHistory() + params.Trailing
	bars, err := p.provider.RecentBars(ctx, symbol, want)
	if err != nil {
		return res.fail(err)
	}

	ind, err := ta.Compute(bars, params)
	if err != nil {
		return res.fail(err)
	}

	sig := p.classifier.Classify(symbol, ind, p.latestTs(bars))
	res.Signal = &sig
	if p.m != nil {
		p.m.SignalsTotal.WithLabelValues(string(sig.Type)).Inc()
	}
	logger.Debug(ctx, "Signal classified",
		"symbol", symbol,
		"signal_type", sig.Type,
		"reason", sig.Reason,
		"rsi", sig.RSI,
		"change_pct", sig.ChangePct,
	)

	if sig.Type == types.SignalHold && !p.cfg.Hold.Enabled {
		return res
	}

	val := p.validator.Validate(sig)
	res.Validation = &val

	score := p.scorer.Score(sig, ind)
	res.Confidence = &score

	ai := p.confirm(ctx, types.ConfirmRequest{
		Symbol:     symbol,
		Signal:     sig,
		Validation: val,
		Confidence: score,
	}, ind, val.Valid)
	res.AI = &ai

	dec := p.aggregator.Aggregate(sig, score, ai)
	res.Decision = &dec

	if p.slog != nil {
		if err := p.slog.Record(types.Notification{
			Signal: sig, Validation: val, Confidence: score, AI: ai, Decision: dec,
		}); err != nil {
			logger.Warn(ctx, "Signal log write failed", "symbol", symbol, "error", err)
		}
	}

	if !dec.Pass || !val.Valid {
		return res
	}

	day := sig.Day()
	if !p.gate.ShouldNotify(symbol, sig.Type, day) {
		res.Suppressed = true
		if p.m != nil {
			p.m.NotificationsMuted.Inc()
		}
		logger.Suppressed(ctx, symbol, string(sig.Type), "already notified today")
		return res
	}

	if p.notifier != nil {
		if err := p.notifier.Send(ctx, types.Notification{
			Signal: sig, Validation: val, Confidence: score, AI: ai, Decision: dec,
		}); err != nil {
			logger.ErrorWithErr(ctx, "Notification dispatch failed", err, "symbol", symbol)
			return res.fail(err)
		}
	}
	res.Notified = true
	if p.m != nil {
		p.m.NotificationsSent.Inc()
	}
	return res
}

// confirm calls the AI stage under the shared rate budget. Invalid
// signals and disabled AI short-circuit to the unavailable sentinel so
// aggregation still runs.
func (p *Pipeline) confirm(ctx context.Context, req types.ConfirmRequest, ind types.IndicatorSet, valid bool) types.ConfirmationResult {
	unavailable := types.ConfirmationResult{
		Recommendation: types.RecommendCaution,
		Confidence:     0.0,
		Risk:           types.RiskMedium,
		Unavailable:    true,
	}
	if !p.cfg.AI.Enabled || p.confirmer == nil || !valid {
		return unavailable
	}

	if p.renderer != nil && p.cfg.AI.VisionEnabled {
		if png, err := p.renderer.Render(ctx, req.Signal, ind); err == nil {
			req.ChartPNG = png
		} else {
			logger.Warn(ctx, "Chart render failed, confirming without vision", "symbol", req.Symbol, "error", err)
		}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return unavailable
		}
	}

	res, err := p.confirmer.Confirm(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "AI confirmation errored", err, "symbol", req.Symbol)
		return unavailable
	}
	return res
}

func (p *Pipeline) latestTs(bars []types.Bar) time.Time {
	if len(bars) > 0 {
		return bars[len(bars)-1].Ts
	}
	return p.now()
}

func (r *InstrumentResult) fail(err error) *InstrumentResult {
	r.Err = err
	r.Kind = errs.Classify(err)
	return r
}

// RunCycle processes the whole universe with a bounded worker pool and
// a cycle-level deadline. Instruments not finished by the deadline are
// reported as timeouts, never dropped.
func (p *Pipeline) RunCycle(ctx context.Context) CycleSummary {
	start := p.now()
	ctx, span := trace.StartSpan(ctx, "pipeline.RunCycle")
	defer span.End()

	timeout := time.Duration(p.cfg.Run.CycleTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	universe := p.cfg.Universe
	if p.m != nil {
		p.m.InstrumentsPerRun.Set(float64(len(universe)))
	}

	jobs := make(chan string)
	results := make(chan *InstrumentResult, len(universe))

	workers := p.cfg.Run.Workers
	if workers > len(universe) {
		workers = len(universe)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				if ctx.Err() != nil {
					r := &InstrumentResult{Symbol: symbol}
					results <- r.fail(errs.ErrTimeout)
					continue
				}
				results <- p.AnalyzeOne(ctx, symbol)
			}
		}()
	}

	for _, symbol := range universe {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()
	close(results)

	summary := CycleSummary{
		ByKind: make(map[errs.Kind]int),
		ByType: make(map[types.SignalType]int),
	}
	for r := range results {
		summary.Analyzed++
		if r.Signal != nil {
			summary.ByType[r.Signal.Type]++
		}
		switch {
		case r.Err != nil:
			summary.Failed++
			summary.ByKind[r.Kind]++
			if p.m != nil {
				p.m.FailuresTotal.WithLabelValues(string(r.Kind)).Inc()
			}
		case r.Notified:
			summary.Emitted++
		case r.Suppressed:
			summary.Suppressed++
		case r.Validation != nil && !r.Validation.Valid:
			summary.Filtered++
		}
	}
	summary.Elapsed = time.Since(start)
	if p.m != nil {
		p.m.CycleDur.Observe(summary.Elapsed.Seconds())
	}

	logger.Cycle(ctx, summary.Analyzed, summary.Emitted, summary.Suppressed, summary.Failed,
		"filtered", summary.Filtered,
		"elapsed_ms", summary.Elapsed.Milliseconds(),
	)
	return summary
}
