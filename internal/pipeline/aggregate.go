package pipeline

import (
	"fmt"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
	"stock-signal-bot/internal/watchlist"
)

// Aggregator blends the statistical score with the AI verdict and
// decides pass/fail at the instrument's applicable threshold.
type Aggregator struct {
	cfg *store.Config
	wl  *watchlist.Store
}

func NewAggregator(cfg *store.Config, wl *watchlist.Store) *Aggregator {
	return &Aggregator{cfg: cfg, wl: wl}
}

func (a *Aggregator) Aggregate(sig types.Signal, score types.ConfidenceScore, ai types.ConfirmationResult) types.AggregateDecision {
	cc := a.cfg.Confidence
	stat := score.Score / 100.0

	dec := types.AggregateDecision{
		Symbol:      sig.Symbol,
		Statistical: score.Score,
		Multiplier:  1.0,
	}

	// An AI rejection overrides everything. The caution sentinel is not
	// a rejection; it means the verdict never arrived.
	if !ai.Unavailable && ai.Recommendation == types.RecommendReject {
		dec.Combined = 0.0
		dec.Threshold = a.thresholdFor(sig)
		dec.Pass = false
		dec.Reason = "AI rejected the signal"
		return dec
	}

	var combined float64
	if ai.Unavailable {
		combined = stat
		dec.AIUnavailable = true
		dec.Reason = "AI unavailable, statistical score only"
	} else {
		dec.AIConfidence = ai.Confidence
		combined = cc.StatWeight*stat + cc.AIWeight*ai.Confidence
		if ai.Sentiment != nil && a.cfg.AI.SentimentEnabled {
			// Sentiment score arrives in [-1,1]; shift it onto [0,1].
			sentiment := (ai.Sentiment.Score + 1.0) / 2.0
			combined = (1.0-cc.SentimentWeight)*combined + cc.SentimentWeight*sentiment
		}
		if ai.Visual != nil && ai.Visual.Agreement == types.AgreementContradicts {
			combined *= cc.DisagreementPenalty
			dec.Reason = "visual read contradicts the signal"
		}
	}

	if entry, ok := a.wl.Lookup(sig.Symbol); ok {
		dec.Multiplier = entry.Multiplier
		combined *= entry.Multiplier
	}
	if combined > 1.0 {
		combined = 1.0
	}
	if combined < 0.0 {
		combined = 0.0
	}

	dec.Combined = combined
	dec.Threshold = a.thresholdFor(sig)

	if sig.Type == types.SignalHold && a.cfg.Hold.BypassThreshold {
		dec.Pass = true
		dec.Reason = "hold threshold bypassed"
		return dec
	}

	dec.Pass = combined >= dec.Threshold
	if dec.Reason == "" {
		if dec.Pass {
			dec.Reason = fmt.Sprintf("combined %.2f at threshold %.2f", combined, dec.Threshold)
		} else {
			dec.Reason = fmt.Sprintf("combined %.2f below threshold %.2f", combined, dec.Threshold)
		}
	}
	return dec
}

// thresholdFor picks the acceptance threshold: HOLD signals use their
// own bar, watchlisted instruments a lower one, everything else the
// default.
func (a *Aggregator) thresholdFor(sig types.Signal) float64 {
	if sig.Type == types.SignalHold {
		return a.cfg.Hold.Threshold
	}
	if entry, ok := a.wl.Lookup(sig.Symbol); ok {
		return entry.Threshold
	}
	return a.cfg.Confidence.DefaultThreshold
}
