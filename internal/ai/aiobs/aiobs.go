package aiobs

import (
	"context"
	"time"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/types"
)

// observableConfirmer wraps a Confirmer with logging, tracing and metrics
type observableConfirmer struct {
	confirmer interfaces.Confirmer
	m         *metrics.Metrics
}

var _ interfaces.Confirmer = (*observableConfirmer)(nil)

// Wrap wraps a confirmer with observability middleware
func Wrap(confirmer interfaces.Confirmer, m *metrics.Metrics) interfaces.Confirmer {
	return &observableConfirmer{confirmer: confirmer, m: m}
}

func (oc *observableConfirmer) Confirm(ctx context.Context, req types.ConfirmRequest) (types.ConfirmationResult, error) {
	ctx, span := trace.StartSpan(ctx, "ai.Confirm")
	defer span.End()

	logger.Debug(ctx, "Requesting AI confirmation",
		"symbol", req.Symbol,
		"signal_type", req.Signal.Type,
		"stat_score", req.Confidence.Score,
	)

	start := time.Now()
	res, err := oc.confirmer.Confirm(ctx, req)
	elapsed := time.Since(start)
	if oc.m != nil {
		oc.m.AIRequestDur.Observe(elapsed.Seconds())
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "AI confirmation failed", err, "symbol", req.Symbol)
		return res, err
	}

	if res.Unavailable {
		if oc.m != nil {
			oc.m.AIUnavailableTotal.Inc()
		}
		logger.Warn(ctx, "AI confirmation unavailable, using caution sentinel",
			"symbol", req.Symbol,
			"duration_ms", elapsed.Milliseconds(),
		)
		return res, nil
	}

	logger.Info(ctx, "AI confirmation received",
		"symbol", req.Symbol,
		"recommendation", res.Recommendation,
		"confidence", res.Confidence,
		"risk", res.Risk,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}
