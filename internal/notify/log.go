package notify

import (
	"context"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// LogNotifier is the default channel: it writes the alert to the
// structured log instead of an external service.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (l *LogNotifier) Send(ctx context.Context, n types.Notification) error {
	logger.Signal(ctx, n.Signal.Symbol, string(n.Signal.Type), n.Decision.Combined, n.Signal.Reason,
		"strength", string(n.Signal.Strength),
		"price", n.Signal.Price,
		"stat_score", n.Confidence.Score,
		"reliability", string(n.Confidence.Reliability),
		"threshold", n.Decision.Threshold,
		"ai_unavailable", n.Decision.AIUnavailable,
		"message", FormatMessage(n),
	)
	return nil
}
