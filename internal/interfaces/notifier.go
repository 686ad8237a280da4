package interfaces

import (
	"context"

	"stock-signal-bot/internal/types"
)

// Notifier delivers a gated notification to an outbound channel.
type Notifier interface {
	Send(ctx context.Context, n types.Notification) error
}

// Renderer produces a chart image for a signal, used to augment the AI
// confirmation call with vision input.
type Renderer interface {
	Render(ctx context.Context, sig types.Signal, ind types.IndicatorSet) ([]byte, error)
}
