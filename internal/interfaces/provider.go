package interfaces

import (
	"context"

	"stock-signal-bot/internal/types"
)

// Provider returns daily bars for a symbol, oldest first.
type Provider interface {
	RecentBars(ctx context.Context, symbol string, n int) ([]types.Bar, error)
}
