package chart

import (
	"context"

	"stock-signal-bot/internal/errs"
	"stock-signal-bot/internal/types"
)

// NoopRenderer is used when no chart collaborator is wired; the AI
// stage then confirms on text alone.
type NoopRenderer struct{}

func NewNoopRenderer() *NoopRenderer {
	return &NoopRenderer{}
}

func (r *NoopRenderer) Render(ctx context.Context, sig types.Signal, ind types.IndicatorSet) ([]byte, error) {
	return nil, errs.ErrDataUnavailable
}
