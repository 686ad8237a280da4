package noop

import (
	"context"

	"stock-signal-bot/internal/types"
)

// Confirmer is the fallback used when no AI service is configured. It
// always reports the service as unavailable so aggregation runs on the
// statistical score alone.
type Confirmer struct{}

func NewConfirmer() *Confirmer {
	return &Confirmer{}
}

func (c *Confirmer) Confirm(ctx context.Context, req types.ConfirmRequest) (types.ConfirmationResult, error) {
	return types.ConfirmationResult{
		Recommendation: types.RecommendCaution,
		Confidence:     0.0,
		Risk:           types.RiskMedium,
		Unavailable:    true,
	}, nil
}
