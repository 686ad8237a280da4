package interfaces

import (
	"context"

	"stock-signal-bot/internal/types"
)

// Confirmer asks an external judgment service for a second opinion on a
// classified signal. Implementations must return the caution sentinel
// (Unavailable=true, confidence 0.0) instead of an error when the
// service cannot be reached, so the pipeline can fall back to a
// statistical-only decision.
type Confirmer interface {
	Confirm(ctx context.Context, req types.ConfirmRequest) (types.ConfirmationResult, error)
}
