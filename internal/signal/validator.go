package signal

import (
	"fmt"
	"math"

	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

const (
	ViolationVolumeTooLow        = "volume-too-low"
	ViolationPriceChangeTooSmall = "price-change-too-small"
)

// Validator checks a signal against minimum volume and price-change
// floors. An invalid signal is still returned so callers can tell
// "filtered" apart from "no signal".
type Validator struct {
	cfg *store.Config
}

func NewValidator(cfg *store.Config) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) Validate(sig types.Signal) types.ValidationResult {
	th := v.cfg.Thresholds
	res := types.ValidationResult{Signal: sig, Valid: true}

	if sig.Volume < th.MinVolume {
		res.Valid = false
		res.Violations = append(res.Violations,
			fmt.Sprintf("%s: %.0f < %.0f", ViolationVolumeTooLow, sig.Volume, th.MinVolume))
	}
	if math.Abs(sig.ChangePct) < th.MinPriceChangePct {
		res.Valid = false
		res.Violations = append(res.Violations,
			fmt.Sprintf("%s: %.2f%% < %.2f%%", ViolationPriceChangeTooSmall, math.Abs(sig.ChangePct), th.MinPriceChangePct))
	}
	return res
}
