package notify

import (
	"fmt"
	"strings"

	"stock-signal-bot/internal/types"
)

func signalEmoji(t types.SignalType) string {
	switch t {
	case types.SignalBuy:
		return "🟢"
	case types.SignalSell:
		return "🔴"
	case types.SignalStrongSell:
		return "🚨"
	default:
		return "⚪"
	}
}

// FormatMessage renders a notification as the plain-text alert body
// shared by every outbound channel.
func FormatMessage(n types.Notification) string {
	sig := n.Signal
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s @ %.2f\n", signalEmoji(sig.Type), sig.Type, sig.Symbol, sig.Price)
	fmt.Fprintf(&b, "Reason: %s\n", sig.Reason)
	fmt.Fprintf(&b, "Strength: %s | Change: %+.2f%% | Vol ratio: %.1fx\n", sig.Strength, sig.ChangePct, sig.VolRatio)
	fmt.Fprintf(&b, "RSI: %.1f | SMA %0.2f/%0.2f\n", sig.RSI, sig.SMAShort, sig.SMALong)

	fmt.Fprintf(&b, "Stop: %.2f | Target: %.2f\n", sig.StopLoss, sig.TakeProfit)

	fmt.Fprintf(&b, "Confidence: %.0f/100 (%s)", n.Confidence.Score, n.Confidence.Reliability)
	if n.Decision.AIUnavailable {
		b.WriteString(" | AI: unavailable\n")
	} else {
		fmt.Fprintf(&b, " | AI: %s %.2f\n", n.AI.Recommendation, n.AI.Confidence)
	}
	fmt.Fprintf(&b, "Combined: %.2f (threshold %.2f", n.Decision.Combined, n.Decision.Threshold)
	if n.Decision.Multiplier > 1.0 {
		fmt.Fprintf(&b, ", watchlist x%.1f", n.Decision.Multiplier)
	}
	b.WriteString(")")

	if !n.Validation.Valid {
		fmt.Fprintf(&b, "\nFiltered: %s", strings.Join(n.Validation.Violations, ", "))
	}
	return b.String()
}
