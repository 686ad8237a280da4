package notify

import (
	"sync"

	"stock-signal-bot/internal/types"
)

type lastNotice struct {
	signalType types.SignalType
	day        string
}

// Gate deduplicates outbound notifications. It is the only component
// with cross-cycle memory: one (instrument, signal type) pair per
// analysis day. Both the scheduled and the on-demand path go through
// it, so access is serialized.
type Gate struct {
	mu   sync.Mutex
	seen map[string]lastNotice
}

func NewGate() *Gate {
	return &Gate{seen: make(map[string]lastNotice)}
}

// ShouldNotify reports whether the signal may go out and, when it may,
// records it. A repeat of the same signal type on the same day is
// suppressed; a new day or a different type clears the suppression.
func (g *Gate) ShouldNotify(symbol string, t types.SignalType, day string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.seen[symbol]; ok && last.signalType == t && last.day == day {
		return false
	}
	g.seen[symbol] = lastNotice{signalType: t, day: day}
	return true
}

// Reset clears the gate's memory, mainly for tests and manual resets
// from the admin surface.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = make(map[string]lastNotice)
}
