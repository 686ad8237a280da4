package watchlist

import (
	"sort"
	"strings"
	"sync"

	"stock-signal-bot/internal/types"
)

// Store holds priority instruments. Reads come from every instrument
// pipeline; writes come from the admin path, so access is guarded.
type Store struct {
	mu      sync.RWMutex
	entries map[string]types.WatchlistEntry
}

func NewStore(entries []types.WatchlistEntry) *Store {
	s := &Store{entries: make(map[string]types.WatchlistEntry, len(entries))}
	for _, e := range entries {
		s.entries[normalize(e.Symbol)] = e
	}
	return s
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (s *Store) Add(e types.WatchlistEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Symbol = normalize(e.Symbol)
	s.entries[e.Symbol] = e
}

func (s *Store) Remove(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalize(symbol)
	_, ok := s.entries[key]
	delete(s.entries, key)
	return ok
}

// Lookup returns the entry for a symbol and whether it is watchlisted.
func (s *Store) Lookup(symbol string) (types.WatchlistEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[normalize(symbol)]
	return e, ok
}

func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for sym := range s.entries {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
