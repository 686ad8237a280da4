package watchlist

import (
	"sync"
	"testing"

	"stock-signal-bot/internal/types"
)

func TestLookupNormalizesSymbol(t *testing.T) {
	s := NewStore([]types.WatchlistEntry{
		{Symbol: "aapl", Multiplier: 1.2, Threshold: 0.5},
	})

	e, ok := s.Lookup(" AAPL ")
	if !ok {
		t.Fatal("expected lookup hit for normalized symbol")
	}
	if e.Multiplier != 1.2 || e.Threshold != 0.5 {
		t.Errorf("unexpected entry %+v", e)
	}
	if _, ok := s.Lookup("MSFT"); ok {
		t.Error("unexpected hit for absent symbol")
	}
}

func TestAddRemove(t *testing.T) {
	s := NewStore(nil)
	s.Add(types.WatchlistEntry{Symbol: "tsla", Multiplier: 1.3, Threshold: 0.45})

	if _, ok := s.Lookup("TSLA"); !ok {
		t.Fatal("expected TSLA after Add")
	}
	if !s.Remove("TSLA") {
		t.Error("Remove should report a hit")
	}
	if s.Remove("TSLA") {
		t.Error("second Remove should report a miss")
	}
	if _, ok := s.Lookup("TSLA"); ok {
		t.Error("TSLA should be gone after Remove")
	}
}

func TestSymbolsSorted(t *testing.T) {
	s := NewStore([]types.WatchlistEntry{
		{Symbol: "MSFT"}, {Symbol: "AAPL"}, {Symbol: "NVDA"},
	})
	got := s.Symbols()
	want := []string{"AAPL", "MSFT", "NVDA"}
	if len(got) != len(want) {
		t.Fatalf("expected %d symbols, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sorted %v, got %v", want, got)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Add(types.WatchlistEntry{Symbol: "AAPL", Multiplier: 1.2, Threshold: 0.5})
				s.Lookup("AAPL")
				s.Symbols()
				s.Remove("AAPL")
			}
		}()
	}
	wg.Wait()
}
