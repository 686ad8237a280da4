package signallog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stock-signal-bot/internal/types"
)

func testNotification(symbol string) types.Notification {
	return types.Notification{
		Signal: types.Signal{
			Symbol:   symbol,
			Type:     types.SignalSell,
			Reason:   "RSI overbought",
			Strength: types.StrengthModerate,
			Price:    101.5,
		},
		Validation: types.ValidationResult{Valid: true},
		Confidence: types.ConfidenceScore{Score: 72},
		Decision:   types.AggregateDecision{Combined: 0.7, Threshold: 0.7, Pass: true},
	}
}

func TestRecordAppendsJSONL(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	l.now = func() time.Time { return time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC) }

	if err := l.Record(testNotification("AAPL")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(testNotification("MSFT")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "2024-06-03.jsonl"))
	if err != nil {
		t.Fatalf("open daily file: %v", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "AAPL" || entries[1].Symbol != "MSFT" {
		t.Errorf("unexpected order %s/%s", entries[0].Symbol, entries[1].Symbol)
	}
	if entries[0].SignalType != types.SignalSell || entries[0].StatScore != 72 {
		t.Errorf("entry fields lost: %+v", entries[0])
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)

	old := filepath.Join(dir, "2024-01-02.jsonl")
	if err := os.WriteFile(old, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "2024-06-03.jsonl")
	if err := os.WriteFile(fresh, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := l.CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder: %v", err)
	}

	if _, err := os.Stat(old + ".gz"); err != nil {
		t.Error("expected gzipped archive for the old file")
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("expected original old file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh file must stay untouched")
	}
}
