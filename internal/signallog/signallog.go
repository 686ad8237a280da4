package signallog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-signal-bot/internal/types"
)

// Entry is one audit record: a fully evaluated signal with every stage's
// output, one JSON line per record in a daily file.
type Entry struct {
	Time       string                   `json:"time"`
	Symbol     string                   `json:"symbol"`
	SignalType types.SignalType         `json:"signal_type"`
	Reason     string                   `json:"reason"`
	Strength   types.Strength           `json:"strength"`
	Price      float64                  `json:"price"`
	Valid      bool                     `json:"valid"`
	Violations []string                 `json:"violations,omitempty"`
	StatScore  float64                  `json:"stat_score"`
	AI         types.ConfirmationResult `json:"ai"`
	Decision   types.AggregateDecision  `json:"decision"`
}

// Log appends evaluated signals to daily JSONL files under a base
// directory, one file per UTC day.
type Log struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

func New(dir string) *Log {
	if dir == "" {
		if v := os.Getenv("SIGNAL_LOG_DIR"); v != "" {
			dir = v
		} else {
			dir = "logs"
		}
	}
	return &Log{dir: dir, now: time.Now}
}

func (l *Log) dailyFilepath(t time.Time) string {
	return filepath.Join(l.dir, t.UTC().Format("2006-01-02")+".jsonl")
}

// Record writes the notification's audit entry. Failures are returned,
// not fatal; the pipeline treats the audit log as best effort.
func (l *Log) Record(n types.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	e := Entry{
		Time:       now.Format("2006-01-02 15:04:05"),
		Symbol:     n.Signal.Symbol,
		SignalType: n.Signal.Type,
		Reason:     n.Signal.Reason,
		Strength:   n.Signal.Strength,
		Price:      n.Signal.Price,
		Valid:      n.Validation.Valid,
		Violations: n.Validation.Violations,
		StatScore:  n.Confidence.Score,
		AI:         n.AI,
		Decision:   n.Decision,
	}

	p := l.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips daily files older than the retention window and
// removes the originals.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := l.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 == nil {
			_ = gw.Close()
			_ = out.Close()
			_ = os.Remove(p)
		} else {
			_ = gw.Close()
			_ = out.Close()
		}
		return nil
	})
}
