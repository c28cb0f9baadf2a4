package stats

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RowanDark/strintern/logging"
)

func TestTrackerSnapshot(t *testing.T) {
	tracker := NewTracker(Options{})
	for range 4 {
		tracker.RecordLine("words.txt")
		tracker.RecordKept()
	}
	tracker.RecordLine("zone.db")
	tracker.RecordRejected()
	tracker.RecordLine("zone.db")
	tracker.RecordDropped()
	tracker.RecordUnique("foo")
	tracker.RecordUnique("bar")

	snapshot := tracker.Snapshot()
	if snapshot.Lines != 6 || snapshot.Kept != 4 || snapshot.Rejected != 1 || snapshot.Dropped != 1 {
		t.Fatalf("unexpected snapshot values: %+v", snapshot)
	}
	if snapshot.Unique != 2 || snapshot.UniqueBytes != 6 {
		t.Fatalf("unexpected unique counts: %+v", snapshot)
	}
	if snapshot.Hits() != 2 || snapshot.HitRate() != 50 {
		t.Fatalf("unexpected hit rate: %d %.1f", snapshot.Hits(), snapshot.HitRate())
	}
	if snapshot.Sources["words.txt"] != 4 || snapshot.Sources["zone.db"] != 2 {
		t.Fatalf("unexpected sources: %v", snapshot.Sources)
	}
}

func TestNilTrackerIsNoop(t *testing.T) {
	var tracker *Tracker
	tracker.RecordLine("x")
	tracker.RecordKept()
	tracker.RecordRejected()
	tracker.RecordUnique("x")
	if snapshot := tracker.Stop(); snapshot.Lines != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
	if err := tracker.WriteMetrics("unused"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrackerLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: logging.LevelInfo, Console: &buf})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Close()

	tracker := NewTracker(Options{Logger: logger, Interval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	tracker.Start(ctx.Done())
	tracker.RecordLine("stdin")
	tracker.RecordKept()
	tracker.RecordUnique("value")
	time.Sleep(2 * time.Millisecond)
	cancel()
	snapshot := tracker.Stop()
	tracker.Log()

	if snapshot.Unique == 0 {
		t.Fatalf("expected snapshot to reflect interned values")
	}
	if !strings.Contains(buf.String(), "Intern statistics") {
		t.Fatalf("expected summary log output, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), "unique_bytes=5 B") {
		t.Fatalf("expected humanized byte count, got %s", buf.String())
	}
}

func TestWriteMetrics(t *testing.T) {
	tracker := NewTracker(Options{})
	tracker.RecordLine("words.txt")
	tracker.RecordKept()
	tracker.RecordUnique("foo")

	path := filepath.Join(t.TempDir(), "strintern.prom")
	if err := tracker.WriteMetrics(path); err != nil {
		t.Fatalf("WriteMetrics error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	contents := string(data)
	for _, want := range []string{
		`strintern_input_lines_total{source="words.txt"} 1`,
		`strintern_values_total{outcome="kept"} 1`,
		"strintern_unique_values_total 1",
		"strintern_unique_bytes 3",
	} {
		if !strings.Contains(contents, want) {
			t.Fatalf("metrics missing %q:\n%s", want, contents)
		}
	}
}

func TestFormatSourceBreakdown(t *testing.T) {
	breakdown := map[string]int{"b": 2, "a": 5, "c": 1}
	formatted := FormatSourceBreakdown(breakdown, 2)
	if formatted != "a=5, b=2" {
		t.Fatalf("unexpected breakdown: %s", formatted)
	}
}
