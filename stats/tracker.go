package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/RowanDark/strintern/logging"
)

const metricsNamespace = "strintern"

type Options struct {
	Logger   *logging.Logger
	Interval time.Duration
}

// Tracker counts what happens to input values on their way into the
// interner. It is safe for concurrent use by readers.
type Tracker struct {
	mu          sync.RWMutex
	start       time.Time
	lines       int
	kept        int
	rejected    int
	dropped     int
	unique      int
	uniqueBytes uint64

	sourceBreakdown map[string]int

	registry        *prometheus.Registry
	linesTotal      *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	uniqueTotal     prometheus.Counter
	uniqueBytesSize prometheus.Gauge

	logger   *logging.Logger
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

type Snapshot struct {
	Lines       int
	Kept        int
	Rejected    int
	Dropped     int
	Unique      int
	UniqueBytes uint64
	Sources     map[string]int
	Duration    time.Duration
}

func NewTracker(opts Options) *Tracker {
	interval := opts.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	t := &Tracker{
		logger:          opts.Logger,
		interval:        interval,
		sourceBreakdown: make(map[string]int),
		done:            make(chan struct{}),
		registry:        prometheus.NewRegistry(),
		linesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "input_lines_total",
			Help:      "Input values read, by source.",
		}, []string{"source"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "values_total",
			Help:      "Input values by outcome (kept, rejected, dropped).",
		}, []string{"outcome"}),
		uniqueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unique_values_total",
			Help:      "Distinct values interned.",
		}),
		uniqueBytesSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "unique_bytes",
			Help:      "Total bytes of distinct interned values.",
		}),
	}
	t.registry.MustRegister(t.linesTotal, t.outcomesTotal, t.uniqueTotal, t.uniqueBytesSize)
	return t
}

func (t *Tracker) Start(ctxDone <-chan struct{}) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.start = time.Now()
	t.mu.Unlock()

	if t.logger == nil {
		return
	}

	t.ticker = time.NewTicker(t.interval)
	go func() {
		for {
			select {
			case <-t.ticker.C:
				t.logSnapshot(false)
			case <-ctxDone:
				return
			case <-t.done:
				return
			}
		}
	}()
}

func (t *Tracker) Stop() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.stopOnce.Do(func() {
		close(t.done)
		if t.ticker != nil {
			t.ticker.Stop()
		}
	})
	return t.Snapshot()
}

// RecordLine counts a value read from source.
func (t *Tracker) RecordLine(source string) {
	if t == nil {
		return
	}
	source = strings.TrimSpace(source)
	t.mu.Lock()
	t.lines++
	if source != "" {
		t.sourceBreakdown[source]++
	}
	t.mu.Unlock()
	t.linesTotal.WithLabelValues(source).Inc()
}

// RecordKept counts a value that reached the interner.
func (t *Tracker) RecordKept() {
	t.recordOutcome("kept")
}

// RecordRejected counts a value a normalisation step failed on.
func (t *Tracker) RecordRejected() {
	t.recordOutcome("rejected")
}

// RecordDropped counts a value skipped by normalisation or scope.
func (t *Tracker) RecordDropped() {
	t.recordOutcome("dropped")
}

func (t *Tracker) recordOutcome(outcome string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	switch outcome {
	case "kept":
		t.kept++
	case "rejected":
		t.rejected++
	case "dropped":
		t.dropped++
	}
	t.mu.Unlock()
	t.outcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordUnique counts a value that received a fresh symbol.
func (t *Tracker) RecordUnique(value string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.unique++
	t.uniqueBytes += uint64(len(value))
	t.mu.Unlock()
	t.uniqueTotal.Inc()
	t.uniqueBytesSize.Add(float64(len(value)))
}

// Registry exposes the tracker's private Prometheus registry.
func (t *Tracker) Registry() *prometheus.Registry {
	return t.registry
}

// WriteMetrics writes the tracker's metrics to path in the Prometheus text
// exposition format.
func (t *Tracker) WriteMetrics(path string) error {
	if t == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, t.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	copyMap := make(map[string]int, len(t.sourceBreakdown))
	for key, value := range t.sourceBreakdown {
		copyMap[key] = value
	}
	duration := time.Duration(0)
	if !t.start.IsZero() {
		duration = time.Since(t.start)
	}
	return Snapshot{
		Lines:       t.lines,
		Kept:        t.kept,
		Rejected:    t.rejected,
		Dropped:     t.dropped,
		Unique:      t.unique,
		UniqueBytes: t.uniqueBytes,
		Sources:     copyMap,
		Duration:    duration,
	}
}

// Hits is the number of kept values that were already interned.
func (s Snapshot) Hits() int {
	if s.Kept < s.Unique {
		return 0
	}
	return s.Kept - s.Unique
}

// HitRate is the share of kept values that were duplicates, as a percentage.
func (s Snapshot) HitRate() float64 {
	if s.Kept == 0 {
		return 0
	}
	return (float64(s.Hits()) / float64(s.Kept)) * 100
}

// Log writes the final summary line.
func (t *Tracker) Log() {
	t.logSnapshot(true)
}

func (t *Tracker) logSnapshot(final bool) {
	if t == nil || t.logger == nil {
		return
	}
	snapshot := t.Snapshot()
	if final {
		t.logger.Infof("Intern statistics: %s", RenderSnapshot(snapshot))
		return
	}
	t.logger.Infof("Stats update: %s", RenderSnapshot(snapshot))
}

// RenderSnapshot formats s as a single log-friendly line.
func RenderSnapshot(s Snapshot) string {
	parts := []string{
		fmt.Sprintf("lines=%s", humanize.Comma(int64(s.Lines))),
		fmt.Sprintf("unique=%s", humanize.Comma(int64(s.Unique))),
		fmt.Sprintf("hit_rate=%.1f%%", s.HitRate()),
		fmt.Sprintf("rejected=%d", s.Rejected),
		fmt.Sprintf("dropped=%d", s.Dropped),
		fmt.Sprintf("unique_bytes=%s", humanize.Bytes(s.UniqueBytes)),
		fmt.Sprintf("duration=%s", s.Duration.Truncate(time.Millisecond)),
	}
	if len(s.Sources) > 0 {
		parts = append(parts, fmt.Sprintf("sources=%s", FormatSourceBreakdown(s.Sources, 5)))
	}
	return strings.Join(parts, " | ")
}

// FormatSourceBreakdown converts a map of source counts into a human readable string.
func FormatSourceBreakdown(sources map[string]int, limit int) string {
	if limit <= 0 {
		limit = len(sources)
	}
	type item struct {
		name  string
		count int
	}
	entries := make([]item, 0, len(sources))
	for name, count := range sources {
		entries = append(entries, item{name: name, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].name < entries[j].name
		}
		return entries[i].count > entries[j].count
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	formatted := make([]string, 0, len(entries))
	for _, entry := range entries {
		formatted = append(formatted, fmt.Sprintf("%s=%d", entry.name, entry.count))
	}
	return strings.Join(formatted, ", ")
}
