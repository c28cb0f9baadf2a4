package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/concurrent"
	"github.com/RowanDark/strintern/config"
	"github.com/RowanDark/strintern/hasher"
	"github.com/RowanDark/strintern/input"
	"github.com/RowanDark/strintern/logging"
	"github.com/RowanDark/strintern/normalize"
	"github.com/RowanDark/strintern/output"
	"github.com/RowanDark/strintern/snapshot"
	"github.com/RowanDark/strintern/stats"
)

// symbolID is the symbol type of tables built and read by the CLI.
type symbolID = uint32

const diffPreviewLimit = 10

// shard interns the values of a single input.
type shard struct {
	source string
	in     *strintern.StringInterner[symbolID]
	counts []int
	total  int
}

func (s *shard) add(value string) {
	sym := s.in.GetOrIntern(value)
	if int(sym) == len(s.counts) {
		s.counts = append(s.counts, 0)
	}
	s.counts[sym]++
	s.total++
}

// table is the merged result of all shards.
type table struct {
	in      *strintern.StringInterner[symbolID]
	counts  []int
	sources [][]string
}

func internerOptions(cfg *config.Config) []strintern.Option {
	h, ok := hasher.ByName(cfg.Hasher)
	if !ok {
		h = hasher.Default()
	}
	return []strintern.Option{strintern.WithHasher(h)}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger, stdin io.Reader, sources []string) error {
	chain, err := normalize.Build(cfg.Normalize)
	if err != nil {
		return err
	}
	scope := normalize.NewScope(cfg.Scope)
	opts := internerOptions(cfg)

	if !cfg.LiveOutput() {
		logger.Infof("Symbol table will be written to %s (format=%s)", cfg.OutputPath, cfg.Format)
	}
	logger.Debugw("Interning inputs", "inputs", len(sources), "workers", cfg.Workers, "hasher", cfg.Hasher, "input_format", cfg.InputFormat)

	shards := make([]*shard, len(sources))
	for i, source := range sources {
		shards[i] = &shard{source: input.SourceName(source), in: strintern.New[symbolID](opts...)}
	}

	// invalid is shared by all readers so each bad value is logged once.
	invalid := concurrent.New[symbolID]()

	tracker := stats.NewTracker(stats.Options{Logger: logger, Interval: cfg.StatsInterval})
	tracker.Start(ctx.Done())

	readOpts := input.Options{
		Format:  cfg.InputFormat,
		Workers: cfg.Workers,
		Origin:  cfg.ZoneOrigin,
		Stdin:   stdin,
	}
	err = input.ReadAll(ctx, sources, readOpts, func(i int, raw string) error {
		sh := shards[i]
		tracker.RecordLine(sh.source)
		value, keep, err := chain.Apply(raw)
		if err != nil {
			if errors.Is(err, normalize.ErrInvalidName) {
				tracker.RecordRejected()
				if _, seen := invalid.Get(raw); !seen {
					invalid.GetOrIntern(raw)
					logger.Debugf("Skipping value from %s: %v", sh.source, err)
				}
				return nil
			}
			return err
		}
		if !keep || !scope.Match(value) {
			tracker.RecordDropped()
			return nil
		}
		tracker.RecordKept()
		sh.add(value)
		return nil
	})
	if err != nil {
		tracker.Stop()
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}

	result := mergeShards(shards, append(opts, strintern.WithCapacity(cfg.Capacity)), tracker, logger)

	if err := writeTable(cfg, result); err != nil {
		return err
	}

	if cfg.SnapshotPath != "" {
		if err := snapshot.Save(cfg.SnapshotPath, result.in); err != nil {
			return err
		}
		logger.Infof("Snapshot saved to %s", cfg.SnapshotPath)
	}

	if cfg.BaselinePath != "" {
		compareBaseline(cfg, logger, result.in)
	}

	summary := tracker.Stop()
	tracker.Log()
	logger.Infow("Interning complete", logging.SortedFields(map[string]int{
		"inputs":           len(sources),
		"invalid_distinct": invalid.Len(),
		"kept":             summary.Kept,
		"lines":            summary.Lines,
		"rejected":         summary.Rejected,
		"unique":           result.in.Len(),
	})...)

	if cfg.MetricsFile != "" {
		if err := tracker.WriteMetrics(cfg.MetricsFile); err != nil {
			return err
		}
		logger.Infof("Metrics written to %s", cfg.MetricsFile)
	}

	return nil
}

// mergeShards folds the shards into a single table in input order, so the
// symbols assigned do not depend on which input finished reading first.
func mergeShards(shards []*shard, opts []strintern.Option, tracker *stats.Tracker, logger *logging.Logger) *table {
	result := &table{in: strintern.New[symbolID](opts...)}
	for _, sh := range shards {
		before := result.in.Len()
		unique := sh.in.Len()
		for local, value := range sh.in.Drain() {
			sym := result.in.GetOrIntern(value)
			if int(sym) == len(result.counts) {
				result.counts = append(result.counts, 0)
				result.sources = append(result.sources, nil)
				tracker.RecordUnique(value)
			}
			result.counts[sym] += sh.counts[local]
			if names := result.sources[sym]; len(names) == 0 || names[len(names)-1] != sh.source {
				result.sources[sym] = append(names, sh.source)
			}
		}
		logger.With("source", sh.source).Debugw("Shard merged",
			"values", sh.total, "unique", unique, "new", result.in.Len()-before)
		sh.counts = nil
	}
	return result
}

func writeTable(cfg *config.Config, result *table) error {
	writer, err := output.NewWriter(cfg)
	if err != nil {
		return err
	}
	for sym, value := range result.in.All() {
		record := output.Record{
			Symbol:  uint64(sym),
			Value:   value,
			Count:   result.counts[sym],
			Sources: result.sources[sym],
		}
		if err := writer.WriteRecord(record); err != nil {
			writer.Close()
			return fmt.Errorf("writing symbol table: %w", err)
		}
	}
	return writer.Close()
}

func compareBaseline(cfg *config.Config, logger *logging.Logger, current *strintern.StringInterner[symbolID]) {
	baseline, err := snapshot.Load[symbolID](cfg.BaselinePath, internerOptions(cfg)...)
	if err != nil {
		logger.Warnf("Unable to load baseline %s: %v", cfg.BaselinePath, err)
		return
	}
	logger.Infof("Loaded %d baseline value(s) from %s", baseline.Len(), cfg.BaselinePath)

	changes := output.Diff(baseline, current)
	logger.Infof("Diff summary: %d added, %d removed, %d renumbered compared to %s",
		len(changes.Added), len(changes.Removed), len(changes.Renumbered), cfg.BaselinePath)
	logPreview(logger, "Added values", changes.Added)
	logPreview(logger, "Removed values", changes.Removed)
	for i, moved := range changes.Renumbered {
		if i == diffPreviewLimit {
			logger.Debugf("Renumbered values truncated; %d additional entries omitted", len(changes.Renumbered)-i)
			break
		}
		logger.Debugw("Renumbered value", "value", moved.Value, "from", moved.From, "to", moved.To)
	}
}

func logPreview(logger *logging.Logger, label string, values []string) {
	if len(values) == 0 {
		return
	}
	preview := values
	if len(preview) > diffPreviewLimit {
		preview = preview[:diffPreviewLimit]
	}
	logger.Infof("%s: %q", label, preview)
	if len(values) > len(preview) {
		logger.Infof("%s truncated; %d additional entries omitted", label, len(values)-len(preview))
	}
}
