package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RowanDark/strintern/hasher"
	"github.com/RowanDark/strintern/normalize"
)

// Input formats understood by the reader.
const (
	InputLines = "lines"
	InputZone  = "zone"
)

// Format represents an output format option.
type Format string

// Supported output format options.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTXT  Format = "txt"
)

const (
	defaultHasher        = "xxhash"
	defaultStatsInterval = 2 * time.Second
	defaultGCPercent     = 100
)

// Config captures all runtime configuration for the CLI.
type Config struct {
	Inputs      []string
	InputFormat string
	ZoneOrigin  string
	Normalize   []string
	Scope       []string

	OutputPath   string
	Format       Format
	JSONPretty   bool
	SnapshotPath string
	BaselinePath string
	MetricsFile  string

	Capacity      int
	Hasher        string
	Workers       int
	GCPercent     int
	StatsInterval time.Duration

	Verbose  bool
	Silent   bool
	LogLevel string
	LogFile  string

	ConfigPath string
	Profile    string
}

// BindFlags registers the shared command-line flags and returns a Config
// instance whose fields are populated when Cobra parses flag values.
func BindFlags(cmd *cobra.Command) *Config {
	cfg := &Config{}

	flags := cmd.PersistentFlags()
	flags.StringSliceVarP(&cfg.Inputs, "input", "i", nil, "Input files to intern (\"-\" reads stdin); positional arguments are added")
	flags.StringVar(&cfg.InputFormat, "input-format", InputLines, "Input format (lines or zone)")
	flags.StringVar(&cfg.ZoneOrigin, "zone-origin", "", "Initial $ORIGIN for zone files with relative names")
	flags.StringSliceVar(&cfg.Normalize, "normalize", nil, "Normalisation steps applied in order (trim, lower, idna, dns, skip-empty)")
	flags.StringSliceVar(&cfg.Scope, "scope", nil, "Only keep values matching the provided glob patterns or suffixes")
	flags.StringVarP(&cfg.OutputPath, "output", "o", "", "Optional file path to write the symbol table")
	flags.StringVar((*string)(&cfg.Format), "format", string(FormatJSON), "Output format (json, csv, txt)")
	flags.BoolVar(&cfg.JSONPretty, "json-pretty", false, "Indent JSON output")
	flags.StringVar(&cfg.SnapshotPath, "snapshot", "", "Save the resulting interner to this path (.json, .yaml, .msgpack, optional .lz4)")
	flags.StringVar(&cfg.BaselinePath, "baseline", "", "Compare the result against a previously saved snapshot")
	flags.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics for the run to this file")
	flags.IntVar(&cfg.Capacity, "capacity", 0, "Number of distinct strings to preallocate room for")
	flags.StringVar(&cfg.Hasher, "hasher", defaultHasher, "Index hashing strategy (xxhash or maphash)")
	flags.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of inputs read concurrently")
	flags.IntVar(&cfg.GCPercent, "gc-percent", defaultGCPercent, "Garbage collector target percentage while interning")
	flags.DurationVar(&cfg.StatsInterval, "stats-interval", defaultStatsInterval, "Interval between progress log lines")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose logging output")
	flags.BoolVar(&cfg.Silent, "silent", false, "Suppress console logging")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFile, "log-file", "", "Also append logs to this file")
	flags.StringVar(&cfg.ConfigPath, "config", "", "Path to a configuration file (defaults to ./"+defaultConfigFilename+" or ~/"+defaultConfigFilename+")")
	flags.StringVar(&cfg.Profile, "profile", "", "Configuration profile to apply")

	return cfg
}

// Validate ensures the provided configuration values meet the expected
// constraints and normalises their representation where required.
func (c *Config) Validate() error {
	if c.Silent && c.Verbose {
		return fmt.Errorf("--silent and --verbose cannot be combined")
	}

	c.InputFormat = strings.ToLower(strings.TrimSpace(c.InputFormat))
	switch c.InputFormat {
	case "":
		c.InputFormat = InputLines
	case InputLines, InputZone:
		// valid
	default:
		return fmt.Errorf("invalid input format %q: expected %q or %q", c.InputFormat, InputLines, InputZone)
	}

	format := strings.ToLower(strings.TrimSpace(string(c.Format)))
	switch Format(format) {
	case FormatJSON, FormatCSV, FormatTXT:
		c.Format = Format(format)
	case "":
		c.Format = FormatJSON
	default:
		return fmt.Errorf("invalid output format %q: expected json, csv, or txt", c.Format)
	}

	c.Inputs = cleanList(c.Inputs, false)
	c.Scope = cleanList(c.Scope, false)
	c.Normalize = cleanList(c.Normalize, true)
	if _, err := normalize.Build(c.Normalize); err != nil {
		return err
	}

	c.Hasher = strings.ToLower(strings.TrimSpace(c.Hasher))
	if c.Hasher == "" {
		c.Hasher = defaultHasher
	}
	if _, ok := hasher.ByName(c.Hasher); !ok {
		return fmt.Errorf("invalid hasher %q: expected xxhash or maphash", c.Hasher)
	}

	if c.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative, got %d", c.Capacity)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.GCPercent == 0 {
		c.GCPercent = defaultGCPercent
	}
	if c.StatsInterval <= 0 {
		c.StatsInterval = defaultStatsInterval
	}

	c.ZoneOrigin = strings.TrimSpace(c.ZoneOrigin)
	c.OutputPath = strings.TrimSpace(c.OutputPath)
	c.SnapshotPath = strings.TrimSpace(c.SnapshotPath)
	c.BaselinePath = strings.TrimSpace(c.BaselinePath)
	c.MetricsFile = strings.TrimSpace(c.MetricsFile)

	return nil
}

// LiveOutput returns true when results should be sent to stdout instead of a file.
func (c *Config) LiveOutput() bool {
	return strings.TrimSpace(c.OutputPath) == ""
}

func cleanList(values []string, lower bool) []string {
	if len(values) == 0 {
		return values
	}
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if lower {
			value = strings.ToLower(value)
		}
		if value == "" {
			continue
		}
		cleaned = append(cleaned, value)
	}
	return cleaned
}
