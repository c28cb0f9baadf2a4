package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func TestStringSliceUnmarshalScalar(t *testing.T) {
	var slice StringSlice
	if err := slice.UnmarshalYAML(newScalarNode(" words.txt ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slice) != 1 || slice[0] != "words.txt" {
		t.Fatalf("expected [words.txt], got %#v", []string(slice))
	}
}

func TestStringSliceUnmarshalSequence(t *testing.T) {
	var slice StringSlice
	if err := slice.UnmarshalYAML(newSequenceNode(" trim ", "", "lower")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"trim", "lower"}
	if len(slice) != len(expected) {
		t.Fatalf("expected %d entries, got %d", len(expected), len(slice))
	}
	for i, v := range expected {
		if slice[i] != v {
			t.Fatalf("expected element %d to be %q, got %q", i, v, slice[i])
		}
	}
}

func TestApplyProfileLoadsNamedProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, `profiles:
  zones:
    input_format: zone
    normalize:
      - lower
      - dns
    workers: 3
    stats_interval: 5s
    verbose: true
`)

	cmd := &cobra.Command{Use: "test"}
	cfg := BindFlags(cmd)
	cfg.ConfigPath = path
	cfg.Profile = "zones"
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if err := ApplyProfile(cfg, cmd); err != nil {
		t.Fatalf("ApplyProfile error: %v", err)
	}

	if cfg.InputFormat != InputZone {
		t.Fatalf("expected input format zone, got %s", cfg.InputFormat)
	}
	if len(cfg.Normalize) != 2 || cfg.Normalize[0] != "lower" || cfg.Normalize[1] != "dns" {
		t.Fatalf("expected normalize [lower dns], got %#v", cfg.Normalize)
	}
	if cfg.Workers != 3 {
		t.Fatalf("expected workers 3, got %d", cfg.Workers)
	}
	if cfg.StatsInterval != 5*time.Second {
		t.Fatalf("expected stats interval 5s, got %s", cfg.StatsInterval)
	}
	if !cfg.Verbose {
		t.Fatalf("expected verbose true")
	}
}

func TestApplyProfileRespectsFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, `profiles:
  quick:
    hasher: maphash
    workers: 10
`)
	cmd := &cobra.Command{Use: "test"}
	cfg := BindFlags(cmd)
	cfg.ConfigPath = path
	cfg.Profile = "quick"
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if err := cmd.Flags().Set("workers", "7"); err != nil {
		t.Fatalf("set workers flag: %v", err)
	}

	if err := ApplyProfile(cfg, cmd); err != nil {
		t.Fatalf("ApplyProfile error: %v", err)
	}

	if cfg.Workers != 7 {
		t.Fatalf("expected workers to remain 7, got %d", cfg.Workers)
	}
	if cfg.Hasher != "maphash" {
		t.Fatalf("expected hasher maphash, got %s", cfg.Hasher)
	}
}

func TestApplyProfileUsesDefaultProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, `profiles:
  default:
    format: csv
    json_pretty: false
    snapshot: table.msgpack.lz4
`)
	cmd := &cobra.Command{Use: "test"}
	cfg := BindFlags(cmd)
	cfg.ConfigPath = path
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if err := ApplyProfile(cfg, cmd); err != nil {
		t.Fatalf("ApplyProfile error: %v", err)
	}

	if cfg.Format != FormatCSV {
		t.Fatalf("expected format csv, got %s", cfg.Format)
	}
	if cfg.JSONPretty {
		t.Fatalf("expected json pretty false")
	}
	if cfg.SnapshotPath != "table.msgpack.lz4" {
		t.Fatalf("unexpected snapshot path %q", cfg.SnapshotPath)
	}
}

func TestApplyProfileMissingConfigReturnsError(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cfg := BindFlags(cmd)
	cfg.ConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	cfg.Profile = "quick"
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	if err := ApplyProfile(cfg, cmd); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func newScalarNode(values ...string) *yaml.Node {
	if len(values) == 0 {
		return &yaml.Node{Kind: yaml.ScalarNode}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: values[0]}
}

func newSequenceNode(values ...string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	return node
}
