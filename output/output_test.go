package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/config"
)

func writeRecords(t *testing.T, cfg *config.Config, records ...Record) string {
	t.Helper()
	writer, err := NewWriter(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, record := range records {
		if err := writer.WriteRecord(record); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	return string(data)
}

func TestJSONWriter(t *testing.T) {
	cfg := &config.Config{Format: config.FormatJSON, OutputPath: filepath.Join(t.TempDir(), "nested", "out.json")}
	data := writeRecords(t, cfg,
		Record{Symbol: 0, Value: "foo", Count: 2, Sources: []string{"a.txt"}},
		Record{Symbol: 1, Value: "bar", Count: 1},
	)

	var decoded []Record
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("decoding json: %v\n%s", err, data)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected two records, got %d", len(decoded))
	}
	if decoded[1].Value != "bar" || decoded[1].Symbol != 1 || decoded[1].Sources == nil {
		t.Fatalf("unexpected record: %+v", decoded[1])
	}
}

func TestJSONWriterEmpty(t *testing.T) {
	cfg := &config.Config{Format: config.FormatJSON, OutputPath: filepath.Join(t.TempDir(), "out.json")}
	if data := writeRecords(t, cfg); data != "[]\n" {
		t.Fatalf("expected empty array, got %q", data)
	}
}

func TestJSONWriterPretty(t *testing.T) {
	cfg := &config.Config{Format: config.FormatJSON, OutputPath: filepath.Join(t.TempDir(), "out.json"), JSONPretty: true}
	data := writeRecords(t, cfg,
		Record{Symbol: 0, Value: "pretty"},
		Record{Symbol: 1, Value: "printed"},
	)

	if !strings.Contains(data, "\n    \"value\": \"pretty\"") {
		t.Fatalf("expected pretty-printed json, got: %s", data)
	}
	var decoded []Record
	if err := json.Unmarshal([]byte(data), &decoded); err != nil || len(decoded) != 2 {
		t.Fatalf("pretty output is not a valid array: %v\n%s", err, data)
	}
}

func TestCSVWriter(t *testing.T) {
	cfg := &config.Config{Format: config.FormatCSV, OutputPath: filepath.Join(t.TempDir(), "out.csv")}
	writeRecords(t, cfg, Record{Symbol: 7, Value: "a,b", Count: 3, Sources: []string{"x.txt", "y.txt"}})

	file, err := os.Open(cfg.OutputPath)
	if err != nil {
		t.Fatalf("open file: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and row, got %d", len(rows))
	}
	want := []string{"7", "a,b", "3", "x.txt;y.txt"}
	for i, cell := range want {
		if rows[1][i] != cell {
			t.Fatalf("column %d: expected %q, got %q", i, cell, rows[1][i])
		}
	}
}

func TestTXTWriter(t *testing.T) {
	cfg := &config.Config{Format: config.FormatTXT, OutputPath: filepath.Join(t.TempDir(), "out.txt")}
	data := writeRecords(t, cfg, Record{Symbol: 2, Value: "tab\there", Count: 1, Sources: []string{"stdin"}})

	if data != "2\t\"tab\\there\"\t1\tstdin\n" {
		t.Fatalf("unexpected txt output: %q", data)
	}
}

func TestDiff(t *testing.T) {
	baseline := strintern.FromStrings[uint32]([]string{"a", "b", "c"})
	current := strintern.FromStrings[uint32]([]string{"a", "c", "d"})

	changes := Diff(baseline, current)
	if len(changes.Added) != 1 || changes.Added[0] != "d" {
		t.Fatalf("unexpected added values: %v", changes.Added)
	}
	if len(changes.Removed) != 1 || changes.Removed[0] != "b" {
		t.Fatalf("unexpected removed values: %v", changes.Removed)
	}
	if len(changes.Renumbered) != 1 || changes.Renumbered[0] != (Renumbered{Value: "c", From: 2, To: 1}) {
		t.Fatalf("unexpected renumbered values: %v", changes.Renumbered)
	}

	if !Diff(baseline, baseline.Clone()).Empty() {
		t.Fatalf("expected no changes against a clone")
	}
}
