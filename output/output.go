package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/RowanDark/strintern/config"
)

// Record describes one entry of the symbol table.
type Record struct {
	Symbol  uint64   `json:"symbol"`
	Value   string   `json:"value"`
	Count   int      `json:"count"`
	Sources []string `json:"sources"`
}

// Writer serialises symbol table records to stdout or a file in a configured format.
type Writer struct {
	format        config.Format
	pretty        bool
	destination   *bufio.Writer
	closer        io.Closer
	csvWriter     *csv.Writer
	csvHeaderSent bool
	written       int
}

// NewWriter creates a writer configured according to the provided options.
func NewWriter(cfg *config.Config) (*Writer, error) {
	if cfg.LiveOutput() {
		return newWriter(os.Stdout, nil, cfg.Format, cfg.JSONPretty)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	file, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	return newWriter(file, file, cfg.Format, cfg.JSONPretty)
}

func newWriter(dest io.Writer, closer io.Closer, format config.Format, pretty bool) (*Writer, error) {
	writer := &Writer{
		format:      format,
		pretty:      pretty,
		destination: bufio.NewWriter(dest),
		closer:      closer,
	}
	switch format {
	case config.FormatJSON, config.FormatTXT:
	case config.FormatCSV:
		writer.csvWriter = csv.NewWriter(writer.destination)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return writer, nil
}

// WriteRecord persists a single record using the configured format.
func (w *Writer) WriteRecord(record Record) error {
	if record.Sources == nil {
		record.Sources = []string{}
	}

	var err error
	switch w.format {
	case config.FormatJSON:
		err = w.writeJSONRecord(record)
	case config.FormatCSV:
		err = w.writeCSVRecord(record)
	case config.FormatTXT:
		err = w.writeTXTRecord(record)
	default:
		err = fmt.Errorf("unsupported output format: %s", w.format)
	}
	if err != nil {
		return err
	}
	w.written++
	return nil
}

// writeJSONRecord streams records as the elements of a single JSON array.
func (w *Writer) writeJSONRecord(record Record) error {
	var (
		data []byte
		err  error
	)
	if w.pretty {
		data, err = json.MarshalIndent(record, "  ", "  ")
	} else {
		data, err = json.Marshal(record)
	}
	if err != nil {
		return err
	}

	sep := ","
	if w.written == 0 {
		sep = "["
	}
	if w.pretty {
		sep += "\n  "
	}
	if _, err := w.destination.WriteString(sep); err != nil {
		return err
	}
	_, err = w.destination.Write(data)
	return err
}

func (w *Writer) writeCSVRecord(record Record) error {
	if w.csvWriter == nil {
		return fmt.Errorf("csv writer not initialised")
	}

	if !w.csvHeaderSent {
		header := []string{"symbol", "value", "count", "sources"}
		if err := w.csvWriter.Write(header); err != nil {
			return err
		}
		w.csvHeaderSent = true
	}

	row := []string{
		strconv.FormatUint(record.Symbol, 10),
		record.Value,
		strconv.Itoa(record.Count),
		strings.Join(record.Sources, ";"),
	}
	return w.csvWriter.Write(row)
}

func (w *Writer) writeTXTRecord(record Record) error {
	_, err := fmt.Fprintf(w.destination, "%d\t%s\t%d\t%s\n",
		record.Symbol, strconv.Quote(record.Value), record.Count, strings.Join(record.Sources, ","))
	return err
}

// Close finishes the document, flushes any buffered data and closes owned
// file handles.
func (w *Writer) Close() error {
	if w.format == config.FormatJSON {
		tail := "]\n"
		switch {
		case w.written == 0:
			tail = "[]\n"
		case w.pretty:
			tail = "\n]\n"
		}
		if _, err := w.destination.WriteString(tail); err != nil {
			return err
		}
	}

	if w.csvWriter != nil {
		w.csvWriter.Flush()
		if err := w.csvWriter.Error(); err != nil {
			return err
		}
	}

	if err := w.destination.Flush(); err != nil {
		return err
	}

	if w.closer != nil {
		return w.closer.Close()
	}

	return nil
}
