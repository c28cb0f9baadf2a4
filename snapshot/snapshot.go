// Package snapshot writes interners to disk and reads them back.
//
// A snapshot is the ordered list of interned strings in one of the supported
// encodings, optionally inside an LZ4 frame. Loading a snapshot rebuilds an
// interner equal to the one saved, so every symbol resolves to the same
// string it did before.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/RowanDark/strintern"
	"github.com/RowanDark/strintern/symbol"
)

// Format names an encoding.
type Format string

// Supported encodings.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

const compressedSuffix = ".lz4"

// lz4Magic is the little-endian LZ4 frame magic number 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// ErrUnknownFormat is returned for encodings or file extensions that are not
// supported.
var ErrUnknownFormat = errors.New("snapshot: unknown format")

// Options selects how a snapshot is written.
type Options struct {
	Format   Format
	Compress bool
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatYAML, FormatMsgpack:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "mp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// OptionsForPath infers the encoding and compression from a file name such
// as "table.msgpack.lz4".
func OptionsForPath(path string) (Options, error) {
	name := strings.ToLower(filepath.Base(path))
	opts := Options{}
	if trimmed, ok := strings.CutSuffix(name, compressedSuffix); ok {
		opts.Compress = true
		name = trimmed
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return Options{}, fmt.Errorf("%w: no extension in %s", ErrUnknownFormat, path)
	}
	format, err := ParseFormat(ext)
	if err != nil {
		return Options{}, err
	}
	opts.Format = format
	return opts, nil
}

// Encode writes in to w.
func Encode[S symbol.Symbol](w io.Writer, in *strintern.StringInterner[S], opts Options) (err error) {
	if opts.Compress {
		zw := lz4.NewWriter(w)
		defer func() {
			if cerr := zw.Close(); err == nil {
				err = cerr
			}
		}()
		w = zw
	}

	switch opts.Format {
	case FormatJSON, "":
		return json.NewEncoder(w).Encode(in)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(in); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(in)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// Decode reads an interner in the given format from r. LZ4 frames are
// detected and unwrapped automatically.
func Decode[S symbol.Symbol](r io.Reader, format Format, opts ...strintern.Option) (*strintern.StringInterner[S], error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(lz4Magic)); err == nil && bytes.Equal(head, lz4Magic) {
		r = lz4.NewReader(br)
	} else {
		r = br
	}

	in := strintern.New[S](opts...)
	var err error
	switch format {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(in)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(in)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(in)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s snapshot: %w", format, err)
	}
	return in, nil
}

// Save writes in to path, choosing the encoding from the file name. The
// file is replaced atomically.
func Save[S symbol.Symbol](path string, in *strintern.StringInterner[S]) error {
	opts, err := OptionsForPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil && !os.IsExist(err) {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	buffered := bufio.NewWriter(tmp)
	if err := Encode(buffered, in, opts); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	if err := buffered.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing snapshot %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads the snapshot at path.
func Load[S symbol.Symbol](path string, opts ...strintern.Option) (*strintern.StringInterner[S], error) {
	options, err := OptionsForPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	in, err := Decode[S](file, options.Format, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return in, nil
}
