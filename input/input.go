// Package input reads raw values from files and stdin.
package input

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// Supported input formats.
const (
	FormatLines = "lines"
	FormatZone  = "zone"
)

// Stdin is the source name that reads standard input.
const Stdin = "-"

const (
	scannerBufferSize = 64 * 1024
	maxLineSize       = 4 * 1024 * 1024
	cancelCheckEvery  = 1024
)

// mmapThreshold is the size above which regular files are memory mapped.
var mmapThreshold int64 = 10 * 1024 * 1024

// Options controls how sources are read.
type Options struct {
	Format  string
	Workers int
	// Origin is the initial $ORIGIN for zone files with relative names.
	Origin string
	// Stdin replaces os.Stdin for the "-" source.
	Stdin io.Reader
}

// Handler receives every value read from the source at index i of the
// sources passed to ReadAll. Calls for one source are sequential.
type Handler func(i int, value string) error

// SourceName returns the label used for source in logs and statistics.
func SourceName(source string) string {
	if source == Stdin {
		return "stdin"
	}
	return source
}

// ReadAll reads every source, at most opts.Workers at a time. The first
// error cancels the remaining reads.
func ReadAll(ctx context.Context, sources []string, opts Options, handle Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, source := range sources {
		g.Go(func() error {
			return readSource(ctx, source, opts, func(value string) error {
				return handle(i, value)
			})
		})
	}
	return g.Wait()
}

func readSource(ctx context.Context, source string, opts Options, visit func(string) error) error {
	checked := withCancel(ctx, visit)

	if source == Stdin {
		stdin := opts.Stdin
		if stdin == nil {
			stdin = os.Stdin
		}
		return read(stdin, "stdin", opts, checked)
	}

	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	if opts.Format != FormatZone {
		if info, err := file.Stat(); err == nil && info.Mode().IsRegular() &&
			info.Size() > mmapThreshold && info.Size() <= int64(^uint(0)>>1) {
			data, err := unix.Mmap(int(file.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_PRIVATE)
			if err == nil {
				readErr := ReadLines(bytes.NewReader(data), checked)
				_ = unix.Munmap(data)
				return wrapSource(source, readErr)
			}
			// fall back to streaming reader if mmap fails
		}
	}

	return read(file, source, opts, checked)
}

func read(r io.Reader, name string, opts Options, visit func(string) error) error {
	switch opts.Format {
	case FormatZone:
		return wrapSource(name, ReadZone(r, opts.Origin, name, visit))
	case FormatLines, "":
		return wrapSource(name, ReadLines(r, visit))
	default:
		return fmt.Errorf("unsupported input format %q", opts.Format)
	}
}

// ReadLines calls visit for every line of r. Line terminators, including a
// trailing carriage return, are stripped.
func ReadLines(r io.Reader, visit func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	scanner.Buffer(make([]byte, scannerBufferSize), maxLineSize)

	for scanner.Scan() {
		if err := visit(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ReadZone parses r as an RFC 1035 master file and calls visit with the owner
// name of every record.
func ReadZone(r io.Reader, origin, file string, visit func(string) error) error {
	if origin = strings.TrimSpace(origin); origin != "" {
		origin = dns.Fqdn(origin)
	}
	parser := dns.NewZoneParser(r, origin, file)
	for rr, ok := parser.Next(); ok; rr, ok = parser.Next() {
		if err := visit(rr.Header().Name); err != nil {
			return err
		}
	}
	return parser.Err()
}

func withCancel(ctx context.Context, visit func(string) error) func(string) error {
	n := 0
	return func(value string) error {
		check := n%cancelCheckEvery == 0
		n++
		if check {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return visit(value)
	}
}

func wrapSource(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("reading %s: %w", name, err)
}
