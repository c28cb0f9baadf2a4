package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var levelStrings = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelStrings[l]; ok {
		return name
	}
	return "INFO"
}

type Options struct {
	Level    Level
	Console  io.Writer
	FilePath string
}

// sink is the state shared between a logger and the children created by With.
type sink struct {
	mu      sync.Mutex
	level   Level
	writer  io.Writer
	console io.Writer
	file    *os.File
	now     func() time.Time
}

type Logger struct {
	sink   *sink
	fields string
}

func ParseLevel(value string) (Level, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return LevelInfo, nil
	}
	level, ok := levelNames[value]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
	return level, nil
}

func New(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{console}
	var logFile *os.File
	if filePath := strings.TrimSpace(opts.FilePath); filePath != "" {
		dir := filepath.Dir(filePath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, fmt.Errorf("creating log directory: %w", err)
			}
		}
		f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
	}

	return &Logger{sink: &sink{
		level:   opts.Level,
		writer:  io.MultiWriter(writers...),
		console: console,
		file:    logFile,
		now:     time.Now,
	}}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{sink: &sink{level: LevelError + 1, writer: io.Discard, console: io.Discard, now: time.Now}}
}

func (l *Logger) Close() error {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.file != nil {
		err := l.sink.file.Close()
		l.sink.file = nil
		return err
	}
	return nil
}

func (l *Logger) ConsoleWriter() io.Writer {
	return l.sink.console
}

func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// With returns a child logger that appends the given key/value pairs to
// every line. The child shares level and outputs with its parent.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sink: l.sink, fields: l.fields + formatFields(keysAndValues)}
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	l.emit(level, fmt.Sprintf(format, args...), "")
}

func (l *Logger) emit(level Level, message, fields string) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < s.level {
		return
	}
	message = strings.TrimRight(message, "\n")
	line := fmt.Sprintf("%s [%s] %s%s%s\n", s.now().UTC().Format(time.RFC3339), level, message, l.fields, fields)
	_, _ = io.WriteString(s.writer, line)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// Debugw logs msg followed by key=value pairs.
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.emit(LevelDebug, msg, formatFields(keysAndValues))
}

// Infow logs msg followed by key=value pairs.
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.emit(LevelInfo, msg, formatFields(keysAndValues))
}

// Warnw logs msg followed by key=value pairs.
func (l *Logger) Warnw(msg string, keysAndValues ...interface{}) {
	l.emit(LevelWarn, msg, formatFields(keysAndValues))
}

// Errorw logs msg followed by key=value pairs.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.emit(LevelError, msg, formatFields(keysAndValues))
}

// formatFields renders pairs as " k=v k2=v2". A trailing key without a value
// is rendered with the value "(missing)"; values containing spaces are quoted.
func formatFields(keysAndValues []interface{}) string {
	if len(keysAndValues) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		value := "(missing)"
		if i+1 < len(keysAndValues) {
			value = fmt.Sprint(keysAndValues[i+1])
		}
		if value == "" || strings.ContainsAny(value, " \t\"=") {
			value = fmt.Sprintf("%q", value)
		}
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	return b.String()
}

// SortedFields renders a map as key=value pairs ordered by key, for
// summaries whose fields are not known up front.
func SortedFields(values map[string]int) []interface{} {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]interface{}, 0, len(keys)*2)
	for _, key := range keys {
		out = append(out, key, values[key])
	}
	return out
}

type writerAdapter struct {
	logger *Logger
	level  Level
}

func (w writerAdapter) Write(p []byte) (int, error) {
	if len(p) == 0 || w.logger == nil {
		return len(p), nil
	}
	text := strings.ReplaceAll(string(p), "\r", "")
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		w.logger.logf(w.level, "%s", trimmed)
	}
	return len(p), nil
}

func (l *Logger) Writer(level Level) io.Writer {
	return writerAdapter{logger: l, level: level}
}
