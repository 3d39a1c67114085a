// Package log is a small leveled logger with structured fields, writing text or JSON. Text
// output to a terminal is colored unless NO_COLOR is set.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel returns INFO for anything it does not recognize.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

type Format int

const (
	FormatText Format = iota
	FormatJSON
)

type Fields map[string]interface{}

// output is shared by a logger and every logger derived from it with WithPrefix.
type output struct {
	mu         sync.Mutex
	writer     io.Writer
	level      Level
	format     Format
	colorize   bool
	timeFormat string
}

type Logger struct {
	out    *output
	prefix string
}

type Entry struct {
	logger *Logger
	fields Fields
}

var (
	colors = map[Level]string{
		DEBUG: "\x1b[36m",
		INFO:  "\x1b[32m",
		WARN:  "\x1b[33m",
		ERROR: "\x1b[31m",
	}
	colorReset = "\x1b[0m"
)

// New returns a logger writing to stderr at INFO.
func New(prefix string) *Logger {
	return &Logger{
		out: &output{
			writer:     os.Stderr,
			level:      INFO,
			format:     FormatText,
			colorize:   os.Getenv("NO_COLOR") == "" && isTerminal(int(os.Stderr.Fd())),
			timeFormat: "2006-01-02 15:04:05.000",
		},
		prefix: prefix,
	}
}

// Discard returns a logger which writes nothing.
func Discard() *Logger {
	l := New("")
	l.SetWriter(io.Discard)
	l.SetLevel(ERROR + 1)
	return l
}

func (l *Logger) SetLevel(level Level) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.level = level
}

func (l *Logger) Level() Level {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return l.out.level
}

// SetWriter also turns off color; call SetColorize after it to force color on.
func (l *Logger) SetWriter(w io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.writer = w
	l.out.colorize = false
}

func (l *Logger) SetColorize(enable bool) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.colorize = enable
}

func (l *Logger) SetFormat(format Format) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.format = format
}

func (l *Logger) SetTimeFormat(format string) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.timeFormat = format
}

// WithPrefix returns a logger sharing l's output and settings.
func (l *Logger) WithPrefix(prefix string) *Logger {
	return &Logger{out: l.out, prefix: prefix}
}

func (l *Logger) WithField(key string, value interface{}) *Entry {
	return &Entry{logger: l, fields: Fields{key: value}}
}

func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{logger: l, fields: fields}
}

func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err.Error())
}

func (l *Logger) formatText(level Level, msg string, fields Fields) string {
	var sb strings.Builder

	sb.WriteString(time.Now().Format(l.out.timeFormat))
	sb.WriteString(" [")
	sb.WriteString(fmt.Sprintf("%-5s", level.String()))
	sb.WriteString("] ")

	if l.prefix != "" {
		if l.out.colorize {
			sb.WriteString(colors[level])
		}
		sb.WriteString(l.prefix)
		if l.out.colorize {
			sb.WriteString(colorReset)
		}
		sb.WriteString(": ")
	}

	sb.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" {")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(fmt.Sprintf("%v", fields[k]))
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return sb.String()
}

type jsonEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (l *Logger) formatJSON(level Level, msg string, fields Fields) string {
	data, err := json.Marshal(jsonEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Logger:    l.prefix,
		Message:   msg,
		Fields:    fields,
	})
	if err != nil {
		return fmt.Sprintf(`{"error":"unable to marshal log entry: %v"}`+"\n", err)
	}
	return string(data) + "\n"
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if level < l.out.level {
		return
	}

	var s string
	if l.out.format == FormatJSON {
		s = l.formatJSON(level, msg, fields)
	} else {
		s = l.formatText(level, msg, fields)
	}
	io.WriteString(l.out.writer, s)
}

func sprintf(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, sprintf(msg, args), nil)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, sprintf(msg, args), nil)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, sprintf(msg, args), nil)
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, sprintf(msg, args), nil)
}

func (e *Entry) WithField(key string, value interface{}) *Entry {
	fields := make(Fields, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Entry{logger: e.logger, fields: fields}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err.Error())
}

func (e *Entry) Debug(msg string, args ...interface{}) {
	e.logger.log(DEBUG, sprintf(msg, args), e.fields)
}

func (e *Entry) Info(msg string, args ...interface{}) {
	e.logger.log(INFO, sprintf(msg, args), e.fields)
}

func (e *Entry) Warn(msg string, args ...interface{}) {
	e.logger.log(WARN, sprintf(msg, args), e.fields)
}

func (e *Entry) Error(msg string, args ...interface{}) {
	e.logger.log(ERROR, sprintf(msg, args), e.fields)
}

// ConfigureFromEnv applies POLARIZE_LOG_LEVEL (DEBUG, INFO, WARN, ERROR),
// POLARIZE_LOG_FORMAT (text, json) and NO_COLOR.
func ConfigureFromEnv(l *Logger) {
	if s := os.Getenv("POLARIZE_LOG_LEVEL"); s != "" {
		l.SetLevel(ParseLevel(s))
	}
	switch strings.ToLower(os.Getenv("POLARIZE_LOG_FORMAT")) {
	case "json":
		l.SetFormat(FormatJSON)
	case "text":
		l.SetFormat(FormatText)
	}
	if os.Getenv("NO_COLOR") != "" {
		l.SetColorize(false)
	}
}
