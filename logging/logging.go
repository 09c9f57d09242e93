// Package logging provides the levelled console logger used by the
// adder host components.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Level is a logging threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel parses DEBUG, INFO, WARN or ERROR, ignoring case. An empty
// string is INFO.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Logger writes levelled messages through one std logger per level.
type Logger struct {
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
}

// New returns a logger writing messages at or above level. Debug, info
// and warn messages go to out, errors to errOut.
func New(out, errOut io.Writer, level Level) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds

	l := &Logger{
		debug: log.New(out, color.New(color.FgBlue).Sprint("[DEBUG] "), flags),
		info:  log.New(out, color.New(color.FgGreen).Sprint("[INFO] "), flags),
		warn:  log.New(out, color.New(color.FgYellow).Sprint("[WARN] "), flags),
		err:   log.New(errOut, color.New(color.FgRed).Sprint("[ERROR] "), flags),
	}

	// Below the threshold: discard.
	if level > LevelDebug {
		l.debug.SetOutput(io.Discard)
	}
	if level > LevelInfo {
		l.info.SetOutput(io.Discard)
	}
	if level > LevelWarn {
		l.warn.SetOutput(io.Discard)
	}
	return l
}

// NewConsole returns a logger on stdout and stderr.
func NewConsole(level Level) *Logger {
	return New(os.Stdout, os.Stderr, level)
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, io.Discard, LevelError+1)
}

func (l *Logger) Debugf(format string, args ...any) {
	l.debug.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.info.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.warn.Output(2, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.err.Output(2, fmt.Sprintf(format, args...))
}
