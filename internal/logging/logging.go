// Package logging sets up the espwifi logger: a colorized console plus an
// optional rotated log file.
package logging

import (
	"io"
	"log"

	"github.com/mattn/go-colorable"
	"github.com/natefinch/lumberjack"
)

// ANSI colours for console output
const (
	Reset  = "\x1b[0m"
	Red    = "\x1b[31m"
	Green  = "\x1b[32m"
	Yellow = "\x1b[33m"
	Cyan   = "\x1b[36m"
)

// Options selects the log destinations. An empty File logs to the console
// only.
type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger writes every line to the console and, when configured, to a
// rotated file.
type Logger struct {
	*log.Logger
	Console io.Writer
	file    *lumberjack.Logger
}

// New creates a logger with the standard flags used by the tool.
func New(opts Options) *Logger {
	console := colorable.NewColorableStdout()
	l := &Logger{Console: console}

	var out io.Writer = console
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		out = io.MultiWriter(console, l.file)
	}
	l.Logger = newLogger(out)
	return l
}

func newLogger(out io.Writer) *log.Logger {
	return log.New(out, "", log.LstdFlags|log.Lshortfile)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Colorize wraps s in an ANSI colour.
func Colorize(color, s string) string {
	return color + s + Reset
}
