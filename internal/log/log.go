// Package log provides context-aware output logging for refsync.
package log

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type ctxKey struct{}

// Logger provides user-facing output plus verbose command echo.
type Logger struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool
	quiet   bool
}

// New creates a Logger writing to out and errOut.
func New(out, errOut io.Writer, verbose, quiet bool) *Logger {
	return &Logger{out: out, errOut: errOut, verbose: verbose, quiet: quiet}
}

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the logger from context, or a silent logger if
// none is attached.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{out: io.Discard, errOut: io.Discard}
}

// Infof writes a line unless quiet mode is active.
func (l *Logger) Infof(format string, args ...any) {
	if !l.quiet {
		fmt.Fprintf(l.out, format+"\n", args...)
	}
}

// Detailf writes an indented line only in verbose mode.
func (l *Logger) Detailf(format string, args ...any) {
	if l.verbose {
		fmt.Fprintf(l.out, "  "+format+"\n", args...)
	}
}

// Errorf writes an error line to the error stream. Quiet mode does not
// suppress errors.
func (l *Logger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.errOut, "error: "+format+"\n", args...)
}

// Command echoes an external command invocation in verbose mode.
func (l *Logger) Command(name string, args ...string) {
	if l.verbose {
		fmt.Fprintf(l.out, "$ %s %s\n", name, strings.Join(args, " "))
	}
}

// Verbose reports whether verbose mode is enabled.
func (l *Logger) Verbose() bool {
	return l.verbose
}
