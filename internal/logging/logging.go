// SPDX-License-Identifier: MPL-2.0

// Package logging builds the charmbracelet/log logger used by the CLI and
// carries it through context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects level and encoding.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// JSON switches to one JSON object per line.
	JSON bool
	// Timestamps prefixes each line with the time of day.
	Timestamps bool
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) (*log.Logger, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		parsed, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "bundlekit",
		Level:           level,
		ReportTimestamp: opts.Timestamps,
		TimeFormat:      "15:04:05.00",
	})
	if opts.JSON {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger, nil
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

type ctxKey struct{}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok && l != nil {
		return l
	}
	return Discard()
}

// Progress logs the elapsed time of an operation when done is called.
type Progress struct {
	logger *log.Logger
	start  time.Time
}

// Start begins timing.
func Start(l *log.Logger) *Progress {
	return &Progress{logger: l, start: time.Now()}
}

// Elapsed returns the time since Start.
func (p *Progress) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Done logs msg at info level with the elapsed time, e.g.
// "synchronized node_modules (1.234s)".
func (p *Progress) Done(msg string, keyvals ...any) {
	p.logger.Info(fmt.Sprintf("%s (%s)", msg, p.Elapsed().Round(time.Millisecond)), keyvals...)
}
