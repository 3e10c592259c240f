// Package cli implements the sldlayout command-line interface.
//
// This package provides commands for laying out single-line diagrams from
// JSON substation topologies, inspecting the detected cells, producing the
// Graphviz debug view and serving layouts over HTTP. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute the JSON layout of a topology
//   - cells: Print the detected cells and their block trees
//   - dot: Render the cell structure as DOT, SVG or PNG
//   - serve: Serve layouts over HTTP with Prometheus metrics
//   - params: Print the default layout parameters
//   - cache: Manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes one record per layout stage and panel.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
)

// newLogger returns a logger writing timestamped records ("14:32:01.45")
// to w at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logFormats maps the --log-format values to formatters. The server
// defaults to text like the other commands; json and logfmt suit log
// collectors.
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

func parseLogFormat(s string) (log.Formatter, error) {
	f, ok := logFormats[strings.ToLower(s)]
	if !ok {
		return log.TextFormatter, fmt.Errorf("unknown log format %q (want text, json or logfmt)", s)
	}
	return f, nil
}

// progress logs the completion of a step with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time rounded
// to the millisecond, e.g. "laid out panels=3 elapsed=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// requestLogger returns base tagged with the request ID chi assigned to r
// and the request line.
func requestLogger(base *log.Logger, r *http.Request) *log.Logger {
	return base.With("request", middleware.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path)
}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or the
// default logger.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
