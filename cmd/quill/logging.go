package main

import (
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"go.uber.org/zap"
)

// newLogger creates the CLI logger. --verbose switches to the development
// configuration with debug output.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}

// setupTracing installs a Go-logger tracer for the library packages. All
// packages share one tracer writing to w.
func setupTracing(level string, w io.Writer) tracing.Trace {
	tracer := gologadapter.New()
	tracer.SetTraceLevel(tracing.TraceLevelFromString(level))
	tracer.SetOutput(w)
	tracing.SetTraceSelector(tracing.SelectorForAdapter(func() tracing.Trace { return tracer }))
	return tracer
}
