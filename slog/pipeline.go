// Package slog provides logging decorators for the sigildex pipeline
// interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/athanor/sigildex"
)

// Ensure LoggingCleaner implements sigildex.Cleaner.
var _ sigildex.Cleaner = (*LoggingCleaner)(nil)

// LoggingCleaner wraps a Cleaner with per-image logging.
type LoggingCleaner struct {
	next   sigildex.Cleaner
	logger *slog.Logger
}

// NewLoggingCleaner creates a new LoggingCleaner.
func NewLoggingCleaner(next sigildex.Cleaner, logger *slog.Logger) *LoggingCleaner {
	return &LoggingCleaner{next: next, logger: logger}
}

// Clean delegates to the wrapped cleaner and logs the operation.
func (c *LoggingCleaner) Clean(ctx context.Context, inPath, outPath string) (res *sigildex.CleanResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"in", inPath,
			"duration", time.Since(begin),
			"err", err,
		}
		if res != nil {
			attrs = append(attrs, "hash", res.Hash, "degenerate", res.Degenerate)
		}
		c.logger.Info("clean image", attrs...)
	}(time.Now())
	return c.next.Clean(ctx, inPath, outPath)
}

// Ensure LoggingRasterizer implements sigildex.Rasterizer.
var _ sigildex.Rasterizer = (*LoggingRasterizer)(nil)

// LoggingRasterizer wraps a Rasterizer with per-document logging.
type LoggingRasterizer struct {
	next   sigildex.Rasterizer
	logger *slog.Logger
}

// NewLoggingRasterizer creates a new LoggingRasterizer.
func NewLoggingRasterizer(next sigildex.Rasterizer, logger *slog.Logger) *LoggingRasterizer {
	return &LoggingRasterizer{next: next, logger: logger}
}

// RenderPages delegates to the wrapped rasterizer and logs the operation.
func (r *LoggingRasterizer) RenderPages(ctx context.Context, docPath, outDir string, dpi int) (paths []string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("render document",
			"doc", docPath,
			"pages", len(paths),
			"dpi", dpi,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.RenderPages(ctx, docPath, outDir, dpi)
}
