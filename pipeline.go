package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/platformatic/pprof-to-md/analyzer"
	"github.com/platformatic/pprof-to-md/internal/config"
	"github.com/platformatic/pprof-to-md/internal/metrics"
	"github.com/platformatic/pprof-to-md/normalize"
)

// pipeline fetches, decodes and analyzes profiles.
type pipeline struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// load fetches and normalizes the profile at uri.
func (p *pipeline) load(ctx context.Context, uri string) (*analyzer.NormalizedProfile, error) {
	filePath, cleanup, err := getProfileAsFile(ctx, p.logger, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile file: %w", err)
	}
	defer cleanup()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file '%s': %w", filePath, err)
	}
	defer file.Close()

	np, err := normalize.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("profile '%s': %w", filePath, err)
	}
	p.logger.Debug().
		Str("path", filePath).
		Int("samples", len(np.Samples)).
		Int("measurement_kinds", len(np.MeasurementKinds)).
		Msg("parsed profile")
	return np, nil
}

// analyze loads uri and runs the engine with cfg.
func (p *pipeline) analyze(ctx context.Context, uri string, cfg config.Config) (*analyzer.AnalysisResult, error) {
	np, err := p.load(ctx, uri)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	column := cfg.ResolveColumn(np)
	opts := append(cfg.AnalyzerOptions(column), analyzer.WithLogger(p.logger))
	result, err := analyzer.Analyze(np, opts...)
	p.metrics.Observe(string(analyzer.ClassifyProfileKind(np.MeasurementKinds)), len(np.Samples), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("analyze '%s': %w", uri, err)
	}

	p.logger.Info().
		Str("profile", uri).
		Str("kind", string(result.ProfileKind)).
		Str("measurement", result.MeasurementKind.String()).
		Int("hotspots", len(result.Hotspots)).
		Dur("took", time.Since(start)).
		Msg("analysis finished")
	return result, nil
}
