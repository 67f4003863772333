// Package config loads pprof-to-md settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/platformatic/pprof-to-md/analyzer"
	"github.com/platformatic/pprof-to-md/render"
)

// Analysis configures the analysis engine.
type Analysis struct {
	// SampleIndex selects the measurement column. Nil means column 0, or the
	// auto-selected column when AutoSelect is set.
	SampleIndex      *int    `yaml:"sample_index"`
	AutoSelect       bool    `yaml:"auto_select"`
	HotspotThreshold float64 `yaml:"hotspot_threshold"`
	MaxPaths         int     `yaml:"max_paths"`
	Parallel         bool    `yaml:"parallel"`
}

// Render configures report output.
type Render struct {
	Format         string  `yaml:"format"`
	TopN           int     `yaml:"top_n"`
	MaxTreeDepth   int     `yaml:"max_tree_depth"`
	MinTreePercent float64 `yaml:"min_tree_percent"`
}

// Log configures the process logger.
type Log struct {
	Level string `yaml:"level"`
	Human bool   `yaml:"human"`
}

// Config is the complete pprof-to-md configuration.
type Config struct {
	Analysis Analysis `yaml:"analysis"`
	Render   Render   `yaml:"render"`
	Log      Log      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	ro := render.DefaultOptions()
	return Config{
		Analysis: Analysis{
			HotspotThreshold: analyzer.DefaultHotspotThreshold,
			MaxPaths:         analyzer.DefaultMaxPaths,
			Parallel:         true,
		},
		Render: Render{
			Format:         render.FormatMarkdown,
			TopN:           ro.TopN,
			MaxTreeDepth:   ro.MaxTreeDepth,
			MinTreePercent: ro.MinTreePercent,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Analysis.SampleIndex != nil && *c.Analysis.SampleIndex < 0 {
		errs = append(errs, fmt.Errorf("analysis.sample_index must be non-negative, got %d", *c.Analysis.SampleIndex))
	}
	if c.Analysis.HotspotThreshold < 0 || c.Analysis.HotspotThreshold > 1 {
		errs = append(errs, fmt.Errorf("analysis.hotspot_threshold must be within [0,1], got %g", c.Analysis.HotspotThreshold))
	}
	if c.Analysis.MaxPaths <= 0 {
		errs = append(errs, fmt.Errorf("analysis.max_paths must be positive, got %d", c.Analysis.MaxPaths))
	}
	if !slices.Contains(render.Formats, c.Render.Format) {
		errs = append(errs, fmt.Errorf("render.format must be one of %v, got %q", render.Formats, c.Render.Format))
	}
	if c.Render.TopN < 0 {
		errs = append(errs, fmt.Errorf("render.top_n must be non-negative, got %d", c.Render.TopN))
	}
	if c.Render.MaxTreeDepth < 0 {
		errs = append(errs, fmt.Errorf("render.max_tree_depth must be non-negative, got %d", c.Render.MaxTreeDepth))
	}
	if c.Render.MinTreePercent < 0 || c.Render.MinTreePercent > 100 {
		errs = append(errs, fmt.Errorf("render.min_tree_percent must be within [0,100], got %g", c.Render.MinTreePercent))
	}
	return errors.Join(errs...)
}

// AnalyzerOptions converts the analysis settings. column is the resolved
// measurement column.
func (c Config) AnalyzerOptions(column int) []analyzer.Option {
	return []analyzer.Option{
		analyzer.WithColumnIndex(column),
		analyzer.WithHotspotThreshold(c.Analysis.HotspotThreshold),
		analyzer.WithMaxPaths(c.Analysis.MaxPaths),
		analyzer.WithParallel(c.Analysis.Parallel),
	}
}

// RenderOptions converts the render settings.
func (c Config) RenderOptions() render.Options {
	return render.Options{
		TopN:           c.Render.TopN,
		MaxTreeDepth:   c.Render.MaxTreeDepth,
		MinTreePercent: c.Render.MinTreePercent,
	}
}

// ResolveColumn picks the measurement column for p.
func (c Config) ResolveColumn(p *analyzer.NormalizedProfile) int {
	if c.Analysis.SampleIndex != nil {
		return *c.Analysis.SampleIndex
	}
	if c.Analysis.AutoSelect {
		return analyzer.SelectPrimaryIndex(p.MeasurementKinds, analyzer.ClassifyProfileKind(p.MeasurementKinds))
	}
	return 0
}
