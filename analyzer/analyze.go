package analyzer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	DefaultHotspotThreshold = 0.01
	DefaultMaxPaths         = 5
)

// ErrInvalidColumnIndex is returned when the requested measurement column does
// not exist in the profile.
var ErrInvalidColumnIndex = errors.New("invalid column index")

type options struct {
	column    int
	threshold float64
	maxPaths  int
	parallel  bool
	logger    zerolog.Logger
}

// Option configures Analyze.
type Option func(*options)

// WithColumnIndex selects the measurement column to analyze. Defaults to 0.
func WithColumnIndex(i int) Option {
	return func(o *options) { o.column = i }
}

// WithHotspotThreshold sets the minimum self share (0..1) for a hotspot.
// Values outside [0,1] are clamped.
func WithHotspotThreshold(t float64) Option {
	return func(o *options) {
		switch {
		case t < 0:
			t = 0
		case t > 1:
			t = 1
		}
		o.threshold = t
	}
}

// WithMaxPaths bounds the number of critical paths.
func WithMaxPaths(n int) Option {
	return func(o *options) { o.maxPaths = n }
}

// WithParallel controls whether statistics and the call tree are built
// concurrently. Both produce identical results either way.
func WithParallel(p bool) Option {
	return func(o *options) { o.parallel = p }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Analyze derives function statistics, the call tree, hotspots and critical
// paths from p. The only error is ErrInvalidColumnIndex; a profile whose
// selected column sums to zero yields an empty but well-formed result.
func Analyze(p *NormalizedProfile, opts ...Option) (*AnalysisResult, error) {
	o := options{
		threshold: DefaultHotspotThreshold,
		maxPaths:  DefaultMaxPaths,
		parallel:  true,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.column < 0 || o.column >= len(p.MeasurementKinds) {
		return nil, fmt.Errorf("%w: %d (profile has %d measurement kinds)", ErrInvalidColumnIndex, o.column, len(p.MeasurementKinds))
	}
	kind := p.MeasurementKinds[o.column]
	log := o.logger.With().Str("measurement", kind.String()).Int("column", o.column).Logger()

	total := TotalValue(p.Samples, o.column)
	result := &AnalysisResult{
		MeasurementKind:  kind,
		ColumnIndex:      o.column,
		ProfileKind:      ClassifyProfileKind(p.MeasurementKinds),
		TotalValue:       total,
		TotalSampleCount: len(p.Samples),
		Hotspots:         []Hotspot{},
		CriticalPaths:    []CriticalPath{},
		Metadata: Metadata{
			DurationNanos: p.DurationNanos,
			TimeNanos:     p.TimeNanos,
			PeriodType:    p.PeriodType,
			Period:        p.Period,
			Comments:      p.Comments,
		},
	}

	if total.IsZero() {
		log.Debug().Int("samples", len(p.Samples)).Msg("selected column sums to zero, returning empty analysis")
		result.FunctionStats = orderedmap.New[string, *FunctionStats]()
		result.CallTree = newCallTreeNode(RootName, RootName, "", 0)
		return result, nil
	}

	// --- 1. Independent passes over the samples ---
	if o.parallel {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			result.FunctionStats = Aggregate(p.Samples, o.column, total)
		}()
		go func() {
			defer wg.Done()
			result.CallTree = BuildCallTree(p.Samples, o.column, total)
		}()
		wg.Wait()
	} else {
		result.FunctionStats = Aggregate(p.Samples, o.column, total)
		result.CallTree = BuildCallTree(p.Samples, o.column, total)
	}

	// --- 2. Derived views ---
	result.Hotspots = RankHotspots(result.FunctionStats, o.threshold)
	result.CriticalPaths = ExtractCriticalPaths(result.CallTree, o.maxPaths)

	log.Debug().
		Str("total", total.String()).
		Int("samples", len(p.Samples)).
		Int("functions", result.FunctionStats.Len()).
		Int("hotspots", len(result.Hotspots)).
		Int("critical_paths", len(result.CriticalPaths)).
		Msg("analysis complete")
	return result, nil
}
