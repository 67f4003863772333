// Package normalize turns decoded pprof profiles into the analyzer's input model.
package normalize

import (
	"fmt"
	"io"
	"strconv"

	"github.com/google/pprof/profile"

	"github.com/platformatic/pprof-to-md/analyzer"
)

// Parse decodes a pprof profile (gzip-compressed or raw protobuf) and normalizes it.
func Parse(r io.Reader) (*analyzer.NormalizedProfile, error) {
	p, err := profile.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return FromProfile(p), nil
}

// FromProfile converts p. Locations without line information and lines
// without a function resolve to a frame carrying the <unknown> function.
func FromProfile(p *profile.Profile) *analyzer.NormalizedProfile {
	np := &analyzer.NormalizedProfile{
		MeasurementKinds:  make([]analyzer.MeasurementKind, 0, len(p.SampleType)),
		DefaultSampleType: p.DefaultSampleType,
		Samples:           make([]*analyzer.Sample, 0, len(p.Sample)),
		DurationNanos:     p.DurationNanos,
		TimeNanos:         p.TimeNanos,
		Period:            p.Period,
		Comments:          p.Comments,
		Functions:         make(map[uint64]*analyzer.FunctionIdentity, len(p.Function)),
		Locations:         make(map[uint64]*analyzer.Location, len(p.Location)),
	}
	for _, st := range p.SampleType {
		np.MeasurementKinds = append(np.MeasurementKinds, analyzer.MeasurementKind{Name: st.Type, Unit: st.Unit})
	}
	if p.PeriodType != nil {
		np.PeriodType = analyzer.MeasurementKind{Name: p.PeriodType.Type, Unit: p.PeriodType.Unit}
	}

	c := &converter{np: np}
	for _, fn := range p.Function {
		c.function(fn)
	}
	for _, loc := range p.Location {
		c.location(loc)
	}

	for _, s := range p.Sample {
		sample := &analyzer.Sample{
			Stack:  make([]*analyzer.Location, 0, len(s.Location)),
			Values: make([]analyzer.Value, len(s.Value)),
			Labels: labels(s),
		}
		for _, loc := range s.Location {
			sample.Stack = append(sample.Stack, c.location(loc))
		}
		for i, v := range s.Value {
			sample.Values[i] = analyzer.Int(v)
		}
		np.Samples = append(np.Samples, sample)
	}
	return np
}

type converter struct {
	np *analyzer.NormalizedProfile
}

func (c *converter) function(fn *profile.Function) *analyzer.FunctionIdentity {
	if f, ok := c.np.Functions[fn.ID]; ok && fn.ID != 0 {
		return f
	}
	f := &analyzer.FunctionIdentity{
		ID:         fn.ID,
		Name:       fn.Name,
		SystemName: fn.SystemName,
		Filename:   fn.Filename,
		StartLine:  fn.StartLine,
	}
	if f.Name == "" {
		f.Name = analyzer.UnknownFunctionName
	}
	if fn.ID != 0 {
		c.np.Functions[fn.ID] = f
	}
	return f
}

func (c *converter) location(loc *profile.Location) *analyzer.Location {
	if l, ok := c.np.Locations[loc.ID]; ok && loc.ID != 0 {
		return l
	}
	l := &analyzer.Location{
		ID:      loc.ID,
		Address: loc.Address,
		Frames:  make([]analyzer.Frame, 0, len(loc.Line)),
	}
	for _, line := range loc.Line {
		if line.Function == nil {
			l.Frames = append(l.Frames, analyzer.Frame{Line: line.Line, Function: unknown(loc.Address)})
			continue
		}
		l.Frames = append(l.Frames, analyzer.Frame{Line: line.Line, Function: c.function(line.Function)})
	}
	if len(l.Frames) == 0 {
		l.Frames = append(l.Frames, analyzer.Frame{Function: unknown(loc.Address)})
	}
	if loc.ID != 0 {
		c.np.Locations[loc.ID] = l
	}
	return l
}

func unknown(addr uint64) *analyzer.FunctionIdentity {
	return &analyzer.FunctionIdentity{
		Name:       analyzer.UnknownFunctionName,
		SystemName: fmt.Sprintf("0x%x", addr),
	}
}

// labels flattens string and numeric labels into one map.
func labels(s *profile.Sample) map[string][]string {
	if len(s.Label) == 0 && len(s.NumLabel) == 0 {
		return nil
	}
	out := make(map[string][]string, len(s.Label)+len(s.NumLabel))
	for k, v := range s.Label {
		out[k] = append(out[k], v...)
	}
	for k, nums := range s.NumLabel {
		var units []string
		if s.NumUnit != nil {
			units = s.NumUnit[k]
		}
		for i, n := range nums {
			str := strconv.FormatInt(n, 10)
			if i < len(units) && units[i] != "" {
				str += " " + units[i]
			}
			out[k] = append(out[k], str)
		}
	}
	return out
}
