package analyzer_test

import (
	"github.com/platformatic/pprof-to-md/analyzer"
)

// fixture builds NormalizedProfiles from function names. Each name maps to
// one FunctionIdentity in <name>.go starting at line 1, and one location.
type fixture struct {
	profile *analyzer.NormalizedProfile
	nextID  uint64
}

func newFixture(kinds ...analyzer.MeasurementKind) *fixture {
	if len(kinds) == 0 {
		kinds = []analyzer.MeasurementKind{{Name: "cpu", Unit: "nanoseconds"}}
	}
	return &fixture{profile: &analyzer.NormalizedProfile{
		MeasurementKinds: kinds,
		Functions:        map[uint64]*analyzer.FunctionIdentity{},
		Locations:        map[uint64]*analyzer.Location{},
	}}
}

func key(name string) string {
	return name + "@" + name + ".go:1"
}

func (f *fixture) location(names ...string) *analyzer.Location {
	f.nextID++
	loc := &analyzer.Location{ID: f.nextID, Address: 0x1000 + f.nextID}
	for _, name := range names {
		loc.Frames = append(loc.Frames, analyzer.Frame{Line: 10, Function: f.function(name)})
	}
	f.profile.Locations[loc.ID] = loc
	return loc
}

func (f *fixture) function(name string) *analyzer.FunctionIdentity {
	for _, fn := range f.profile.Functions {
		if fn.Name == name {
			return fn
		}
	}
	fn := &analyzer.FunctionIdentity{
		ID:        uint64(len(f.profile.Functions) + 1),
		Name:      name,
		Filename:  name + ".go",
		StartLine: 1,
	}
	f.profile.Functions[fn.ID] = fn
	return fn
}

// sample adds a sample with a single value. stack[0] is the leaf.
func (f *fixture) sample(value int64, stack ...string) *fixture {
	return f.sampleValues([]int64{value}, stack...)
}

func (f *fixture) sampleValues(values []int64, stack ...string) *fixture {
	s := &analyzer.Sample{}
	for _, name := range stack {
		s.Stack = append(s.Stack, f.location(name))
	}
	for _, v := range values {
		s.Values = append(s.Values, analyzer.Int(v))
	}
	f.profile.Samples = append(f.profile.Samples, s)
	return f
}

// inlined adds a sample whose leaf location carries several inlined frames,
// innermost first.
func (f *fixture) inlined(value int64, leafFrames []string, callers ...string) *fixture {
	s := &analyzer.Sample{Stack: []*analyzer.Location{f.location(leafFrames...)}}
	for _, name := range callers {
		s.Stack = append(s.Stack, f.location(name))
	}
	s.Values = []analyzer.Value{analyzer.Int(value)}
	f.profile.Samples = append(f.profile.Samples, s)
	return f
}
