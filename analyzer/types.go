package analyzer

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// --- Input model (produced by the normalize package) ---

// MeasurementKind describes one value column of a profile, e.g. cpu/nanoseconds.
type MeasurementKind struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

func (k MeasurementKind) String() string {
	return k.Name + "/" + k.Unit
}

// FunctionIdentity is a resolved function. Unresolved frames share the
// UnknownFunctionName sentinel.
type FunctionIdentity struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	SystemName string `json:"systemName,omitempty"`
	Filename   string `json:"filename,omitempty"`
	StartLine  int64  `json:"startLine,omitempty"`
}

// UnknownFunctionName names frames whose function could not be resolved.
const UnknownFunctionName = "<unknown>"

// Key returns the identity key name@filename:line used to group statistics.
func (f *FunctionIdentity) Key() string {
	return fmt.Sprintf("%s@%s:%d", f.Name, f.Filename, f.StartLine)
}

// Frame is one entry of a location's inline chain.
type Frame struct {
	Line     int64
	Function *FunctionIdentity
}

// Location is a single address. Frames are ordered innermost inlined call first.
type Location struct {
	ID      uint64
	Address uint64
	Frames  []Frame
}

// Sample is one stack trace with its measured values. Stack[0] is the leaf.
type Sample struct {
	Stack  []*Location
	Values []Value
	Labels map[string][]string
}

// value returns the sample's value in column i, or zero when the column is missing.
func (s *Sample) value(i int) Value {
	if i < 0 || i >= len(s.Values) {
		return Int(0)
	}
	return s.Values[i]
}

// NormalizedProfile is the complete, read-only input to Analyze.
type NormalizedProfile struct {
	MeasurementKinds  []MeasurementKind
	DefaultSampleType string
	Samples           []*Sample
	DurationNanos     int64
	TimeNanos         int64
	PeriodType        MeasurementKind
	Period            int64
	Comments          []string
	Functions         map[uint64]*FunctionIdentity
	Locations         map[uint64]*Location
}

// --- Derived model ---

// FunctionStats aggregates every appearance of one function identity.
type FunctionStats struct {
	Key               string  `json:"key"`
	Name              string  `json:"name"`
	Filename          string  `json:"filename,omitempty"`
	StartLine         int64   `json:"startLine,omitempty"`
	SelfValue         Value   `json:"selfValue"`
	CumulativeValue   Value   `json:"cumulativeValue"`
	SelfPercent       float64 `json:"selfPercent"`
	CumulativePercent float64 `json:"cumulativePercent"`
	SampleCount       int     `json:"sampleCount"`

	callers *orderedmap.OrderedMap[string, struct{}]
	callees *orderedmap.OrderedMap[string, struct{}]
}

func newFunctionStats(fn *FunctionIdentity) *FunctionStats {
	return &FunctionStats{
		Key:             fn.Key(),
		Name:            fn.Name,
		Filename:        fn.Filename,
		StartLine:       fn.StartLine,
		SelfValue:       Int(0),
		CumulativeValue: Int(0),
		callers:         orderedmap.New[string, struct{}](),
		callees:         orderedmap.New[string, struct{}](),
	}
}

// Callers returns the names of direct callers in first-seen order.
func (s *FunctionStats) Callers() []string { return setKeys(s.callers) }

// Callees returns the names of direct callees in first-seen order.
func (s *FunctionStats) Callees() []string { return setKeys(s.callees) }

// MarshalJSON encodes the row together with its caller and callee names.
func (s *FunctionStats) MarshalJSON() ([]byte, error) {
	type row FunctionStats
	return json.Marshal(struct {
		row
		Callers []string `json:"callers"`
		Callees []string `json:"callees"`
	}{row(*s), s.Callers(), s.Callees()})
}

func setKeys(m *orderedmap.OrderedMap[string, struct{}]) []string {
	if m == nil {
		return []string{}
	}
	keys := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// FunctionStatsTable maps identity keys to statistics in first-seen order.
type FunctionStatsTable = orderedmap.OrderedMap[string, *FunctionStats]

// CallTreeNode is a context-sensitive position in the merged call tree.
type CallTreeNode struct {
	Key               string                                        `json:"key"`
	Name              string                                        `json:"name"`
	Filename          string                                        `json:"filename,omitempty"`
	Line              int64                                         `json:"line,omitempty"`
	SelfValue         Value                                         `json:"selfValue"`
	CumulativeValue   Value                                         `json:"cumulativeValue"`
	SelfPercent       float64                                       `json:"selfPercent"`
	CumulativePercent float64                                       `json:"cumulativePercent"`
	Children          *orderedmap.OrderedMap[string, *CallTreeNode] `json:"children"`
}

// RootName is the name of the synthetic call tree root.
const RootName = "root"

func newCallTreeNode(key, name, filename string, line int64) *CallTreeNode {
	return &CallTreeNode{
		Key:             key,
		Name:            name,
		Filename:        filename,
		Line:            line,
		SelfValue:       Int(0),
		CumulativeValue: Int(0),
		Children:        orderedmap.New[string, *CallTreeNode](),
	}
}

// SortedChildren returns n's children ordered by cumulative value, highest
// first. Equal values keep insertion order.
func (n *CallTreeNode) SortedChildren() []*CallTreeNode {
	children := make([]*CallTreeNode, 0, n.Children.Len())
	for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
		children = append(children, pair.Value)
	}
	sortByCumulative(children)
	return children
}

// Hotspot is a read-only view of a FunctionStats row above the hotspot threshold.
type Hotspot struct {
	Key               string   `json:"key"`
	Name              string   `json:"name"`
	Filename          string   `json:"filename,omitempty"`
	StartLine         int64    `json:"startLine,omitempty"`
	SelfValue         Value    `json:"selfValue"`
	CumulativeValue   Value    `json:"cumulativeValue"`
	SelfPercent       float64  `json:"selfPercent"`
	CumulativePercent float64  `json:"cumulativePercent"`
	SampleCount       int      `json:"sampleCount"`
	Callers           []string `json:"callers"`
	Callees           []string `json:"callees"`
}

// PathEntry is one function along a critical path.
type PathEntry struct {
	Name              string  `json:"name"`
	SelfPercent       float64 `json:"selfPercent"`
	CumulativePercent float64 `json:"cumulativePercent"`
}

// CriticalPath is a root-to-leaf chain. BranchCumulativePercent is the share
// of total cost flowing through the branch point the chain was anchored at,
// not the share of its leaf.
type CriticalPath struct {
	Path                    []PathEntry `json:"path"`
	BranchCumulativePercent float64     `json:"branchCumulativePercent"`
}

// ProfileKind is the broad category of a profile.
type ProfileKind string

const (
	ProfileKindCPU       ProfileKind = "cpu"
	ProfileKindHeap      ProfileKind = "heap"
	ProfileKindMutex     ProfileKind = "mutex"
	ProfileKindGoroutine ProfileKind = "goroutine"
	ProfileKindUnknown   ProfileKind = "unknown"
)

// Metadata is passed through from the input profile.
type Metadata struct {
	DurationNanos int64           `json:"durationNanos,omitempty"`
	TimeNanos     int64           `json:"timeNanos,omitempty"`
	PeriodType    MeasurementKind `json:"periodType"`
	Period        int64           `json:"period,omitempty"`
	Comments      []string        `json:"comments,omitempty"`
}

// AnalysisResult is the immutable output of Analyze.
type AnalysisResult struct {
	MeasurementKind  MeasurementKind     `json:"measurementKind"`
	ColumnIndex      int                 `json:"columnIndex"`
	ProfileKind      ProfileKind         `json:"profileKind"`
	TotalValue       Value               `json:"totalValue"`
	TotalSampleCount int                 `json:"totalSampleCount"`
	FunctionStats    *FunctionStatsTable `json:"functionStats"`
	CallTree         *CallTreeNode       `json:"callTree"`
	Hotspots         []Hotspot           `json:"hotspots"`
	CriticalPaths    []CriticalPath      `json:"criticalPaths"`
	Metadata         Metadata            `json:"metadata"`
}

// Empty reports whether the result is the degenerate zero-total result.
func (r *AnalysisResult) Empty() bool {
	return r.TotalValue.IsZero()
}
