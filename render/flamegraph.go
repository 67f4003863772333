package render

import (
	"github.com/platformatic/pprof-to-md/analyzer"
)

// FlameGraphNode is a node of a d3-flame-graph compatible tree.
type FlameGraphNode struct {
	Name     string            `json:"name"`
	Value    int64             `json:"value"`
	Children []*FlameGraphNode `json:"children,omitempty"`
}

// FlameGraph converts the call tree into flame graph nodes. Children are
// ordered by value, highest first; zero-valued nodes are dropped. Values
// that overflowed int64 saturate at math.MaxInt64.
func FlameGraph(result *analyzer.AnalysisResult) *FlameGraphNode {
	type pair struct {
		src *analyzer.CallTreeNode
		dst *FlameGraphNode
	}

	root := &FlameGraphNode{Name: analyzer.RootName, Value: result.TotalValue.Int64()}
	if result.CallTree == nil {
		return root
	}

	pending := []pair{{src: result.CallTree, dst: root}}
	for len(pending) > 0 {
		p := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for _, child := range p.src.SortedChildren() {
			if child.CumulativeValue.IsZero() {
				continue
			}
			n := &FlameGraphNode{Name: child.Name, Value: child.CumulativeValue.Int64()}
			p.dst.Children = append(p.dst.Children, n)
			pending = append(pending, pair{src: child, dst: n})
		}
	}
	return root
}
