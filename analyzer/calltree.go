package analyzer

import (
	"sort"
)

// BuildCallTree merges every sample's stack into a single tree rooted at a
// synthetic root node.
//
// Stacks are walked from the outermost caller to the leaf. Children are keyed
// by function identity, so two calls to the same function from the same parent
// merge into one node. Unlike Aggregate there is no per-sample dedup: a
// recursive call adds its value again one level deeper. The root's cumulative
// value is seeded from totalValue rather than summed from its children.
func BuildCallTree(samples []*Sample, column int, totalValue Value) *CallTreeNode {
	root := newCallTreeNode(RootName, RootName, "", 0)
	root.CumulativeValue = totalValue
	if totalValue.IsZero() {
		return root
	}
	root.CumulativePercent = 100

	for _, s := range samples {
		v := s.value(column)
		if v.IsZero() {
			continue
		}

		current := root
		for i := len(s.Stack) - 1; i >= 0; i-- {
			frames := s.Stack[i].Frames
			// Inlined frames are stored innermost first; walk them caller first.
			for j := len(frames) - 1; j >= 0; j-- {
				fn := frameFunction(frames[j])
				key := fn.Key()
				child, ok := current.Children.Get(key)
				if !ok {
					child = newCallTreeNode(key, fn.Name, fn.Filename, frames[j].Line)
					current.Children.Set(key, child)
				}
				child.CumulativeValue = Add(child.CumulativeValue, v)
				current = child
			}
		}
		current.SelfValue = Add(current.SelfValue, v)
	}

	computeTreePercents(root, totalValue)
	return root
}

// computeTreePercents fills in percentages top-down. It uses an explicit
// stack so pathologically deep trees cannot exhaust the goroutine stack.
func computeTreePercents(root *CallTreeNode, totalValue Value) {
	pending := []*CallTreeNode{root}
	for len(pending) > 0 {
		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		n.SelfPercent = Percent(n.SelfValue, totalValue)
		if n != root {
			n.CumulativePercent = Percent(n.CumulativeValue, totalValue)
		}
		for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
			pending = append(pending, pair.Value)
		}
	}
}

// sortByCumulative orders nodes by cumulative value, highest first.
func sortByCumulative(nodes []*CallTreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return Compare(nodes[i].CumulativeValue, nodes[j].CumulativeValue) > 0
	})
}
