package analyzer

import "sort"

// alternateBranchPercent is the minimum cumulative percent a non-hottest
// child needs to start an alternate path of its own.
const alternateBranchPercent = 5.0

// prefixNode is one entry of a path under construction. Tasks share their
// ancestors' nodes, so extending a path is O(1) whatever its depth.
type prefixNode struct {
	entry  PathEntry
	parent *prefixNode
	depth  int
}

// entries materializes the path from the root down to n.
func (n *prefixNode) entries() []PathEntry {
	path := make([]PathEntry, n.depth)
	for ; n != nil; n = n.parent {
		path[n.depth-1] = n.entry
	}
	return path
}

type pathTask struct {
	node      *CallTreeNode
	prefix    *prefixNode
	anchor    float64
	alternate bool
}

// ExtractCriticalPaths returns up to maxPaths dominant root-to-leaf chains.
//
// The hottest maxPaths children of root each start a traversal that always
// follows the hottest child, keeping the starting child's cumulative percent as
// its anchor. Other children with at least 5% cumulative share start alternate
// traversals anchored at their own percent while fewer than 2*maxPaths paths
// have been recorded. Paths are then ranked by anchor and truncated.
func ExtractCriticalPaths(root *CallTreeNode, maxPaths int) []CriticalPath {
	paths := make([]CriticalPath, 0)
	if root == nil || maxPaths <= 0 {
		return paths
	}
	softCap := 2 * maxPaths

	starts := root.SortedChildren()
	if len(starts) > maxPaths {
		starts = starts[:maxPaths]
	}

	for _, start := range starts {
		// Depth-first with an explicit stack; pushes are reversed so tasks run
		// in the same order a recursive walk would visit them.
		stack := []pathTask{{node: start, anchor: start.CumulativePercent}}
		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if t.alternate && len(paths) >= softCap {
				continue
			}

			path := &prefixNode{
				entry: PathEntry{
					Name:              t.node.Name,
					SelfPercent:       t.node.SelfPercent,
					CumulativePercent: t.node.CumulativePercent,
				},
				parent: t.prefix,
				depth:  1,
			}
			if t.prefix != nil {
				path.depth = t.prefix.depth + 1
			}

			if t.node.Children.Len() == 0 {
				paths = append(paths, CriticalPath{Path: path.entries(), BranchCumulativePercent: t.anchor})
				continue
			}

			children := t.node.SortedChildren()
			for i := len(children) - 1; i >= 1; i-- {
				c := children[i]
				if c.CumulativePercent >= alternateBranchPercent {
					stack = append(stack, pathTask{node: c, prefix: path, anchor: c.CumulativePercent, alternate: true})
				}
			}
			stack = append(stack, pathTask{node: children[0], prefix: path, anchor: t.anchor})
		}
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].BranchCumulativePercent > paths[j].BranchCumulativePercent
	})
	if len(paths) > maxPaths {
		paths = paths[:maxPaths]
	}
	return paths
}
