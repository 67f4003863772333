package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platformatic/pprof-to-md/analyzer"
)

func buildTree(f *fixture) *analyzer.CallTreeNode {
	total := analyzer.TotalValue(f.profile.Samples, 0)
	return analyzer.BuildCallTree(f.profile.Samples, 0, total)
}

func child(t *testing.T, n *analyzer.CallTreeNode, name string) *analyzer.CallTreeNode {
	t.Helper()
	c, ok := n.Children.Get(key(name))
	require.True(t, ok, "%s has no child %s", n.Name, name)
	return c
}

func TestCallTreeContextSensitivity(t *testing.T) {
	root := buildTree(newFixture().sample(10, "A", "X").sample(10, "B", "X"))

	require.Equal(t, 1, root.Children.Len())
	x := child(t, root, "X")
	require.Equal(t, int64(20), x.CumulativeValue.Int64())
	require.Equal(t, int64(0), x.SelfValue.Int64())
	require.Equal(t, 2, x.Children.Len())

	a, b := child(t, x, "A"), child(t, x, "B")
	require.Equal(t, int64(10), a.CumulativeValue.Int64())
	require.Equal(t, int64(10), b.CumulativeValue.Int64())
	require.Equal(t, 50.0, a.SelfPercent)
	require.Equal(t, 50.0, b.CumulativePercent)
}

func TestCallTreeSameFunctionDifferentContexts(t *testing.T) {
	root := buildTree(newFixture().sample(10, "log", "handlerA", "main").sample(30, "log", "handlerB", "main"))

	main := child(t, root, "main")
	viaA := child(t, child(t, main, "handlerA"), "log")
	viaB := child(t, child(t, main, "handlerB"), "log")
	require.NotSame(t, viaA, viaB)
	require.Equal(t, int64(10), viaA.SelfValue.Int64())
	require.Equal(t, int64(30), viaB.SelfValue.Int64())

	sorted := main.SortedChildren()
	require.Equal(t, "handlerB", sorted[0].Name)
	require.Equal(t, "handlerA", sorted[1].Name)
}

func TestCallTreeRootSeededFromTotal(t *testing.T) {
	f := newFixture().sample(40, "A").sample(60, "B", "A")
	root := analyzer.BuildCallTree(f.profile.Samples, 0, analyzer.Int(100))

	require.Equal(t, analyzer.RootName, root.Name)
	require.Equal(t, int64(100), root.CumulativeValue.Int64())
	require.Equal(t, 100.0, root.CumulativePercent)
	a := child(t, root, "A")
	require.Equal(t, int64(100), a.CumulativeValue.Int64())
	require.Equal(t, int64(40), a.SelfValue.Int64())
	require.Equal(t, 40.0, a.SelfPercent)
}

func TestCallTreeRecursionAccumulatesPerDepth(t *testing.T) {
	root := buildTree(newFixture().sample(50, "A", "A", "B"))

	b := child(t, root, "B")
	outer := child(t, b, "A")
	inner := child(t, outer, "A")
	require.Equal(t, int64(50), outer.CumulativeValue.Int64())
	require.Equal(t, int64(50), inner.CumulativeValue.Int64())
	require.Equal(t, int64(0), outer.SelfValue.Int64())
	require.Equal(t, int64(50), inner.SelfValue.Int64())
}

func TestCallTreeInlinedFramesCallerFirst(t *testing.T) {
	root := buildTree(newFixture().inlined(30, []string{"inner", "outer"}, "main"))

	inner := child(t, child(t, child(t, root, "main"), "outer"), "inner")
	require.Equal(t, int64(30), inner.SelfValue.Int64())
	require.Equal(t, 0, inner.Children.Len())
}

func TestCallTreeSkipsZeroSamples(t *testing.T) {
	root := buildTree(newFixture().sample(0, "A").sample(5, "B"))
	require.Equal(t, 1, root.Children.Len())
	_, ok := root.Children.Get(key("A"))
	require.False(t, ok)
}

func TestCallTreeZeroTotal(t *testing.T) {
	root := analyzer.BuildCallTree(newFixture().sample(0, "A").profile.Samples, 0, analyzer.Int(0))
	require.Equal(t, 0, root.Children.Len())
	require.True(t, root.CumulativeValue.IsZero())
}
