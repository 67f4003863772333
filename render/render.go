// Package render formats analysis results for people and tools.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/platformatic/pprof-to-md/analyzer"
)

// Supported output formats.
const (
	FormatMarkdown       = "markdown"
	FormatText           = "text"
	FormatJSON           = "json"
	FormatFlameGraphJSON = "flamegraph-json"
)

// Formats lists every format accepted by Write.
var Formats = []string{FormatMarkdown, FormatText, FormatJSON, FormatFlameGraphJSON}

// Options controls how much of the result is rendered.
type Options struct {
	// TopN limits the hotspot table. Zero means no limit.
	TopN int
	// MaxTreeDepth truncates the call tree. Zero means no limit.
	MaxTreeDepth int
	// MinTreePercent hides call tree nodes below this cumulative percent.
	MinTreePercent float64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{TopN: 20, MaxTreeDepth: 20, MinTreePercent: 1}
}

// Write renders result in the given format.
func Write(w io.Writer, format string, result *analyzer.AnalysisResult, opts Options) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, result, opts)
	case FormatText:
		return Text(w, result, opts)
	case FormatJSON:
		return JSON(w, result)
	case FormatFlameGraphJSON:
		enc := json.NewEncoder(w)
		return enc.Encode(FlameGraph(result))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// JSON writes the whole result as indented JSON.
func JSON(w io.Writer, result *analyzer.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode analysis as JSON: %w", err)
	}
	return nil
}

// location formats file:line, or "" when the file is unknown.
func location(file string, line int64) string {
	if file == "" {
		return ""
	}
	if line > 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}

func duration(nanos int64) string {
	if nanos <= 0 {
		return ""
	}
	return time.Duration(nanos).String()
}

func limitHotspots(h []analyzer.Hotspot, n int) []analyzer.Hotspot {
	if n > 0 && len(h) > n {
		return h[:n]
	}
	return h
}

func pathString(p analyzer.CriticalPath) string {
	parts := make([]string, 0, len(p.Path))
	for _, e := range p.Path {
		parts = append(parts, fmt.Sprintf("%s (%.2f%%)", e.Name, e.CumulativePercent))
	}
	return strings.Join(parts, " -> ")
}

type treeLine struct {
	depth int
	node  *analyzer.CallTreeNode
}

// walkTree lists visible call tree nodes depth-first, hottest child first,
// without recursion.
func walkTree(root *analyzer.CallTreeNode, opts Options) []treeLine {
	var lines []treeLine
	stack := []treeLine{}
	children := root.SortedChildren()
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, treeLine{depth: 0, node: children[i]})
	}
	for len(stack) > 0 {
		tl := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if tl.node.CumulativePercent < opts.MinTreePercent {
			continue
		}
		lines = append(lines, tl)
		if opts.MaxTreeDepth > 0 && tl.depth+1 >= opts.MaxTreeDepth {
			continue
		}
		kids := tl.node.SortedChildren()
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, treeLine{depth: tl.depth + 1, node: kids[i]})
		}
	}
	return lines
}
