package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/platformatic/pprof-to-md/analyzer"
)

const rule = "--------------------------------------------------\n"

// Text writes the report as fixed-width plain text.
func Text(w io.Writer, result *analyzer.AnalysisResult, opts Options) error {
	var b strings.Builder
	unit := result.MeasurementKind.Unit

	b.WriteString(fmt.Sprintf("Profile Analysis (%s, %s)\n", result.ProfileKind, result.MeasurementKind))
	b.WriteString(fmt.Sprintf("Total: %s over %d samples\n", analyzer.FormatHuman(result.TotalValue, unit), result.TotalSampleCount))
	if d := duration(result.Metadata.DurationNanos); d != "" {
		b.WriteString(fmt.Sprintf("Duration: %s\n", d))
	}
	if result.Empty() {
		b.WriteString("No samples recorded a non-zero value for this measurement.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n=== Hotspots ===\n")
	b.WriteString(rule)
	b.WriteString(fmt.Sprintf("%-15s %-10s %-10s %s\n", "Self", "Self %", "Cum %", "Function"))
	b.WriteString(rule)
	for _, h := range limitHotspots(result.Hotspots, opts.TopN) {
		b.WriteString(fmt.Sprintf("%-15s %-10.2f %-10.2f %s\n",
			analyzer.FormatHuman(h.SelfValue, unit), h.SelfPercent, h.CumulativePercent, h.Name))
	}

	b.WriteString("\n=== Critical Paths ===\n")
	b.WriteString(rule)
	for _, p := range result.CriticalPaths {
		b.WriteString(fmt.Sprintf("%6.2f%%  %s\n", p.BranchCumulativePercent, pathString(p)))
	}

	b.WriteString("\n=== Call Tree ===\n")
	b.WriteString(rule)
	for _, tl := range walkTree(result.CallTree, opts) {
		b.WriteString(fmt.Sprintf("%6.2f%% %6.2f%%  %s%s\n",
			tl.node.CumulativePercent, tl.node.SelfPercent, strings.Repeat("  ", tl.depth), tl.node.Name))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
