package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/platformatic/pprof-to-md/analyzer"
)

// Markdown writes a markdown report: summary, hotspots, critical paths and
// the call tree.
func Markdown(w io.Writer, result *analyzer.AnalysisResult, opts Options) error {
	var b strings.Builder
	unit := result.MeasurementKind.Unit

	b.WriteString("# Profile Analysis\n\n")
	b.WriteString(fmt.Sprintf("- **Profile kind:** %s\n", result.ProfileKind))
	b.WriteString(fmt.Sprintf("- **Measurement:** %s\n", result.MeasurementKind))
	b.WriteString(fmt.Sprintf("- **Total:** %s\n", analyzer.FormatHuman(result.TotalValue, unit)))
	b.WriteString(fmt.Sprintf("- **Samples:** %d\n", result.TotalSampleCount))
	if d := duration(result.Metadata.DurationNanos); d != "" {
		b.WriteString(fmt.Sprintf("- **Duration:** %s\n", d))
	}
	if result.Metadata.Period > 0 {
		b.WriteString(fmt.Sprintf("- **Sampling period:** %d %s\n", result.Metadata.Period, result.Metadata.PeriodType.Unit))
	}
	b.WriteString("\n")

	if result.Empty() {
		b.WriteString("_No samples recorded a non-zero value for this measurement._\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	// --- Hotspots ---
	hotspots := limitHotspots(result.Hotspots, opts.TopN)
	b.WriteString("## Hotspots\n\n")
	if len(hotspots) == 0 {
		b.WriteString("_No function exceeded the hotspot threshold._\n\n")
	} else {
		b.WriteString("| # | Self | Self % | Cum % | Samples | Function | Location |\n")
		b.WriteString("|---|------|--------|-------|---------|----------|----------|\n")
		for i, h := range hotspots {
			b.WriteString(fmt.Sprintf("| %d | %s | %.2f%% | %.2f%% | %d | `%s` | %s |\n",
				i+1,
				analyzer.FormatHuman(h.SelfValue, unit),
				h.SelfPercent,
				h.CumulativePercent,
				h.SampleCount,
				h.Name,
				location(h.Filename, h.StartLine)))
		}
		b.WriteString("\n")
		for i, h := range hotspots {
			if len(h.Callers) == 0 && len(h.Callees) == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("%d. `%s`", i+1, h.Name))
			if len(h.Callers) > 0 {
				b.WriteString(fmt.Sprintf(" called by %s", codeList(h.Callers)))
			}
			if len(h.Callees) > 0 {
				b.WriteString(fmt.Sprintf("; calls %s", codeList(h.Callees)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// --- Critical paths ---
	b.WriteString("## Critical Paths\n\n")
	if len(result.CriticalPaths) == 0 {
		b.WriteString("_No critical paths._\n\n")
	}
	for i, p := range result.CriticalPaths {
		b.WriteString(fmt.Sprintf("%d. **%.2f%%** %s\n", i+1, p.BranchCumulativePercent, pathString(p)))
	}
	if len(result.CriticalPaths) > 0 {
		b.WriteString("\n")
	}

	// --- Call tree ---
	b.WriteString("## Call Tree\n\n")
	for _, tl := range walkTree(result.CallTree, opts) {
		n := tl.node
		b.WriteString(fmt.Sprintf("%s- `%s` %.2f%% (self %.2f%%, %s)\n",
			strings.Repeat("  ", tl.depth),
			n.Name,
			n.CumulativePercent,
			n.SelfPercent,
			analyzer.FormatHuman(n.CumulativeValue, unit)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
