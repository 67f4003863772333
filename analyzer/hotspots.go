package analyzer

import "sort"

// RankHotspots returns every function whose self percent is at least
// threshold*100, highest self percent first. Ties keep table order, which is
// the order functions were first seen in.
func RankHotspots(table *FunctionStatsTable, threshold float64) []Hotspot {
	cutoff := threshold * 100
	hotspots := make([]Hotspot, 0)
	for pair := table.Oldest(); pair != nil; pair = pair.Next() {
		s := pair.Value
		if s.SelfPercent < cutoff {
			continue
		}
		hotspots = append(hotspots, Hotspot{
			Key:               s.Key,
			Name:              s.Name,
			Filename:          s.Filename,
			StartLine:         s.StartLine,
			SelfValue:         s.SelfValue,
			CumulativeValue:   s.CumulativeValue,
			SelfPercent:       s.SelfPercent,
			CumulativePercent: s.CumulativePercent,
			SampleCount:       s.SampleCount,
			Callers:           s.Callers(),
			Callees:           s.Callees(),
		})
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].SelfPercent > hotspots[j].SelfPercent
	})
	return hotspots
}
