package analyzer

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Aggregate computes flat and cumulative statistics per function identity.
//
// Self value goes to the frames of the leaf location only. Cumulative value and
// sample count are credited at most once per sample to each identity, so
// recursion does not inflate them. Callers and callees record the functions at
// the adjacent stack positions. Samples with a zero value in column are
// skipped. totalValue is only used for percentages; when it is zero the
// percentages stay zero.
func Aggregate(samples []*Sample, column int, totalValue Value) *FunctionStatsTable {
	table := orderedmap.New[string, *FunctionStats]()

	for _, s := range samples {
		v := s.value(column)
		if v.IsZero() {
			continue
		}

		// Per-sample dedup sets.
		seen := make(map[string]struct{})
		selfSeen := make(map[string]struct{})

		for depth, loc := range s.Stack {
			for _, fr := range loc.Frames {
				fn := frameFunction(fr)
				key := fn.Key()
				row, ok := table.Get(key)
				if !ok {
					row = newFunctionStats(fn)
					table.Set(key, row)
				}

				if depth == 0 {
					if _, dup := selfSeen[key]; !dup {
						selfSeen[key] = struct{}{}
						row.SelfValue = Add(row.SelfValue, v)
					}
				}
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					row.CumulativeValue = Add(row.CumulativeValue, v)
					row.SampleCount++
				}

				if depth+1 < len(s.Stack) {
					for _, caller := range s.Stack[depth+1].Frames {
						row.callers.Set(frameFunction(caller).Name, struct{}{})
					}
				}
				if depth > 0 {
					for _, callee := range s.Stack[depth-1].Frames {
						row.callees.Set(frameFunction(callee).Name, struct{}{})
					}
				}
			}
		}
	}

	if !totalValue.IsZero() {
		for pair := table.Oldest(); pair != nil; pair = pair.Next() {
			row := pair.Value
			row.SelfPercent = Percent(row.SelfValue, totalValue)
			row.CumulativePercent = Percent(row.CumulativeValue, totalValue)
		}
	}
	return table
}

// TotalValue sums column over every sample.
func TotalValue(samples []*Sample, column int) Value {
	total := Int(0)
	for _, s := range samples {
		total = Add(total, s.value(column))
	}
	return total
}

var unknownFunction = &FunctionIdentity{Name: UnknownFunctionName}

// frameFunction returns the frame's function, or the unknown sentinel.
func frameFunction(fr Frame) *FunctionIdentity {
	if fr.Function == nil {
		return unknownFunction
	}
	return fr.Function
}
