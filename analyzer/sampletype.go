package analyzer

import "strings"

// ClassifyProfileKind guesses the kind of profile from its measurement kinds.
// Rules are applied in order and the first rule matching any kind wins.
func ClassifyProfileKind(kinds []MeasurementKind) ProfileKind {
	for _, k := range kinds {
		switch k.Name {
		case "cpu", "samples", "sample", "wall":
			return ProfileKindCPU
		}
	}
	for _, k := range kinds {
		switch k.Name {
		case "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "objects", "space":
			return ProfileKindHeap
		}
	}
	for _, k := range kinds {
		if k.Unit == "nanoseconds" || k.Unit == "microseconds" {
			return ProfileKindCPU
		}
		if k.Unit == "bytes" && strings.Contains(k.Name, "object") {
			return ProfileKindHeap
		}
	}
	for _, k := range kinds {
		switch k.Name {
		case "contentions", "delay":
			return ProfileKindMutex
		case "goroutines", "count":
			return ProfileKindGoroutine
		}
	}
	return ProfileKindUnknown
}

// SelectPrimaryIndex picks the measurement column that best represents a
// profile of the given kind. It falls back to column 0.
func SelectPrimaryIndex(kinds []MeasurementKind, kind ProfileKind) int {
	switch kind {
	case ProfileKindCPU:
		for i, k := range kinds {
			if k.Name == "samples" || k.Name == "cpu" {
				return i
			}
		}
	case ProfileKindHeap:
		if i := indexOfKind(kinds, "inuse_space"); i >= 0 {
			return i
		}
		if i := indexOfKind(kinds, "alloc_space"); i >= 0 {
			return i
		}
	}
	return 0
}

func indexOfKind(kinds []MeasurementKind, name string) int {
	for i, k := range kinds {
		if k.Name == name {
			return i
		}
	}
	return -1
}
