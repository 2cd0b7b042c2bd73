// Package filter evaluates catalog filters. Match is the one predicate used
// for the coarse server pass, for tool calls made by the model and for
// interactive refinement, so every path agrees on what a filter means.
package filter

import (
	"slices"
	"strings"

	"github.com/zjgaokao/major-advisor/internal/major"
)

// Match reports whether m satisfies every constrained field of f.
// Multi-value fields match on membership; unknown bucket labels match nothing.
func Match(m *major.Major, f major.Filter) bool {
	if len(f.Regions) > 0 && !slices.Contains(f.Regions, m.Region) {
		return false
	}
	if len(f.MajorCategories) > 0 && !slices.Contains(f.MajorCategories, m.MajorCategory) {
		return false
	}
	if !major.IsUnconstrained(f.SchoolingLength) && m.SchoolingLength != strings.TrimSpace(f.SchoolingLength) {
		return false
	}
	if !major.IsUnconstrained(f.UniversityTier) && m.UniversityTier != strings.TrimSpace(f.UniversityTier) {
		return false
	}
	if !major.IsUnconstrained(f.TuitionRange) && !InTuitionRange(m.Tuition, f.TuitionRange) {
		return false
	}
	return true
}

// Apply returns the records of list that satisfy f, in their original
// order. The input is not modified.
func Apply(list []major.Major, f major.Filter) []major.Major {
	out := make([]major.Major, 0, len(list))
	for i := range list {
		if Match(&list[i], f) {
			out = append(out, list[i])
		}
	}
	return out
}

// InTuitionRange tests tuition against a bucket label. Buckets are
// <5000, [5000,10000], (10000,20000] and >20000. A nil tuition is never in
// a concrete bucket. 全部 and blank match everything, including nil.
func InTuitionRange(tuition *int, label string) bool {
	label = strings.TrimSpace(label)
	if major.IsUnconstrained(label) {
		return true
	}
	if tuition == nil {
		return false
	}
	t := *tuition
	switch label {
	case major.TuitionBelow5000:
		return t < 5000
	case major.Tuition5000To10000:
		return t >= 5000 && t <= 10000
	case major.Tuition10000To20000:
		return t > 10000 && t <= 20000
	case major.TuitionAbove20000:
		return t > 20000
	default:
		return false
	}
}

// Exclusion removes records by region or category.
type Exclusion struct {
	Regions    []string
	Categories []string
}

// IsEmpty reports whether e excludes nothing.
func (e Exclusion) IsEmpty() bool {
	return len(e.Regions) == 0 && len(e.Categories) == 0
}

// Excludes reports whether m falls in an excluded region or category.
func (e Exclusion) Excludes(m *major.Major) bool {
	return slices.Contains(e.Regions, m.Region) || slices.Contains(e.Categories, m.MajorCategory)
}

// Exclude returns the records of list not excluded by e.
func Exclude(list []major.Major, e Exclusion) []major.Major {
	if e.IsEmpty() {
		return slices.Clone(list)
	}
	out := make([]major.Major, 0, len(list))
	for i := range list {
		if !e.Excludes(&list[i]) {
			out = append(out, list[i])
		}
	}
	return out
}
