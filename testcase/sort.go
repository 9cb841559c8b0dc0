package testcase

import "sort"

// SortByPriority orders cases highest priority first. The sort is stable so
// cases with equal priority keep their generation order, which keeps
// execution selection reproducible.
func SortByPriority(cases []TestCase) {
	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].Priority.Weight() > cases[j].Priority.Weight()
	})
}
