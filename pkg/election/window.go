package election

import (
	"sort"
	"strconv"
)

// RecentCycles is how many elections the scoring core looks back over.
const RecentCycles = 3

// Window is an ordered view of a district's most recent elections, newest first.
type Window []ElectionResult

// Recent returns up to n results from elections ordered by year descending.
// Both competitiveness aggregation and margin-trend estimation window their
// input through this function.
func Recent(elections map[int]ElectionResult, n int) Window {
	if n <= 0 || len(elections) == 0 {
		return nil
	}
	years := make([]int, 0, len(elections))
	for y := range elections {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if len(years) > n {
		years = years[:n]
	}

	w := make(Window, 0, len(years))
	for _, y := range years {
		r := elections[y]
		if r.Year == 0 {
			r.Year = y
		}
		w = append(w, r)
	}
	return w
}

// Newest returns the most recent result in the window.
func (w Window) Newest() (ElectionResult, bool) {
	if len(w) == 0 {
		return ElectionResult{}, false
	}
	return w[0], true
}

// Oldest returns the least recent result in the window.
func (w Window) Oldest() (ElectionResult, bool) {
	if len(w) == 0 {
		return ElectionResult{}, false
	}
	return w[len(w)-1], true
}

// Years returns the window's years, newest first.
func (w Window) Years() []int {
	years := make([]int, len(w))
	for i, r := range w {
		years[i] = r.Year
	}
	return years
}

// Gaps returns the cycle years strictly inside the window's span that the
// window does not contain. A non-empty result means the window's oldest and
// newest elections are not consecutive cycles.
func (w Window) Gaps(cycles []int) []int {
	newest, ok := w.Newest()
	if !ok {
		return nil
	}
	oldest, _ := w.Oldest()

	have := make(map[int]bool, len(w))
	for _, r := range w {
		have[r.Year] = true
	}
	var gaps []int
	for _, y := range cycles {
		if y > oldest.Year && y < newest.Year && !have[y] {
			gaps = append(gaps, y)
		}
	}
	return gaps
}

// DistrictKey formats a district number as a document map key.
func DistrictKey(number int) string {
	return strconv.Itoa(number)
}

func sortedYears(years []int) []int {
	out := append([]int(nil), years...)
	sort.Ints(out)
	return out
}
