package dateutil

// DefaultLifeExpectancy is the age the projection runs up to when a profile does not set one.
const DefaultLifeExpectancy = 90

// Age returns the age reached during the given calendar year.
func Age(birthYear, year int) int {
	return year - birthYear
}

// DeathYear returns the last projected year for someone born in birthYear.
// A non-positive lifeExpectancy falls back to DefaultLifeExpectancy.
func DeathYear(birthYear, lifeExpectancy int) int {
	if lifeExpectancy <= 0 {
		lifeExpectancy = DefaultLifeExpectancy
	}
	return birthYear + lifeExpectancy - 1
}

// RetirementYear returns the calendar year in which retirementAge is reached.
func RetirementYear(birthYear, retirementAge int) int {
	return birthYear + retirementAge
}

// InWindow reports whether year falls inside [start, end].
func InWindow(year, start, end int) bool {
	return year >= start && year <= end
}

// Span returns the number of years in [start, end], or 0 for an inverted window.
func Span(start, end int) int {
	if end < start {
		return 0
	}
	return end - start + 1
}

// Years lists every year in [start, end].
func Years(start, end int) []int {
	n := Span(start, end)
	out := make([]int, 0, n)
	for y := start; y <= end; y++ {
		out = append(out, y)
	}
	return out
}
