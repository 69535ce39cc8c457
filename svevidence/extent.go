package svevidence

import "fmt"

// Extent is a half-open interval [Start, End) in query coordinates.
type Extent struct {
	Start, End int
}

// Span returns the length of the interval.
func (e Extent) Span() int { return e.End - e.Start }

// String returns "[start,end)".
func (e Extent) String() string { return fmt.Sprintf("[%d,%d)", e.Start, e.End) }

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// saturatingSub returns x-y, or 0 if y > x.
func saturatingSub(x, y int) int {
	if y > x {
		return 0
	}
	return x - y
}

// Overlap returns the length of the intersection of a and b, or 0 if they
// are disjoint.
func Overlap(a, b Extent) int {
	return saturatingSub(min(a.End, b.End), max(a.Start, b.Start))
}

// MinNonOverlap returns the smaller of the number of bases that a covers but
// b does not, and vice versa. The result never exceeds a.Span() or b.Span().
func MinNonOverlap(a, b Extent) int {
	overlap := Overlap(a, b)
	return min(saturatingSub(a.Span(), overlap), saturatingSub(b.Span(), overlap))
}
