package utils

// Point is any ordered instant: time.Time, model.ClockTime.
type Point[T any] interface {
	Before(T) bool
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share an instant, i.e. max(s1,s2) < min(e1,e2). Touching endpoints do
// not overlap.
func Overlaps[T Point[T]](s1, e1, s2, e2 T) bool {
	latestStart := s1
	if s1.Before(s2) {
		latestStart = s2
	}
	earliestEnd := e1
	if e2.Before(e1) {
		earliestEnd = e2
	}
	return latestStart.Before(earliestEnd)
}
