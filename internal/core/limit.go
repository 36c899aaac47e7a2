package core

import "math"

// RemovalLimit controls how many units a ruin pass removes: the threshold
// caps removal as a fraction of current size, clamped to [Min, Max] and to
// the units actually available.
type RemovalLimit struct {
	Min       int
	Max       int
	Threshold float64
}

// Count computes the removal count for the given solution size.
func (l RemovalLimit) Count(size int) int {
	n := int(math.Round(l.Threshold * float64(size)))
	if n < l.Min {
		n = l.Min
	}
	if n > l.Max {
		n = l.Max
	}
	if n > size {
		n = size
	}
	if n < 0 {
		n = 0
	}
	return n
}
