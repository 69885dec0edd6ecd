package store

import "math"

const (
	// PositionStep is the gap between neighbours after an append or a rebalance.
	PositionStep = 1000.0
	// PositionEpsilon is the smallest gap the allocator will split.
	PositionEpsilon = 1e-6
	// HoldingGap is how far a new inbox task sorts before the current first one.
	HoldingGap = 1.0
)

// PositionInitial is the key of the only item in an empty container.
func PositionInitial() float64 { return PositionStep }

// PositionAfter returns a key past the end of a container whose last key is before.
func PositionAfter(before float64) float64 { return before + PositionStep }

// PositionBefore returns a key below after, the current first key.
// ok is false when the gap to zero is too small to halve.
func PositionBefore(after float64) (float64, bool) {
	if after <= 0 {
		return after - PositionStep, true
	}
	p := after / 2
	if after-p < PositionEpsilon {
		return 0, false
	}
	return p, true
}

// PositionBetween returns the mean of two neighbouring keys.
// ok is false when they are closer than PositionEpsilon and the container must be rebalanced.
func PositionBetween(before, after float64) (float64, bool) {
	if math.Abs(after-before) < PositionEpsilon {
		return 0, false
	}
	return (before + after) / 2, true
}

// PositionsTied reports whether two keys are too close to be distinct ranks.
func PositionsTied(a, b float64) bool {
	return math.Abs(a-b) < PositionEpsilon
}
