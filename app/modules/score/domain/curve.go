package scoredomain

import "math"

// Curve holds the tunable constants of the score formula. The exact shape is
// a business rule; the invariants the rest of the engine relies on are that
// the position contribution strictly decreases as position grows and that the
// progress contribution strictly increases from the requirement up to 100%.
type Curve struct {
	// MaxPoints is the value of a 100% record on position 1.
	MaxPoints float64
	// PositionDecay is the exponential decay rate per list position.
	PositionDecay float64
	// PartialBase is the base of the exponent rewarding progress beyond
	// the requirement.
	PartialBase float64
	// PartialDivisor attenuates every non-100% record, so that a record at
	// exactly the requirement earns MaxPoints/PartialDivisor of the
	// position value.
	PartialDivisor float64
}

// DefaultCurve returns the curve the list currently runs on.
func DefaultCurve() Curve {
	return Curve{
		MaxPoints:      350.0,
		PositionDecay:  0.035,
		PartialBase:    5.0,
		PartialDivisor: 10.0,
	}
}

// Score converts a record into its score contribution.
//
// Records below the demon's requirement contribute nothing. Outside the
// scored window (position > positionCap) only full completions earn points.
// The function is total: any combination of valid inputs yields a finite,
// non-negative result.
func (c Curve) Score(progress, position, positionCap, requirement int) float64 {
	if progress < requirement {
		return 0
	}
	if position > positionCap && progress < 100 {
		return 0
	}

	positionValue := c.MaxPoints * math.Exp(-c.PositionDecay*float64(position-1))
	if progress >= 100 {
		return positionValue
	}

	// Partial progress scales the position value on an exponential ramp
	// from requirement (minimum nonzero credit) towards 100%.
	ramp := float64(progress-requirement) / float64(100-requirement)
	return positionValue * math.Pow(c.PartialBase, ramp) / c.PartialDivisor
}
