package sizing

import "math"

const maxUnits = math.MaxInt32

// unitsFor returns the smallest count n with n*size >= demand. The quotient
// is corrected in both directions so float rounding never loses or adds a unit.
func unitsFor(demand, size float64) int {
	q := math.Ceil(demand / size)
	if q >= maxUnits {
		return maxUnits
	}
	for q > 0 && (q-1)*size >= demand {
		q--
	}
	for q*size < demand {
		q++
	}
	return int(q)
}
