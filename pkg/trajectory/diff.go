package trajectory

import "math"

// unwrap removes 2*pi discontinuities from an angle sequence: each value
// is shifted by a multiple of 2*pi so it lies within pi of its
// predecessor. The underlying solution branch is untouched.
func unwrap(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = values[0]
	offset := 0.0
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > math.Pi {
			offset -= 2 * math.Pi
		} else if delta < -math.Pi {
			offset += 2 * math.Pi
		}
		out[i] = values[i] + offset
	}
	return out
}

// differentiate computes the time derivative of values sampled at times
// using finite differences: central differences for interior points,
// one-sided forward/backward differences at the two endpoints. A single
// sample has no derivative and yields zero.
func differentiate(values, times []float64) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n < 2 {
		return out
	}

	out[0] = (values[1] - values[0]) / (times[1] - times[0])
	out[n-1] = (values[n-1] - values[n-2]) / (times[n-1] - times[n-2])
	for i := 1; i < n-1; i++ {
		out[i] = (values[i+1] - values[i-1]) / (times[i+1] - times[i-1])
	}
	return out
}
