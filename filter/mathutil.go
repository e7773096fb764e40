package filter

import "math"

func float32pow(base, exp float32) float32 {
	return float32(math.Pow(float64(base), float64(exp)))
}
