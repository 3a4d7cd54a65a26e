package fu

import "math"

func Mse(a, b []float32) float32 {
	var c float64
	for i, x := range a {
		q := float64(x - b[i])
		c += q * q
	}
	return float32(c / float64(len(a)))
}

/*
MaxAbsDiff returns the largest absolute element-wise difference of equal-length vectors
*/
func MaxAbsDiff(a, b []float32) float32 {
	var c float64
	for i, x := range a {
		c = math.Max(c, math.Abs(float64(x-b[i])))
	}
	return float32(c)
}

func Float32s(a []float64) []float32 {
	r := make([]float32, len(a))
	for i, x := range a {
		r[i] = float32(x)
	}
	return r
}
