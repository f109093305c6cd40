package dsp

import "math"

// Mean returns the arithmetic mean of data, 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Variance returns the population variance of data (divisor N).
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := Mean(data)
	sumSq := 0.0
	for _, v := range data {
		diff := v - m
		sumSq += diff * diff
	}
	return sumSq / float64(len(data))
}

// StdDev returns the population standard deviation of data.
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// MeanAbs returns the mean of the absolute values of data.
func MeanAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += math.Abs(v)
	}
	return sum / float64(len(data))
}

// Clip limits v to the range [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NearestPowerOfTwo returns the smallest power of two >= n.
func NearestPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
