package dsp

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform of signal using a radix-2
// Cooley-Tukey decomposition. len(signal) must be a power of two.
func FFT(signal []float64) []complex128 {
	n := len(signal)
	buf := make([]complex128, n)
	for i, v := range signal {
		buf[i] = complex(v, 0)
	}
	return fft(buf)
}

func fft(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		return x
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}

	fftEven := fft(even)
	fftOdd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		t := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * fftOdd[k]
		result[k] = fftEven[k] + t
		result[k+n/2] = fftEven[k] - t
	}
	return result
}
