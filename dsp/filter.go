package dsp

import "math"

// DetrendConstant removes the mean from data in place.
func DetrendConstant(data []float64) {
	m := Mean(data)
	for i := range data {
		data[i] -= m
	}
}

// biquad is a second-order IIR section with normalized coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// apply runs the section over data in place (direct form II transposed).
func (s biquad) apply(data []float64) {
	var z1, z2 float64
	for i, x := range data {
		y := s.b0*x + z1
		z1 = s.b1*x - s.a1*y + z2
		z2 = s.b2*x - s.a2*y
		data[i] = y
	}
}

// butterworthQ returns the section Q values for a Butterworth filter of the
// given (even) order.
func butterworthQ(order int) []float64 {
	n := order / 2
	qs := make([]float64, n)
	for k := 0; k < n; k++ {
		theta := float64(2*k+1) * math.Pi / float64(2*order)
		qs[k] = 1 / (2 * math.Cos(theta))
	}
	return qs
}

func lowpassSection(cutoffHz float64, samplingRate int, q float64) biquad {
	k := math.Tan(math.Pi * cutoffHz / float64(samplingRate))
	norm := 1 / (1 + k/q + k*k)
	return biquad{
		b0: k * k * norm,
		b1: 2 * k * k * norm,
		b2: k * k * norm,
		a1: 2 * (k*k - 1) * norm,
		a2: (1 - k/q + k*k) * norm,
	}
}

func highpassSection(cutoffHz float64, samplingRate int, q float64) biquad {
	k := math.Tan(math.Pi * cutoffHz / float64(samplingRate))
	norm := 1 / (1 + k/q + k*k)
	return biquad{
		b0: norm,
		b1: -2 * norm,
		b2: norm,
		a1: 2 * (k*k - 1) * norm,
		a2: (1 - k/q + k*k) * norm,
	}
}

func notchSection(centerHz, bandwidthHz float64, samplingRate int) biquad {
	w0 := 2 * math.Pi * centerHz / float64(samplingRate)
	q := centerHz / bandwidthHz
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: 1 / a0,
		b1: -2 * math.Cos(w0) / a0,
		b2: 1 / a0,
		a1: -2 * math.Cos(w0) / a0,
		a2: (1 - alpha) / a0,
	}
}

// Lowpass applies a Butterworth low-pass filter of the given even order to
// data in place.
func Lowpass(data []float64, samplingRate int, cutoffHz float64, order int) {
	for _, q := range butterworthQ(order) {
		lowpassSection(cutoffHz, samplingRate, q).apply(data)
	}
}

// Highpass applies a Butterworth high-pass filter of the given even order to
// data in place.
func Highpass(data []float64, samplingRate int, cutoffHz float64, order int) {
	for _, q := range butterworthQ(order) {
		highpassSection(cutoffHz, samplingRate, q).apply(data)
	}
}

// Bandpass applies a Butterworth band-pass filter to data in place, realized
// as a high-pass at startHz cascaded with a low-pass at stopHz, each of the
// given even order.
func Bandpass(data []float64, samplingRate int, startHz, stopHz float64, order int) {
	Highpass(data, samplingRate, startHz, order)
	Lowpass(data, samplingRate, stopHz, order)
}

// Bandstop applies a notch filter rejecting [startHz, stopHz] to data in
// place. order/2 identical sections are cascaded, centered on the geometric
// mean of the band edges.
func Bandstop(data []float64, samplingRate int, startHz, stopHz float64, order int) {
	center := math.Sqrt(startHz * stopHz)
	bandwidth := stopHz - startHz
	section := notchSection(center, bandwidth, samplingRate)
	sections := order / 2
	if sections < 1 {
		sections = 1
	}
	for i := 0; i < sections; i++ {
		section.apply(data)
	}
}
