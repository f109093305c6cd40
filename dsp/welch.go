package dsp

// Welch estimates the one-sided power spectral density of data by averaging
// periodograms of overlapping windowed segments. nfft must be a power of two
// and len(data) >= nfft. Returns the PSD (nfft/2+1 bins) and the matching
// frequency axis in Hz.
func Welch(data []float64, samplingRate, nfft, overlap int, window WindowFunc) (psd, freqs []float64) {
	step := nfft - overlap
	if step < 1 {
		step = 1
	}

	w := window(nfft)
	windowPower := 0.0
	for _, v := range w {
		windowPower += v * v
	}
	scale := 1.0 / (float64(samplingRate) * windowPower)

	nBins := nfft/2 + 1
	psd = make([]float64, nBins)
	segments := 0

	buf := make([]float64, nfft)
	for start := 0; start+nfft <= len(data); start += step {
		for i := 0; i < nfft; i++ {
			buf[i] = data[start+i] * w[i]
		}
		spectrum := FFT(buf)
		for k := 0; k < nBins; k++ {
			re := real(spectrum[k])
			im := imag(spectrum[k])
			p := (re*re + im*im) * scale
			// One-sided: all bins except DC and Nyquist carry both halves.
			if k != 0 && k != nfft/2 {
				p *= 2
			}
			psd[k] += p
		}
		segments++
	}

	if segments > 1 {
		for k := range psd {
			psd[k] /= float64(segments)
		}
	}

	freqs = make([]float64, nBins)
	for k := range freqs {
		freqs[k] = float64(k) * float64(samplingRate) / float64(nfft)
	}
	return psd, freqs
}

// BandPower integrates the PSD over [loHz, hiHz] with the trapezoid rule.
func BandPower(psd, freqs []float64, loHz, hiHz float64) float64 {
	power := 0.0
	for k := 1; k < len(psd) && k < len(freqs); k++ {
		if freqs[k-1] < loHz || freqs[k] > hiHz {
			continue
		}
		df := freqs[k] - freqs[k-1]
		power += 0.5 * (psd[k-1] + psd[k]) * df
	}
	return power
}

// BandMean returns the mean PSD value over bins with loHz < freq < hiHz,
// 0 when no bin falls inside the range.
func BandMean(psd, freqs []float64, loHz, hiHz float64) float64 {
	sum := 0.0
	count := 0
	for k := 0; k < len(psd) && k < len(freqs); k++ {
		if freqs[k] > loHz && freqs[k] < hiHz {
			sum += psd[k]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
