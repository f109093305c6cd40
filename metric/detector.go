package metric

import (
	"ixr-flow/board"
	"ixr-flow/dsp"
)

const (
	// Raw-window variance is scaled by 1/varianceScale before thresholding.
	varianceScale     = 500000.0
	varianceThreshold = 0.04

	detectorSegment = 256
)

// ChannelHealth is the per-tick diagnostic for one signal channel.
//
// LineNoiseRatio compares mains-band power (45-55 Hz, 95-105 Hz) against
// neighboring bands (20-40 Hz, 70-90 Hz). It does not take part in the bad
// decision; it is surfaced for monitoring only.
type ChannelHealth struct {
	Index          int     `json:"index"`
	Name           string  `json:"name"`
	Variance       float64 `json:"variance"`
	LineNoiseRatio float64 `json:"line_noise_ratio"`
	Bad            bool    `json:"bad"`
}

// DetectBadChannels flags non-reference channels whose scaled raw-window
// variance exceeds the threshold. Detection looks at the trailing windowS
// seconds of unfiltered samples and carries no state across ticks.
func DetectBadChannels(eeg [][]float64, channels []board.Channel, samplingRate int, windowS float64) []ChannelHealth {
	health := make([]ChannelHealth, 0, len(channels))
	for _, ch := range channels {
		if ch.Reference || ch.Index >= len(eeg) {
			continue
		}

		row := eeg[ch.Index]
		n := int(windowS * float64(samplingRate))
		if n > len(row) {
			n = len(row)
		}
		window := row[len(row)-n:]

		h := ChannelHealth{Index: ch.Index, Name: ch.Name}
		h.Variance = dsp.Variance(window) / varianceScale
		h.LineNoiseRatio = lineNoiseRatio(window, samplingRate)
		h.Bad = h.Variance > varianceThreshold
		health = append(health, h)
	}
	return health
}

func lineNoiseRatio(window []float64, samplingRate int) float64 {
	nfft := detectorSegment
	for nfft > len(window) {
		nfft /= 2
	}
	if nfft < 2 {
		return 0
	}

	psd, freqs := dsp.Welch(window, samplingRate, nfft, nfft/2, dsp.Hann)
	mains := dsp.BandMean(psd, freqs, 45, 55) + dsp.BandMean(psd, freqs, 95, 105)
	neighbors := dsp.BandMean(psd, freqs, 20, 40) + dsp.BandMean(psd, freqs, 70, 90)
	if neighbors == 0 {
		return 0
	}
	return 0.001 * mains / neighbors
}

// BadCount returns how many channels are flagged bad.
func BadCount(health []ChannelHealth) int {
	n := 0
	for _, h := range health {
		if h.Bad {
			n++
		}
	}
	return n
}
