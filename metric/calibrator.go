package metric

import "ixr-flow/dsp"

const (
	clipLow  = 0.05
	clipHigh = 1.0

	// Below this the calibration stddev is treated as degenerate.
	minStdDev = 1e-12
)

// Calibrator z-normalizes the raw engagement index against a bounded running
// history and smooths the result with a recency-weighted mean over a second
// bounded history. Both histories are seeded with [0, 1] so the statistics
// are defined from the first tick.
type Calibrator struct {
	calib       []float64
	hist        []float64
	calibLength int
	histLength  int
	scale       float64
	offset      float64
	smoothed    float64
}

func NewCalibrator(config Config) *Calibrator {
	return &Calibrator{
		calib:       []float64{0, 1},
		hist:        []float64{0, 1},
		calibLength: config.CalibLength(),
		histLength:  config.HistLength(),
		scale:       config.Scale,
		offset:      config.Offset,
	}
}

// Update feeds one raw engagement index and returns the calibrated,
// smoothed engagement value. ok is false when the calibration history has
// collapsed to zero variance; the previous smoothed value is returned and
// the smoothing history is left untouched.
func (c *Calibrator) Update(raw float64) (smoothed float64, ok bool) {
	c.calib = append(c.calib, raw)
	for len(c.calib) > c.calibLength {
		c.calib = c.calib[1:]
	}

	std := dsp.StdDev(c.calib)
	if std < minStdDev {
		return c.smoothed, false
	}

	z := (raw - dsp.Mean(c.calib)) / std
	z /= 2 * c.scale
	z += c.offset
	z = dsp.Clip(z, clipLow, clipHigh)

	c.hist = append(c.hist, z)
	for len(c.hist) > c.histLength {
		c.hist = c.hist[1:]
	}

	c.smoothed = weightedMean(c.hist)
	return c.smoothed, true
}

// weightedMean weights each entry by its 0-based position, so the oldest
// retained entry contributes nothing and the newest the most.
func weightedMean(values []float64) float64 {
	sum := 0.0
	sumWeight := 0.0
	for i, v := range values {
		sum += v * float64(i)
		sumWeight += float64(i)
	}
	if sumWeight == 0 {
		return 0
	}
	return sum / sumWeight
}

// CalibFill returns the current calibration history length.
func (c *Calibrator) CalibFill() int {
	return len(c.calib)
}

// HistFill returns the current smoothing history length.
func (c *Calibrator) HistFill() int {
	return len(c.hist)
}

// Smoothed returns the last smoothed engagement value.
func (c *Calibrator) Smoothed() float64 {
	return c.smoothed
}
