package metric

import (
	"fmt"
	"time"
)

// ReferenceMode selects the re-referencing policy.
type ReferenceMode string

const (
	// ReferenceMean subtracts the mean of the signal channels.
	ReferenceMean ReferenceMode = "mean"
	// ReferenceRef subtracts the mean of the reference channels.
	ReferenceRef ReferenceMode = "ref"
)

// Config holds the pipeline tuning parameters.
type Config struct {
	TickPeriod        time.Duration
	PlotWindowS       float64 // look-back pulled from the source per tick
	PowerMetricS      float64 // trailing slice used for spectral estimation
	CalibrationS      float64 // raw engagement history span
	SmoothingS        float64 // smoothed engagement history span
	Scale             float64
	Offset            float64
	HeadImpact        float64
	Reference         ReferenceMode
}

func DefaultConfig() Config {
	return Config{
		TickPeriod:   100 * time.Millisecond,
		PlotWindowS:  20,
		PowerMetricS: 1.5,
		CalibrationS: 600,
		SmoothingS:   10,
		Scale:        1.5,
		Offset:       0.5,
		HeadImpact:   0.2,
		Reference:    ReferenceMean,
	}
}

func (c Config) Validate() error {
	if c.TickPeriod <= 0 {
		return fmt.Errorf("tick period must be positive, got %v", c.TickPeriod)
	}
	if c.PowerMetricS > c.PlotWindowS {
		return fmt.Errorf("power metric window (%gs) must not exceed look-back window (%gs)",
			c.PowerMetricS, c.PlotWindowS)
	}
	if c.Reference != ReferenceMean && c.Reference != ReferenceRef {
		return fmt.Errorf("unknown reference mode %q", c.Reference)
	}
	return nil
}

// CalibLength returns the calibration history capacity in ticks.
func (c Config) CalibLength() int {
	return int(c.CalibrationS * 1000 / float64(c.TickPeriod.Milliseconds()))
}

// HistLength returns the smoothing history capacity in ticks.
func (c Config) HistLength() int {
	return int(c.SmoothingS * 1000 / float64(c.TickPeriod.Milliseconds()))
}
