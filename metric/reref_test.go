package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ixr-flow/board"
)

func constantRow(value float64, n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = value
	}
	return row
}

func TestRereferenceMeanMode(t *testing.T) {
	channels := board.DefaultChannels(false)
	eeg := [][]float64{
		constantRow(1, 4),
		constantRow(2, 4),
		constantRow(3, 4),
		constantRow(4, 4),
		constantRow(10, 4), // reference
	}

	Rereference(eeg, channels, ReferenceMean)

	// Signal mean is 2.5.
	assert.Equal(t, constantRow(-1.5, 4), eeg[0])
	assert.Equal(t, constantRow(-0.5, 4), eeg[1])
	assert.Equal(t, constantRow(0.5, 4), eeg[2])
	assert.Equal(t, constantRow(1.5, 4), eeg[3])
	assert.Equal(t, constantRow(10, 4), eeg[4])
}

func TestRereferenceRefMode(t *testing.T) {
	channels := board.DefaultChannels(false)
	eeg := [][]float64{
		constantRow(1, 4),
		constantRow(2, 4),
		constantRow(3, 4),
		constantRow(4, 4),
		constantRow(10, 4),
	}

	Rereference(eeg, channels, ReferenceRef)

	assert.Equal(t, constantRow(-9, 4), eeg[0])
	assert.Equal(t, constantRow(-6, 4), eeg[3])
	// The reference row itself stays untouched.
	assert.Equal(t, constantRow(10, 4), eeg[4])
}

func TestDetectBadChannelsFlagsHighVariance(t *testing.T) {
	channels := board.DefaultChannels(false)
	const (
		rate    = 256
		samples = 512
	)

	quiet := func() []float64 {
		row := make([]float64, samples)
		for i := range row {
			if i%2 == 0 {
				row[i] = 10
			} else {
				row[i] = -10
			}
		}
		return row
	}
	noisy := func() []float64 {
		row := make([]float64, samples)
		for i := range row {
			if i%2 == 0 {
				row[i] = 200
			} else {
				row[i] = -200
			}
		}
		return row
	}

	eeg := [][]float64{quiet(), noisy(), quiet(), quiet(), noisy()}

	health := DetectBadChannels(eeg, channels, rate, 1.5)
	// The reference channel is exempt from detection.
	require.Len(t, health, 4)

	assert.False(t, health[0].Bad)
	assert.True(t, health[1].Bad)
	// Alternating +-200 has variance 40000; scaled by 1/500000 that is 0.08.
	assert.InDelta(t, 0.08, health[1].Variance, 1e-9)
	assert.Equal(t, "Fp1", health[1].Name)
	assert.Equal(t, 1, BadCount(health))

	for _, h := range health {
		assert.GreaterOrEqual(t, h.LineNoiseRatio, 0.0)
	}
}

func TestDetectBadChannelsShortWindow(t *testing.T) {
	channels := board.DefaultChannels(false)
	eeg := [][]float64{
		{1, 2, 3}, {1, 2, 3}, {1, 2, 3}, {1, 2, 3}, {1, 2, 3},
	}

	health := DetectBadChannels(eeg, channels, 256, 1.5)
	require.Len(t, health, 4)
	for _, h := range health {
		assert.False(t, h.Bad)
	}
}
