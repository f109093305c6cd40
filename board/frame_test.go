package board

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameFromPayloadGroup(t *testing.T) {
	payload := []byte(`{"ts": 1700000000000, "group": "eeg", "samples": [[1.5, 2.5], [3.5, 4.5]]}`)
	frame := ParseFrame("ixr/muse/samples", payload)
	require.NotNil(t, frame)
	assert.Equal(t, GroupEEG, frame.Group)
	assert.Equal(t, time.UnixMilli(1700000000000), frame.Timestamp)
	require.Len(t, frame.Samples, 2)
	assert.Equal(t, []float64{1.5, 2.5}, frame.Samples[0])
}

func TestParseFrameGroupFromTopic(t *testing.T) {
	payload := []byte(`{"samples": [[0.1, 0.2, 0.3]]}`)
	frame := ParseFrame("ixr/muse/samples/motion", payload)
	require.NotNil(t, frame)
	assert.Equal(t, GroupMotion, frame.Group)
	assert.False(t, frame.Timestamp.IsZero())
}

func TestParseFrameRejectsBadInput(t *testing.T) {
	assert.Nil(t, ParseFrame("ixr/muse/samples/eeg", []byte("not json")))
	assert.Nil(t, ParseFrame("ixr/muse/samples/eeg", []byte(`{"samples": []}`)))
	assert.Nil(t, ParseFrame("ixr/muse/samples/eeg", []byte(`{"samples": [[]]}`)))
	// Ragged rows.
	assert.Nil(t, ParseFrame("ixr/muse/samples/eeg", []byte(`{"samples": [[1, 2], [3]]}`)))
	// Unknown group.
	assert.Nil(t, ParseFrame("ixr/muse/samples/temperature", []byte(`{"samples": [[1]]}`)))
}

func TestSampleBufferWindowOrdering(t *testing.T) {
	sb := NewSampleBuffer(2, 4)
	sb.Push([][]float64{{1, 2}, {10, 20}})
	sb.Push([][]float64{{3}, {30}})

	win := sb.Window(3)
	require.Len(t, win, 2)
	assert.Equal(t, []float64{1, 2, 3}, win[0])
	assert.Equal(t, []float64{10, 20, 30}, win[1])
}

func TestSampleBufferOverwritesOldest(t *testing.T) {
	sb := NewSampleBuffer(1, 3)
	sb.Push([][]float64{{1, 2, 3, 4, 5}})

	assert.Equal(t, 3, sb.Size())
	assert.Equal(t, [][]float64{{3, 4, 5}}, sb.Window(3))
	// Requests past the capacity are clamped.
	assert.Equal(t, [][]float64{{3, 4, 5}}, sb.Window(10))
}

func TestSampleBufferPartialFill(t *testing.T) {
	sb := NewSampleBuffer(1, 100)
	sb.Push([][]float64{{7, 8}})

	win := sb.Window(50)
	require.Len(t, win[0], 2)
	assert.Equal(t, []float64{7, 8}, win[0])
	assert.Equal(t, 100, sb.Capacity())
	assert.Equal(t, 1, sb.Channels())
}

func TestSyntheticWindowsFillOverTime(t *testing.T) {
	cfg := DefaultConfig()
	syn := NewSynthetic(cfg)
	assert.True(t, syn.Ready())
	assert.Equal(t, cfg.EEGSamplingRate, syn.SamplingRate(GroupEEG))
	assert.Equal(t, cfg.MotionSamplingRate, syn.SamplingRate(GroupMotion))
	require.Len(t, syn.Channels(), 5)

	syn.start = time.Now().Add(-2 * time.Second)
	eeg, err := syn.Window(GroupEEG, time.Second)
	require.NoError(t, err)
	require.Len(t, eeg, 5)
	require.Len(t, eeg[0], cfg.EEGSamplingRate)

	// Signal channels carry oscillation, not a flat line.
	varSum := 0.0
	for _, v := range eeg[0] {
		varSum += v * v
	}
	assert.Greater(t, varSum, 0.0)
}
