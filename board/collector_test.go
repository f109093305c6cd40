package board

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool { return false }

func (m fakeMessage) Qos() byte { return 0 }

func (m fakeMessage) Retained() bool { return false }

func (m fakeMessage) Topic() string { return m.topic }

func (m fakeMessage) MessageID() uint16 { return 0 }

func (m fakeMessage) Payload() []byte { return m.payload }

func (m fakeMessage) Ack() {}

func TestCollectorIngestsFrames(t *testing.T) {
	c := NewCollector(DefaultConfig())
	go c.ingestWorker()
	defer close(c.done)

	c.onMessage(nil, fakeMessage{
		topic:   "ixr/headband-01/samples/eeg",
		payload: []byte(`{"samples": [[1,2],[3,4],[5,6],[7,8],[9,10]]}`),
	})
	c.onMessage(nil, fakeMessage{
		topic:   "ixr/headband-01/samples/motion",
		payload: []byte(`{"samples": [[0.1],[0.2],[0.3]]}`),
	})
	// Malformed payload counts as rejected, nothing is queued.
	c.onMessage(nil, fakeMessage{
		topic:   "ixr/headband-01/samples/eeg",
		payload: []byte(`garbage`),
	})

	require.Eventually(t, func() bool {
		return c.buffers[GroupEEG].Size() == 2 && c.buffers[GroupMotion].Size() == 1
	}, time.Second, 5*time.Millisecond)

	snapshot := c.Stats().GetSnapshot()
	assert.Equal(t, int64(2), snapshot["frames_received"])
	assert.Equal(t, int64(1), snapshot["frames_rejected"])
	assert.Equal(t, int64(3), snapshot["samples_ingested"])
}

func TestCollectorWindowWhenDisconnected(t *testing.T) {
	c := NewCollector(DefaultConfig())

	assert.False(t, c.Ready())
	_, err := c.Window(GroupEEG, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestCollectorWindowAfterStop(t *testing.T) {
	c := NewCollector(DefaultConfig())
	close(c.done)

	_, err := c.Window(GroupEEG, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStopped))
}

func TestCollectorBufferSizing(t *testing.T) {
	cfg := DefaultConfig()
	c := NewCollector(cfg)

	assert.Equal(t, cfg.LookBackSeconds*cfg.EEGSamplingRate, c.buffers[GroupEEG].Capacity())
	assert.Equal(t, 5, c.buffers[GroupEEG].Channels())
	assert.Equal(t, cfg.MotionChannels, c.buffers[GroupMotion].Channels())
	assert.Equal(t, cfg.EEGSamplingRate, c.SamplingRate(GroupEEG))
	require.Len(t, c.Channels(), 5)
	assert.Equal(t, 4, NonReferenceCount(c.Channels()))
}

func TestStatisticsSnapshot(t *testing.T) {
	s := NewStatistics()
	s.RecordFrame(GroupEEG, 12)
	s.RecordFrame(GroupEEG, 12)
	s.RecordFrame(GroupPPG, 6)
	s.RecordDrop()

	snapshot := s.GetSnapshot()
	assert.Equal(t, int64(3), snapshot["frames_received"])
	assert.Equal(t, int64(1), snapshot["frames_dropped"])
	assert.Equal(t, int64(30), snapshot["samples_ingested"])

	groups := snapshot["group_counts"].(map[string]int64)
	assert.Equal(t, int64(2), groups["eeg"])
	assert.Equal(t, int64(1), groups["ppg"])
}
