package board

import "sync"

// SampleBuffer is a fixed-capacity ring of multi-channel samples. Rows are
// channels, columns are time; Push appends columns, Window reads the most
// recent ones ordered oldest to newest.
type SampleBuffer struct {
	data     [][]float64 // [channel][capacity]
	channels int
	head     int
	size     int
	capacity int
	mu       sync.RWMutex
}

func NewSampleBuffer(channels, capacity int) *SampleBuffer {
	data := make([][]float64, channels)
	for i := range data {
		data[i] = make([]float64, capacity)
	}
	return &SampleBuffer{
		data:     data,
		channels: channels,
		capacity: capacity,
	}
}

// Push appends the columns of samples. samples must have one row per
// channel; rows shorter than the longest are zero-padded.
func (sb *SampleBuffer) Push(samples [][]float64) {
	if len(samples) == 0 {
		return
	}

	sb.mu.Lock()
	defer sb.mu.Unlock()

	columns := len(samples[0])
	for c := 0; c < columns; c++ {
		for ch := 0; ch < sb.channels; ch++ {
			v := 0.0
			if ch < len(samples) && c < len(samples[ch]) {
				v = samples[ch][c]
			}
			sb.data[ch][sb.head] = v
		}
		sb.head = (sb.head + 1) % sb.capacity
		if sb.size < sb.capacity {
			sb.size++
		}
	}
}

// Window returns a copy of the most recent n columns, oldest first. Fewer
// columns are returned while the buffer is still filling.
func (sb *SampleBuffer) Window(n int) [][]float64 {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	if n > sb.size {
		n = sb.size
	}

	result := make([][]float64, sb.channels)
	for ch := 0; ch < sb.channels; ch++ {
		result[ch] = make([]float64, n)
		for i := 0; i < n; i++ {
			idx := (sb.head - n + i + sb.capacity) % sb.capacity
			result[ch][i] = sb.data[ch][idx]
		}
	}
	return result
}

func (sb *SampleBuffer) Size() int {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.size
}

func (sb *SampleBuffer) Channels() int {
	return sb.channels
}

func (sb *SampleBuffer) Capacity() int {
	return sb.capacity
}

func (sb *SampleBuffer) GetStats() map[string]interface{} {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	return map[string]interface{}{
		"channels":    sb.channels,
		"size":        sb.size,
		"capacity":    sb.capacity,
		"utilization": float64(sb.size) / float64(sb.capacity) * 100.0,
	}
}
