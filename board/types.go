package board

import (
	"sync"
	"time"
)

// ChannelGroup identifies one acquisition preset of the headband.
type ChannelGroup string

const (
	GroupEEG    ChannelGroup = "eeg"
	GroupMotion ChannelGroup = "motion"
	GroupPPG    ChannelGroup = "ppg"
)

// Channel describes one row of a sample matrix. Immutable after construction.
type Channel struct {
	Index     int
	Name      string
	Reference bool
	Display   bool
}

// DefaultChannels returns the EEG layout of the supported headband: four
// signal electrodes plus the Fpz reference.
func DefaultChannels(displayRef bool) []Channel {
	return []Channel{
		{Index: 0, Name: "TP9", Display: true},
		{Index: 1, Name: "Fp1", Display: true},
		{Index: 2, Name: "Fp2", Display: true},
		{Index: 3, Name: "TP10", Display: true},
		{Index: 4, Name: "Fpz", Reference: true, Display: displayRef},
	}
}

// NonReferenceCount returns the number of signal (non-reference) channels.
func NonReferenceCount(channels []Channel) int {
	n := 0
	for _, ch := range channels {
		if !ch.Reference {
			n++
		}
	}
	return n
}

// Config holds board collector configuration.
type Config struct {
	MQTTBroker      string
	MQTTPort        int
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopic       string
	UseTLS          bool
	InsecureSkipTLS bool
	DeviceID        string

	EEGSamplingRate    int
	MotionSamplingRate int
	PPGSamplingRate    int
	MotionChannels     int
	PPGChannels        int
	DisplayReference   bool

	// LookBackSeconds sizes the per-channel ring buffers.
	LookBackSeconds int
	QueueSize       int
}

func DefaultConfig() Config {
	return Config{
		MQTTBroker:         "localhost",
		MQTTPort:           1883,
		MQTTTopic:          "ixr/+/samples/#",
		DeviceID:           "headband-01",
		EEGSamplingRate:    256,
		MotionSamplingRate: 52,
		PPGSamplingRate:    64,
		MotionChannels:     3,
		PPGChannels:        3,
		LookBackSeconds:    20,
		QueueSize:          1000,
	}
}

// Statistics tracks collector ingest counters.
type Statistics struct {
	mu              sync.RWMutex
	FramesReceived  int64
	FramesDropped   int64
	FramesRejected  int64
	SamplesIngested int64
	GroupCounts     map[ChannelGroup]int64
	LastUpdate      time.Time
	StartTime       time.Time
}

func NewStatistics() *Statistics {
	return &Statistics{
		GroupCounts: make(map[ChannelGroup]int64),
		StartTime:   time.Now(),
		LastUpdate:  time.Now(),
	}
}

func (s *Statistics) RecordFrame(group ChannelGroup, samples int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.FramesReceived++
	s.SamplesIngested += int64(samples)
	s.GroupCounts[group]++
	s.LastUpdate = time.Now()
}

func (s *Statistics) RecordDrop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FramesDropped++
}

func (s *Statistics) RecordReject() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FramesRejected++
}

func (s *Statistics) GetSnapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := time.Since(s.StartTime)
	framesPerSec := 0.0
	if uptime.Seconds() > 0 {
		framesPerSec = float64(s.FramesReceived) / uptime.Seconds()
	}

	groups := make(map[string]int64, len(s.GroupCounts))
	for g, n := range s.GroupCounts {
		groups[string(g)] = n
	}

	return map[string]interface{}{
		"frames_received":  s.FramesReceived,
		"frames_dropped":   s.FramesDropped,
		"frames_rejected":  s.FramesRejected,
		"samples_ingested": s.SamplesIngested,
		"frames_per_sec":   framesPerSec,
		"group_counts":     groups,
		"uptime_seconds":   uptime.Seconds(),
		"last_update":      s.LastUpdate,
	}
}
