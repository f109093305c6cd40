package board

import (
	"math"
	"time"
)

// Synthetic is a deterministic stand-in board for running without hardware
// or a broker. Each channel group produces band-limited sines plus cheap
// deterministic noise.
type Synthetic struct {
	channels []Channel
	rates    map[ChannelGroup]int
	rows     map[ChannelGroup]int
	start    time.Time
}

func NewSynthetic(config Config) *Synthetic {
	channels := DefaultChannels(config.DisplayReference)
	return &Synthetic{
		channels: channels,
		rates: map[ChannelGroup]int{
			GroupEEG:    config.EEGSamplingRate,
			GroupMotion: config.MotionSamplingRate,
			GroupPPG:    config.PPGSamplingRate,
		},
		rows: map[ChannelGroup]int{
			GroupEEG:    len(channels),
			GroupMotion: config.MotionChannels,
			GroupPPG:    config.PPGChannels,
		},
		start: time.Now(),
	}
}

// Window implements Source. The window fills gradually from the moment the
// synthetic board was created, like a real acquisition buffer.
func (s *Synthetic) Window(group ChannelGroup, d time.Duration) ([][]float64, error) {
	rate := s.rates[group]
	n := int(d.Seconds() * float64(rate))
	elapsed := int(time.Since(s.start).Seconds() * float64(rate))
	if elapsed < n {
		n = elapsed
	}

	rows := s.rows[group]
	window := make([][]float64, rows)
	for ch := 0; ch < rows; ch++ {
		window[ch] = make([]float64, n)
		for i := 0; i < n; i++ {
			t := float64(elapsed-n+i) / float64(rate)
			window[ch][i] = s.sample(group, ch, t)
		}
	}
	return window, nil
}

func (s *Synthetic) sample(group ChannelGroup, ch int, t float64) float64 {
	phase := float64(ch) * 0.7
	switch group {
	case GroupEEG:
		v := 12*math.Sin(2*math.Pi*2*t+phase) +
			8*math.Sin(2*math.Pi*6*t+phase) +
			20*math.Sin(2*math.Pi*10*t+phase) +
			6*math.Sin(2*math.Pi*20*t+phase) +
			2*math.Sin(2*math.Pi*40*t+phase)
		return v + 3*noise(t+phase)
	case GroupMotion:
		return 4*math.Sin(2*math.Pi*0.25*t+phase) + noise(t+phase)
	case GroupPPG:
		return 600*math.Sin(2*math.Pi*1.2*t+phase) + 50*noise(t+phase)
	}
	return 0
}

// noise is a deterministic pseudo-noise term in [-1, 1].
func noise(t float64) float64 {
	x := math.Sin(12345.678*t) * 9876.543
	return 2*(x-math.Floor(x)) - 1
}

// Ready implements Source.
func (s *Synthetic) Ready() bool {
	return true
}

// SamplingRate implements Source.
func (s *Synthetic) SamplingRate(group ChannelGroup) int {
	return s.rates[group]
}

// Channels implements Source.
func (s *Synthetic) Channels() []Channel {
	return s.channels
}
