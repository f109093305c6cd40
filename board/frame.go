package board

import (
	"encoding/json"
	"strings"
	"time"
)

// SampleFrame is one chunk of multi-channel samples for a single channel
// group, as published by the acquisition firmware.
type SampleFrame struct {
	Timestamp time.Time
	Group     ChannelGroup
	Samples   [][]float64 // rows = channel, columns = time
}

type framePayload struct {
	TS      int64       `json:"ts"`
	Group   string      `json:"group"`
	Samples [][]float64 `json:"samples"`
}

// ParseFrame decodes an MQTT sample frame. The group is taken from the
// payload when present, otherwise from the last topic segment. Returns nil
// for frames with no usable samples.
func ParseFrame(topic string, payload []byte) *SampleFrame {
	var p framePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil
	}

	group := ChannelGroup(p.Group)
	if group == "" {
		segments := strings.Split(topic, "/")
		group = ChannelGroup(segments[len(segments)-1])
	}
	switch group {
	case GroupEEG, GroupMotion, GroupPPG:
	default:
		return nil
	}

	if len(p.Samples) == 0 {
		return nil
	}
	columns := len(p.Samples[0])
	if columns == 0 {
		return nil
	}
	for _, row := range p.Samples {
		if len(row) != columns {
			return nil
		}
	}

	frame := &SampleFrame{
		Timestamp: time.Now(),
		Group:     group,
		Samples:   p.Samples,
	}
	if p.TS > 0 {
		frame.Timestamp = time.UnixMilli(p.TS)
	}
	return frame
}
