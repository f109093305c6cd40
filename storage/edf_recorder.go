package storage

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/OpenPSG/edf"
)

// EDFRecorder persists raw EEG frames to an EDF file, one data record per
// second of signal. It implements the board.Recorder contract.
type EDFRecorder struct {
	mu      sync.Mutex
	file    *os.File
	writer  *edf.Writer
	pending [][]float64 // accumulated samples per channel
	perRec  int         // samples per channel per data record
}

func NewEDFRecorder(path, recordingID string, channelNames []string, samplingRate int) (*EDFRecorder, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening EDF file: %w", err)
	}

	signals := make([]edf.Signal, len(channelNames))
	for i, name := range channelNames {
		signals[i] = edf.Signal{
			Label:             "EEG " + name,
			TransducerType:    "AgAgCl electrode",
			PhysicalDimension: "uV",
			PhysicalMin:       -500,
			PhysicalMax:       500,
			DigitalMin:        -2048,
			DigitalMax:        2047,
			SamplesPerRecord:  samplingRate,
		}
	}

	hdr := edf.Header{
		Version:            edf.Version0,
		RecordingID:        recordingID,
		StartTime:          time.Now(),
		DataRecordDuration: time.Second,
		SignalCount:        len(signals),
		Signals:            signals,
	}

	writer, err := edf.Create(f, hdr)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating EDF writer: %w", err)
	}

	log.Printf("[EDF] Recording %d channels at %d Hz to %s", len(channelNames), samplingRate, path)

	return &EDFRecorder{
		file:    f,
		writer:  writer,
		pending: make([][]float64, len(channelNames)),
		perRec:  samplingRate,
	}, nil
}

// Append buffers one raw frame (rows = channel) and flushes complete
// one-second records.
func (r *EDFRecorder) Append(samples [][]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ch := range r.pending {
		if ch < len(samples) {
			r.pending[ch] = append(r.pending[ch], samples[ch]...)
		}
	}

	for r.complete() {
		record := make([][]float64, len(r.pending))
		for ch := range r.pending {
			record[ch] = r.pending[ch][:r.perRec]
			r.pending[ch] = r.pending[ch][r.perRec:]
		}
		if err := r.writer.WriteRecord(record); err != nil {
			return fmt.Errorf("writing EDF record: %w", err)
		}
	}
	return nil
}

func (r *EDFRecorder) complete() bool {
	for _, p := range r.pending {
		if len(p) < r.perRec {
			return false
		}
	}
	return true
}

// Close finalizes the EDF header. Any partial trailing record is discarded.
func (r *EDFRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.writer.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
