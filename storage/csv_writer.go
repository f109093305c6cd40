package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ixr-flow/metric"
)

// MetricCSVWriter appends one row per pipeline tick to a CSV log. It
// implements metric.Sink.
type MetricCSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

func NewMetricCSVWriter(path string) *MetricCSVWriter {
	os.MkdirAll(filepath.Dir(path), 0755)

	w := &MetricCSVWriter{}
	w.file, _ = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if w.file != nil {
		w.writer = csv.NewWriter(w.file)
		w.writeHeader()
	}
	return w
}

func (w *MetricCSVWriter) writeHeader() {
	info, _ := w.file.Stat()
	if info.Size() == 0 {
		header := []string{"iso8601", "ts_ms", "power_metric", "engagement", "head_movement"}
		header = append(header, metric.BandNames[:]...)
		header = append(header, "bad_channels")
		w.writer.Write(header)
		w.writer.Flush()
	}
}

// Publish implements metric.Sink.
func (w *MetricCSVWriter) Publish(result metric.Result) {
	if w.writer == nil {
		return
	}

	var badNames []string
	for _, h := range result.Channels {
		if h.Bad {
			badNames = append(badNames, h.Name)
		}
	}

	row := []string{
		result.Time.Format(time.RFC3339),
		fmt.Sprintf("%d", result.Time.UnixMilli()),
		fmt.Sprintf("%.6f", result.PowerMetric),
		fmt.Sprintf("%.6f", result.Engagement),
		fmt.Sprintf("%.6f", result.HeadMovement),
	}
	for _, b := range result.Bands {
		row = append(row, fmt.Sprintf("%d", b))
	}
	row = append(row, strings.Join(badNames, "|"))

	w.writer.Write(row)
	w.writer.Flush()
}

func (w *MetricCSVWriter) Close() {
	if w.writer != nil {
		w.writer.Flush()
		w.file.Close()
	}
}
