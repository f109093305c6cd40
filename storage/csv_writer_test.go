package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ixr-flow/metric"
)

func sampleResult() metric.Result {
	return metric.Result{
		Time:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		PowerMetric:  0.65,
		Engagement:   0.55,
		HeadMovement: 0.5,
		Bands:        [5]int{10, 20, 30, 40, 50},
		Channels: []metric.ChannelHealth{
			{Index: 0, Name: "TP9", Bad: false},
			{Index: 1, Name: "Fp1", Bad: true},
			{Index: 3, Name: "TP10", Bad: true},
		},
	}
}

func TestMetricCSVWriterRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")

	w := NewMetricCSVWriter(path)
	w.Publish(sampleResult())
	w.Close()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	header := rows[0]
	assert.Equal(t, "iso8601", header[0])
	assert.Equal(t, "delta", header[5])
	assert.Equal(t, "bad_channels", header[10])

	row := rows[1]
	require.Len(t, row, 11)
	assert.Equal(t, "2025-06-01T12:00:00Z", row[0])
	assert.Equal(t, "0.650000", row[2])
	assert.Equal(t, "0.550000", row[3])
	assert.Equal(t, "10", row[5])
	assert.Equal(t, "50", row[9])
	assert.Equal(t, "Fp1|TP10", row[10])
}

func TestMetricCSVWriterAppendsWithoutDuplicateHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")

	w := NewMetricCSVWriter(path)
	w.Publish(sampleResult())
	w.Close()

	// Reopening an existing log must not write a second header.
	w = NewMetricCSVWriter(path)
	w.Publish(sampleResult())
	w.Close()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
