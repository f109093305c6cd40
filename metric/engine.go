package metric

import (
	"errors"
	"fmt"
	"time"

	"ixr-flow/board"
	"ixr-flow/dsp"
)

// EEG band edges in Hz.
var bandEdges = [5][2]float64{
	{1, 4},   // delta
	{4, 8},   // theta
	{8, 13},  // alpha
	{13, 30}, // beta
	{30, 60}, // gamma
}

// BandNames matches the order of Result.Bands.
var BandNames = [5]string{"delta", "theta", "alpha", "beta", "gamma"}

const degenerateBandPower = 1e-12

// Result is the output of one pipeline tick.
type Result struct {
	Time         time.Time       `json:"time"`
	PowerMetric  float64         `json:"power_metric"`
	Engagement   float64         `json:"engagement"`
	Bands        [5]int          `json:"bands"`
	HeadMovement float64         `json:"head_movement"`
	Channels     []ChannelHealth `json:"channels"`
	// Heart is the band-passed PPG window, forwarded for display only.
	Heart []float64 `json:"-"`
}

// Sink receives the per-tick output. Publish is fire-and-forget.
type Sink interface {
	Publish(Result)
}

// Engine drives one full pipeline pass per tick: window pull, bad-channel
// detection, re-referencing, spectral conditioning, calibration, and sink
// publication. All cross-tick state lives in the calibrator histories and
// the last published result.
type Engine struct {
	config     Config
	source     board.Source
	sinks      []Sink
	calibrator *Calibrator
	channels   []board.Channel
	nonRef     int
	psdSize    int
	last       Result
	hasResult  bool
}

func NewEngine(config Config, source board.Source, sinks ...Sink) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	channels := source.Channels()
	nonRef := board.NonReferenceCount(channels)
	if nonRef == 0 {
		return nil, fmt.Errorf("channel set has no signal channels")
	}
	return &Engine{
		config:     config,
		source:     source,
		sinks:      sinks,
		calibrator: NewCalibrator(config),
		channels:   channels,
		nonRef:     nonRef,
		psdSize:    dsp.NearestPowerOfTwo(source.SamplingRate(board.GroupEEG)),
	}, nil
}

// AddSink registers a sink. Not safe to call once the scheduler is running.
func (e *Engine) AddSink(sink Sink) {
	e.sinks = append(e.sinks, sink)
}

// Tick runs one pipeline pass. A nil return with no sink publication means
// the tick was skipped (source not ready, transient error, or empty
// windows); a non-nil return is fatal and the pipeline must stop. Skipped
// ticks leave all cross-tick state untouched.
func (e *Engine) Tick() error {
	if !e.source.Ready() {
		return nil
	}

	lookBack := time.Duration(e.config.PlotWindowS * float64(time.Second))

	eeg, err := e.pull(board.GroupEEG, lookBack)
	if err != nil || eeg == nil {
		return err
	}
	motion, err := e.pull(board.GroupMotion, lookBack)
	if err != nil || motion == nil {
		return err
	}
	ppg, err := e.pull(board.GroupPPG, lookBack)
	if err != nil || ppg == nil {
		return err
	}

	eegRate := e.source.SamplingRate(board.GroupEEG)

	health := DetectBadChannels(eeg, e.channels, eegRate, e.config.PowerMetricS)
	badCount := BadCount(health)
	bad := make(map[int]bool, badCount)
	for _, h := range health {
		if h.Bad {
			bad[h.Index] = true
		}
	}

	Rereference(eeg, e.channels, e.config.Reference)

	headMovement := e.headMovement(motion)
	heart := e.heartBand(ppg)

	var bandSums [5]float64
	engagementSum := 0.0

	sliceLen := int(e.config.PowerMetricS * float64(eegRate))
	for _, ch := range e.channels {
		if !ch.Display || ch.Index >= len(eeg) {
			continue
		}
		row := eeg[ch.Index]
		dsp.DetrendConstant(row)
		dsp.Bandpass(row, eegRate, 1.0, 59.0, 2)
		dsp.Bandstop(row, eegRate, 48.0, 52.0, 2)

		n := sliceLen
		if n > len(row) {
			n = len(row)
		}
		slice := row[len(row)-n:]
		if len(slice) < e.psdSize {
			// Not enough data for this channel yet; it contributes
			// nothing this tick.
			continue
		}
		if ch.Reference {
			continue
		}

		psd, freqs := dsp.Welch(slice, eegRate, e.psdSize, e.psdSize/2, dsp.BlackmanHarris)
		var bands [5]float64
		for i, edges := range bandEdges {
			bands[i] = dsp.BandPower(psd, freqs, edges[0], edges[1])
			bandSums[i] += bands[i]
		}

		if bad[ch.Index] {
			continue
		}
		theta, alpha, beta, gamma := bands[1], bands[2], bands[3], bands[4]
		if gamma < degenerateBandPower || theta+alpha < degenerateBandPower {
			continue
		}
		engagementSum += (beta / (theta + alpha)) / gamma
	}

	rawEngagement := 0.0
	if badCount != e.nonRef {
		rawEngagement = engagementSum / float64(e.nonRef-badCount)
	}

	var bands [5]int
	for i, sum := range bandSums {
		bands[i] = int(sum / float64(len(e.channels)))
	}

	engagement, _ := e.calibrator.Update(rawEngagement)

	result := Result{
		Time:         time.Now(),
		Engagement:   engagement,
		PowerMetric:  engagement + (1-headMovement)*e.config.HeadImpact,
		Bands:        bands,
		HeadMovement: headMovement,
		Channels:     health,
		Heart:        heart,
	}
	e.last = result
	e.hasResult = true

	for _, sink := range e.sinks {
		sink.Publish(result)
	}
	return nil
}

// pull fetches one group window. A nil matrix with nil error means the tick
// should be skipped.
func (e *Engine) pull(group board.ChannelGroup, d time.Duration) ([][]float64, error) {
	window, err := e.source.Window(group, d)
	if err != nil {
		if errors.Is(err, board.ErrNotReady) {
			return nil, nil
		}
		return nil, fmt.Errorf("pulling %s window: %w", group, err)
	}
	if len(window) == 0 || len(window[0]) == 0 {
		return nil, nil
	}
	return window, nil
}

func (e *Engine) headMovement(motion [][]float64) float64 {
	rate := e.source.SamplingRate(board.GroupMotion)
	n := int(e.config.PowerMetricS * float64(rate))

	var values []float64
	for _, row := range motion {
		start := len(row) - n
		if start < 0 {
			start = 0
		}
		values = append(values, row[start:]...)
	}
	if len(values) == 0 {
		return 0
	}
	return dsp.Clip(dsp.MeanAbs(values)/50, 0, 1)
}

// heartBand isolates the heart band on the first PPG channel. The series is
// carried on the result for display sinks; the metric does not consume it.
func (e *Engine) heartBand(ppg [][]float64) []float64 {
	heart := make([]float64, len(ppg[0]))
	copy(heart, ppg[0])
	rate := e.source.SamplingRate(board.GroupPPG)
	dsp.DetrendConstant(heart)
	dsp.Bandpass(heart, rate, 0.8, 4.0, 4)
	return heart
}

// Last returns the most recently published result.
func (e *Engine) Last() (Result, bool) {
	return e.last, e.hasResult
}

// Calibrator exposes the calibration state for status reporting.
func (e *Engine) Calibrator() *Calibrator {
	return e.calibrator
}

// PSDSize returns the FFT length used for spectral estimation.
func (e *Engine) PSDSize() int {
	return e.psdSize
}
