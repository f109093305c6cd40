package board

import (
	"errors"
	"time"
)

// ErrNotReady reports that the board has no stable connection yet. Callers
// should skip the current pass and try again later.
var ErrNotReady = errors.New("board not ready")

// ErrStopped reports that the board was shut down. Not recoverable.
var ErrStopped = errors.New("board stopped")

// Source yields the most recent samples per channel group on demand.
//
// Window returns a dense matrix, rows indexed by channel, columns ordered
// oldest to newest, covering at most the requested trailing duration. The
// returned matrix is a private copy the caller may mutate. Errors wrapping
// ErrNotReady are transient; any other error is fatal.
type Source interface {
	Window(group ChannelGroup, d time.Duration) ([][]float64, error)
	Ready() bool
	SamplingRate(group ChannelGroup) int
	Channels() []Channel
}

// Recorder receives raw frames as they are ingested, before any
// conditioning. Used for session persistence (EDF).
type Recorder interface {
	Append(samples [][]float64) error
}
