package metric

import "ixr-flow/board"

// Rereference subtracts a common reference signal from every non-reference
// channel of the EEG matrix, in place. In mean mode the reference is the
// elementwise mean of the signal channels; in ref mode it is the elementwise
// mean of the reference channels. Reference channels are never modified.
func Rereference(eeg [][]float64, channels []board.Channel, mode ReferenceMode) {
	var sourceRows []int
	for _, ch := range channels {
		isSource := (mode == ReferenceMean && !ch.Reference) ||
			(mode == ReferenceRef && ch.Reference)
		if isSource && ch.Index < len(eeg) {
			sourceRows = append(sourceRows, ch.Index)
		}
	}
	if len(sourceRows) == 0 {
		return
	}

	columns := len(eeg[sourceRows[0]])
	reference := make([]float64, columns)
	for _, row := range sourceRows {
		for i := 0; i < columns && i < len(eeg[row]); i++ {
			reference[i] += eeg[row][i]
		}
	}
	for i := range reference {
		reference[i] /= float64(len(sourceRows))
	}

	for _, ch := range channels {
		if ch.Reference || ch.Index >= len(eeg) {
			continue
		}
		row := eeg[ch.Index]
		for i := 0; i < len(row) && i < len(reference); i++ {
			row[i] -= reference[i]
		}
	}
}
