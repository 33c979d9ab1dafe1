// SPDX-License-Identifier: MIT
package tuner

// NoPitchNote is the placeholder note name used when a cycle detects no
// pitch, so consumers can tell "nothing detected" from a stalled engine.
const NoPitchNote = "--"

// Report is the immutable result of one estimation cycle. It is handed to
// consumers by value and never mutated afterwards.
type Report struct {
	Note      string  `json:"note"`      // pitch-class name, or "--" for no pitch
	Octave    int     `json:"octave"`    // MIDI note 60 is C4
	Frequency float64 `json:"frequency"` // fundamental in Hz, 0 for no pitch
	Cents     float64 `json:"cents"`     // signed deviation, nominally (-50, 50]
	RMS       float64 `json:"rms"`       // amplitude of the analyzed frame
}

// Detected reports whether the cycle found a pitch.
func (r Report) Detected() bool {
	return r.Note != NoPitchNote && r.Frequency > 0
}

// noPitchReport is the designated all-zero placeholder.
func noPitchReport() Report {
	return Report{Note: NoPitchNote}
}
