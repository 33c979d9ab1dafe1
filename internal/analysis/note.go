// SPDX-License-Identifier: MIT
package analysis

import "math"

// NoteNames lists the 12 pitch classes in chromatic order starting at C.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchClassIndex returns the chromatic index of a pitch-class name, or -1
// if the name is not one of the 12 pitch classes.
func PitchClassIndex(name string) int {
	for i, n := range NoteNames {
		if n == name {
			return i
		}
	}
	return -1
}

// NoteMapper converts a frequency to the nearest musical note and its
// tuning deviation in cents, using a MIDI-style continuous note number
// referenced to the configured pitch for A4 (note 69).
type NoteMapper struct {
	reference float64 // frequency of A4 in Hz
}

// NewNoteMapper creates a mapper with the given A4 reference pitch.
func NewNoteMapper(reference float64) *NoteMapper {
	return &NoteMapper{reference: reference}
}

// Map returns the nearest note name, its octave (MIDI note 60 is C4), and
// the signed deviation in cents, nominally within (-50, 50]. Defined only
// for frequency > 0.
func (m *NoteMapper) Map(frequency float64) (name string, octave int, cents float64) {
	note := 12*math.Log2(frequency/m.reference) + 69
	nearest := int(math.Round(note))
	cents = (note - float64(nearest)) * 100

	name = NoteNames[euclidMod(nearest, 12)]
	octave = floorDiv(nearest, 12) - 1
	return name, octave, cents
}

// euclidMod is the non-negative modulo, so negative note numbers still
// resolve to a pitch class in [0, 11].
func euclidMod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

// floorDiv rounds the quotient toward negative infinity, keeping the
// octave convention consistent below MIDI note 0.
func floorDiv(n, m int) int {
	q := n / m
	if n%m < 0 {
		q--
	}
	return q
}
