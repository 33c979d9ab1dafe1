// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sync/atomic"
)

// interpolationEpsilon guards the parabolic interpolation denominator.
// Below this the three magnitudes are effectively collinear and the
// refinement would blow up, so the integer bin is used instead.
const interpolationEpsilon = 1e-12

// PitchEstimator locates the dominant spectral peak, refines it with
// parabolic interpolation, and converts the bin position to a frequency.
// Frames whose RMS falls at or below the amplitude threshold, and peaks
// below the audible floor, yield no pitch.
type PitchEstimator struct {
	sampleRate   float64
	windowSize   int
	minFrequency float64
	threshold    atomic.Uint64 // float64 bits; adjustable while the engine runs
}

// NewPitchEstimator creates an estimator for spectra produced from frames
// of windowSize samples at the given sample rate.
func NewPitchEstimator(sampleRate float64, windowSize int, threshold, minFrequency float64) *PitchEstimator {
	e := &PitchEstimator{
		sampleRate:   sampleRate,
		windowSize:   windowSize,
		minFrequency: minFrequency,
	}
	e.SetThreshold(threshold)
	return e
}

// SetThreshold updates the RMS amplitude gate.
func (e *PitchEstimator) SetThreshold(threshold float64) {
	e.threshold.Store(math.Float64bits(threshold))
}

// Threshold returns the current RMS amplitude gate.
func (e *PitchEstimator) Threshold() float64 {
	return math.Float64frombits(e.threshold.Load())
}

// Estimate returns the fundamental frequency for one spectrum, or ok=false
// when no pitch is present (silence, noise floor, or a sub-audible peak).
// The spectrum is not searched at all when the frame is below the gate.
func (e *PitchEstimator) Estimate(spectrum []float64, rms float64) (frequency float64, ok bool) {
	if rms <= e.Threshold() || len(spectrum) < 2 {
		return 0, false
	}

	// Stable max-search over bins 1..N-1. Bin 0 is the DC component and
	// never a musical pitch; first occurrence wins on ties.
	peak := 1
	for i := 2; i < len(spectrum); i++ {
		if spectrum[i] > spectrum[peak] {
			peak = i
		}
	}

	binPos := interpolatePeak(spectrum, peak)

	frequency = binPos * e.sampleRate / float64(e.windowSize)
	if frequency <= e.minFrequency {
		return 0, false
	}
	return frequency, true
}

// interpolatePeak refines a spectral peak to a fractional bin position by
// fitting a parabola through the three magnitudes centered on it:
//
//	delta = 0.5 * (left - right) / (left - 2*center + right)
//
// The refinement recovers sub-bin resolution well beyond the raw bin
// spacing, which matters because semitone spacing is logarithmic and raw
// bins alone would quantize readings visibly. Edge peaks and degenerate
// denominators fall back to the unrefined integer bin.
func interpolatePeak(spectrum []float64, peak int) float64 {
	if peak <= 0 || peak >= len(spectrum)-1 {
		return float64(peak)
	}

	left := spectrum[peak-1]
	center := spectrum[peak]
	right := spectrum[peak+1]

	denom := left - 2*center + right
	if math.Abs(denom) < interpolationEpsilon {
		return float64(peak)
	}

	delta := 0.5 * (left - right) / denom
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return float64(peak)
	}
	return float64(peak) + delta
}
