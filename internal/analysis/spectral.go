// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"tuner/pkg/bitint"
)

// Pre-allocated buffers for one analysis cycle. Sized once at construction
// so the per-frame path performs no allocations.
type spectralWorkspace struct {
	input     []float64    // windowed input frame
	coeffs    []complex128 // FFT complex output (windowSize/2 + 1)
	magnitude []float64    // magnitude spectrum (windowSize/2)
	window    []float64    // Hann coefficients
}

// SpectralAnalyzer turns a time-domain frame into a magnitude spectrum.
// It applies a Hann window to reduce spectral leakage, runs a real-input
// FFT, and keeps the first windowSize/2 bins (the transform of a real
// signal is symmetric, so the upper half carries no extra information).
type SpectralAnalyzer struct {
	windowSize int
	fft        *fourier.FFT
	workspace  spectralWorkspace
}

// NewSpectralAnalyzer creates an analyzer for frames of windowSize samples.
// The size must be a power of 2.
func NewSpectralAnalyzer(windowSize int) (*SpectralAnalyzer, error) {
	if !bitint.IsPowerOfTwo(windowSize) {
		return nil, fmt.Errorf("window size must be a power of 2, got %d", windowSize)
	}

	// Initialize to 1.0 first: gonum's window functions multiply in place.
	hann := make([]float64, windowSize)
	for i := range hann {
		hann[i] = 1.0
	}
	window.Hann(hann)

	return &SpectralAnalyzer{
		windowSize: windowSize,
		fft:        fourier.NewFFT(windowSize),
		workspace: spectralWorkspace{
			input:     make([]float64, windowSize),
			coeffs:    make([]complex128, windowSize/2+1),
			magnitude: make([]float64, windowSize/2),
			window:    hann,
		},
	}, nil
}

// Analyze computes the magnitude spectrum and RMS amplitude of one frame.
// The frame must hold exactly windowSize samples.
//
// RMS is taken from the windowed samples, before the transform, and is the
// sole amplitude gate used downstream. Magnitudes are not normalized by the
// window energy.
//
// The returned spectrum is backed by an internal buffer that is overwritten
// by the next call.
func (a *SpectralAnalyzer) Analyze(frame []float32) (spectrum []float64, rms float64) {
	var sumSquares float64
	for i := range a.workspace.input {
		v := float64(frame[i]) * a.workspace.window[i]
		a.workspace.input[i] = v
		sumSquares += v * v
	}
	rms = math.Sqrt(sumSquares / float64(a.windowSize))

	a.fft.Coefficients(a.workspace.coeffs, a.workspace.input)
	for i := range a.workspace.magnitude {
		a.workspace.magnitude[i] = cmplx.Abs(a.workspace.coeffs[i])
	}

	return a.workspace.magnitude, rms
}

// BinWidth returns the frequency spacing in Hz between adjacent bins for
// the given sample rate.
func (a *SpectralAnalyzer) BinWidth(sampleRate float64) float64 {
	return sampleRate / float64(a.windowSize)
}
