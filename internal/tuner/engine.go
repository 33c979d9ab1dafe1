// SPDX-License-Identifier: MIT
/*
Package tuner implements the pitch estimation engine: it drains the capture
sample stream into a sliding window and, once a full window plus hop is
available, runs one estimation cycle per hop (window → spectrum → peak →
note) and emits a Report.

Thread Safety:
- The engine loop is single-threaded and exclusively owns the sample buffer.
- The capture side communicates only through the sample channel.
- Report emission never blocks: consumers read latest-wins.
*/
package tuner

import (
	"fmt"
	"sync"
	"time"

	"tuner/internal/analysis"
	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/transport"
)

// Params holds the fixed tunables of one engine instance. They are design
// constants rather than runtime configuration, but passing them explicitly
// keeps tests deterministic and parameter-driven.
type Params struct {
	SampleRate     float64       // authoritative for all frequency math
	WindowSize     int           // analysis frame length, power of 2
	HopSize        int           // samples advanced between frames
	Threshold      float64       // RMS amplitude gate
	MinFrequency   float64       // audible floor in Hz
	ReferencePitch float64       // A4 frequency in Hz
	Pacing         time.Duration // delay between steady-state cycles
}

// DefaultParams returns the fixed design constants for the given capture
// sample rate.
func DefaultParams(sampleRate float64) Params {
	return Params{
		SampleRate:     sampleRate,
		WindowSize:     config.WindowSize,
		HopSize:        config.HopSize,
		Threshold:      config.Threshold,
		MinFrequency:   config.MinFrequency,
		ReferencePitch: config.ReferencePitch,
		Pacing:         config.PacingMillis * time.Millisecond,
	}
}

// Engine orchestrates one estimation cycle per hop: drain samples, window,
// transform, locate the peak, map to a note, emit a Report.
type Engine struct {
	params    Params
	buffer    *analysis.SampleBuffer
	analyzer  *analysis.SpectralAnalyzer
	estimator *analysis.PitchEstimator
	mapper    *analysis.NoteMapper

	samples   <-chan float32
	reports   chan Report
	transport transport.Transport // optional push consumer, may be nil

	mu     sync.RWMutex // protects latest
	latest Report

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates an engine reading from samples. The transport is optional;
// pass nil to emit only through Reports and Latest.
func New(params Params, samples <-chan float32, tr transport.Transport) (*Engine, error) {
	if params.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", params.SampleRate)
	}
	if params.HopSize <= 0 || params.HopSize > params.WindowSize {
		return nil, fmt.Errorf("hop size must be in 1..%d, got %d", params.WindowSize, params.HopSize)
	}

	analyzer, err := analysis.NewSpectralAnalyzer(params.WindowSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		params:    params,
		buffer:    analysis.NewSampleBuffer(params.WindowSize),
		analyzer:  analyzer,
		estimator: analysis.NewPitchEstimator(params.SampleRate, params.WindowSize, params.Threshold, params.MinFrequency),
		mapper:    analysis.NewNoteMapper(params.ReferencePitch),
		samples:   samples,
		reports:   make(chan Report, 8),
		transport: tr,
		done:      make(chan struct{}),
	}, nil
}

// Reports returns the report channel. Emission is non-blocking: when the
// consumer lags, older pending reports are dropped in its favor, so reads
// are effectively latest-wins.
func (e *Engine) Reports() <-chan Report {
	return e.reports
}

// Latest returns the most recent report, for consumers that poll on their
// own schedule instead of reading the channel.
func (e *Engine) Latest() Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest
}

// Start launches the engine loop. The loop exits when the sample channel
// closes or Stop is called.
func (e *Engine) Start() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.run()
	}()
}

// Stop terminates the engine loop and waits for it to finish. Idempotent.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
}

// run is the engine state machine: Filling until the buffer holds a full
// window, then looping Ready -> Analyzing forever.
func (e *Engine) run() {
	applog.Infof("Tuner: engine started (window=%d hop=%d rate=%.0f Hz)",
		e.params.WindowSize, e.params.HopSize, e.params.SampleRate)

	for {
		// Drain everything currently available without blocking.
	drain:
		for {
			select {
			case s, ok := <-e.samples:
				if !ok {
					applog.Infof("Tuner: sample stream closed, engine stopping")
					return
				}
				e.buffer.Push(s)
			default:
				break drain
			}
		}

		if !e.buffer.Ready() {
			// Still filling: block for at least one more sample so the
			// startup phase does not busy-spin.
			select {
			case s, ok := <-e.samples:
				if !ok {
					applog.Infof("Tuner: sample stream closed, engine stopping")
					return
				}
				e.buffer.Push(s)
			case <-e.done:
				return
			}
			continue
		}

		e.analyzeOnce()

		// Slide the analysis window forward one hop, then pace the loop to
		// bound CPU usage and report rate.
		e.buffer.Advance(e.params.HopSize)

		select {
		case <-e.done:
			return
		case <-time.After(e.params.Pacing):
		}
	}
}

// analyzeOnce runs a single estimation cycle over the buffered window.
func (e *Engine) analyzeOnce() {
	spectrum, rms := e.analyzer.Analyze(e.buffer.Snapshot())

	frequency, ok := e.estimator.Estimate(spectrum, rms)
	if !ok {
		e.emit(noPitchReport())
		return
	}

	name, octave, cents := e.mapper.Map(frequency)
	e.emit(Report{
		Note:      name,
		Octave:    octave,
		Frequency: frequency,
		Cents:     cents,
		RMS:       rms,
	})
}

// emit publishes one report: latest snapshot for pollers, non-blocking
// channel send for readers, optional transport push. A full channel drops
// the oldest pending report rather than blocking the loop.
func (e *Engine) emit(r Report) {
	e.mu.Lock()
	e.latest = r
	e.mu.Unlock()

	select {
	case e.reports <- r:
	default:
		select {
		case <-e.reports:
		default:
		}
		select {
		case e.reports <- r:
		default:
		}
	}

	if e.transport != nil {
		if err := e.transport.Send(r); err != nil {
			applog.Debugf("Tuner: transport send failed: %v", err)
		}
	}
}
