// SPDX-License-Identifier: MIT
package tuner

import (
	"math"
	"testing"
	"time"

	"tuner/pkg/utils"
)

const (
	testSampleRate = 44100
	testWindowSize = 4096
	testHopSize    = 512
)

func testParams() Params {
	return Params{
		SampleRate:     testSampleRate,
		WindowSize:     testWindowSize,
		HopSize:        testHopSize,
		Threshold:      0.05,
		MinFrequency:   20,
		ReferencePitch: 440,
		Pacing:         time.Millisecond,
	}
}

func feed(ch chan<- float32, frame []float32) {
	for _, s := range frame {
		ch <- s
	}
}

func awaitReport(t *testing.T, e *Engine) Report {
	t.Helper()
	select {
	case r := <-e.Reports():
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a report")
		return Report{}
	}
}

func TestEngineRoundTrip(t *testing.T) {
	samples := make(chan float32, testWindowSize*2)
	engine, err := New(testParams(), samples, nil)
	if err != nil {
		t.Fatal(err)
	}

	feed(samples, utils.GenerateSineFrame(testWindowSize, testSampleRate, 440, 0.5))
	engine.Start()
	defer engine.Stop()

	report := awaitReport(t, engine)

	if !report.Detected() {
		t.Fatalf("expected a detected pitch, got %+v", report)
	}
	if report.Note != "A" || report.Octave != 4 {
		t.Errorf("note = %s%d, want A4", report.Note, report.Octave)
	}
	if math.Abs(report.Frequency-440) > 0.5 {
		t.Errorf("frequency = %.3f Hz, want 440 +/- 0.5", report.Frequency)
	}
	if math.Abs(report.Cents) > 2 {
		t.Errorf("cents = %.3f, want within 2 of 0", report.Cents)
	}
	if report.RMS <= 0 {
		t.Errorf("RMS = %v, want positive", report.RMS)
	}
}

func TestEngineSilenceEmitsPlaceholder(t *testing.T) {
	samples := make(chan float32, testWindowSize*2)
	engine, err := New(testParams(), samples, nil)
	if err != nil {
		t.Fatal(err)
	}

	feed(samples, make([]float32, testWindowSize))
	engine.Start()
	defer engine.Stop()

	report := awaitReport(t, engine)

	if report.Detected() {
		t.Fatalf("expected the no-pitch placeholder, got %+v", report)
	}
	if report.Note != NoPitchNote {
		t.Errorf("note = %q, want %q", report.Note, NoPitchNote)
	}
	if report.Frequency != 0 || report.Cents != 0 || report.RMS != 0 {
		t.Errorf("placeholder fields not zero: %+v", report)
	}
}

func TestEngineOverlappingCycles(t *testing.T) {
	samples := make(chan float32, testWindowSize*2)
	engine, err := New(testParams(), samples, nil)
	if err != nil {
		t.Fatal(err)
	}

	// One phase-continuous signal, delivered as a full window followed by
	// one hop, drives two analysis cycles over overlapping frames.
	frame := utils.GenerateSineFrame(testWindowSize+testHopSize, testSampleRate, 440, 0.5)
	feed(samples, frame[:testWindowSize])
	engine.Start()
	defer engine.Stop()

	first := awaitReport(t, engine)
	feed(samples, frame[testWindowSize:])
	second := awaitReport(t, engine)

	for i, r := range []Report{first, second} {
		if r.Note != "A" || r.Octave != 4 {
			t.Errorf("cycle %d: note = %s%d, want A4", i, r.Note, r.Octave)
		}
	}
}

func TestEngineLatest(t *testing.T) {
	samples := make(chan float32, testWindowSize*2)
	engine, err := New(testParams(), samples, nil)
	if err != nil {
		t.Fatal(err)
	}

	if engine.Latest().Note != "" {
		t.Error("Latest should be zero before any cycle")
	}

	feed(samples, utils.GenerateSineFrame(testWindowSize, testSampleRate, 440, 0.5))
	engine.Start()
	defer engine.Stop()

	awaitReport(t, engine)

	if got := engine.Latest(); got.Note != "A" {
		t.Errorf("Latest().Note = %q, want A", got.Note)
	}
}

func TestEngineTransportPush(t *testing.T) {
	samples := make(chan float32, testWindowSize*2)
	mock := &utils.MockTransport{}
	engine, err := New(testParams(), samples, mock)
	if err != nil {
		t.Fatal(err)
	}

	feed(samples, utils.GenerateSineFrame(testWindowSize, testSampleRate, 440, 0.5))
	engine.Start()
	defer engine.Stop()

	awaitReport(t, engine)

	deadline := time.After(2 * time.Second)
	for {
		if last, ok := mock.Last().(Report); ok {
			if last.Note != "A" {
				t.Errorf("transport received note %q, want A", last.Note)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("transport never received a report")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEngineStopsOnClosedStream(t *testing.T) {
	samples := make(chan float32, 16)
	engine, err := New(testParams(), samples, nil)
	if err != nil {
		t.Fatal(err)
	}

	engine.Start()
	close(samples)

	finished := make(chan struct{})
	go func() {
		engine.Stop()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after the sample stream closed")
	}
}

func TestEngineParamValidation(t *testing.T) {
	samples := make(chan float32)

	p := testParams()
	p.SampleRate = 0
	if _, err := New(p, samples, nil); err == nil {
		t.Error("expected error for zero sample rate")
	}

	p = testParams()
	p.HopSize = 0
	if _, err := New(p, samples, nil); err == nil {
		t.Error("expected error for zero hop size")
	}

	p = testParams()
	p.HopSize = p.WindowSize * 2
	if _, err := New(p, samples, nil); err == nil {
		t.Error("expected error for hop larger than window")
	}

	p = testParams()
	p.WindowSize = 1000
	if _, err := New(p, samples, nil); err == nil {
		t.Error("expected error for non-power-of-2 window")
	}
}
