// SPDX-License-Identifier: MIT
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"tuner/cmd"
	"tuner/internal/audio"
	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tuner"
	"tuner/pkg/build"
)

// main wires the tuner together in three phases:
//
// 1. Startup (cold path): build info, runtime tuning, PortAudio init,
//    argument parsing, one-off commands.
//
// 2. Concurrent (hot path): capture stream feeding the engine loop, plus
//    the transports and the terminal presentation, each on its own cadence.
//
// 3. Shutdown (cold path): signal handling, recording finalization,
//    resource cleanup.
func main() {
	// ==================== STARTUP PHASE ====================

	if err := build.Initialize(); err != nil {
		// Development builds have no ldflags; the defaults are fine.
		applog.Debugf("Build info incomplete: %v", err)
	}

	// One OS thread for the capture callback, one for everything else.
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer audio.Terminate()

	config, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if config.Verbose {
		applog.SetLevel(applog.LevelDebug)
	}

	if config.Command == "list" {
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	if !config.RunMode {
		return
	}

	// ==================== CONCURRENT PHASE ====================

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	capture, err := audio.NewCapture(config)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	var ws transport.Transport
	if config.WebSocketPort != "" {
		ws = transport.NewWebSocketTransport(config.WebSocketPort)
	}

	engine, err := tuner.New(tuner.DefaultParams(config.SampleRate), capture.Samples(), ws)
	if err != nil {
		applog.Fatalf("%v", err)
	}
	engine.Start()

	// The first callback after Start marks the beginning of the real-time
	// hot path.
	if err := capture.Start(); err != nil {
		applog.Fatalf("%v", err)
	}

	if config.Record {
		if err := capture.StartRecording(config.OutputFile); err != nil {
			applog.Fatalf("%v", err)
		}
	}

	var publisher *udp.Publisher
	if config.UDPEnabled {
		sender, err := udp.NewSender(config.UDPTarget)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		defer sender.Close()

		publisher, err = udp.NewPublisher(
			time.Duration(config.UDPIntervalMS)*time.Millisecond, sender, engine)
		if err != nil {
			applog.Fatalf("%v", err)
		}
		publisher.Start()
	}

	display := make(chan struct{})
	go runPresentation(engine, display)

	// Block until termination signal is received.
	<-done

	// ==================== SHUTDOWN PHASE ====================

	close(display)

	if publisher != nil {
		publisher.Stop()
	}

	// Closing capture finalizes any active recording and stops the stream,
	// which closes the sample channel; the engine loop drains and exits on
	// its own, Stop just waits for it.
	if err := capture.Close(); err != nil {
		applog.Errorf("Error closing capture: %v", err)
	} else if config.Record {
		fmt.Printf("\nRecording saved to: %s\n", config.OutputFile)
	}
	engine.Stop()

	if ws != nil {
		if err := ws.Close(); err != nil {
			applog.Errorf("Error closing WebSocket transport: %v", err)
		}
	}
}

// presentation cadence and display-side amplitude decay. The decay is a
// display concern only; the engine's analysis cadence is independent.
const (
	displayRefresh = 100 * time.Millisecond
	displayDecay   = 0.95
)

// runPresentation renders the latest report to the terminal at its own
// refresh rate. It reads only the most recent unread report per tick and
// discards older pending ones; it never blocks waiting for the engine.
func runPresentation(engine *tuner.Engine, done <-chan struct{}) {
	ticker := time.NewTicker(displayRefresh)
	defer ticker.Stop()

	var current tuner.Report
	var level float64

	for {
		select {
		case <-done:
			fmt.Println()
			return
		case <-ticker.C:
			if latest, fresh := drainLatest(engine.Reports()); fresh {
				current = latest
				level = latest.RMS
			} else if level > 0 {
				level *= displayDecay
			}

			if current.Detected() {
				fmt.Printf("\r%s%-3d %8.2f Hz  %+6.1f cents  level %.3f   ",
					current.Note, current.Octave, current.Frequency, current.Cents, level)
			} else {
				fmt.Printf("\r%-4s %8.2f Hz  %6s        level %.3f   ",
					tuner.NoPitchNote, 0.0, "", level)
			}
		}
	}
}

// drainLatest empties the report channel, returning the newest report and
// whether any arrived since the last call.
func drainLatest(reports <-chan tuner.Report) (tuner.Report, bool) {
	var last tuner.Report
	fresh := false
	for {
		select {
		case r := <-reports:
			last, fresh = r, true
		default:
			return last, fresh
		}
	}
}
