// SPDX-License-Identifier: MIT
/*
Package audio wraps the PortAudio capture layer: device enumeration, the
input stream whose callback feeds the sample channel, and optional WAV
recording of the raw stream.

Thread Safety:
- The stream callback runs on a PortAudio-managed real-time thread and must
  never block: samples are forwarded with a non-blocking channel send and
  dropped when the consumer falls behind.
- Recording state uses an atomic flag so Start/StopRecording are safe
  against the callback.
*/
package audio

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"

	"tuner/internal/config"
	applog "tuner/internal/log"
)

// sampleChannelFrames sizes the sample channel in analysis windows. Large
// enough to ride out scheduling hiccups of the processing loop without the
// callback dropping samples.
const sampleChannelFrames = 4

// Capture owns the PortAudio input stream and forwards mono samples to the
// processing side through a one-directional, order-preserving channel.
type Capture struct {
	config  *config.Config
	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream
	samples chan float32

	// Recording state and buffers.
	recorder    *wavRecorder
	isRecording atomic.Bool
}

// NewCapture resolves the input device and prepares the sample channel.
// The stream is not opened until Start.
func NewCapture(cfg *config.Config) (*Capture, error) {
	device, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		config:  cfg,
		device:  device,
		samples: make(chan float32, config.WindowSize*sampleChannelFrames),
	}

	if cfg.LowLatency {
		c.latency = device.DefaultLowInputLatency
	} else {
		c.latency = device.DefaultHighInputLatency
	}

	return c, nil
}

// Samples returns the channel of mono samples. The channel is closed by
// Stop, which the processing side treats as end of stream.
func (c *Capture) Samples() <-chan float32 {
	return c.samples
}

// Start opens and starts the input stream. From the first callback on,
// the capture side is in its real-time hot path.
func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.config.Channels,
			Device:   c.device,
			Latency:  c.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // capture only
			Device:   nil,
		},
		FramesPerBuffer: c.config.FramesPerBuffer,
		SampleRate:      c.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.processInputStream)
	if err != nil {
		return err
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		c.stream = nil
		return err
	}

	applog.Infof("Capture: input stream started (%s, %.0f Hz, %d ch)",
		c.device.Name, c.config.SampleRate, c.config.Channels)
	return nil
}

// Stop stops and closes the stream, then closes the sample channel so the
// processing loop drains and exits.
func (c *Capture) Stop() error {
	if c.stream != nil {
		if err := c.stream.Stop(); err != nil {
			return err
		}
		if err := c.stream.Close(); err != nil {
			return err
		}
		c.stream = nil
	}

	close(c.samples)
	return nil
}

// processInputStream is the real-time capture callback.
// Performance Critical:
// - Runs on a dedicated OS thread driven by the device
// - Must never block: channel sends are best-effort, drop on full
// - No allocations
func (c *Capture) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	channels := c.config.Channels
	for i := 0; i < len(in); i += channels {
		// First channel only: the pipeline is mono.
		select {
		case c.samples <- in[i]:
		default:
			// Processing side is behind; dropping is preferable to
			// stalling the device callback.
		}
	}

	if c.isRecording.Load() {
		c.recorder.write(in)
	}
}
