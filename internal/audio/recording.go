// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	applog "tuner/internal/log"
)

// recordingBitDepth is the PCM bit depth for recorded WAV files.
const recordingBitDepth = 16

// wavRecorder converts the float32 capture stream to PCM and writes it to
// a WAV file. Buffers are pre-allocated at StartRecording so the capture
// callback never allocates.
type wavRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *gaudio.IntBuffer
}

// write converts and appends one callback buffer. Called from the capture
// hot path; errors are logged, not returned.
func (r *wavRecorder) write(in []float32) {
	if r == nil || r.encoder == nil {
		return
	}

	r.buf.Data = r.buf.Data[:len(in)]
	for i, sample := range in {
		v := float64(sample)
		if v > 1.0 {
			v = 1.0
		}
		if v < -1.0 {
			v = -1.0
		}
		r.buf.Data[i] = int(v * (math.MaxInt16 - 1))
	}

	if err := r.encoder.Write(r.buf); err != nil {
		applog.Errorf("Capture: error writing to WAV file: %v", err)
	}
}

// StartRecording begins writing the raw input stream to filename as WAV.
func (c *Capture) StartRecording(filename string) error {
	if c.isRecording.Load() {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	c.recorder = &wavRecorder{
		file: file,
		encoder: wav.NewEncoder(file, int(c.config.SampleRate),
			recordingBitDepth, c.config.Channels, 1),
		buf: &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: c.config.Channels,
				SampleRate:  int(c.config.SampleRate),
			},
			SourceBitDepth: recordingBitDepth,
			Data:           make([]int, c.config.FramesPerBuffer*c.config.Channels),
		},
	}

	c.isRecording.Store(true)
	applog.Infof("Capture: recording to %s", filename)
	return nil
}

// StopRecording finalizes the WAV file. Safe to call when not recording.
func (c *Capture) StopRecording() error {
	if !c.isRecording.Load() {
		return nil
	}
	c.isRecording.Store(false)

	r := c.recorder
	c.recorder = nil

	if r.encoder != nil {
		if err := r.encoder.Close(); err != nil {
			return err
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Close stops recording and the input stream.
func (c *Capture) Close() error {
	if c.isRecording.Load() {
		if err := c.StopRecording(); err != nil {
			return err
		}
	}
	return c.Stop()
}
