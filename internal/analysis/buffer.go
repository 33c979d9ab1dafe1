// SPDX-License-Identifier: MIT
package analysis

// SampleBuffer is a fixed-capacity sliding window over the incoming mono
// sample stream. Samples are kept oldest-first; pushing onto a full buffer
// evicts the oldest sample (strict FIFO). Advancing by the hop size between
// analysis cycles produces ordered, overlapping frames.
//
// SampleBuffer is owned and mutated by a single goroutine (the engine loop)
// and is not safe for concurrent use.
type SampleBuffer struct {
	data  []float32 // ring storage, len == capacity
	head  int       // index of the oldest sample
	size  int       // current number of samples
	frame []float32 // reusable linearized view for Snapshot
}

// NewSampleBuffer creates a buffer holding at most capacity samples.
func NewSampleBuffer(capacity int) *SampleBuffer {
	return &SampleBuffer{
		data:  make([]float32, capacity),
		frame: make([]float32, capacity),
	}
}

// Push appends one sample, evicting the oldest if the buffer is full.
func (b *SampleBuffer) Push(sample float32) {
	tail := (b.head + b.size) % len(b.data)
	b.data[tail] = sample
	if b.size < len(b.data) {
		b.size++
		return
	}
	// Full: the slot we just wrote was the oldest sample.
	b.head = (b.head + 1) % len(b.data)
}

// Ready reports whether a full analysis window is available.
func (b *SampleBuffer) Ready() bool {
	return b.size >= len(b.data)
}

// Len returns the current number of buffered samples.
func (b *SampleBuffer) Len() int {
	return b.size
}

// Snapshot returns the current full window, oldest-first, without mutating
// the buffer. The returned slice is reused by subsequent calls; callers must
// consume it before the next Snapshot. Caller must check Ready first.
func (b *SampleBuffer) Snapshot() []float32 {
	n := copy(b.frame, b.data[b.head:])
	copy(b.frame[n:], b.data[:b.head])
	return b.frame[:b.size]
}

// Advance evicts the hop oldest samples, sliding the window forward.
// Evicting more samples than are buffered empties the buffer.
func (b *SampleBuffer) Advance(hop int) {
	if hop > b.size {
		hop = b.size
	}
	b.head = (b.head + hop) % len(b.data)
	b.size -= hop
}
