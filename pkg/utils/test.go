// SPDX-License-Identifier: MIT
// Package utils holds test helpers shared across packages: deterministic
// signal generators and a transport stub.
package utils

import (
	"math"
	"sync"
)

// MockTransport records everything sent through it for later inspection.
type MockTransport struct {
	mu   sync.Mutex
	Sent []any
}

// Send stores the data instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error {
	return nil
}

// Last returns the most recently sent value, or nil if nothing was sent.
func (m *MockTransport) Last() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}

// GenerateSineFrame returns size samples of amplitude*sin(2*pi*frequency*t)
// at the given sample rate.
func GenerateSineFrame(size int, sampleRate, frequency, amplitude float64) []float32 {
	frame := make([]float32, size)
	for i := range frame {
		t := float64(i) / sampleRate
		frame[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*t))
	}
	return frame
}

// GenerateComplexWave returns a 440 Hz fundamental with two weaker
// harmonics, resembling a plucked string more than a pure sine.
func GenerateComplexWave(size int, sampleRate float64) []float32 {
	frame := make([]float32, size)
	for i := range frame {
		t := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		frame[i] = float32(signal)
	}
	return frame
}
