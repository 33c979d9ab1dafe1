// SPDX-License-Identifier: MIT
package audio

import (
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

func TestNewDevice(t *testing.T) {
	info := &portaudio.DeviceInfo{
		Name:                    "Test Mic",
		MaxInputChannels:        2,
		MaxOutputChannels:       0,
		DefaultSampleRate:       48000,
		DefaultLowInputLatency:  5 * time.Millisecond,
		DefaultHighInputLatency: 20 * time.Millisecond,
	}

	device := newDevice(3, info)

	if device.ID != 3 {
		t.Errorf("ID = %d, want 3", device.ID)
	}
	if device.Name != "Test Mic" {
		t.Errorf("Name = %q, want Test Mic", device.Name)
	}
	if device.MaxInputChannels != 2 || device.MaxOutputChannels != 0 {
		t.Errorf("channels = %d/%d, want 2/0",
			device.MaxInputChannels, device.MaxOutputChannels)
	}
	if device.DefaultSampleRate != 48000 {
		t.Errorf("DefaultSampleRate = %v, want 48000", device.DefaultSampleRate)
	}
	if device.LowInputLatency != 5*time.Millisecond {
		t.Errorf("LowInputLatency = %s, want 5ms", device.LowInputLatency)
	}
	if device.HighInputLatency != 20*time.Millisecond {
		t.Errorf("HighInputLatency = %s, want 20ms", device.HighInputLatency)
	}
}

func TestDeviceDirection(t *testing.T) {
	tests := []struct {
		name    string
		in, out int
		want    string
	}{
		{"input only", 2, 0, "Input"},
		{"output only", 0, 2, "Output"},
		{"duplex", 2, 2, "Input/Output"},
		{"no channels", 0, 0, "None"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Device{MaxInputChannels: tt.in, MaxOutputChannels: tt.out}
			if got := d.Direction(); got != tt.want {
				t.Errorf("Direction() = %q, want %q", got, tt.want)
			}
		})
	}
}
