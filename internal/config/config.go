// SPDX-License-Identifier: MIT
package config

// Fixed DSP constants of the pitch pipeline. These are design constants,
// not runtime configuration: changing them shifts the latency/resolution
// trade-off of the whole analysis and is a code change, not a flag.
const (
	// WindowSize is the analysis frame length in samples. At 44.1 kHz a
	// 4096-sample window gives ~10.8 Hz raw bin spacing, refined well
	// below that by parabolic interpolation.
	WindowSize = 4096

	// HopSize is the number of samples the window advances between frames,
	// giving WindowSize-HopSize samples of overlap.
	HopSize = 512

	// Threshold is the RMS amplitude gate below which a frame is treated
	// as silence and the spectrum is not searched.
	Threshold = 0.05

	// ReferencePitch is the frequency of A4 in Hz (MIDI note 69).
	ReferencePitch = 440.0

	// MinFrequency is the audible floor in Hz; estimated fundamentals at
	// or below it are rejected as spurious.
	MinFrequency = 20.0

	// PacingMillis is the fixed delay between steady-state analysis
	// cycles, bounding CPU usage and report rate.
	PacingMillis = 5
)

// Defaults and limits for the capture-side runtime configuration.
const (
	DefaultChannels        = 1 // mono capture
	DefaultDeviceID        = MinDeviceID
	DefaultFramesPerBuffer = 512 // balanced latency/performance
	DefaultLowLatency      = false
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultRecord          = false
	DefaultOutputFile      = "" // auto-generated filename
	DefaultVerbose         = false

	MinDeviceID   = -1     // -1 selects the system default device
	MinSampleRate = 8000   // minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // maximum supported sample rate (Hz)
)

// Transport defaults.
const (
	DefaultWebSocketPort = "" // empty disables the WebSocket broadcaster
	DefaultUDPTarget     = "127.0.0.1:9090"
	DefaultUDPIntervalMS = 50 // latest-wins publish cadence
	DefaultUDPEnabled    = false
)

// Config holds the runtime options for the capture, recording, and
// transport layers. The pitch pipeline's own tunables are the fixed
// constants above and are deliberately not configurable here.
type Config struct {
	// Audio device settings.
	Channels        int     `yaml:"channels"`
	DeviceID        int     `yaml:"device_id"`
	FramesPerBuffer int     `yaml:"frames_per_buffer"`
	LowLatency      bool    `yaml:"low_latency"`
	SampleRate      float64 `yaml:"sample_rate"`

	// Recording options.
	Record     bool   `yaml:"record"`
	OutputFile string `yaml:"output_file"`

	// Transport options.
	WebSocketPort string `yaml:"websocket_port"`
	UDPEnabled    bool   `yaml:"udp_enabled"`
	UDPTarget     string `yaml:"udp_target"`
	UDPIntervalMS int    `yaml:"udp_interval_ms"`

	// Debug options.
	Verbose bool   `yaml:"verbose"`
	Command string `yaml:"-"` // one-off command, CLI only
	RunMode bool   `yaml:"-"` // true when the tuner loop should run
}

// NewConfig returns a Config populated with defaults, used as the base
// before applying a config file and command line flags.
func NewConfig() *Config {
	return &Config{
		Channels:        DefaultChannels,
		DeviceID:        DefaultDeviceID,
		FramesPerBuffer: DefaultFramesPerBuffer,
		LowLatency:      DefaultLowLatency,
		SampleRate:      DefaultSampleRate,
		Record:          DefaultRecord,
		OutputFile:      DefaultOutputFile,
		WebSocketPort:   DefaultWebSocketPort,
		UDPEnabled:      DefaultUDPEnabled,
		UDPTarget:       DefaultUDPTarget,
		UDPIntervalMS:   DefaultUDPIntervalMS,
		Verbose:         DefaultVerbose,
	}
}
