// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"tuner/internal/analysis"
	applog "tuner/internal/log"
	"tuner/internal/tuner"
)

// packetMagic identifies pitch report packets ("PTCH").
const packetMagic = uint32(0x50544348)

// noPitchIndex is the note-index wire value for a placeholder report.
const noPitchIndex = int8(-1)

// ReportSource provides the most recent pitch report. The engine satisfies
// this; tests can substitute a stub.
type ReportSource interface {
	Latest() tuner.Report
}

// Publisher periodically fetches the latest pitch report, packs it into a
// fixed binary format, and sends it over UDP. It reads only the most
// recent report per tick and never blocks the engine: pending older
// reports are simply superseded (latest-wins).
type Publisher struct {
	sender   *Sender
	source   ReportSource
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // protects ticker and doneChan during Start/Stop

	sequenceNum  uint32
	packetBuffer *bytes.Buffer // reused across ticks
}

// NewPublisher creates a Publisher sending via sender every interval.
// An interval <= 0 defaults to 50ms.
func NewPublisher(interval time.Duration, sender *Sender, source ReportSource) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp publisher: sender cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("udp publisher: report source cannot be nil")
	}
	if interval <= 0 {
		interval = 50 * time.Millisecond
		applog.Warnf("UDP: invalid publish interval, defaulting to %s", interval)
	}

	return &Publisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, 32)),
	}, nil
}

// Start launches the publishing goroutine. Safe to call once per Stop.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		return // already running
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.ticker.C:
				if err := p.publishLatest(); err != nil {
					applog.Debugf("UDP: publish failed: %v", err)
				}
			case <-p.doneChan:
				return
			}
		}
	}()
}

// Stop terminates the publishing goroutine and waits for it.
func (p *Publisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker == nil {
		return
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
	})
	p.wg.Wait()
	p.ticker.Stop()
	p.ticker = nil
}

// publishLatest packs and sends the most recent report.
func (p *Publisher) publishLatest() error {
	report := p.source.Latest()

	p.sequenceNum++
	p.packetBuffer.Reset()
	if err := encodeReport(p.packetBuffer, p.sequenceNum, report); err != nil {
		return err
	}
	return p.sender.Send(p.packetBuffer.Bytes())
}

// encodeReport writes the binary wire form of one report:
//
//	magic      uint32
//	sequence   uint32
//	note index int8  (-1 for no pitch)
//	octave     int8
//	frequency  float32 (Hz)
//	cents      float32
//	rms        float32
//
// All fields big-endian.
func encodeReport(buf *bytes.Buffer, sequence uint32, report tuner.Report) error {
	noteIndex := noPitchIndex
	if report.Detected() {
		noteIndex = int8(analysis.PitchClassIndex(report.Note))
	}

	fields := []any{
		packetMagic,
		sequence,
		noteIndex,
		int8(report.Octave),
		float32(report.Frequency),
		float32(report.Cents),
		float32(report.RMS),
	}
	for _, f := range fields {
		if err := binary.Write(buf, binary.BigEndian, f); err != nil {
			return fmt.Errorf("failed to pack report field: %w", err)
		}
	}
	return nil
}
