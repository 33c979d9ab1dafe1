// SPDX-License-Identifier: MIT
package tuner

// SetGateThreshold adjusts the RMS amplitude gate. The value is clamped to
// 0.0-1.0 where 0 passes everything and 1 passes nothing.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	e.estimator.SetThreshold(threshold)
}

// GateThreshold returns the current RMS amplitude gate in the range 0.0-1.0.
func (e *Engine) GateThreshold() float64 {
	return e.estimator.Threshold()
}
