// Package meter computes signal levels over rendered float32 buffers.
package meter

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Meter owns the scratch space for level measurements so repeated
// measurements on the audio path do not allocate.
type Meter struct {
	tmp []float32
}

// New returns a Meter pre-sized for buffers up to n samples. Larger buffers
// grow the scratch space on first use.
func New(n int) *Meter {
	return &Meter{tmp: make([]float32, n)}
}

func (m *Meter) scratch(n int) []float32 {
	if cap(m.tmp) < n {
		m.tmp = make([]float32, n)
	}
	return m.tmp[:n]
}

// Peak returns the largest absolute sample value in buf.
func (m *Meter) Peak(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	abs := vek32.Abs_Into(m.scratch(len(buf)), buf)
	return vek32.Max(abs)
}

// SumAbs returns the sum of absolute sample values in buf, the same
// quantity the routing pass accumulates per channel.
func (m *Meter) SumAbs(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	abs := vek32.Abs_Into(m.scratch(len(buf)), buf)
	return vek32.Sum(abs)
}

// RMS returns the root mean square level of buf.
func (m *Meter) RMS(buf []float32) float32 {
	if len(buf) == 0 {
		return 0
	}
	sq := vek32.Mul_Into(m.scratch(len(buf)), buf, buf)
	return float32(math.Sqrt(float64(vek32.Mean(sq))))
}
