// Package waves builds single-cycle signed 16-bit wavetables.
package waves

import (
	"math"

	"github.com/tonefall/opfm-go/internal/synth"
)

// Sine returns one full-scale sine cycle across n samples.
func Sine(n int) []int16 {
	table := make([]int16, n)
	for i := range table {
		table[i] = int16(math.Round(synth.MaxSample * math.Sin(float64(i)/float64(n)*2*math.Pi)))
	}
	return table
}

// Sine12 returns one cycle of a 1+2 sine: a sine mixed equally with its
// first harmonic.
func Sine12(n int) []int16 {
	table := make([]int16, n)
	for i := range table {
		x := float64(i) / float64(n) * 2 * math.Pi
		table[i] = int16(math.Round(synth.MaxSample * (0.5*math.Sin(x) + 0.5*math.Sin(2*x))))
	}
	return table
}

// Saw returns one sawtooth cycle in phase with Sine. n must be even.
func Saw(n int) []int16 {
	half := n / 2
	table := make([]int16, 0, 2*half)
	for i := 0; i < half; i++ {
		table = append(table, int16(math.Round(float64(i)/float64(n)*(2*synth.MaxSample))))
	}
	for i := 0; i < half; i++ {
		table = append(table, int16(math.Round(-synth.MaxSample+float64(i)/float64(n)*(2*synth.MaxSample))))
	}
	return table
}

// Pulse returns one square pulse cycle in phase with Sine. n must be even.
func Pulse(n int) []int16 {
	half := n / 2
	table := make([]int16, 2*half)
	for i := 0; i < half; i++ {
		table[i] = synth.MaxSample
		table[half+i] = -synth.MaxSample
	}
	return table
}
