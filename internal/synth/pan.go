package synth

// CalculatePanning expands a monophonic buffer into interleaved stereo using
// a linear pan law: pan -1.0 is hard left, 0.0 center, +1.0 hard right.
// The law is linear, not constant-power: downstream mixing depends on L+R
// summing back to the original sample.
//
// stereo must hold at least 2*frames samples and mono at least frames.
func CalculatePanning(pan float64, mono, stereo []int16, frames int) {
	left := (-pan + 1) / 2
	right := (pan + 1) / 2
	for i := 0; i < frames; i++ {
		m := float64(mono[i])
		stereo[2*i] = Saturate(left * m)
		stereo[2*i+1] = Saturate(right * m)
	}
}

// CalculateAutoPanning is the signal-driven variant: the pan position for
// each frame is read from a panner buffer, full scale mapping to the -1..+1
// pan range. Feeding an operator's output as the panner sweeps the sound
// across the stereo field at audio rate.
func CalculateAutoPanning(panner, mono, stereo []int16, frames int) {
	for i := 0; i < frames; i++ {
		pan := float64(panner[i]) / MaxSample
		m := float64(mono[i])
		stereo[2*i] = Saturate((-pan + 1) / 2 * m)
		stereo[2*i+1] = Saturate((pan + 1) / 2 * m)
	}
}
