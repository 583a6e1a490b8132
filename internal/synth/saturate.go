package synth

// MaxSample is the saturation ceiling for all fixed-point audio in this
// package. We want the range to be symmetrical on the + and the - side, so
// -32768 is never produced: +MaxSample and -MaxSample round-trip through
// panning and mixing without bias.
const MaxSample = 32767

// Saturate truncates v toward zero and clamps it to [-MaxSample, MaxSample].
func Saturate(v float64) int16 {
	if v >= MaxSample {
		return MaxSample
	}
	if v <= -MaxSample {
		return -MaxSample
	}
	return int16(v)
}
