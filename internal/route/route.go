// Package route moves channels around inside interleaved float32 buffers:
// monitoring remaps for playback and contiguous stereo copies for recording.
// It operates on fully-rendered audio only and never feeds back into
// synthesis.
package route

// Remap copies input channels inL and inR into output channels outL and
// outR, zero-filling every other output channel, while accumulating the
// running sum of absolute values of every input channel into chanSum. The
// accumulation happens in the same pass as the copy; callers meter silence
// and level from chanSum without touching the buffers again.
//
// The channel count is len(chanSum). Processing stops at whichever buffer
// runs out of whole frames first.
func Remap(in []float32, inL, inR int, out []float32, outL, outR int, chanSum []float32) {
	channels := len(chanSum)
	if channels == 0 {
		return
	}
	limit := len(out)
	if len(in) < limit {
		limit = len(in)
	}
	for offset := 0; offset+channels <= limit; offset += channels {
		for ch := 0; ch < channels; ch++ {
			v := in[offset+ch]
			if v < 0 {
				v = -v
			}
			chanSum[ch] += v

			switch ch {
			case outL:
				out[offset+ch] = in[offset+inL]
			case outR:
				out[offset+ch] = in[offset+inR]
			default:
				out[offset+ch] = 0
			}
		}
	}
}

// CopyStereo copies channels inL and inR of each input frame into a
// contiguous interleaved stereo buffer starting at offset (in samples).
// It stops when either buffer is exhausted and returns the number of frames
// copied; truncation is silent and out-of-bounds writes cannot happen.
func CopyStereo(in []float32, channels, inL, inR int, out []float32, offset int) int {
	if channels <= 0 || inL >= channels || inR >= channels || inL < 0 || inR < 0 {
		return 0
	}
	if offset < 0 {
		return 0
	}
	frames := 0
	for inOffset := 0; inOffset+channels <= len(in); inOffset += channels {
		if offset+2 > len(out) {
			break
		}
		out[offset] = in[inOffset+inL]
		out[offset+1] = in[inOffset+inR]
		offset += 2
		frames++
	}
	return frames
}
