package opfm

import (
	"fmt"

	"github.com/tonefall/opfm-go/internal/meter"
	"github.com/tonefall/opfm-go/internal/route"
	"github.com/tonefall/opfm-go/internal/synth"
)

// Recorder captures one stereo pair out of an interleaved multichannel
// float32 stream into a contiguous take, while remapping the same pair
// onto the first two channels of a monitor buffer and tracking per-channel
// activity. The take has a fixed capacity; once full, further frames are
// dropped.
type Recorder struct {
	channels int
	inL, inR int
	chanSum  []float32
	take     []float32
	frames   int
	scratch  []float32
	levels   *meter.Meter
}

func NewRecorder(channels, inL, inR, maxFrames int) (*Recorder, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("recorder: channel count must be positive, got %d", channels)
	}
	if inL < 0 || inL >= channels || inR < 0 || inR >= channels {
		return nil, fmt.Errorf("recorder: input pair %d/%d out of range for %d channels", inL, inR, channels)
	}
	if maxFrames <= 0 {
		return nil, fmt.Errorf("recorder: capacity must be positive, got %d frames", maxFrames)
	}
	return &Recorder{
		channels: channels,
		inL:      inL,
		inR:      inR,
		chanSum:  make([]float32, channels),
		take:     make([]float32, maxFrames*2),
		levels:   meter.New(maxFrames * 2),
	}, nil
}

// Feed consumes one device buffer: the selected pair lands on the monitor
// buffer's first two channels with every other monitor channel zeroed, the
// per-channel activity sums are updated, and the pair is appended to the
// take. monitor must have the same channel layout as in. Returns the
// number of frames appended; fewer than fed means the take is full.
func (r *Recorder) Feed(in, monitor []float32) int {
	route.Remap(in, r.inL, r.inR, monitor, 0, 1, r.chanSum)
	n := route.CopyStereo(in, r.channels, r.inL, r.inR, r.take, r.frames*2)
	r.frames += n
	return n
}

// FeedInt16 appends a rendered stereo int16 buffer, converting to the
// -1.0..1.0 float range. Only valid on two-channel recorders; it is the
// bridge from a Player sample tap to the recording path.
func (r *Recorder) FeedInt16(in []int16) int {
	if r.channels != 2 {
		return 0
	}
	if cap(r.scratch) < len(in) {
		r.scratch = make([]float32, len(in))
	}
	f := r.scratch[:len(in)]
	for i, s := range in {
		f[i] = float32(s) / synth.MaxSample
	}
	n := route.CopyStereo(f, 2, 0, 1, r.take, r.frames*2)
	for i := 0; i+1 < len(f); i += 2 {
		l, rr := f[i], f[i+1]
		if l < 0 {
			l = -l
		}
		if rr < 0 {
			rr = -rr
		}
		r.chanSum[0] += l
		r.chanSum[1] += rr
	}
	r.frames += n
	return n
}

// Take returns the recorded stereo samples so far. The slice aliases the
// recorder's buffer; copy it before feeding more audio if it must not move.
func (r *Recorder) Take() []float32 {
	return r.take[:r.frames*2]
}

// Frames returns the number of stereo frames recorded.
func (r *Recorder) Frames() int { return r.frames }

// Full reports whether the take has reached capacity.
func (r *Recorder) Full() bool { return r.frames*2 >= len(r.take) }

// ChannelActivity returns the running per-input-channel sum of absolute
// sample values, the silence-detection quantity for each channel.
func (r *Recorder) ChannelActivity() []float32 {
	out := make([]float32, len(r.chanSum))
	copy(out, r.chanSum)
	return out
}

// Peak returns the largest absolute sample value in the take.
func (r *Recorder) Peak() float32 { return r.levels.Peak(r.Take()) }

// RMS returns the root mean square level of the take.
func (r *Recorder) RMS() float32 { return r.levels.RMS(r.Take()) }
