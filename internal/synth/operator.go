package synth

import (
	"fmt"
	"math"
)

// Operator is a single FM voice-generating unit: a wavetable oscillator with
// a continuous phase accumulator, shaped by an Envelope and attenuated by a
// static volume and the note-on velocity.
//
// The wavetable is read-only and may be shared between operators. All mutable
// state (phase, envelope, velocity, pending reset) belongs to exactly one
// rendering goroutine; an Operator must never be driven concurrently.
type Operator struct {
	wave       []int16
	sampleRate int
	env        *Envelope
	volume     float64
	pitch      float64

	velocity     float64
	resetPending bool
	phase        float64 // continuous index into wave, persists across chunks
}

// OperatorOption configures optional Operator parameters at construction.
type OperatorOption func(*Operator)

// WithVolume sets the static attenuation (0.0-1.0). Default 1.0.
func WithVolume(v float64) OperatorOption {
	return func(o *Operator) { o.volume = v }
}

// WithPitch sets the oscillator frequency in Hz. Default 440.
func WithPitch(hz float64) OperatorOption {
	return func(o *Operator) { o.pitch = hz }
}

// NewOperator builds an operator around a single-cycle wavetable. The table
// must be non-empty; volume and pitch are validated after options apply.
func NewOperator(wave []int16, sampleRate int, env *Envelope, opts ...OperatorOption) (*Operator, error) {
	if len(wave) == 0 {
		return nil, fmt.Errorf("operator: empty wavetable")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("operator: sample rate must be positive, got %d", sampleRate)
	}
	if env == nil {
		return nil, fmt.Errorf("operator: nil envelope")
	}
	o := &Operator{
		wave:       wave,
		sampleRate: sampleRate,
		env:        env,
		volume:     1.0,
		pitch:      440.0,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.volume < 0 || o.volume > 1 {
		return nil, fmt.Errorf("operator: volume %v outside [0, 1]", o.volume)
	}
	if o.pitch <= 0 {
		return nil, fmt.Errorf("operator: pitch must be positive, got %v", o.pitch)
	}
	return o, nil
}

// NoteOn stores the new pitch and velocity and arms an envelope reset. The
// reset takes effect at the start of the next chunk, not mid-chunk; no audio
// state changes here.
func (o *Operator) NoteOn(pitch, velocity float64) {
	o.pitch = pitch
	o.velocity = velocity
	o.resetPending = true
}

// NoteOff begins the envelope release. The pitch and velocity arguments are
// accepted for signature compatibility with NoteOn dispatchers and ignored.
func (o *Operator) NoteOff(pitch, velocity float64) {
	_ = pitch
	_ = velocity
	o.env.Release()
}

// IsSilent reports whether the operator contributes nothing to its next
// chunk: no note-on pending and the envelope dormant. Drivers use this to
// skip rendering idle voices.
func (o *Operator) IsSilent() bool {
	return !o.resetPending && o.env.IsSilent()
}

// Envelope returns the operator's envelope.
func (o *Operator) Envelope() *Envelope { return o.env }

// Phase returns the current phase accumulator value.
func (o *Operator) Phase() float64 { return o.phase }

// Render produces len(out) samples of enveloped, attenuated, saturated audio,
// displacing the oscillator phase by the modulator signal. The modulator must
// cover the whole chunk. For no modulation, pass IdentityModulator output: a
// MaxSample-filled buffer displaces the phase by exactly one full cycle per
// sample, which is zero net modulation modulo the table length.
//
// A note-on armed before this call is applied after the chunk is rendered,
// so retriggers land on chunk boundaries.
func (o *Operator) Render(modulator, out []int16) error {
	if len(modulator) < len(out) {
		return fmt.Errorf("operator: modulator chunk %d shorter than output chunk %d", len(modulator), len(out))
	}
	o.phase = o.modulate(out, modulator, o.phase)
	if o.resetPending {
		o.resetPending = false
		o.env.Reset()
	}
	return nil
}

// modulate is the per-sample render loop. It returns the phase accumulator
// to use for the next chunk. While the envelope is silent the output is
// zero-filled and the phase does not advance, so a retrigger resumes the
// waveform exactly where it left off.
func (o *Operator) modulate(out, mod []int16, w float64) float64 {
	if o.env.IsSilent() {
		for i := range out {
			out[i] = 0
		}
		return w
	}
	waveLen := float64(len(o.wave))
	n := len(o.wave)
	step := waveLen * o.pitch / float64(o.sampleRate)
	gain := o.velocity * o.volume
	for i := range out {
		scaled := w + float64(mod[i])*waveLen/MaxSample
		base := math.Floor(scaled)
		frac := scaled - base
		idx := int(base) % n
		if idx < 0 {
			idx += n
		}
		next := idx + 1
		if next == n {
			next = 0
		}
		sample := (1-frac)*float64(o.wave[idx]) + frac*float64(o.wave[next])
		out[i] = Saturate(sample * gain * o.env.Advance())
		w += step
	}
	return w
}

// IdentityModulator returns a chunk of n samples that leaves a carrier
// unmodulated when used as Render input.
func IdentityModulator(n int) []int16 {
	buf := make([]int16, n)
	for i := range buf {
		buf[i] = MaxSample
	}
	return buf
}
