package synth

import "fmt"

// Envelope is a linear ADSR amplitude envelope advanced one sample at a time.
//
// It starts dormant and produces 0.0 until Reset arms it. Attack ramps to 1.0
// over the attack length, decay ramps down to the sustain level, sustain holds
// until Release, and release ramps to 0.0 from whatever the value was when
// Release was called. A zero sustain level makes the envelope fall back to
// dormant on its own once decay completes.
type Envelope struct {
	attack  int
	decay   int
	sustain float64
	release int

	released          bool
	samplesSinceReset int // -1 while dormant
	value             float64
}

// NewEnvelope validates the stage parameters and returns a dormant envelope.
// Attack and release lengths of zero are substituted with one sample; the
// resulting one-sample ramp is the closest representable step function.
// A zero decay is only accepted together with a sustain level of 1.0, since
// the decay ramp divides by the decay length.
func NewEnvelope(attack, decay int, sustain float64, release int) (*Envelope, error) {
	if attack < 0 || decay < 0 || release < 0 {
		return nil, fmt.Errorf("envelope: negative stage length (a=%d d=%d r=%d)", attack, decay, release)
	}
	if sustain < 0 || sustain > 1 {
		return nil, fmt.Errorf("envelope: sustain level %v outside [0, 1]", sustain)
	}
	if decay == 0 && sustain < 1 {
		return nil, fmt.Errorf("envelope: zero decay requires sustain level 1.0, got %v", sustain)
	}
	if attack == 0 {
		attack = 1
	}
	if release == 0 {
		release = 1
	}
	return &Envelope{
		attack:            attack,
		decay:             decay,
		sustain:           sustain,
		release:           release,
		samplesSinceReset: -1,
	}, nil
}

// Reset re-arms the envelope at the start of attack, discarding any prior
// decay or release progress.
func (e *Envelope) Reset() {
	e.released = false
	e.samplesSinceReset = 0
	e.value = 0
}

// Release begins the release ramp from the current value. It may be called
// during any stage, including mid-attack.
func (e *Envelope) Release() {
	e.released = true
}

// Advance consumes one sample tick and returns the new amplitude.
func (e *Envelope) Advance() float64 {
	if e.samplesSinceReset == -1 {
		return 0
	}
	e.samplesSinceReset++
	switch {
	case e.released:
		if e.value > 0 {
			e.value -= 1 / float64(e.release)
		} else {
			e.value = 0
			e.samplesSinceReset = -1
		}
	case e.samplesSinceReset <= e.attack:
		e.value += 1 / float64(e.attack)
	case e.samplesSinceReset <= e.attack+e.decay:
		e.value -= (1 - e.sustain) / float64(e.decay)
	case e.sustain != 0:
		e.value = e.sustain
	default:
		e.value = 0
		e.samplesSinceReset = -1
	}
	return e.value
}

// Value returns the last computed amplitude without advancing.
func (e *Envelope) Value() float64 { return e.value }

// IsSilent reports whether the envelope is dormant. The value comparison is
// exact: transitions drive the value to exactly 0.0, never merely close.
func (e *Envelope) IsSilent() bool {
	return e.samplesSinceReset == -1 && e.value == 0
}
