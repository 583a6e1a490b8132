package synth

import (
	"math"
	"testing"
)

func TestNewEnvelopeRejectsBadParams(t *testing.T) {
	for _, tc := range []struct {
		name    string
		attack  int
		decay   int
		sustain float64
		release int
	}{
		{"negative attack", -1, 10, 0.5, 10},
		{"negative decay", 10, -1, 0.5, 10},
		{"negative release", 10, 10, 0.5, -1},
		{"sustain above range", 10, 10, 1.5, 10},
		{"sustain below range", 10, 10, -0.1, 10},
		{"zero decay with partial sustain", 10, 0, 0.5, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewEnvelope(tc.attack, tc.decay, tc.sustain, tc.release); err == nil {
				t.Fatalf("expected error for a=%d d=%d s=%v r=%d", tc.attack, tc.decay, tc.sustain, tc.release)
			}
		})
	}
}

func TestEnvelopeDormantUntilReset(t *testing.T) {
	env, err := NewEnvelope(10, 10, 0.5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if !env.IsSilent() {
		t.Fatalf("new envelope should be silent")
	}
	for i := 0; i < 100; i++ {
		if v := env.Advance(); v != 0 {
			t.Fatalf("dormant envelope produced %v at sample %d", v, i)
		}
	}
	env.Reset()
	if env.IsSilent() {
		t.Fatalf("reset envelope should not report silent")
	}
	if env.Advance() <= 0 {
		t.Fatalf("attack should raise the value on the first sample")
	}
}

func TestEnvelopeADSRShape(t *testing.T) {
	const (
		attack  = 100
		decay   = 200
		sustain = 0.5
		release = 300
	)
	env, err := NewEnvelope(attack, decay, sustain, release)
	if err != nil {
		t.Fatal(err)
	}
	env.Reset()

	var v float64
	for i := 0; i < attack; i++ {
		v = env.Advance()
	}
	if math.Abs(v-1.0) > 1e-9 {
		t.Fatalf("end of attack: got %v, want 1.0", v)
	}
	for i := 0; i < decay; i++ {
		v = env.Advance()
	}
	if math.Abs(v-sustain) > 1e-9 {
		t.Fatalf("end of decay: got %v, want %v", v, sustain)
	}
	for i := 0; i < 1000; i++ {
		v = env.Advance()
	}
	if v != sustain {
		t.Fatalf("sustain hold: got %v, want exactly %v", v, sustain)
	}

	// the release ramp falls 1/release per sample regardless of the value
	// it starts from, so from 0.5 it reaches zero in release/2 samples
	env.Release()
	for i := 0; i < release/4; i++ {
		v = env.Advance()
	}
	if math.Abs(v-sustain/2) > 1e-9 {
		t.Fatalf("mid-release: got %v, want %v", v, sustain/2)
	}
	for i := 0; i < release; i++ {
		v = env.Advance()
	}
	if v != 0 || !env.IsSilent() {
		t.Fatalf("after release: value %v silent %v, want exactly 0 and silent", v, env.IsSilent())
	}
}

func TestEnvelopeZeroSustainGoesDormant(t *testing.T) {
	env, err := NewEnvelope(10, 10, 0, 5)
	if err != nil {
		t.Fatal(err)
	}
	env.Reset()
	for i := 0; i < 21; i++ {
		env.Advance()
	}
	if !env.IsSilent() {
		t.Fatalf("zero-sustain envelope should fall dormant after attack+decay, value %v", env.Value())
	}
}

func TestEnvelopeReleaseMidAttack(t *testing.T) {
	env, err := NewEnvelope(1000, 100, 0.5, 50)
	if err != nil {
		t.Fatal(err)
	}
	env.Reset()
	for i := 0; i < 100; i++ {
		env.Advance()
	}
	peak := env.Value()
	if math.Abs(peak-0.1) > 1e-9 {
		t.Fatalf("mid-attack value %v, want 0.1", peak)
	}
	// the fixed release step may cross zero before the state machine pins
	// the value to exactly 0.0, so the floor for the next sample is 0
	env.Release()
	prev := peak
	for i := 0; i < 200 && !env.IsSilent(); i++ {
		v := env.Advance()
		ceiling := prev
		if ceiling < 0 {
			ceiling = 0
		}
		if v > ceiling {
			t.Fatalf("release should not rise: %v after %v", v, prev)
		}
		prev = v
	}
	if !env.IsSilent() {
		t.Fatalf("release from mid-attack never reached silence")
	}
}

func TestEnvelopeZeroLengthStagesSnap(t *testing.T) {
	env, err := NewEnvelope(0, 0, 1.0, 0)
	if err != nil {
		t.Fatal(err)
	}
	env.Reset()
	if v := env.Advance(); v != 1.0 {
		t.Fatalf("zero attack should reach 1.0 in one sample, got %v", v)
	}
	env.Release()
	env.Advance()
	env.Advance()
	if !env.IsSilent() {
		t.Fatalf("zero release should silence within two samples")
	}
}

func TestEnvelopeResetDiscardsRelease(t *testing.T) {
	env, err := NewEnvelope(10, 10, 0.5, 1000)
	if err != nil {
		t.Fatal(err)
	}
	env.Reset()
	for i := 0; i < 30; i++ {
		env.Advance()
	}
	env.Release()
	env.Advance()
	env.Reset()
	v1 := env.Advance()
	if v1 <= 0 {
		t.Fatalf("retriggered envelope should restart attack, got %v", v1)
	}
	if v2 := env.Advance(); v2 <= v1 {
		t.Fatalf("attack should keep rising after retrigger: %v then %v", v1, v2)
	}
}
