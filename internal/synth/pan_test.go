package synth

import "testing"

func TestCalculatePanningLaw(t *testing.T) {
	mono := []int16{1000, -1000, 32767, -32767}
	stereo := make([]int16, 8)
	for _, tc := range []struct {
		name  string
		pan   float64
		left  []int16
		right []int16
	}{
		{"hard left", -1, []int16{1000, -1000, 32767, -32767}, []int16{0, 0, 0, 0}},
		{"center", 0, []int16{500, -500, 16383, -16383}, []int16{500, -500, 16383, -16383}},
		{"hard right", 1, []int16{0, 0, 0, 0}, []int16{1000, -1000, 32767, -32767}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			CalculatePanning(tc.pan, mono, stereo, len(mono))
			for i := range mono {
				if stereo[2*i] != tc.left[i] || stereo[2*i+1] != tc.right[i] {
					t.Fatalf("frame %d: got L=%d R=%d, want L=%d R=%d",
						i, stereo[2*i], stereo[2*i+1], tc.left[i], tc.right[i])
				}
			}
		})
	}
}

// The linear law keeps L+R within truncation error of the source sample at
// any pan position, which is what lets carrier mixes survive panning.
func TestCalculatePanningPreservesSum(t *testing.T) {
	mono := []int16{0, 777, -777, 12345, -12345, 32767, -32767}
	stereo := make([]int16, len(mono)*2)
	for _, pan := range []float64{-1, -0.7, -0.25, 0, 0.3, 0.9, 1} {
		CalculatePanning(pan, mono, stereo, len(mono))
		for i, m := range mono {
			sum := int(stereo[2*i]) + int(stereo[2*i+1])
			diff := sum - int(m)
			if diff < -2 || diff > 2 {
				t.Fatalf("pan %v frame %d: L+R=%d, want %d", pan, i, sum, m)
			}
		}
	}
}

func TestCalculateAutoPanning(t *testing.T) {
	mono := []int16{1000, 1000, 1000}
	panner := []int16{-32767, 0, 32767}
	stereo := make([]int16, 6)
	CalculateAutoPanning(panner, mono, stereo, 3)

	if stereo[0] != 1000 || stereo[1] != 0 {
		t.Fatalf("panner full left: got L=%d R=%d", stereo[0], stereo[1])
	}
	if stereo[2] != 500 || stereo[3] != 500 {
		t.Fatalf("panner center: got L=%d R=%d", stereo[2], stereo[3])
	}
	if stereo[4] != 0 || stereo[5] != 1000 {
		t.Fatalf("panner full right: got L=%d R=%d", stereo[4], stereo[5])
	}
}
