package route

import "testing"

// frames builds an interleaved buffer from per-frame channel values.
func frames(rows ...[]float32) []float32 {
	var buf []float32
	for _, row := range rows {
		buf = append(buf, row...)
	}
	return buf
}

func TestRemapSelectsAndZeroes(t *testing.T) {
	in := frames(
		[]float32{0.1, 0.2, 0.3, 0.4},
		[]float32{-0.1, -0.2, -0.3, -0.4},
	)
	out := make([]float32, len(in))
	for i := range out {
		out[i] = 99 // stale data must be overwritten
	}
	chanSum := make([]float32, 4)

	// route input channels 2/3 to output channels 0/1
	Remap(in, 2, 3, out, 0, 1, chanSum)

	want := frames(
		[]float32{0.3, 0.4, 0, 0},
		[]float32{-0.3, -0.4, 0, 0},
	)
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRemapAccumulatesChannelActivity(t *testing.T) {
	in := frames(
		[]float32{0.5, -0.5, 0, 1},
		[]float32{0.5, -0.5, 0, 1},
	)
	out := make([]float32, len(in))
	chanSum := make([]float32, 4)

	Remap(in, 0, 1, out, 0, 1, chanSum)
	Remap(in, 0, 1, out, 0, 1, chanSum) // sums keep accumulating across calls

	want := []float32{2, 2, 0, 4}
	for ch, sum := range chanSum {
		if sum != want[ch] {
			t.Fatalf("chanSum[%d] = %v, want %v", ch, sum, want[ch])
		}
	}
}

func TestRemapStopsAtShorterBuffer(t *testing.T) {
	in := frames(
		[]float32{1, 2},
		[]float32{3, 4},
		[]float32{5, 6},
	)
	out := make([]float32, 4) // room for two frames only
	chanSum := make([]float32, 2)

	Remap(in, 0, 1, out, 0, 1, chanSum)

	if out[0] != 1 || out[1] != 2 || out[2] != 3 || out[3] != 4 {
		t.Fatalf("unexpected out: %v", out)
	}
	// the third input frame is past the output and must not be metered
	if chanSum[0] != 4 || chanSum[1] != 6 {
		t.Fatalf("unexpected chanSum: %v", chanSum)
	}
}

func TestRemapEmptyChanSum(t *testing.T) {
	// no channels described: must not touch anything
	out := []float32{7}
	Remap([]float32{1}, 0, 0, out, 0, 0, nil)
	if out[0] != 7 {
		t.Fatalf("out modified with zero channel count")
	}
}

func TestCopyStereo(t *testing.T) {
	in := frames(
		[]float32{1, 2, 3, 4},
		[]float32{5, 6, 7, 8},
	)
	out := make([]float32, 6)

	n := CopyStereo(in, 4, 1, 3, out, 0)
	if n != 2 {
		t.Fatalf("frames copied = %d, want 2", n)
	}
	want := []float32{2, 4, 6, 8, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestCopyStereoAppendsAtOffset(t *testing.T) {
	in := frames([]float32{1, 2, 3, 4})
	out := make([]float32, 6)
	if n := CopyStereo(in, 4, 0, 1, out, 2); n != 1 {
		t.Fatalf("frames copied = %d, want 1", n)
	}
	if out[0] != 0 || out[1] != 0 || out[2] != 1 || out[3] != 2 {
		t.Fatalf("unexpected out: %v", out)
	}
}

func TestCopyStereoTruncatesSilently(t *testing.T) {
	in := frames(
		[]float32{1, 2},
		[]float32{3, 4},
		[]float32{5, 6},
	)
	out := make([]float32, 4)
	if n := CopyStereo(in, 2, 0, 1, out, 0); n != 2 {
		t.Fatalf("frames copied = %d, want 2", n)
	}
	if n := CopyStereo(in, 2, 0, 1, out, 4); n != 0 {
		t.Fatalf("full output should copy 0 frames, got %d", n)
	}
}

func TestCopyStereoRejectsBadArguments(t *testing.T) {
	in := make([]float32, 8)
	out := make([]float32, 8)
	for _, tc := range []struct {
		name                string
		channels, inL, inR  int
		offset              int
	}{
		{"zero channels", 0, 0, 0, 0},
		{"left out of range", 2, 2, 0, 0},
		{"right out of range", 2, 0, 5, 0},
		{"negative channel", 2, -1, 0, 0},
		{"negative offset", 2, 0, 1, -2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if n := CopyStereo(in, tc.channels, tc.inL, tc.inR, out, tc.offset); n != 0 {
				t.Fatalf("copied %d frames, want 0", n)
			}
		})
	}
}
