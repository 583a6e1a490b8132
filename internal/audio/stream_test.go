package audio

import (
	"errors"
	"io"
	"testing"
)

type rampSource struct {
	next int16
}

func (s *rampSource) Process(dst []int16) error {
	for i := range dst {
		dst[i] = s.next
		s.next++
	}
	return nil
}

type finiteSource struct {
	rampSource
	calls, limit int
}

func (s *finiteSource) Process(dst []int16) error {
	s.calls++
	return s.rampSource.Process(dst)
}

func (s *finiteSource) Finished() bool { return s.calls >= s.limit }

type failingSource struct{}

func (failingSource) Process(dst []int16) error { return errors.New("boom") }

func TestStreamReaderEncodesLittleEndian(t *testing.T) {
	r := NewStreamReader(&rampSource{next: 255})
	p := make([]byte, 8) // two stereo frames
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Fatalf("read %d bytes, want 8", n)
	}
	want := []byte{0xFF, 0x00, 0x00, 0x01, 0x01, 0x01, 0x02, 0x01} // 255, 256, 257, 258
	for i := range want {
		if p[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, p[i], want[i])
		}
	}
}

func TestStreamReaderWholeFramesOnly(t *testing.T) {
	r := NewStreamReader(&rampSource{})
	n, err := r.Read(make([]byte, 3))
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("read %d bytes from sub-frame request, want 0", n)
	}

	n, err = r.Read(make([]byte, 11)) // two whole frames plus change
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Fatalf("read %d bytes, want 8", n)
	}
}

func TestStreamReaderReportsEOFWhenSourceFinishes(t *testing.T) {
	r := NewStreamReader(&finiteSource{limit: 2})
	p := make([]byte, 16)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("first read: %v", err)
	}
	n, err := r.Read(p)
	if err != io.EOF {
		t.Fatalf("second read err = %v, want io.EOF", err)
	}
	if n != 16 {
		t.Fatalf("final read returned %d bytes, want 16", n)
	}
}

func TestStreamReaderPropagatesSourceError(t *testing.T) {
	r := NewStreamReader(failingSource{})
	if _, err := r.Read(make([]byte, 8)); err == nil {
		t.Fatalf("expected source error")
	}
}
