package synth

import (
	"fmt"
	"math"
)

// NoteToPitch converts a MIDI note number to a frequency in Hz (A4 = 440).
func NoteToPitch(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

// Synthesizer drives a pool of polyphonic voices: round-robin note
// assignment, a static pan position per voice spread across the stereo
// field, and an equal-weight stereo mixdown. Rendering is single-threaded
// and pull-based; all working buffers are allocated at construction.
type Synthesizer struct {
	sampleRate int
	chunk      int
	voices     []*Voice
	pans       []float64
	mixDown    float64

	noteOnCount int
	held        map[uint8]int

	mono   []int16
	stereo []int16
	sum    []float64
}

// NewSynthesizer takes ownership of the voices. chunkFrames is the internal
// render granularity; Process calls of any length are split into chunks of
// at most this many frames.
func NewSynthesizer(voices []*Voice, sampleRate, chunkFrames int) (*Synthesizer, error) {
	if len(voices) == 0 {
		return nil, fmt.Errorf("synth: needs at least one voice")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("synth: sample rate must be positive, got %d", sampleRate)
	}
	if chunkFrames <= 0 {
		return nil, fmt.Errorf("synth: chunk length must be positive, got %d", chunkFrames)
	}
	polyphony := len(voices)
	pans := make([]float64, polyphony)
	for i := range pans {
		if polyphony > 1 {
			pans[i] = 2*float64(i)/float64(polyphony-1) - 1
		}
	}
	return &Synthesizer{
		sampleRate: sampleRate,
		chunk:      chunkFrames,
		voices:     voices,
		pans:       pans,
		mixDown:    1 / float64(polyphony),
		held:       make(map[uint8]int),
		mono:       make([]int16, chunkFrames),
		stereo:     make([]int16, chunkFrames*2),
		sum:        make([]float64, chunkFrames*2),
	}, nil
}

// SampleRate returns the configured sample rate in Hz.
func (s *Synthesizer) SampleRate() int { return s.sampleRate }

// Polyphony returns the number of voices.
func (s *Synthesizer) Polyphony() int { return len(s.voices) }

// NoteOn assigns the next voice round-robin and returns its index.
func (s *Synthesizer) NoteOn(pitch, velocity float64) int {
	idx := s.noteOnCount % len(s.voices)
	s.noteOnCount++
	s.voices[idx].NoteOn(pitch, velocity)
	return idx
}

// NoteOff releases the given voice.
func (s *Synthesizer) NoteOff(voice int) {
	if voice >= 0 && voice < len(s.voices) {
		s.voices[voice].NoteOff(0, 0)
	}
}

// NoteOnKey handles a MIDI note-on: key to Hz, 0-127 velocity to 0.0-1.0.
// A key already held is released first so its voice can be re-tracked.
func (s *Synthesizer) NoteOnKey(key, velocity uint8) {
	if prev, ok := s.held[key]; ok {
		s.NoteOff(prev)
	}
	v := float64(velocity) / 127
	if v > 1 {
		v = 1
	}
	s.held[key] = s.NoteOn(NoteToPitch(int(key)), v)
}

// NoteOffKey handles a MIDI note-off for a tracked key. Unknown keys are
// ignored.
func (s *Synthesizer) NoteOffKey(key uint8) {
	if voice, ok := s.held[key]; ok {
		delete(s.held, key)
		s.NoteOff(voice)
	}
}

// AllNotesOff releases every voice and clears key tracking.
func (s *Synthesizer) AllNotesOff() {
	for i := range s.voices {
		s.voices[i].NoteOff(0, 0)
	}
	s.held = make(map[uint8]int)
}

// ActiveVoiceCount returns the number of voices still sounding, release
// tails included.
func (s *Synthesizer) ActiveVoiceCount() int {
	n := 0
	for _, v := range s.voices {
		if !v.IsSilent() {
			n++
		}
	}
	return n
}

// Process fills dst with interleaved stereo samples. len(dst) must be even;
// arbitrary even lengths are rendered in internal-chunk-sized pieces so the
// per-voice buffers never grow.
func (s *Synthesizer) Process(dst []int16) error {
	if len(dst)%2 != 0 {
		return fmt.Errorf("output buffer length %d is not a whole number of stereo frames", len(dst))
	}
	for len(dst) >= 2 {
		frames := len(dst) / 2
		if frames > s.chunk {
			frames = s.chunk
		}
		if err := s.renderChunk(dst[:frames*2], frames); err != nil {
			return err
		}
		dst = dst[frames*2:]
	}
	return nil
}

func (s *Synthesizer) renderChunk(dst []int16, frames int) error {
	sum := s.sum[:frames*2]
	for i := range sum {
		sum[i] = 0
	}
	for i, v := range s.voices {
		if v.IsSilent() {
			continue
		}
		if err := v.RenderChunk(s.mono[:frames]); err != nil {
			return err
		}
		CalculatePanning(s.pans[i], s.mono, s.stereo, frames)
		for j := 0; j < frames*2; j++ {
			sum[j] += s.mixDown * float64(s.stereo[j])
		}
	}
	for j := range dst {
		dst[j] = Saturate(sum[j])
	}
	return nil
}
