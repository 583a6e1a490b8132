package midiin

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

type recordingSink struct {
	ons  []uint8
	vels []uint8
	offs []uint8
	all  int
}

func (s *recordingSink) NoteOnKey(key uint8, velocity uint8) {
	s.ons = append(s.ons, key)
	s.vels = append(s.vels, velocity)
}

func (s *recordingSink) NoteOffKey(key uint8) { s.offs = append(s.offs, key) }
func (s *recordingSink) AllNotesOff()         { s.all++ }

func TestHandleMessageDispatch(t *testing.T) {
	sink := &recordingSink{}
	in := &Input{sink: sink}

	in.handleMessage(midi.NoteOn(0, 60, 100), 0)
	in.handleMessage(midi.NoteOn(3, 64, 80), 5)
	in.handleMessage(midi.NoteOff(0, 60), 10)
	in.handleMessage(midi.ControlChange(0, 123, 0), 15)
	in.handleMessage(midi.ControlChange(0, 1, 64), 20)  // mod wheel, ignored
	in.handleMessage(midi.Pitchbend(0, 1024), 25)       // ignored

	if len(sink.ons) != 2 || sink.ons[0] != 60 || sink.ons[1] != 64 {
		t.Fatalf("note-ons = %v, want [60 64]", sink.ons)
	}
	if sink.vels[0] != 100 || sink.vels[1] != 80 {
		t.Fatalf("velocities = %v, want [100 80]", sink.vels)
	}
	if len(sink.offs) != 1 || sink.offs[0] != 60 {
		t.Fatalf("note-offs = %v, want [60]", sink.offs)
	}
	if sink.all != 1 {
		t.Fatalf("all-notes-off fired %d times, want 1", sink.all)
	}
}
