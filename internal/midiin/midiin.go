// Package midiin connects a system MIDI input port to a note sink.
package midiin

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// NoteSink receives note events decoded from the MIDI stream.
type NoteSink interface {
	NoteOnKey(key uint8, velocity uint8)
	NoteOffKey(key uint8)
	AllNotesOff()
}

type Input struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
	sink   NoteSink
}

// Open connects to the first MIDI input whose name starts with namePrefix.
// An empty prefix matches the first available input.
func Open(namePrefix string, sink NoteSink) (*Input, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("initializing MIDI driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("listing MIDI inputs: %w", err)
	}
	var in drivers.In
	for _, candidate := range ins {
		if strings.HasPrefix(candidate.String(), namePrefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		if namePrefix == "" {
			return nil, errors.New("no MIDI inputs available")
		}
		return nil, fmt.Errorf("no MIDI input starting with %q", namePrefix)
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input %s: %w", in, err)
	}
	input := &Input{driver: driver, in: in, sink: sink}
	stop, err := midi.ListenTo(in, input.handleMessage)
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("listening on MIDI input %s: %w", in, err)
	}
	input.stop = stop
	return input, nil
}

// Ports lists the names of the available MIDI input ports.
func Ports() ([]string, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("initializing MIDI driver: %w", err)
	}
	defer driver.Close()
	ins, err := driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("listing MIDI inputs: %w", err)
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func (i *Input) Name() string { return i.in.String() }

func (i *Input) handleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		i.sink.NoteOnKey(key, velocity)
	case msg.GetNoteOff(&channel, &key, &velocity):
		i.sink.NoteOffKey(key)
	default:
		var controller, value uint8
		if msg.GetControlChange(&channel, &controller, &value) && controller == 123 {
			i.sink.AllNotesOff()
		}
	}
}

func (i *Input) Close() {
	if i.stop != nil {
		i.stop()
	}
	if i.in != nil && i.in.IsOpen() {
		i.in.Close()
	}
	if i.driver != nil {
		i.driver.Close()
	}
}
