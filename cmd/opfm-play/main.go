package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tonefall/opfm-go"
)

// A demo line is a space-separated list of MIDI note numbers, played as an
// arpeggio when no MIDI port is connected.
const defaultDemo = "60 64 67 72 67 64"

func main() {
	var (
		patchPath = flag.String("patch", "", "path to a YAML patch file (built-in default patch when empty)")
		midiPort  = flag.String("midi", "", "MIDI input port name prefix (empty prefix with -midi-first matches the first port)")
		midiFirst = flag.Bool("midi-first", false, "connect to the first available MIDI input")
		listMIDI  = flag.Bool("list-midi", false, "list MIDI input ports and exit")
		seconds   = flag.Float64("seconds", 0, "stop after this many seconds (0 = play until interrupted)")
		demo      = flag.String("demo", "", "space-separated MIDI note numbers to arpeggiate (used when no MIDI port)")
		noteLen   = flag.Duration("note-length", 300*time.Millisecond, "demo note duration")
		capture   = flag.String("capture", "", "record the session to a WAV file")
	)
	flag.Parse()

	if *listMIDI {
		ports, err := opfm.MIDIPorts()
		if err != nil {
			log.Fatal(err)
		}
		if len(ports) == 0 {
			fmt.Println("no MIDI inputs available")
			return
		}
		for _, name := range ports {
			fmt.Println(name)
		}
		return
	}

	opts := []opfm.PlayerOption{}
	if *patchPath != "" {
		opts = append(opts, opfm.WithPatchFile(*patchPath))
	}
	useMIDI := *midiFirst || *midiPort != ""
	if useMIDI {
		opts = append(opts, opfm.WithMIDIPort(*midiPort))
	}

	var rec *opfm.Recorder
	if *capture != "" {
		maxSeconds := *seconds
		if maxSeconds <= 0 {
			maxSeconds = 60
		}
		// the tap is installed at construction, before the patch sample
		// rate is known; size the take for up to 96 kHz
		r, err := opfm.NewRecorder(2, 0, 1, int(maxSeconds*96000))
		if err != nil {
			log.Fatal(err)
		}
		rec = r
		tap := func(buf []int16) { r.FeedInt16(buf) }
		opts = append(opts, opfm.WithSampleTap(tap))
	}

	pl, err := opfm.NewPlayer(opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	if err := pl.Play(); err != nil {
		log.Fatal(err)
	}

	if useMIDI {
		fmt.Printf("listening on %q at %d Hz, %d voices\n", pl.MIDIPortName(), pl.SampleRate(), pl.Polyphony())
		if *seconds > 0 {
			time.Sleep(time.Duration(*seconds * float64(time.Second)))
		} else {
			pl.Wait()
		}
	} else {
		notes, err := parseDemoLine(*demo)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("playing demo line at %d Hz, %d voices\n", pl.SampleRate(), pl.Polyphony())
		playDemo(pl, notes, *noteLen, *seconds)
	}

	fmt.Printf("peak %.3f rms %.3f\n", pl.Peak(), pl.RMS())
	if rec != nil {
		if err := writeCapture(*capture, rec, pl.SampleRate()); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("captured %d frames to %s (take peak %.3f)\n", rec.Frames(), *capture, rec.Peak())
	}
}

func playDemo(pl *opfm.Player, notes []uint8, noteLen time.Duration, seconds float64) {
	deadline := time.Time{}
	if seconds > 0 {
		deadline = time.Now().Add(time.Duration(seconds * float64(time.Second)))
	}
	for _, note := range notes {
		pl.NoteOnKey(note, 100)
		time.Sleep(noteLen)
		pl.NoteOffKey(note)
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
	}
	// let release tails ring out
	for pl.ActiveVoiceCount() > 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func parseDemoLine(line string) ([]uint8, error) {
	if strings.TrimSpace(line) == "" {
		line = defaultDemo
	}
	fields := strings.Fields(line)
	notes := make([]uint8, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid MIDI note %q in demo line", f)
		}
		notes = append(notes, uint8(n))
	}
	return notes, nil
}

func writeCapture(path string, rec *opfm.Recorder, sampleRate int) error {
	take := rec.Take()
	samples := make([]int16, len(take))
	for i, v := range take {
		samples[i] = clampSample(v)
	}
	return os.WriteFile(path, opfm.EncodeWAVInt16LE(samples, sampleRate, 2), 0o644)
}

func clampSample(v float32) int16 {
	s := v * 32767
	if s >= 32767 {
		return 32767
	}
	if s <= -32767 {
		return -32767
	}
	return int16(s)
}
