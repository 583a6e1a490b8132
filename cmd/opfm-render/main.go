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
	"github.com/tonefall/opfm-go/internal/audio"
	"github.com/tonefall/opfm-go/internal/meter"
	"github.com/tonefall/opfm-go/internal/patch"
)

func main() {
	var (
		patchPath = flag.String("patch", "", "path to a YAML patch file (built-in default patch when empty)")
		seconds   = flag.Float64("seconds", 2.0, "length of the rendered file")
		output    = flag.String("o", "out.wav", "output WAV path")
		notes     = flag.String("notes", "60", "space-separated MIDI note numbers, started evenly across the first half")
		velocity  = flag.Int("velocity", 100, "MIDI velocity for every note (1-127)")
		audition  = flag.Bool("play", false, "play the render on the audio device after writing it")
	)
	flag.Parse()

	pt := patch.Default()
	if *patchPath != "" {
		loaded, err := patch.LoadFile(*patchPath)
		if err != nil {
			log.Fatal(err)
		}
		pt = loaded
	}
	pt.Normalize()

	if *seconds <= 0 {
		log.Fatal("-seconds must be positive")
	}
	if *velocity < 1 || *velocity > 127 {
		log.Fatal("-velocity must be 1-127")
	}
	keys, err := parseNotes(*notes)
	if err != nil {
		log.Fatal(err)
	}

	frames := int(float64(pt.SampleRate) * *seconds)
	events := scheduleNotes(keys, uint8(*velocity), frames)
	samples, err := opfm.RenderEvents(pt, events, frames)
	if err != nil {
		log.Fatal(err)
	}

	wav := opfm.EncodeWAVInt16LE(samples, pt.SampleRate, 2)
	if err := os.WriteFile(*output, wav, 0o644); err != nil {
		log.Fatal(err)
	}

	f := make([]float32, len(samples))
	for i, s := range samples {
		f[i] = float32(s) / 32767
	}
	levels := meter.New(len(f))
	fmt.Printf("wrote %s: %d frames at %d Hz, peak %.3f rms %.3f\n",
		*output, frames, pt.SampleRate, levels.Peak(f), levels.RMS(f))

	if *audition {
		if err := playBuffer(samples, pt.SampleRate); err != nil {
			log.Fatal(err)
		}
	}
}

// bufferSource streams a fully rendered buffer and reports when it runs out.
type bufferSource struct {
	samples []int16
	pos     int
}

func (s *bufferSource) Process(dst []int16) error {
	n := copy(dst, s.samples[s.pos:])
	s.pos += n
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

func (s *bufferSource) Finished() bool { return s.pos >= len(s.samples) }

func playBuffer(samples []int16, sampleRate int) error {
	src := &bufferSource{samples: samples}
	ap, err := audio.NewPlayer(sampleRate, src)
	if err != nil {
		return err
	}
	ap.Play()
	for ap.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
	return ap.Stop()
}

// scheduleNotes spreads note-ons evenly across the first half of the render
// and releases every note at the halfway point, leaving the second half for
// release tails.
func scheduleNotes(keys []uint8, velocity uint8, frames int) []opfm.NoteEvent {
	half := frames / 2
	step := half / len(keys)
	events := make([]opfm.NoteEvent, 0, len(keys)*2)
	for i, key := range keys {
		events = append(events, opfm.NoteEvent{Frame: i * step, On: true, Key: key, Velocity: velocity})
	}
	for _, key := range keys {
		events = append(events, opfm.NoteEvent{Frame: half, Key: key})
	}
	return events
}

func parseNotes(line string) ([]uint8, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("-notes must name at least one MIDI note")
	}
	keys := make([]uint8, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 127 {
			return nil, fmt.Errorf("invalid MIDI note %q", f)
		}
		keys = append(keys, uint8(n))
	}
	return keys, nil
}
