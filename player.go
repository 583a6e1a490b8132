// Package opfm is a sample-accurate multi-operator FM synthesizer with
// phase-modulation routing, per-operator ADSR envelopes, and a polyphonic
// stereo voice pool. The root package wires the synthesis core to live
// audio output and MIDI input; offline rendering lives in offline.go.
package opfm

import (
	"errors"
	"sync"

	"github.com/tonefall/opfm-go/internal/audio"
	"github.com/tonefall/opfm-go/internal/meter"
	"github.com/tonefall/opfm-go/internal/midiin"
	"github.com/tonefall/opfm-go/internal/patch"
	"github.com/tonefall/opfm-go/internal/synth"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	patch     *patch.Patch
	patchFile string
	midiPort  string
	midi      bool
	sampleTap func([]int16)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{}
}

// WithPatch uses the given patch instead of the built-in default.
func WithPatch(p *patch.Patch) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.patch = p
	}
}

// WithPatchFile loads the patch from a YAML file.
func WithPatchFile(path string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.patchFile = path
	}
}

// WithMIDIPort connects the player to the first MIDI input whose name
// starts with namePrefix. An empty prefix matches the first available
// input.
func WithMIDIPort(namePrefix string) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.midi = true
		cfg.midiPort = namePrefix
	}
}

// WithSampleTap installs a callback invoked with each rendered stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]int16)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player renders a compiled patch to the system audio device, taking note
// events from direct calls or from a MIDI input port.
type Player struct {
	mu    sync.Mutex
	synth *synth.Synthesizer
	audio *audio.Player
	midi  *midiin.Input
	done  chan struct{}

	sampleTap func([]int16)
	levels    *meter.Meter
	levelBuf  []float32
	peak      float32
	rms       float32
}

func NewPlayer(opts ...PlayerOption) (*Player, error) {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.patch != nil && cfg.patchFile != "" {
		return nil, errors.New("WithPatch and WithPatchFile are mutually exclusive")
	}
	pt := cfg.patch
	if cfg.patchFile != "" {
		loaded, err := patch.LoadFile(cfg.patchFile)
		if err != nil {
			return nil, err
		}
		pt = loaded
	}
	if pt == nil {
		pt = patch.Default()
	}
	s, err := pt.Build()
	if err != nil {
		return nil, err
	}
	p := &Player{
		synth:     s,
		sampleTap: cfg.sampleTap,
		levels:    meter.New(4096),
	}
	if cfg.midi {
		in, err := midiin.Open(cfg.midiPort, p)
		if err != nil {
			return nil, err
		}
		p.midi = in
	}
	return p, nil
}

// SampleRate returns the patch sample rate in Hz.
func (p *Player) SampleRate() int { return p.synth.SampleRate() }

// Polyphony returns the number of voices in the pool.
func (p *Player) Polyphony() int { return p.synth.Polyphony() }

// MIDIPortName returns the name of the connected MIDI input, or "" when no
// port is open.
func (p *Player) MIDIPortName() string {
	if p.midi == nil {
		return ""
	}
	return p.midi.Name()
}

// Process fills dst with interleaved stereo samples. The audio backend
// calls this from its own goroutine; it also serves direct offline use of
// a Player without a device.
func (p *Player) Process(dst []int16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.synth.Process(dst); err != nil {
		return err
	}
	p.measure(dst)
	if p.sampleTap != nil {
		p.sampleTap(dst)
	}
	return nil
}

// measure updates the output level meters from the rendered buffer.
// Called with p.mu held.
func (p *Player) measure(buf []int16) {
	if cap(p.levelBuf) < len(buf) {
		p.levelBuf = make([]float32, len(buf))
	}
	f := p.levelBuf[:len(buf)]
	for i, s := range buf {
		f[i] = float32(s) / synth.MaxSample
	}
	p.peak = p.levels.Peak(f)
	p.rms = p.levels.RMS(f)
}

// Peak returns the largest absolute sample level of the most recent
// Process call, normalized to 0.0-1.0.
func (p *Player) Peak() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// RMS returns the root mean square level of the most recent Process call,
// normalized to 0.0-1.0.
func (p *Player) RMS() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rms
}

// Play opens the audio device (on first call) and starts streaming.
//
// The audio backend calls Process while holding its own lock, so backend
// calls here happen outside p.mu to keep the lock order one-way.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.audio == nil {
		backend, err := audio.NewPlayer(p.synth.SampleRate(), p)
		if err != nil {
			p.mu.Unlock()
			return err
		}
		p.audio = backend
	}
	if p.done == nil {
		p.done = make(chan struct{})
	}
	backend := p.audio
	p.mu.Unlock()
	backend.Play()
	return nil
}

// Wait blocks until Stop is called. It returns immediately if playback was
// never started.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Pause suspends streaming without releasing the audio device.
func (p *Player) Pause() {
	p.mu.Lock()
	backend := p.audio
	p.mu.Unlock()
	if backend != nil {
		backend.Pause()
	}
}

// Stop closes the audio device and the MIDI input.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.midi != nil {
		p.midi.Close()
		p.midi = nil
	}
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	backend := p.audio
	p.audio = nil
	p.mu.Unlock()
	if backend == nil {
		return nil
	}
	return backend.Stop()
}

// NoteOn starts a note at the given frequency with velocity 0.0-1.0,
// returning the voice index that took it. Voices are assigned round-robin;
// a still-sounding voice is retriggered.
func (p *Player) NoteOn(pitch, velocity float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.synth.NoteOn(pitch, velocity)
}

// NoteOff releases the given voice into its envelope release stage.
func (p *Player) NoteOff(voice int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synth.NoteOff(voice)
}

// NoteOnKey handles a MIDI note-on message.
func (p *Player) NoteOnKey(key, velocity uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synth.NoteOnKey(key, velocity)
}

// NoteOffKey handles a MIDI note-off message.
func (p *Player) NoteOffKey(key uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synth.NoteOffKey(key)
}

// AllNotesOff releases every voice (MIDI CC 123).
func (p *Player) AllNotesOff() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.synth.AllNotesOff()
}

// ActiveVoiceCount returns how many voices are currently sounding,
// release tails included.
func (p *Player) ActiveVoiceCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.synth.ActiveVoiceCount()
}

// NoteToPitch converts a MIDI note number to a frequency in Hz (A4 = 440).
func NoteToPitch(note int) float64 {
	return synth.NoteToPitch(note)
}

// MIDIPorts lists the names of the available MIDI input ports.
func MIDIPorts() ([]string, error) {
	return midiin.Ports()
}
