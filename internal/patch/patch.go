// Package patch loads and validates synthesizer patch files and compiles
// them into runnable voice pools.
package patch

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tonefall/opfm-go/internal/synth"
	"github.com/tonefall/opfm-go/internal/waves"
)

// OperatorSpec configures one operator slot, shared by every voice.
// Stage lengths are in samples at the patch sample rate.
type OperatorSpec struct {
	Wave    string  `yaml:"wave"`
	Table   int     `yaml:"table,omitempty"`
	Ratio   float64 `yaml:"ratio,omitempty"`
	Volume  float64 `yaml:"volume,omitempty"`
	Attack  int     `yaml:"attack"`
	Decay   int     `yaml:"decay"`
	Sustain float64 `yaml:"sustain"`
	Release int     `yaml:"release"`
}

// RouteSpec is one modulation edge between operator slots.
type RouteSpec struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// AlgorithmSpec mirrors synth.Algorithm in patch form.
type AlgorithmSpec struct {
	Routes   []RouteSpec `yaml:"routes,omitempty"`
	Feedback []int       `yaml:"feedback,flow,omitempty"`
	Carriers []int       `yaml:"carriers,flow"`
}

// Patch is the serialized description of a complete synthesizer setup.
type Patch struct {
	SampleRate  int            `yaml:"sample_rate"`
	Polyphony   int            `yaml:"polyphony"`
	ChunkFrames int            `yaml:"chunk_frames,omitempty"`
	Operators   []OperatorSpec `yaml:"operators"`
	Algorithm   AlgorithmSpec  `yaml:"algorithm"`
}

const (
	defaultSampleRate  = 48000
	defaultPolyphony   = 10
	defaultChunkFrames = 512
	defaultTableSize   = 264
)

// Default returns the built-in two-operator patch: a modulated carrier with
// modulator self-feedback, usable without any configuration file.
func Default() *Patch {
	return &Patch{
		SampleRate:  defaultSampleRate,
		Polyphony:   defaultPolyphony,
		ChunkFrames: defaultChunkFrames,
		Operators: []OperatorSpec{
			{Wave: "sine", Ratio: 1.0, Volume: 1.0, Attack: 480, Decay: 12000, Sustain: 0.6, Release: 4800},
			{Wave: "sine", Ratio: 2.0, Volume: 0.55, Attack: 48, Decay: 48000, Sustain: 0.0, Release: 2400},
		},
		Algorithm: AlgorithmSpec{
			Routes:   []RouteSpec{{From: 1, To: 0}},
			Feedback: []int{1},
			Carriers: []int{0},
		},
	}
}

// Load decodes a patch from YAML. Unknown fields are rejected so typos in
// patch files fail at load instead of silently using defaults.
func Load(r io.Reader) (*Patch, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var p Patch
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("patch: decode: %w", err)
	}
	return &p, nil
}

// LoadFile reads and decodes a patch file.
func LoadFile(path string) (*Patch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	defer f.Close()
	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("patch: %s: %w", path, err)
	}
	return p, nil
}

// Normalize fills unset fields with defaults. A zero operator volume or
// ratio means "unset" and becomes 1.0; silent or zero-frequency operators
// are not representable in patch form on purpose. Build calls this; it is
// exported for callers that need the effective sample rate or chunk size
// before building.
func (p *Patch) Normalize() {
	if p.SampleRate == 0 {
		p.SampleRate = defaultSampleRate
	}
	if p.Polyphony == 0 {
		p.Polyphony = defaultPolyphony
	}
	if p.ChunkFrames == 0 {
		p.ChunkFrames = defaultChunkFrames
	}
	for i := range p.Operators {
		op := &p.Operators[i]
		if op.Table == 0 {
			op.Table = defaultTableSize
		}
		if op.Ratio == 0 {
			op.Ratio = 1.0
		}
		if op.Volume == 0 {
			op.Volume = 1.0
		}
	}
}

func buildTable(spec OperatorSpec) ([]int16, error) {
	switch spec.Wave {
	case "", "sine":
		return waves.Sine(spec.Table), nil
	case "sine12":
		return waves.Sine12(spec.Table), nil
	case "saw", "pulse":
		if spec.Table%2 != 0 {
			return nil, fmt.Errorf("wave %q needs an even table size, got %d", spec.Wave, spec.Table)
		}
		if spec.Wave == "saw" {
			return waves.Saw(spec.Table), nil
		}
		return waves.Pulse(spec.Table), nil
	default:
		return nil, fmt.Errorf("unknown wave %q", spec.Wave)
	}
}

// Build compiles the patch into a Synthesizer. Wavetables are built once
// per operator slot and shared read-only across all voices.
func (p *Patch) Build() (*synth.Synthesizer, error) {
	p.Normalize()
	if len(p.Operators) == 0 {
		return nil, fmt.Errorf("patch: no operators")
	}

	tables := make([][]int16, len(p.Operators))
	for i, spec := range p.Operators {
		table, err := buildTable(spec)
		if err != nil {
			return nil, fmt.Errorf("patch: operator %d: %w", i, err)
		}
		tables[i] = table
	}

	alg := synth.Algorithm{
		NumSlots: len(p.Operators),
		Feedback: p.Algorithm.Feedback,
		Carriers: p.Algorithm.Carriers,
	}
	for _, r := range p.Algorithm.Routes {
		alg.Routes = append(alg.Routes, synth.Route{From: r.From, To: r.To})
	}

	voices := make([]*synth.Voice, p.Polyphony)
	for v := range voices {
		slots := make([]*synth.Operator, len(p.Operators))
		ratios := make([]float64, len(p.Operators))
		for i, spec := range p.Operators {
			env, err := synth.NewEnvelope(spec.Attack, spec.Decay, spec.Sustain, spec.Release)
			if err != nil {
				return nil, fmt.Errorf("patch: operator %d: %w", i, err)
			}
			op, err := synth.NewOperator(tables[i], p.SampleRate, env, synth.WithVolume(spec.Volume))
			if err != nil {
				return nil, fmt.Errorf("patch: operator %d: %w", i, err)
			}
			slots[i] = op
			ratios[i] = spec.Ratio
		}
		voice, err := synth.NewVoice(slots, ratios, alg, p.ChunkFrames)
		if err != nil {
			return nil, fmt.Errorf("patch: %w", err)
		}
		voices[v] = voice
	}
	out, err := synth.NewSynthesizer(voices, p.SampleRate, p.ChunkFrames)
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	return out, nil
}
