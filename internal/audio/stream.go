package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// SampleSource produces interleaved stereo int16 samples on demand.
type SampleSource interface {
	Process(dst []int16) error
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// StreamReader adapts a SampleSource to the io.Reader the audio backend
// pulls from, encoding each sample as little-endian int16.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []int16
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 4
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]int16, need)
	}
	r.buf = r.buf[:need]
	if err := r.source.Process(r.buf); err != nil {
		return 0, err
	}
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(r.buf[i]))
	}
	n := frames * 4
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

type Player struct {
	player *oto.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *oto.Context
	audioContextErr  error
	audioSampleRate  int
)

// sharedAudioContext hands out the process-wide oto context. oto permits a
// single context per process, so the first sample rate wins and later
// mismatches are reported as errors.
func sharedAudioContext(sampleRate int) (*oto.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			audioContextErr = err
			return
		}
		<-ready
		audioContext = ctx
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	return &Player{
		player: ctx.NewPlayer(reader),
		reader: reader,
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
