package opfm

import (
	"encoding/binary"
	"sort"

	"github.com/tonefall/opfm-go/internal/patch"
)

// NoteEvent schedules a note change for offline rendering. Frame is the
// absolute output frame at which the event fires; events quantize to the
// patch chunk boundary at or after their frame.
type NoteEvent struct {
	Frame    int
	On       bool
	Key      uint8
	Velocity uint8
}

// RenderEvents renders frames stereo frames of the patch with the given
// note events applied, returning interleaved samples.
func RenderEvents(pt *patch.Patch, events []NoteEvent, frames int) ([]int16, error) {
	pt.Normalize()
	s, err := pt.Build()
	if err != nil {
		return nil, err
	}
	sorted := make([]NoteEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	chunk := pt.ChunkFrames
	out := make([]int16, frames*2)
	next := 0
	for start := 0; start < frames; start += chunk {
		end := start + chunk
		if end > frames {
			end = frames
		}
		for next < len(sorted) && sorted[next].Frame <= start {
			ev := sorted[next]
			next++
			if ev.On {
				s.NoteOnKey(ev.Key, ev.Velocity)
			} else {
				s.NoteOffKey(ev.Key)
			}
		}
		if err := s.Process(out[start*2 : end*2]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RenderSamples renders seconds of the patch with a single held note,
// released at half the duration so the envelope release tail is audible.
func RenderSamples(pt *patch.Patch, key uint8, velocity uint8, seconds float64) ([]int16, error) {
	pt.Normalize()
	frames := int(float64(pt.SampleRate) * seconds)
	events := []NoteEvent{
		{Frame: 0, On: true, Key: key, Velocity: velocity},
		{Frame: frames / 2, On: false, Key: key},
	}
	return RenderEvents(pt, events, frames)
}

// EncodeWAVInt16LE wraps interleaved samples in a PCM WAV container.
func EncodeWAVInt16LE(samples []int16, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 2
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(s))
	}
	return out
}
