// Package pcm holds decoded audio and the conversions between the wire
// format returned by speech synthesis and what the output device plays.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// SpeechSampleRate is the sample rate of synthesized speech in Hz.
	SpeechSampleRate = 24000
	// SpeechChannels is the channel count of synthesized speech.
	SpeechChannels = 1

	bytesPerSample = 2
	fullScale      = 32768.0
)

// ErrMalformedAudio is returned for payloads that are not whole 16-bit
// sample frames.
var ErrMalformedAudio = errors.New("malformed audio payload")

// Buffer is decoded, de-interleaved audio. Each entry of Channels holds the
// samples of one channel normalized to [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// Frames returns the number of samples per channel.
func (b Buffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback length of the buffer.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Decode interprets data as signed 16-bit little-endian interleaved PCM with
// the given channel count and normalizes every sample by 32768.
func Decode(data []byte, sampleRate, channels int) (Buffer, error) {
	if channels < 1 {
		return Buffer{}, fmt.Errorf("invalid channel count %d", channels)
	}
	frame := bytesPerSample * channels
	if len(data) == 0 {
		return Buffer{}, fmt.Errorf("%w: empty", ErrMalformedAudio)
	}
	if len(data)%frame != 0 {
		return Buffer{}, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedAudio, len(data), frame)
	}

	frames := len(data) / frame
	buf := Buffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * bytesPerSample
			s := int16(binary.LittleEndian.Uint16(data[off:]))
			buf.Channels[ch][i] = float32(s) / fullScale
		}
	}
	return buf, nil
}

// Resample converts every channel of b to the target rate using linear
// interpolation.
func Resample(b Buffer, rate int) Buffer {
	if rate <= 0 || b.SampleRate <= 0 || b.SampleRate == rate {
		return b
	}

	out := Buffer{
		SampleRate: rate,
		Channels:   make([][]float32, len(b.Channels)),
	}
	for ch, samples := range b.Channels {
		out.Channels[ch] = resampleChannel(samples, b.SampleRate, rate)
	}
	return out
}

func resampleChannel(in []float32, from, to int) []float32 {
	if len(in) == 0 {
		return nil
	}

	ratio := float64(to) / float64(from)
	n := int(float64(len(in)) * ratio)
	out := make([]float32, n)

	last := len(in) - 1
	for i := range out {
		pos := float64(i) / ratio
		idx := int(pos)
		if idx >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = in[idx]*(1-frac) + in[idx+1]*frac
	}
	return out
}

// Interleave lays b out as little-endian 32-bit float frames with the given
// output channel count. Mono input is copied to every output channel; extra
// input channels beyond the output count are dropped.
func Interleave(b Buffer, channels int) []byte {
	frames := b.Frames()
	if frames == 0 || channels < 1 {
		return nil
	}

	out := make([]byte, frames*channels*4)
	off := 0
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			src := ch
			if src >= len(b.Channels) {
				src = len(b.Channels) - 1
			}
			binary.LittleEndian.PutUint32(out[off:], math.Float32bits(b.Channels[src][i]))
			off += 4
		}
	}
	return out
}
