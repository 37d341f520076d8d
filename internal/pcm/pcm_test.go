package pcm

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		channels int
		want     [][]float32
		wantErr  error
	}{
		{
			name:     "extremes mono",
			data:     []byte{0x00, 0x80, 0xFF, 0x7F},
			channels: 1,
			want:     [][]float32{{-1.0, 0.99997}},
		},
		{
			name:     "silence",
			data:     []byte{0x00, 0x00, 0x00, 0x00},
			channels: 1,
			want:     [][]float32{{0, 0}},
		},
		{
			name:     "stereo de-interleave",
			data:     []byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x20, 0x00, 0xE0},
			channels: 2,
			want:     [][]float32{{0.5, 0.25}, {-0.5, -0.25}},
		},
		{
			name:     "odd length",
			data:     []byte{0x00, 0x80, 0xFF},
			channels: 1,
			wantErr:  ErrMalformedAudio,
		},
		{
			name:     "partial stereo frame",
			data:     []byte{0x00, 0x80, 0xFF, 0x7F, 0x00, 0x00},
			channels: 2,
			wantErr:  ErrMalformedAudio,
		},
		{
			name:     "empty",
			data:     nil,
			channels: 1,
			wantErr:  ErrMalformedAudio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Decode(tt.data, SpeechSampleRate, tt.channels)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if buf.SampleRate != SpeechSampleRate {
				t.Errorf("SampleRate = %d, want %d", buf.SampleRate, SpeechSampleRate)
			}
			if len(buf.Channels) != len(tt.want) {
				t.Fatalf("got %d channels, want %d", len(buf.Channels), len(tt.want))
			}
			for ch := range tt.want {
				if len(buf.Channels[ch]) != len(tt.want[ch]) {
					t.Fatalf("channel %d has %d samples, want %d", ch, len(buf.Channels[ch]), len(tt.want[ch]))
				}
				for i, want := range tt.want[ch] {
					if got := buf.Channels[ch][i]; math.Abs(float64(got-want)) > 1e-5 {
						t.Errorf("channel %d sample %d = %v, want %v", ch, i, got, want)
					}
				}
			}
		})
	}
}

func TestDecodeInvalidChannels(t *testing.T) {
	if _, err := Decode([]byte{0, 0}, SpeechSampleRate, 0); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestDecodeRange(t *testing.T) {
	data := make([]byte, 0, 1<<17)
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		data = binary.LittleEndian.AppendUint16(data, uint16(int16(v)))
	}

	buf, err := Decode(data, SpeechSampleRate, 1)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	for i, s := range buf.Channels[0] {
		if s < -1 || s > 1 {
			t.Fatalf("sample %d = %v outside [-1, 1]", i, s)
		}
	}
}

func TestBufferDuration(t *testing.T) {
	buf := Buffer{SampleRate: 24000, Channels: [][]float32{make([]float32, 12000)}}
	if got := buf.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", got)
	}
	if got := (Buffer{}).Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}
	if got := (Buffer{}).Frames(); got != 0 {
		t.Errorf("empty Frames() = %d, want 0", got)
	}
}

func TestResample(t *testing.T) {
	in := Buffer{SampleRate: 24000, Channels: [][]float32{{0, 1, 0, -1}}}

	out := Resample(in, 48000)
	if out.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", out.SampleRate)
	}
	want := []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -1}
	got := out.Channels[0]
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResampleSameRate(t *testing.T) {
	in := Buffer{SampleRate: 48000, Channels: [][]float32{{0.1, 0.2}}}
	out := Resample(in, 48000)
	if &out.Channels[0][0] != &in.Channels[0][0] {
		t.Error("same-rate resample should return the input unchanged")
	}
}

func TestInterleave(t *testing.T) {
	in := Buffer{SampleRate: 48000, Channels: [][]float32{{0.25, -0.5}}}

	data := Interleave(in, 2)
	if len(data) != 2*2*4 {
		t.Fatalf("len = %d, want 16", len(data))
	}

	want := []float32{0.25, 0.25, -0.5, -0.5}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		if got != w {
			t.Errorf("value %d = %v, want %v", i, got, w)
		}
	}

	if Interleave(Buffer{}, 2) != nil {
		t.Error("empty buffer should interleave to nil")
	}
}
