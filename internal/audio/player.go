//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/flipbook/internal/pcm"
)

// oto allows a single context per process.
var (
	contextOnce sync.Once
	otoContext  *oto.Context
	contextCfg  Config
	contextErr  error
)

func sharedContext(config Config) (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   config.SampleRate,
			ChannelCount: config.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   config.BufferSize,
		}

		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready

		otoContext = ctx
		contextCfg = config
		log.Debug("audio context ready", "rate", config.SampleRate, "channels", config.Channels)
	})

	if contextErr != nil {
		return nil, contextErr
	}
	if contextCfg.SampleRate != config.SampleRate || contextCfg.Channels != config.Channels {
		return nil, fmt.Errorf("audio context already open at %d Hz/%d ch", contextCfg.SampleRate, contextCfg.Channels)
	}
	return otoContext, nil
}

// Player plays decoded buffers on the system audio device.
type Player struct {
	mu      sync.Mutex
	ctx     *oto.Context
	config  Config
	current *Handle
	closed  bool
}

// NewPlayer opens the audio device.
func NewPlayer(config Config) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, err := sharedContext(config)
	if err != nil {
		return nil, err
	}

	return &Player{ctx: ctx, config: config}, nil
}

// Play starts buf, stopping whatever this player was playing before.
func (p *Player) Play(buf pcm.Buffer) (*Handle, error) {
	if buf.Frames() == 0 {
		return nil, errors.New("audio data is empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("player is closed")
	}
	if p.current != nil {
		_ = p.current.Stop()
		p.current = nil
	}

	out := pcm.Resample(buf, p.config.SampleRate)
	data := pcm.Interleave(out, p.config.Channels)

	player := p.ctx.NewPlayer(bytes.NewReader(data))
	if player == nil {
		return nil, errors.New("failed to create oto player")
	}

	p.current = newHandle(player, data, buf.Duration(), p.config.Poll)
	return p.current, nil
}

// Close stops playback. The device context stays open for the process.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.current != nil {
		err = p.current.Stop()
		p.current = nil
	}
	p.closed = true
	return err
}
