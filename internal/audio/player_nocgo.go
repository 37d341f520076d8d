//go:build nocgo
// +build nocgo

package audio

import "github.com/dgnsrekt/flipbook/internal/pcm"

// Player is unavailable without cgo.
type Player struct{}

// NewPlayer always fails in nocgo builds.
func NewPlayer(config Config) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return nil, ErrUnavailable
}

// Play always fails in nocgo builds.
func (p *Player) Play(pcm.Buffer) (*Handle, error) {
	return nil, ErrUnavailable
}

// Close is a no-op.
func (p *Player) Close() error { return nil }
