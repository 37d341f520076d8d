package audio

import (
	"sync"
	"time"
)

// source is the subset of *oto.Player a Handle drives.
type source interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
}

// Handle is one playback. It is released exactly once, either by Stop or
// when the source runs dry.
type Handle struct {
	src      source
	data     []byte // keeps the PCM alive while the device reads it
	duration time.Duration

	once sync.Once
	done chan struct{}
	err  error
}

func newHandle(src source, data []byte, duration, poll time.Duration) *Handle {
	h := &Handle{
		src:      src,
		data:     data,
		duration: duration,
		done:     make(chan struct{}),
	}
	src.Play()
	go h.watch(poll)
	return h
}

func (h *Handle) watch(poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			if !h.src.IsPlaying() {
				h.release(false)
				return
			}
		}
	}
}

// Stop halts playback and releases the device player. Calling Stop on a
// handle that already finished is a no-op.
func (h *Handle) Stop() error {
	h.release(true)
	return h.err
}

// Done is closed once the handle has been released.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Duration returns the length of the audio.
func (h *Handle) Duration() time.Duration { return h.duration }

func (h *Handle) release(pause bool) {
	h.once.Do(func() {
		if pause {
			h.src.Pause()
		}
		h.err = h.src.Close()
		h.data = nil
		close(h.done)
	})
}
