// Package narration reads the visible spread aloud. It builds the text for
// a spread, asks a speech synthesizer for audio, decodes the returned PCM
// and keeps at most one playback alive.
package narration

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/flipbook/internal/pcm"
)

// State is the narration state. Exactly one holds at a time.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSpeaking
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Synthesizer turns text into base64 encoded 24 kHz mono s16le audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Playback is a live audio handle. Stop must tolerate being called after
// the audio already ended; Done is closed when playback ends for any
// reason.
type Playback interface {
	Stop() error
	Done() <-chan struct{}
}

// Player starts playback of a decoded buffer.
type Player interface {
	Play(buf pcm.Buffer) (Playback, error)
}

// PlayerFunc adapts a function to the Player interface.
type PlayerFunc func(pcm.Buffer) (Playback, error)

// Play calls f(buf).
func (f PlayerFunc) Play(buf pcm.Buffer) (Playback, error) { return f(buf) }

// Cache stores decoded-ready PCM bytes between sessions.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
}

// Request is one outstanding synthesis call.
type Request struct {
	Ticket uint64
	ID     string
	Text   string
	Prompt string

	ctx context.Context
}

// Result carries the outcome of Fetch back to the update loop.
type Result struct {
	Ticket uint64
	ID     string
	Buffer pcm.Buffer
	Err    error
}

// Controller owns the narration state and the active playback handle.
//
// Toggle, Start, Finished, Stop and Close must be called from a single
// goroutine. Fetch only reads configuration fixed at construction and may
// run anywhere.
type Controller struct {
	synth    Synthesizer
	player   Player
	cache    Cache
	cacheKey func(prompt string) string

	ctx       context.Context
	cancel    context.CancelFunc
	reqCancel context.CancelFunc

	state    State
	seq      uint64
	current  uint64
	playback Playback
	closed   bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithCache makes Fetch consult c before calling the synthesizer. key maps
// a prompt to its cache key.
func WithCache(c Cache, key func(prompt string) string) Option {
	return func(n *Controller) {
		if c != nil && key != nil {
			n.cache = c
			n.cacheKey = key
		}
	}
}

// WithContext sets the parent of every request context.
func WithContext(ctx context.Context) Option {
	return func(n *Controller) {
		n.ctx = ctx
	}
}

// New returns an idle controller.
func New(synth Synthesizer, player Player, opts ...Option) *Controller {
	c := &Controller{
		synth:  synth,
		player: player,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(c.ctx)
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// IsLoading reports whether a synthesis request is outstanding.
func (c *Controller) IsLoading() bool { return c.state == StateLoading }

// IsSpeaking reports whether audio is playing.
func (c *Controller) IsSpeaking() bool { return c.state == StateSpeaking }

// Toggle handles a read-aloud request for text. While speaking it stops
// playback and issues nothing. While loading it does nothing. Otherwise it
// enters the loading state and returns the request to pass to Fetch.
func (c *Controller) Toggle(text string) (Request, bool) {
	if c.closed {
		return Request{}, false
	}

	switch c.state {
	case StateSpeaking:
		c.Stop()
		return Request{}, false
	case StateLoading:
		return Request{}, false
	}

	if strings.TrimSpace(text) == "" {
		return Request{}, false
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.seq++
	c.current = c.seq
	c.reqCancel = cancel
	c.state = StateLoading

	req := Request{
		Ticket: c.seq,
		ID:     uuid.NewString(),
		Text:   text,
		Prompt: Prompt(text),
		ctx:    ctx,
	}
	log.Debug("narration requested", "id", req.ID, "ticket", req.Ticket, "chars", len(text))
	return req, true
}

// Fetch performs the synthesis for req and decodes the audio. It does not
// touch controller state.
func (c *Controller) Fetch(req Request) Result {
	buf, err := c.fetch(req)
	return Result{Ticket: req.Ticket, ID: req.ID, Buffer: buf, Err: err}
}

func (c *Controller) fetch(req Request) (pcm.Buffer, error) {
	if strings.TrimSpace(req.Text) == "" {
		return pcm.Buffer{}, ErrNothingToRead
	}
	ctx := req.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var key string
	if c.cache != nil {
		key = c.cacheKey(req.Prompt)
		if data, ok := c.cache.Get(key); ok {
			buf, err := DecodePCM(data, pcm.SpeechChannels)
			if err == nil {
				log.Debug("narration cache hit", "id", req.ID)
				return buf, nil
			}
			log.Debug("ignoring bad cache entry", "id", req.ID, "err", err)
		}
	}

	payload, err := c.synth.Synthesize(ctx, req.Prompt)
	if err != nil {
		return pcm.Buffer{}, fmt.Errorf("synthesize: %w", err)
	}
	data, err := DecodeBase64(payload)
	if err != nil {
		return pcm.Buffer{}, err
	}
	buf, err := DecodePCM(data, pcm.SpeechChannels)
	if err != nil {
		return pcm.Buffer{}, err
	}

	if c.cache != nil {
		if err := c.cache.Put(key, data); err != nil {
			log.Debug("could not cache narration", "id", req.ID, "err", err)
		}
	}
	return buf, nil
}

// Start applies a fetch result. Results for a request that is no longer
// current are discarded and return (nil, nil). A failed result returns the
// controller to idle and reports the error. Otherwise the previous
// playback is stopped before the new one starts and the returned handle's
// Done channel should be watched and reported through Finished.
func (c *Controller) Start(res Result) (Playback, error) {
	if c.closed || res.Ticket == 0 || res.Ticket != c.current || c.state != StateLoading {
		log.Debug("discarding stale narration", "id", res.ID, "ticket", res.Ticket, "current", c.current)
		return nil, nil
	}
	c.releaseRequest()

	if res.Err != nil {
		c.reset()
		log.Error("narration failed", "id", res.ID, "err", res.Err)
		return nil, res.Err
	}

	c.stopPlayback()
	pb, err := c.player.Play(res.Buffer)
	if err != nil {
		c.reset()
		log.Error("narration playback failed", "id", res.ID, "err", err)
		return nil, fmt.Errorf("play: %w", err)
	}

	c.playback = pb
	c.state = StateSpeaking
	log.Debug("narration started", "id", res.ID, "duration", res.Buffer.Duration())
	return pb, nil
}

// Finished reports the natural end of the playback started for ticket.
func (c *Controller) Finished(ticket uint64) bool {
	if ticket == 0 || ticket != c.current || c.state != StateSpeaking {
		return false
	}
	c.reset()
	log.Debug("narration finished", "ticket", ticket)
	return true
}

// Stop halts playback and abandons any outstanding request. It is safe to
// call at any time.
func (c *Controller) Stop() {
	c.releaseRequest()
	c.reset()
}

// Close stops narration for good. Later results are discarded.
func (c *Controller) Close() {
	c.Stop()
	c.cancel()
	c.closed = true
}

func (c *Controller) reset() {
	c.stopPlayback()
	c.state = StateIdle
	c.current = 0
}

func (c *Controller) releaseRequest() {
	if c.reqCancel != nil {
		c.reqCancel()
		c.reqCancel = nil
	}
}

func (c *Controller) stopPlayback() {
	if c.playback == nil {
		return
	}
	if err := c.playback.Stop(); err != nil {
		log.Debug("stopping narration", "err", err)
	}
	c.playback = nil
}
