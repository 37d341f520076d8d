// Package flipbook models a two-page book that is turned by dragging the
// leaf or by stepping through spreads. It owns the view index, the drag
// gesture and the settle timing; rendering is left to the caller.
package flipbook

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultCommitThreshold is the drag progress, in percent, a released
	// gesture must exceed to complete the turn.
	DefaultCommitThreshold = 25.0

	// DefaultSettleDelay is how long a released leaf takes to come to rest.
	DefaultSettleDelay = 600 * time.Millisecond

	maxProgress       = 100.0
	degreesPerPercent = 1.8
)

// Controller is the page-turn state machine for one open book.
//
// It is not safe for concurrent use. In the TUI all calls happen on the
// Bubble Tea update loop and the settle delay is delivered back as a
// message carrying the token returned by Release, Next or Prev.
type Controller struct {
	pages []string
	total int
	view  int

	state    Gesture
	progress float64

	threshold float64
	delay     time.Duration
	token     uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithCommitThreshold overrides DefaultCommitThreshold.
func WithCommitThreshold(t float64) Option {
	return func(c *Controller) {
		if t >= 0 && t <= maxProgress {
			c.threshold = t
		}
	}
}

// New returns a controller showing the front cover of a book with the
// given pages.
func New(pages []string, opts ...Option) *Controller {
	c := &Controller{
		pages:     pages,
		total:     TotalViews(len(pages)),
		state:     Idle{},
		threshold: DefaultCommitThreshold,
		delay:     DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the current view index.
func (c *Controller) View() int { return c.view }

// TotalViews returns the number of spreads in the book.
func (c *Controller) TotalViews() int { return c.total }

// Last returns the view index of the back cover.
func (c *Controller) Last() int { return c.total - 1 }

// Progress returns the drag progress in percent.
func (c *Controller) Progress() float64 { return c.progress }

// SettleDelay returns the delay after which a settle token must be passed
// to Settle.
func (c *Controller) SettleDelay() time.Duration { return c.delay }

// State returns the current gesture state.
func (c *Controller) State() Gesture { return c.state }

// Side returns the direction of the turn in progress, if any.
func (c *Controller) Side() Side {
	switch s := c.state.(type) {
	case Dragging:
		return s.Side
	case Settling:
		return s.Side
	default:
		return SideNone
	}
}

// IsDragging reports whether the pointer is holding the leaf.
func (c *Controller) IsDragging() bool {
	_, ok := c.state.(Dragging)
	return ok
}

// IsAnimating reports whether a released turn is settling.
func (c *Controller) IsAnimating() bool {
	_, ok := c.state.(Settling)
	return ok
}

// IsIdle reports whether no turn is in progress.
func (c *Controller) IsIdle() bool {
	_, ok := c.state.(Idle)
	return ok
}

// CanNext reports whether there is a spread after the current one.
func (c *Controller) CanNext() bool { return c.view < c.Last() }

// CanPrev reports whether there is a spread before the current one.
func (c *Controller) CanPrev() bool { return c.view > 0 }

// Content returns the face at logical index i.
func (c *Controller) Content(i int) Face {
	return ContentAt(c.pages, i)
}

// Spread returns the left and right faces of the current view.
func (c *Controller) Spread() (left, right Face) {
	return c.spreadAt(c.view)
}

func (c *Controller) spreadAt(v int) (left, right Face) {
	return c.Content(2*v - 1), c.Content(2 * v)
}

// Press starts a drag at horizontal position x inside a container of the
// given width. A press right of the midpoint grabs the next leaf, left of
// it the previous one. It reports whether a drag started; presses during a
// turn, at an unavailable boundary or exactly on the spine are ignored.
func (c *Controller) Press(x, width float64) bool {
	if !c.IsIdle() || width <= 0 {
		return false
	}

	mid := width / 2
	var side Side
	switch {
	case x > mid && c.CanNext():
		side = SideNext
	case x < mid && c.CanPrev():
		side = SidePrev
	default:
		return false
	}

	c.state = Dragging{Side: side, StartX: x, Width: width}
	c.progress = 0
	return true
}

// Move updates the drag progress from the pointer position. Progress is
// recomputed from the press point, not accumulated.
func (c *Controller) Move(x float64) bool {
	d, ok := c.state.(Dragging)
	if !ok {
		return false
	}
	c.progress = dragProgress(d.StartX, x, d.Width)
	return true
}

func dragProgress(startX, x, width float64) float64 {
	half := width / 2
	if half <= 0 {
		return 0
	}
	p := math.Abs(x-startX) / half * maxProgress
	return math.Min(math.Max(p, 0), maxProgress)
}

// Release ends the drag. Progress above the commit threshold commits the
// turn and snaps the leaf over; anything else springs it back. Either way
// the controller settles, and the returned token must be handed to Settle
// once SettleDelay has elapsed.
func (c *Controller) Release() (uint64, bool) {
	d, ok := c.state.(Dragging)
	if !ok {
		return 0, false
	}

	committed := c.progress > c.threshold
	if committed {
		c.progress = maxProgress
	} else {
		c.progress = 0
	}
	log.Debug("page turn released", "side", d.Side, "committed", committed)
	return c.settle(d.Side, committed), true
}

// Next turns to the following spread without a drag.
func (c *Controller) Next() (uint64, bool) {
	if !c.IsIdle() || !c.CanNext() {
		return 0, false
	}
	c.progress = maxProgress
	return c.settle(SideNext, true), true
}

// Prev turns to the preceding spread without a drag.
func (c *Controller) Prev() (uint64, bool) {
	if !c.IsIdle() || !c.CanPrev() {
		return 0, false
	}
	c.progress = maxProgress
	return c.settle(SidePrev, true), true
}

func (c *Controller) settle(side Side, committed bool) uint64 {
	c.token++
	c.state = Settling{Side: side, Committed: committed, Token: c.token}
	return c.token
}

// Settle completes the deferred transition identified by token. A
// committed turn moves the view one spread in its direction. Tokens that
// do not belong to the current settle are ignored.
func (c *Controller) Settle(token uint64) bool {
	s, ok := c.state.(Settling)
	if !ok || s.Token != token {
		return false
	}

	if s.Committed {
		c.view = clamp(c.view+s.Side.step(), 0, c.Last())
	}
	c.progress = 0
	c.state = Idle{}
	return true
}

// Cancel abandons any turn in progress without moving, making a pending
// settle token stale.
func (c *Controller) Cancel() {
	c.token++
	c.progress = 0
	c.state = Idle{}
}

// Leaf is the page currently rotating about the spine.
type Leaf struct {
	Side  Side
	Front Face    // the face that is leaving
	Back  Face    // the face that is arriving
	Angle float64 // degrees, 0 at rest, 180 fully turned
}

// Layout is everything needed to draw the current moment of the book: the
// two resting faces and, during a turn, the leaf.
type Layout struct {
	Left         Face
	Right        Face
	LeftVisible  bool
	RightVisible bool
	Leaf         *Leaf
}

// Layout resolves which content is visible where. While turning, the
// resting face on the turning side already shows what lies under the leaf.
func (c *Controller) Layout() Layout {
	v := c.view
	side := c.Side()

	l := Layout{}
	l.Left, l.Right = c.spreadAt(v)
	if side == SidePrev {
		l.Left, _ = c.spreadAt(v - 1)
	}
	if side == SideNext {
		_, l.Right = c.spreadAt(v + 1)
	}

	l.LeftVisible = !(v == 0 && side != SidePrev)
	l.RightVisible = !(v == c.Last() && side != SideNext)

	switch side {
	case SideNext:
		_, front := c.spreadAt(v)
		back, _ := c.spreadAt(v + 1)
		l.Leaf = &Leaf{Side: side, Front: front, Back: back, Angle: c.progress * degreesPerPercent}
	case SidePrev:
		front, _ := c.spreadAt(v)
		_, back := c.spreadAt(v - 1)
		l.Leaf = &Leaf{Side: side, Front: front, Back: back, Angle: c.progress * degreesPerPercent}
	}
	return l
}

// Label describes the current spread for a status line.
func (c *Controller) Label() string {
	switch c.view {
	case 0:
		return "Cover"
	case c.Last():
		return "End"
	default:
		return fmt.Sprintf("Pages %d and %d", 2*c.view-1, 2*c.view)
	}
}

// Ratio returns how far through the book the current view is, in [0, 1].
func (c *Controller) Ratio() float64 {
	if c.Last() <= 0 {
		return 0
	}
	return float64(c.view) / float64(c.Last())
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
