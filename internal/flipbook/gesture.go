package flipbook

// Side is the direction of a page turn.
type Side int

const (
	SideNone Side = iota
	SideNext
	SidePrev
)

// String returns the string representation of the side.
func (s Side) String() string {
	switch s {
	case SideNone:
		return "none"
	case SideNext:
		return "next"
	case SidePrev:
		return "prev"
	default:
		return "unknown"
	}
}

// step is the view index delta of a committed turn.
func (s Side) step() int {
	switch s {
	case SideNext:
		return 1
	case SidePrev:
		return -1
	default:
		return 0
	}
}

// Gesture is the state of the page-turn state machine. It is one of Idle,
// Dragging or Settling.
type Gesture interface {
	gesture()
}

// Idle means no turn is in progress.
type Idle struct{}

// Dragging means the pointer is down and the leaf follows it.
type Dragging struct {
	Side   Side
	StartX float64
	Width  float64 // container width at press time
}

// Settling means the gesture was released (or a programmatic turn was
// requested) and the leaf is animating to rest. Token identifies the
// deferred transition that will complete it.
type Settling struct {
	Side      Side
	Committed bool
	Token     uint64
}

func (Idle) gesture()     {}
func (Dragging) gesture() {}
func (Settling) gesture() {}
