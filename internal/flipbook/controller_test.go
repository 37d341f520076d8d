package flipbook

import (
	"math"
	"testing"
	"time"
)

const testWidth = 200.0

func samplePages(n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = "page " + string(rune('A'+i))
	}
	return pages
}

// dragTo presses on the given side and moves until progress equals p.
func dragTo(t *testing.T, c *Controller, side Side, p float64) {
	t.Helper()

	start := testWidth * 0.75
	dir := -1.0
	if side == SidePrev {
		start = testWidth * 0.25
		dir = 1.0
	}
	if !c.Press(start, testWidth) {
		t.Fatalf("Press(%v) on %v rejected at view %d", start, side, c.View())
	}
	if !c.Move(start + dir*p) {
		t.Fatal("Move rejected while dragging")
	}
}

func settleNow(t *testing.T, c *Controller, token uint64) {
	t.Helper()
	if !c.Settle(token) {
		t.Fatalf("Settle(%d) rejected in state %T", token, c.State())
	}
}

func TestNewController(t *testing.T) {
	c := New(samplePages(6))

	if c.View() != 0 {
		t.Errorf("View() = %d, want 0", c.View())
	}
	if c.TotalViews() != 5 {
		t.Errorf("TotalViews() = %d, want 5", c.TotalViews())
	}
	if !c.IsIdle() || c.Side() != SideNone || c.Progress() != 0 {
		t.Errorf("new controller not at rest: state=%T side=%v progress=%v", c.State(), c.Side(), c.Progress())
	}
	if c.SettleDelay() != DefaultSettleDelay {
		t.Errorf("SettleDelay() = %v, want %v", c.SettleDelay(), DefaultSettleDelay)
	}
}

func TestOptions(t *testing.T) {
	c := New(nil, WithSettleDelay(10*time.Millisecond), WithCommitThreshold(50))
	if c.SettleDelay() != 10*time.Millisecond {
		t.Errorf("SettleDelay() = %v", c.SettleDelay())
	}
	if c.threshold != 50 {
		t.Errorf("threshold = %v, want 50", c.threshold)
	}

	c = New(nil, WithSettleDelay(-time.Second), WithCommitThreshold(150))
	if c.SettleDelay() != DefaultSettleDelay || c.threshold != DefaultCommitThreshold {
		t.Errorf("invalid options should be ignored, got delay=%v threshold=%v", c.SettleDelay(), c.threshold)
	}
}

func TestReleaseThreshold(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		commit   bool
	}{
		{"well below", 20, false},
		{"exactly at threshold", 25.0, false},
		{"just above threshold", 25.01, true},
		{"well above", 30, true},
		{"full", 100, true},
		{"none", 0, false},
	}

	for _, side := range []Side{SideNext, SidePrev} {
		for _, tt := range tests {
			t.Run(side.String()+"/"+tt.name, func(t *testing.T) {
				c := New(samplePages(6))
				if side == SidePrev {
					tok, _ := c.Next()
					settleNow(t, c, tok)
				}
				before := c.View()

				dragTo(t, c, side, tt.progress)
				if math.Abs(c.Progress()-tt.progress) > 1e-9 {
					t.Fatalf("Progress() = %v, want %v", c.Progress(), tt.progress)
				}

				tok, ok := c.Release()
				if !ok {
					t.Fatal("Release() rejected while dragging")
				}

				s, isSettling := c.State().(Settling)
				if !isSettling {
					t.Fatalf("State() = %T after release, want Settling", c.State())
				}
				if s.Committed != tt.commit {
					t.Errorf("Committed = %v, want %v", s.Committed, tt.commit)
				}
				if s.Side != side {
					t.Errorf("Settling side = %v, want %v", s.Side, side)
				}

				wantProgress := 0.0
				if tt.commit {
					wantProgress = 100
				}
				if c.Progress() != wantProgress {
					t.Errorf("Progress() after release = %v, want %v", c.Progress(), wantProgress)
				}
				if c.View() != before {
					t.Errorf("View() changed before settle: %d -> %d", before, c.View())
				}

				settleNow(t, c, tok)

				want := before
				if tt.commit {
					want += side.step()
				}
				if c.View() != want {
					t.Errorf("View() after settle = %d, want %d", c.View(), want)
				}
				if !c.IsIdle() || c.Progress() != 0 || c.Side() != SideNone {
					t.Errorf("not at rest after settle: state=%T progress=%v side=%v", c.State(), c.Progress(), c.Side())
				}
			})
		}
	}
}

func TestPress(t *testing.T) {
	tests := []struct {
		name  string
		view  int
		x     float64
		width float64
		want  Side
	}{
		{"right half on cover", 0, 150, testWidth, SideNext},
		{"left half on cover", 0, 50, testWidth, SideNone},
		{"right half on back cover", 4, 150, testWidth, SideNone},
		{"left half on back cover", 4, 50, testWidth, SidePrev},
		{"exact midpoint", 2, 100, testWidth, SideNone},
		{"zero width", 2, 10, 0, SideNone},
		{"negative width", 2, 10, -5, SideNone},
		{"interior right", 2, 199, testWidth, SideNext},
		{"interior left", 2, 0, testWidth, SidePrev},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(samplePages(6))
			c.view = tt.view

			got := c.Press(tt.x, tt.width)
			if got != (tt.want != SideNone) {
				t.Errorf("Press(%v, %v) = %v", tt.x, tt.width, got)
			}
			if c.Side() != tt.want {
				t.Errorf("Side() = %v, want %v", c.Side(), tt.want)
			}
			if !got && !c.IsIdle() {
				t.Errorf("rejected press left state %T", c.State())
			}
		})
	}
}

func TestMoveClampsAndRecomputes(t *testing.T) {
	c := New(samplePages(6))
	if !c.Press(150, testWidth) {
		t.Fatal("Press rejected")
	}

	steps := []struct {
		x    float64
		want float64
	}{
		{140, 10},
		{100, 50},
		{-500, 100},
		{150, 0},
		{190, 40}, // moving the wrong way still counts distance
		{125, 25},
	}
	for _, s := range steps {
		c.Move(s.x)
		if math.Abs(c.Progress()-s.want) > 1e-9 {
			t.Errorf("Move(%v): Progress() = %v, want %v", s.x, c.Progress(), s.want)
		}
	}
}

func TestMoveWithoutDrag(t *testing.T) {
	c := New(samplePages(6))
	if c.Move(10) {
		t.Error("Move() accepted while idle")
	}
	if c.Progress() != 0 {
		t.Errorf("Progress() = %v, want 0", c.Progress())
	}
	if _, ok := c.Release(); ok {
		t.Error("Release() accepted while idle")
	}
}

func TestNextPrevBoundaries(t *testing.T) {
	c := New(samplePages(6))

	if _, ok := c.Prev(); ok {
		t.Error("Prev() at cover should be a no-op")
	}
	if !c.IsIdle() || c.View() != 0 {
		t.Errorf("Prev() at cover changed state: %T view=%d", c.State(), c.View())
	}

	for i := 1; i < c.TotalViews(); i++ {
		tok, ok := c.Next()
		if !ok {
			t.Fatalf("Next() rejected at view %d", c.View())
		}
		if c.Progress() != 100 || !c.IsAnimating() {
			t.Errorf("Next() should settle at full progress, got %v %T", c.Progress(), c.State())
		}
		settleNow(t, c, tok)
		if c.View() != i {
			t.Fatalf("View() = %d, want %d", c.View(), i)
		}
	}

	if _, ok := c.Next(); ok {
		t.Error("Next() at back cover should be a no-op")
	}
	if !c.IsIdle() || c.View() != c.Last() {
		t.Errorf("Next() at back cover changed state: %T view=%d", c.State(), c.View())
	}

	tok, ok := c.Prev()
	if !ok {
		t.Fatal("Prev() rejected at back cover")
	}
	settleNow(t, c, tok)
	if c.View() != c.Last()-1 {
		t.Errorf("View() = %d, want %d", c.View(), c.Last()-1)
	}
}

func TestSettlingRejectsInput(t *testing.T) {
	c := New(samplePages(6))
	tok, _ := c.Next()

	if c.Press(150, testWidth) {
		t.Error("Press() accepted while settling")
	}
	if _, ok := c.Next(); ok {
		t.Error("Next() accepted while settling")
	}
	if _, ok := c.Prev(); ok {
		t.Error("Prev() accepted while settling")
	}
	if c.Move(10) {
		t.Error("Move() accepted while settling")
	}

	settleNow(t, c, tok)
	if c.View() != 1 {
		t.Errorf("View() = %d, want 1", c.View())
	}
}

func TestSettleStaleToken(t *testing.T) {
	c := New(samplePages(6))
	tok, _ := c.Next()

	if c.Settle(tok + 1) {
		t.Error("Settle() accepted a foreign token")
	}
	if c.Settle(0) {
		t.Error("Settle() accepted a zero token")
	}
	settleNow(t, c, tok)
	if c.Settle(tok) {
		t.Error("Settle() accepted a token twice")
	}
	if c.View() != 1 {
		t.Errorf("View() = %d, want 1", c.View())
	}
}

func TestCancel(t *testing.T) {
	c := New(samplePages(6))
	tok, _ := c.Next()
	c.Cancel()

	if !c.IsIdle() || c.Progress() != 0 || c.Side() != SideNone {
		t.Errorf("Cancel() left state=%T progress=%v side=%v", c.State(), c.Progress(), c.Side())
	}
	if c.Settle(tok) {
		t.Error("Settle() accepted a token from before Cancel()")
	}
	if c.View() != 0 {
		t.Errorf("View() = %d, want 0", c.View())
	}
}

// Side is never none while the leaf is off its rest position.
func TestSideInvariant(t *testing.T) {
	c := New(samplePages(6))
	check := func(step string) {
		t.Helper()
		if (c.Progress() > 0 || c.IsAnimating()) && c.Side() == SideNone {
			t.Errorf("%s: progress=%v animating=%v with no side", step, c.Progress(), c.IsAnimating())
		}
	}

	c.Press(150, testWidth)
	check("press")
	c.Move(60)
	check("move")
	tok, _ := c.Release()
	check("release")
	c.Settle(tok)
	check("settle")

	tok, _ = c.Prev()
	check("prev")
	c.Settle(tok)
	check("settle prev")
}

func TestSixPageSpreads(t *testing.T) {
	pages := samplePages(6)
	c := New(pages)

	want := []struct {
		left, right Face
	}{
		{Face{Kind: KindEmpty, Index: -1}, Face{Kind: KindCover, Index: 0}},
		{Face{Kind: KindPage, Index: 1, Text: pages[0]}, Face{Kind: KindPage, Index: 2, Text: pages[1]}},
		{Face{Kind: KindPage, Index: 3, Text: pages[2]}, Face{Kind: KindPage, Index: 4, Text: pages[3]}},
		{Face{Kind: KindPage, Index: 5, Text: pages[4]}, Face{Kind: KindPage, Index: 6, Text: pages[5]}},
		{Face{Kind: KindBackCover, Index: 7}, Face{Kind: KindEmpty, Index: 8}},
	}
	if len(want) != c.TotalViews() {
		t.Fatalf("TotalViews() = %d, want %d", c.TotalViews(), len(want))
	}

	for v, w := range want {
		c.view = v
		left, right := c.Spread()
		if left != w.left || right != w.right {
			t.Errorf("view %d: Spread() = (%+v, %+v), want (%+v, %+v)", v, left, right, w.left, w.right)
		}
	}

	c.view = 4
	l := c.Layout()
	if l.RightVisible {
		t.Error("right face visible at back cover")
	}
	if !l.LeftVisible {
		t.Error("left face hidden at back cover")
	}

	c.view = 0
	l = c.Layout()
	if l.LeftVisible {
		t.Error("left face visible at front cover")
	}
}

func TestSpreadNeverPanics(t *testing.T) {
	for n := 0; n <= 9; n++ {
		c := New(samplePages(n))
		if c.TotalViews() < 2 {
			t.Errorf("n=%d: TotalViews() = %d, want >= 2", n, c.TotalViews())
		}
		for v := 0; v < c.TotalViews(); v++ {
			c.view = v
			left, right := c.Spread()
			if left.Index != 2*v-1 || right.Index != 2*v {
				t.Errorf("n=%d view=%d: indices (%d, %d)", n, v, left.Index, right.Index)
			}
			_ = c.Layout()
		}
	}
}

func TestLayoutDuringTurn(t *testing.T) {
	pages := samplePages(6)

	t.Run("next", func(t *testing.T) {
		c := New(pages)
		c.view = 1
		dragTo(t, c, SideNext, 50)

		l := c.Layout()
		if l.Left.Text != pages[0] {
			t.Errorf("resting left = %+v, want page 1", l.Left)
		}
		if l.Right.Index != 4 {
			t.Errorf("resting right index = %d, want 4", l.Right.Index)
		}
		if l.Leaf == nil {
			t.Fatal("no leaf during drag")
		}
		if l.Leaf.Front.Index != 2 || l.Leaf.Back.Index != 3 {
			t.Errorf("leaf faces = (%d, %d), want (2, 3)", l.Leaf.Front.Index, l.Leaf.Back.Index)
		}
		if math.Abs(l.Leaf.Angle-90) > 1e-9 {
			t.Errorf("leaf angle = %v, want 90", l.Leaf.Angle)
		}
	})

	t.Run("prev", func(t *testing.T) {
		c := New(pages)
		c.view = 2
		dragTo(t, c, SidePrev, 100)

		l := c.Layout()
		if l.Left.Index != 1 {
			t.Errorf("resting left index = %d, want 1", l.Left.Index)
		}
		if l.Right.Index != 4 {
			t.Errorf("resting right index = %d, want 4", l.Right.Index)
		}
		if l.Leaf == nil {
			t.Fatal("no leaf during drag")
		}
		if l.Leaf.Front.Index != 3 || l.Leaf.Back.Index != 2 {
			t.Errorf("leaf faces = (%d, %d), want (3, 2)", l.Leaf.Front.Index, l.Leaf.Back.Index)
		}
		if math.Abs(l.Leaf.Angle-180) > 1e-9 {
			t.Errorf("leaf angle = %v, want 180", l.Leaf.Angle)
		}
	})

	t.Run("opening the cover shows the left face", func(t *testing.T) {
		c := New(pages)
		c.Next()
		l := c.Layout()
		if l.LeftVisible {
			t.Error("left face should stay hidden while opening the cover")
		}
		if l.Leaf == nil || l.Leaf.Front.Kind != KindCover {
			t.Errorf("leaf = %+v, want cover on the front", l.Leaf)
		}
	})

	t.Run("idle has no leaf", func(t *testing.T) {
		c := New(pages)
		if c.Layout().Leaf != nil {
			t.Error("leaf present while idle")
		}
	})
}

func TestLabelAndRatio(t *testing.T) {
	c := New(samplePages(6))

	tests := []struct {
		view  int
		label string
		ratio float64
	}{
		{0, "Cover", 0},
		{1, "Pages 1 and 2", 0.25},
		{3, "Pages 5 and 6", 0.75},
		{4, "End", 1},
	}
	for _, tt := range tests {
		c.view = tt.view
		if got := c.Label(); got != tt.label {
			t.Errorf("view %d: Label() = %q, want %q", tt.view, got, tt.label)
		}
		if got := c.Ratio(); got != tt.ratio {
			t.Errorf("view %d: Ratio() = %v, want %v", tt.view, got, tt.ratio)
		}
	}
}

func TestSideString(t *testing.T) {
	tests := []struct {
		side Side
		want string
	}{
		{SideNone, "none"},
		{SideNext, "next"},
		{SidePrev, "prev"},
		{Side(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.side.String(); got != tt.want {
			t.Errorf("Side(%d).String() = %q, want %q", tt.side, got, tt.want)
		}
	}
}
