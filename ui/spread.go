package ui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/dgnsrekt/flipbook/internal/flipbook"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	pageMarginX = 3
	pageMarginY = 1

	// narrowest leaf still drawn mid-turn
	minLeafWidth = 1
)

// faceLine is one row of a page face, exactly as wide as the face.
type faceLine struct {
	text  string
	style lipgloss.Style
}

type faceBlock []faceLine

// cut returns the columns [from, to) of every row.
func (b faceBlock) cut(from, to int) faceBlock {
	out := make(faceBlock, len(b))
	for i, l := range b {
		out[i] = faceLine{text: cutColumns(l.text, from, to), style: l.style}
	}
	return out
}

func (b faceBlock) join(other faceBlock) faceBlock {
	out := make(faceBlock, len(b))
	for i := range b {
		out[i] = b[i]
		if i < len(other) {
			out[i].text = b[i].style.Render(b[i].text) + other[i].style.Render(other[i].text)
			out[i].style = lipgloss.NewStyle()
		}
	}
	return out
}

func (b faceBlock) withStyle(s lipgloss.Style) faceBlock {
	out := make(faceBlock, len(b))
	for i, l := range b {
		out[i] = faceLine{text: l.text, style: s}
	}
	return out
}

func (b faceBlock) render() []string {
	out := make([]string, len(b))
	for i, l := range b {
		out[i] = l.style.Render(l.text)
	}
	return out
}

// renderFace lays out f in a w by h block.
func renderFace(f flipbook.Face, bk *book.Book, w, h int, visible bool) faceBlock {
	w, h = max(w, 0), max(h, 0)
	rows := make(faceBlock, h)
	for i := range rows {
		rows[i] = faceLine{text: strings.Repeat(" ", w), style: pageStyle}
	}
	if !visible || h == 0 || w == 0 {
		return rows
	}

	inner := max(w-2*pageMarginX, 1)
	put := func(y int, s string, style lipgloss.Style, center bool) {
		if y < 0 || y >= h {
			return
		}
		s = runewidth.Truncate(s, inner, ellipsis)
		pad := pageMarginX
		if center {
			pad = max((w-runewidth.StringWidth(s))/2, 0)
		}
		rows[y] = faceLine{text: runewidth.FillRight(strings.Repeat(" ", pad)+s, w), style: style}
	}

	switch f.Kind {
	case flipbook.KindCover:
		var lines []faceLine
		for _, l := range wrap(bk.Title, inner) {
			lines = append(lines, faceLine{l, coverTitleStyle})
		}
		if bk.Subtitle != "" {
			lines = append(lines, faceLine{"", pageStyle})
			for _, l := range wrap(bk.Subtitle, inner) {
				lines = append(lines, faceLine{l, coverSubtitleStyle})
			}
		}
		if bk.Genre != "" {
			lines = append(lines, faceLine{"", pageStyle}, faceLine{bk.Genre, subtleStyle})
		}
		top := max((h-len(lines))/2, 0)
		for i, l := range lines {
			put(top+i, l.text, l.style, true)
		}

	case flipbook.KindBackCover:
		top := max(h/2-1, 0)
		put(top, "The End", coverTitleStyle, true)
		put(top+2, bk.Title, coverSubtitleStyle, true)

	case flipbook.KindPage:
		body := wrap(f.Text, inner)
		avail := h - 2*pageMarginY - 1
		if len(body) > avail && avail > 0 {
			body = body[:avail]
			body[avail-1] = runewidth.Truncate(body[avail-1]+" "+ellipsis, inner, ellipsis)
		}
		for i, l := range body {
			put(pageMarginY+i, l, pageStyle, false)
		}
		put(h-1, strconv.Itoa(f.Index), pageNumberStyle, true)
	}
	return rows
}

// renderSpread draws the open book: both resting faces and, mid-turn, the
// leaf foreshortened by its angle.
func renderSpread(l flipbook.Layout, bk *book.Book, width, height int, border lipgloss.Border) string {
	// two pages, the spine and the frame
	pageW := max((width-3)/2, 0)
	pageH := max(height-2, 0)

	left := renderFace(l.Left, bk, pageW, pageH, l.LeftVisible)
	right := renderFace(l.Right, bk, pageW, pageH, l.RightVisible)

	if l.Leaf != nil {
		left, right = overlayLeaf(*l.Leaf, left, right, bk, pageW, pageH)
	}

	spine := lipgloss.NewStyle().Foreground(midGray).Render(border.Left)
	rows := make([]string, pageH)
	ls, rs := left.render(), right.render()
	for i := range rows {
		rows[i] = ls[i] + spine + rs[i]
	}

	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(midGray).
		Render(strings.Join(rows, "\n"))
}

// overlayLeaf draws the turning leaf over the resting faces. The leaf is
// hinged at the spine; up to 90 degrees its front covers the page it is
// leaving, past 90 its back lies over the opposite page.
func overlayLeaf(leaf flipbook.Leaf, left, right faceBlock, bk *book.Book, w, h int) (faceBlock, faceBlock) {
	if w == 0 {
		return left, right
	}
	rad := leaf.Angle * math.Pi / 180
	lw := max(int(math.Round(float64(w)*math.Abs(math.Cos(rad)))), minLeafWidth)
	lw = min(lw, w)

	face := leaf.Front
	if leaf.Angle > 90 {
		face = leaf.Back
	}
	block := renderFace(face, bk, lw, h, !face.IsEmpty()).withStyle(leafStyle)

	switch {
	case leaf.Side == flipbook.SideNext && leaf.Angle <= 90:
		right = block.join(right.cut(lw, w))
	case leaf.Side == flipbook.SideNext:
		left = left.cut(0, w-lw).join(block)
	case leaf.Side == flipbook.SidePrev && leaf.Angle <= 90:
		left = left.cut(0, w-lw).join(block)
	default:
		right = block.join(right.cut(lw, w))
	}
	return left, right
}

func wrap(s string, width int) []string {
	if s == "" {
		return nil
	}
	return strings.Split(wordwrap.String(s, width), "\n")
}

// cutColumns returns the display columns [from, to) of s.
func cutColumns(s string, from, to int) string {
	if to <= from {
		return ""
	}
	var (
		b   strings.Builder
		col int
	)
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if col >= from && col+rw <= to {
			b.WriteRune(r)
		}
		col += rw
		if col >= to {
			break
		}
	}
	return runewidth.FillRight(b.String(), to-from)
}
