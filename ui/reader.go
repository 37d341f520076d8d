package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/dgnsrekt/flipbook/internal/flipbook"
	"github.com/dgnsrekt/flipbook/internal/narration"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"
)

const statusBarHeight = 1

type readerState int

const (
	readerStateBrowse readerState = iota
	readerStateStatusMessage
)

type readerKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	Read  key.Binding
	Copy  key.Binding
	Close key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k readerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Read, k.Close, k.Help}
}

func (k readerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next},
		{k.Read, k.Copy},
		{k.Close, k.Help, k.Quit},
	}
}

func newReaderKeyMap(narrate bool) readerKeyMap {
	k := readerKeyMap{
		Next:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		Prev:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "previous page")),
		Read:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "read aloud")),
		Copy:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy spread")),
		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close book")),
		Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
	k.Read.SetEnabled(narrate)
	return k
}

type readerStatusMessage struct {
	message string
	isError bool
}

// readerModel shows one open book. It owns both controllers for as long as
// the book is open.
type readerModel struct {
	common *commonModel
	gen    int
	book   *book.Book

	pages    *flipbook.Controller
	narrator *narration.Controller

	keys     readerKeyMap
	help     help.Model
	spinner  spinner.Model
	showHelp bool

	state              readerState
	statusMessage      readerStatusMessage
	statusMessageTimer *time.Timer
	statusMessageStop  chan struct{}
}

func newReaderModel(common *commonModel, gen int, b *book.Book, n *Narration, opts ...flipbook.Option) readerModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = narrationLoadingStyle

	m := readerModel{
		common:   common,
		gen:      gen,
		book:     b,
		pages:    flipbook.New(b.Pages, opts...),
		narrator: n.newController(),
		help:     help.New(),
		spinner:  sp,
	}
	m.keys = newReaderKeyMap(m.narrator != nil)
	m.help.ShowAll = true

	log.Debug("opened book", "id", b.ID, "title", b.Title, "pages", len(b.Pages), "views", m.pages.TotalViews())
	return m
}

// close releases everything the reader holds. Later messages for this
// generation are ignored by the parent.
func (m *readerModel) close() {
	if m.narrator != nil {
		m.narrator.Close()
	}
	m.pages.Cancel()
	m.stopStatusMessageTimer()
	log.Debug("closed book", "id", m.book.ID)
}

func (m readerModel) bookHeight() int {
	h := m.common.height - statusBarHeight
	if m.showHelp {
		h -= lipgloss.Height(m.helpView())
	}
	return max(h, 0)
}

func (m *readerModel) showStatusMessage(msg readerStatusMessage) tea.Cmd {
	m.state = readerStateStatusMessage
	m.statusMessage = msg
	m.stopStatusMessageTimer()
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	m.statusMessageStop = make(chan struct{})

	return waitForStatusMessageTimeout(readerContext, m.statusMessageTimer, m.statusMessageStop)
}

// stopStatusMessageTimer stops the pending timeout and releases whoever is
// waiting on it.
func (m *readerModel) stopStatusMessageTimer() {
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
		m.statusMessageTimer = nil
	}
	if m.statusMessageStop != nil {
		close(m.statusMessageStop)
		m.statusMessageStop = nil
	}
}

// spreadText is what the narrator reads for the current view.
func (m readerModel) spreadText() string {
	left, right := m.pages.Spread()
	return narration.Text(m.book.Title, m.pages.View(), left, right)
}

func (m readerModel) update(msg tea.Msg) (readerModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			if token, ok := m.pages.Next(); ok {
				cmds = append(cmds, settleCmd(m.gen, token, m.pages.SettleDelay()))
			}
		case key.Matches(msg, m.keys.Prev):
			if token, ok := m.pages.Prev(); ok {
				cmds = append(cmds, settleCmd(m.gen, token, m.pages.SettleDelay()))
			}
		case key.Matches(msg, m.keys.Read):
			cmds = append(cmds, m.toggleNarration())
		case key.Matches(msg, m.keys.Copy):
			text := m.spreadText()
			// OSC 52 first, then the native clipboard
			termenv.Copy(text)
			_ = clipboard.WriteAll(text)
			cmds = append(cmds, m.showStatusMessage(readerStatusMessage{message: "Copied spread"}))
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.MouseMsg:
		if cmd := m.handleMouse(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case settleMsg:
		if m.pages.Settle(msg.token) {
			log.Debug("page settled", "view", m.pages.View())
		}

	case narrationFetchedMsg:
		if m.narrator == nil {
			break
		}
		pb, err := m.narrator.Start(msg.res)
		if err != nil {
			cmds = append(cmds, m.showStatusMessage(readerStatusMessage{
				message: "Narration unavailable: " + err.Error(),
				isError: true,
			}))
			break
		}
		if pb != nil {
			cmds = append(cmds, waitForPlaybackCmd(m.gen, msg.res.Ticket, pb))
		}

	case narrationFinishedMsg:
		if m.narrator != nil {
			m.narrator.Finished(msg.ticket)
		}

	case spinner.TickMsg:
		if m.narrator != nil && m.narrator.IsLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case statusMessageTimeoutMsg:
		if applicationContext(msg) == readerContext {
			m.state = readerStateBrowse
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *readerModel) toggleNarration() tea.Cmd {
	if m.narrator == nil {
		return nil
	}
	text := m.spreadText()
	idle := m.narrator.State() == narration.StateIdle
	req, ok := m.narrator.Toggle(text)
	if !ok {
		if idle && strings.TrimSpace(text) == "" {
			return m.showStatusMessage(readerStatusMessage{message: narration.ErrNothingToRead.Error(), isError: true})
		}
		return nil
	}
	return tea.Batch(m.spinner.Tick, fetchNarrationCmd(m.gen, m.narrator, req))
}

// handleMouse feeds pointer events to the page-turn gesture. Presses
// outside the book are ignored; motion and release always go through so
// a drag that leaves the book still ends.
func (m *readerModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	width := float64(m.common.width)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.Y >= m.bookHeight() {
			return nil
		}
		m.pages.Press(float64(msg.X), width)
	case tea.MouseActionMotion:
		m.pages.Move(float64(msg.X))
	case tea.MouseActionRelease:
		if token, ok := m.pages.Release(); ok {
			return settleCmd(m.gen, token, m.pages.SettleDelay())
		}
	}
	return nil
}

func (m readerModel) View() string {
	var b strings.Builder

	border := lipgloss.RoundedBorder()
	if m.common.cfg.ASCII {
		border = lipgloss.Border{
			Top: "-", Bottom: "-", Left: "|", Right: "|",
			TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
		}
	}

	fmt.Fprint(&b, renderSpread(m.pages.Layout(), m.book, m.common.width, m.bookHeight(), border)+"\n")
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func (m readerModel) statusBarView(b *strings.Builder) {
	showStatusMessage := m.state == readerStateStatusMessage

	logo := logoView()

	position := statusBarPosStyle(fmt.Sprintf(" %d/%d ", m.pages.View()+1, m.pages.TotalViews()))
	helpNote := statusBarHelpStyle(" ? Help ")

	var (
		note      string
		narrating string
	)
	if showStatusMessage {
		note = m.statusMessage.message
	} else {
		note = m.book.Title + " · " + m.pages.Label()
		switch {
		case m.narrator == nil:
		case m.narrator.IsLoading():
			narrating = narrationLoadingStyle.Render(" " + m.spinner.View() + " preparing narration ")
		case m.narrator.IsSpeaking():
			narrating = narrationSpeakingStyle.Render(" ♪ reading aloud ")
		}
	}

	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(narrating)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	noteStyle := statusBarNoteStyle
	switch {
	case showStatusMessage && m.statusMessage.isError:
		noteStyle = statusBarErrorStyle
	case showStatusMessage:
		noteStyle = statusBarMessageStyle
	}
	note = noteStyle(note)

	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(narrating)-
			ansi.PrintableRuneWidth(position)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := noteStyle(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		narrating,
		position,
		helpNote,
	)
}

func (m readerModel) helpView() string {
	s := "\n" + m.help.View(m.keys)
	if m.narrator != nil && m.common.cfg.Voice != "" {
		s += "\n\n" + subtleStyle.Render(fmt.Sprintf("voice %s · %s", m.common.cfg.Voice, m.common.cfg.Model))
	}
	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := range lines {
			lines[i] += strings.Repeat(" ", max(m.common.width-ansi.PrintableRuneWidth(lines[i]), 0))
		}
		s = strings.Join(lines, "\n")
	}
	return helpViewStyle.Render(s)
}
