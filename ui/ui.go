// Package ui provides the terminal interface for flipbook.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/dgnsrekt/flipbook/internal/flipbook"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied"
	ellipsis             = "…"
)

// NewProgram returns a new Tea program. A nil narration disables reading
// aloud.
func NewProgram(cfg Config, catalog *book.Catalog, narration *Narration) *tea.Program {
	log.Debug(
		"Starting flipbook",
		"books", catalog.Len(),
		"mouse", cfg.EnableMouse,
		"narration", narration != nil,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, catalog, narration)
	return tea.NewProgram(m, opts...)
}

type statusMessageTimeoutMsg applicationContext

// applicationContext indicates the area of the application something applies
// to. Occasionally used as an argument to commands and messages.
type applicationContext int

const (
	catalogContext applicationContext = iota
	readerContext
)

// state is the top-level application state.
type state int

const (
	stateShowCatalog state = iota
	stateShowBook
)

func (s state) String() string {
	return map[state]string{
		stateShowCatalog: "showing catalog",
		stateShowBook:    "showing book",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	width  int
	height int
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error

	narration *Narration
	pageOpts  []flipbook.Option

	catalog catalogModel
	reader  *readerModel

	// incremented for every book opened
	gen int
}

func newModel(cfg Config, catalog *book.Catalog, narration *Narration) model {
	if cfg.GlamourStyle == styles.AutoStyle || cfg.GlamourStyle == "" {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	common := commonModel{cfg: cfg}
	m := model{
		common:    &common,
		state:     stateShowCatalog,
		narration: narration,
		catalog:   newCatalogModel(&common, catalog),
	}

	if cfg.Book != "" {
		b, err := catalog.Find(cfg.Book)
		if err != nil {
			m.fatalErr = err
			return m
		}
		m.openBook(b)
	}
	return m
}

// openBook replaces any open reader with a fresh one for b.
func (m *model) openBook(b *book.Book) {
	m.closeBook()
	m.gen++
	r := newReaderModel(m.common, m.gen, b, m.narration, m.pageOpts...)
	m.reader = &r
	m.state = stateShowBook
}

// closeBook stops narration and drops the reader. Note that pending
// messages of the closed reader are filtered by generation.
func (m *model) closeBook() {
	if m.reader == nil {
		return
	}
	m.reader.close()
	m.reader = nil
	m.state = stateShowCatalog
}

func (m model) Init() tea.Cmd {
	log.Debug("Init() called", "state", m.state)
	if m.catalog.watcher != nil {
		return m.catalog.watchCatalog
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			return m.quit()

		case "q":
			if m.state == stateShowCatalog && m.catalog.filtering() {
				break
			}
			return m.quit()

		case "esc":
			if m.state == stateShowBook {
				m.closeBook()
				return m, nil
			}

		case "enter":
			if m.state == stateShowCatalog && !m.catalog.filtering() {
				if b := m.catalog.selected(); b != nil {
					m.openBook(b)
				}
				return m, nil
			}

		case "ctrl+z":
			return m, tea.Suspend
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.catalog.setSize(msg.Width, msg.Height)

	case tea.MouseMsg:
		// gestures only mean something on an open book
		if m.state != stateShowBook {
			return m, nil
		}

	case settleMsg:
		if !m.current(msg.gen) {
			return m, nil
		}
	case narrationFetchedMsg:
		if !m.current(msg.gen) {
			log.Debug("dropping narration for closed book", "id", msg.res.ID)
			return m, nil
		}
	case narrationFinishedMsg:
		if !m.current(msg.gen) {
			return m, nil
		}

	case catalogChangedMsg:
		return m, loadCatalogCmd(m.common.cfg.Path)

	case catalogLoadedMsg:
		if msg.err != nil {
			log.Error("error reloading catalog", "error", msg.err)
		} else {
			log.Info("catalog reloaded", "books", msg.catalog.Len())
			m.catalog.setCatalog(msg.catalog)
		}
		cmds = append(cmds, m.catalog.watchCatalog)
	}

	switch m.state {
	case stateShowCatalog:
		newCatalogModel, cmd := m.catalog.update(msg)
		m.catalog = newCatalogModel
		cmds = append(cmds, cmd)

	case stateShowBook:
		newReaderModel, cmd := m.reader.update(msg)
		m.reader = &newReaderModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) current(gen int) bool {
	return m.reader != nil && m.reader.gen == gen
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.closeBook()
	m.catalog.closeWatcher()
	return m, tea.Quit
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state { //nolint:exhaustive
	case stateShowBook:
		return m.reader.View()
	default:
		return m.catalog.view()
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

// waitForStatusMessageTimeout reports the end of a status message. It gives
// up once stop is closed, since a stopped timer never fires.
func waitForStatusMessageTimeout(appCtx applicationContext, t *time.Timer, stop <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-t.C:
			return statusMessageTimeoutMsg(appCtx)
		case <-stop:
			return nil
		}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
