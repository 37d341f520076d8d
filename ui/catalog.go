package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/fsnotify/fsnotify"
)

const detailMinWidth = 30

type bookItem struct {
	book *book.Book
}

func (i bookItem) Title() string { return i.book.Title }

func (i bookItem) Description() string {
	parts := make([]string, 0, 3)
	if i.book.Genre != "" {
		parts = append(parts, i.book.Genre)
	}
	parts = append(parts, fmt.Sprintf("%d pages", len(i.book.Pages)))
	return strings.Join(parts, " · ")
}

func (i bookItem) FilterValue() string { return i.book.Title }

type catalogModel struct {
	common  *commonModel
	catalog *book.Catalog
	list    list.Model

	// rendered description of the selected book, keyed by index and width
	detail      string
	detailIndex int
	detailWidth int

	watcher *fsnotify.Watcher
}

func newCatalogModel(common *commonModel, c *book.Catalog) catalogModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = logoStyle

	m := catalogModel{
		common:      common,
		list:        l,
		detailIndex: -1,
	}
	m.setCatalog(c)
	if common.cfg.Path != "" {
		m.initWatcher()
	}
	return m
}

func (m *catalogModel) setCatalog(c *book.Catalog) {
	m.catalog = c
	items := make([]list.Item, len(c.Books))
	for i := range c.Books {
		items[i] = bookItem{book: &c.Books[i]}
	}
	m.list.SetItems(items)

	title := "Books"
	if c.Author != "" {
		title = "Books by " + c.Author
	}
	m.list.Title = title
	m.detailIndex = -1
}

func (m *catalogModel) setSize(w, h int) {
	m.list.SetSize(m.listWidth(w), h)
}

func (m catalogModel) listWidth(w int) int {
	if w < 2*detailMinWidth {
		return w
	}
	return w * 2 / 5
}

func (m catalogModel) filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// selected returns the highlighted book, or nil for an empty catalog.
func (m catalogModel) selected() *book.Book {
	it, ok := m.list.SelectedItem().(bookItem)
	if !ok {
		return nil
	}
	return it.book
}

func (m catalogModel) update(msg tea.Msg) (catalogModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	if w := m.common.width - m.listWidth(m.common.width); w >= detailMinWidth {
		if i := m.list.Index(); i != m.detailIndex || w != m.detailWidth {
			m.detail = m.renderDetail(w - 2)
			m.detailIndex, m.detailWidth = i, w
		}
	}
	return m, cmd
}

func (m catalogModel) view() string {
	if len(m.catalog.Books) == 0 {
		return "\n" + indent(subtleStyle.Render("No books found."), 2)
	}
	if m.common.width-m.listWidth(m.common.width) < detailMinWidth {
		return m.list.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.detail)
}

func (m catalogModel) renderDetail(width int) string {
	b := m.selected()
	if b == nil {
		return ""
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", b.Title)
	if b.Subtitle != "" {
		fmt.Fprintf(&md, "*%s*\n\n", b.Subtitle)
	}
	if b.Description != "" {
		fmt.Fprintf(&md, "%s\n\n", b.Description)
	}
	if b.Genre != "" {
		fmt.Fprintf(&md, "`%s` · ", b.Genre)
	}
	fmt.Fprintf(&md, "%d pages\n", len(b.Pages))
	if m.catalog.Bio != "" {
		fmt.Fprintf(&md, "\n---\n\n%s\n", m.catalog.Bio)
	}

	out, err := renderMarkdown(md.String(), m.common.cfg.GlamourStyle, width)
	if err != nil {
		log.Error("error rendering book details", "error", err)
		return md.String()
	}
	return out
}

func renderMarkdown(md, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamourStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return out, nil
}

// glamourStyle accepts a built-in style name or a path to a JSON style.
func glamourStyle(style string) glamour.TermRendererOption {
	if _, ok := styles.DefaultStyles[style]; ok {
		return glamour.WithStandardStyle(style)
	}
	return glamour.WithStylePath(style)
}
