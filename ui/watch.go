package ui

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/fsnotify/fsnotify"
)

type (
	catalogChangedMsg struct{}
	catalogLoadedMsg  struct {
		catalog *book.Catalog
		err     error
	}
)

func (m *catalogModel) initWatcher() {
	var err error
	m.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Error("error creating fsnotify watcher", "error", err)
	}
}

// watchDir is the directory to watch: the catalog directory itself, or the
// one holding the catalog file.
func (m catalogModel) watchDir() string {
	path := m.common.cfg.Path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// relevant reports whether a change to name can affect the catalog.
func (m catalogModel) relevant(name string) bool {
	path := m.common.cfg.Path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Clean(name) == filepath.Clean(path)
	}
	for _, pattern := range book.Extensions {
		if ok, _ := filepath.Match(pattern, filepath.Base(name)); ok {
			return true
		}
	}
	return false
}

func (m catalogModel) watchCatalog() tea.Msg {
	if m.watcher == nil {
		return nil
	}
	dir := m.watchDir()

	if err := m.watcher.Add(dir); err != nil {
		log.Error("error adding dir to fsnotify watcher", "error", err)
		return nil
	}

	log.Info("fsnotify watching dir", "dir", dir)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if !m.relevant(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return catalogChangedMsg{}
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

func (m *catalogModel) closeWatcher() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Close(); err != nil {
		log.Debug("error closing fsnotify watcher", "error", err)
	}
	m.watcher = nil
}

// LoadPath loads a catalog from a file or, for a directory, from every book
// found below it.
func LoadPath(path string) (*book.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if info.IsDir() {
		return book.Discover(path)
	}
	return book.Load(path)
}

func loadCatalogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		c, err := LoadPath(path)
		return catalogLoadedMsg{catalog: c, err: err}
	}
}
