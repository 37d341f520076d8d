package book

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
)

// Discover loads every book found below dir, honoring .gitignore files.
// Files that fail to load are logged and skipped.
func Discover(dir string) (*Catalog, error) {
	ch, err := gitcha.FindFilesExcept(dir, Extensions, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}

	c := &Catalog{}
	for res := range ch {
		found, err := Load(res.Path)
		if err != nil {
			log.Warn("skipping book", "path", res.Path, "error", err)
			continue
		}
		log.Debug("found book file", "path", res.Path, "books", found.Len())
		c.Merge(found)
	}
	return c, nil
}
