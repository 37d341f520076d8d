// Package book loads the books a reader can open: YAML catalogs, markdown
// manuscripts and EPUB files.
package book

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
)

var (
	// ErrBookNotFound is returned by Find when no book matches the query.
	ErrBookNotFound = errors.New("book not found")

	// ErrUnsupportedFormat is returned by Load for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported book format")

	// ErrMissingTitle is returned for books that have no title.
	ErrMissingTitle = errors.New("book has no title")
)

// Book is one readable work. It does not change while it is open.
type Book struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Genre       string   `yaml:"genre,omitempty"`
	CoverImage  string   `yaml:"cover_image,omitempty"`
	Pages       []string `yaml:"pages"`

	// Source is the file the book was loaded from, empty for built-ins.
	Source string `yaml:"-"`
}

// Catalog is an author's list of books.
type Catalog struct {
	Author string `yaml:"author"`
	Bio    string `yaml:"bio,omitempty"`
	Books  []Book `yaml:"books"`
}

// Extensions lists the file patterns Load understands.
var Extensions = []string{"*.yml", "*.yaml", "*.md", "*.markdown", "*.epub"}

// Load reads a catalog from path, choosing the loader by extension. Single
// book formats yield a catalog holding that one book.
func Load(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return LoadCatalog(path)
	case ".md", ".markdown":
		b, err := LoadMarkdown(path)
		if err != nil {
			return nil, err
		}
		return &Catalog{Books: []Book{*b}}, nil
	case ".epub":
		b, err := LoadEPUB(path)
		if err != nil {
			return nil, err
		}
		return &Catalog{Books: []Book{*b}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Find returns the book whose ID equals query, or else the book whose title
// is the best fuzzy match.
func (c *Catalog) Find(query string) (*Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrBookNotFound
	}
	for i := range c.Books {
		if c.Books[i].ID == query {
			return &c.Books[i], nil
		}
	}

	titles := make([]string, len(c.Books))
	for i, b := range c.Books {
		titles[i] = b.Title
	}
	matches := fuzzy.Find(query, titles)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrBookNotFound, query)
	}
	return &c.Books[matches[0].Index], nil
}

// Merge appends the books of other, keeping the first non-empty author.
func (c *Catalog) Merge(other *Catalog) {
	if c.Author == "" {
		c.Author = other.Author
		c.Bio = other.Bio
	}
	c.Books = append(c.Books, other.Books...)
}

// Len returns the number of books.
func (c *Catalog) Len() int { return len(c.Books) }

func (b *Book) validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// idFromPath derives a stable ID from a file name.
func idFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.ToLower(base)
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == ' ' || r == '_' || r == '.'
	}), "-")
}
