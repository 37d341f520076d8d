package book

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LoadMarkdown reads a manuscript written in markdown. The first level one
// heading is the title and an emphasized paragraph right below it is the
// subtitle. Every other paragraph becomes a page.
func LoadMarkdown(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manuscript: %w", err)
	}
	b, err := ParseMarkdown(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.ID = idFromPath(path)
	b.Source = path
	return b, nil
}

// ParseMarkdown builds a book from markdown source.
func ParseMarkdown(src []byte) (*Book, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var (
		b          Book
		afterTitle bool
	)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			if n.Level == 1 && b.Title == "" {
				b.Title = nodeText(n, src)
				afterTitle = true
				continue
			}
		case *ast.Paragraph:
			if afterTitle && b.Subtitle == "" && isEmphasis(n) {
				b.Subtitle = nodeText(n, src)
				afterTitle = false
				continue
			}
			if t := nodeText(n, src); t != "" {
				b.Pages = append(b.Pages, t)
			}
		}
		afterTitle = false
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func isEmphasis(p *ast.Paragraph) bool {
	if p.ChildCount() != 1 {
		return false
	}
	_, ok := p.FirstChild().(*ast.Emphasis)
	return ok
}

// nodeText flattens the inline content of n. Hard line breaks are kept so
// verse survives; soft breaks become spaces.
func nodeText(n ast.Node, src []byte) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			v := t.Segment.Value(src)
			switch {
			case t.HardLineBreak():
				buf.Write(bytes.TrimRight(v, " \\"))
				buf.WriteByte('\n')
				return ast.WalkContinue, nil
			case t.SoftLineBreak():
				buf.Write(v)
				buf.WriteByte(' ')
			default:
				buf.Write(v)
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
