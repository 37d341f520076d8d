package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/flipbook/internal/book"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const maxListWidth = 100

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the books in the catalog",
	Long:    paragraph(fmt.Sprintf("\n%s the books of a catalog with their IDs, to open one with --book.", keyword("List"))),
	Example: paragraph("flipbook list\nflipbook list --catalog ~/books"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog(catalogPath)
		if err != nil {
			return err
		}

		out, err := renderCatalog(catalog, listWidth())
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err //nolint:wrapcheck
	},
}

func listWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return min(w, maxListWidth)
}

// catalogMarkdown describes every book of c.
func catalogMarkdown(c *book.Catalog) string {
	var md strings.Builder
	if c.Author != "" {
		fmt.Fprintf(&md, "# Books by %s\n\n", c.Author)
	} else {
		md.WriteString("# Books\n\n")
	}
	for _, b := range c.Books {
		fmt.Fprintf(&md, "## %s\n\n", b.Title)
		if b.Subtitle != "" {
			fmt.Fprintf(&md, "*%s*\n\n", b.Subtitle)
		}
		if b.Description != "" {
			fmt.Fprintf(&md, "%s\n\n", b.Description)
		}
		fmt.Fprintf(&md, "`%s` · %d pages", b.ID, len(b.Pages))
		if b.Genre != "" {
			fmt.Fprintf(&md, " · %s", b.Genre)
		}
		md.WriteString("\n\n")
	}
	return md.String()
}

func renderCatalog(c *book.Catalog, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(catalogMarkdown(c))
	if err != nil {
		return "", fmt.Errorf("unable to render catalog: %w", err)
	}
	return out, nil
}
