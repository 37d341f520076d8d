package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mitchellh/go-homedir"
)

var (
	keyword = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575")).
		Render

	paragraph = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 0, 2).
			Render

	// gemini.api_key <-> FLIPBOOK_GEMINI_API_KEY
	envKeyReplacer = strings.NewReplacer(".", "_")
)

// expandPath expands a leading ~ and environment variables in path.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if p, err := homedir.Expand(path); err == nil {
		path = p
	}
	return os.ExpandEnv(path)
}
