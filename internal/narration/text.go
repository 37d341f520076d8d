package narration

import (
	"strings"

	"github.com/dgnsrekt/flipbook/internal/flipbook"
)

const promptPrefix = "Read in a narrative voice: "

// Text returns what should be read aloud for the spread at view. The cover
// announces the title; any other spread reads its page texts in order.
func Text(title string, view int, left, right flipbook.Face) string {
	if view == 0 {
		return "Cover: " + title
	}

	var parts []string
	for _, f := range []flipbook.Face{left, right} {
		if f.IsPage() {
			parts = append(parts, f.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Prompt wraps text in the delivery instruction sent to the synthesizer.
func Prompt(text string) string {
	return promptPrefix + text
}
