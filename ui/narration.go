package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/flipbook/internal/narration"
)

// Narration wires the read-aloud feature. A nil *Narration disables it.
type Narration struct {
	Synthesizer narration.Synthesizer
	Player      narration.Player

	// Optional. Both must be set for synthesized audio to be reused.
	Cache    narration.Cache
	CacheKey func(prompt string) string
}

func (n *Narration) newController() *narration.Controller {
	if n == nil || n.Synthesizer == nil || n.Player == nil {
		return nil
	}
	var opts []narration.Option
	if n.Cache != nil {
		opts = append(opts, narration.WithCache(n.Cache, n.CacheKey))
	}
	return narration.New(n.Synthesizer, n.Player, opts...)
}

// Messages carry the generation of the reader that issued them so that
// anything arriving after the book was closed is dropped.
type (
	settleMsg struct {
		gen   int
		token uint64
	}

	narrationFetchedMsg struct {
		gen int
		res narration.Result
	}

	narrationFinishedMsg struct {
		gen    int
		ticket uint64
	}
)

// COMMANDS

func settleCmd(gen int, token uint64, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return settleMsg{gen: gen, token: token}
	})
}

func fetchNarrationCmd(gen int, n *narration.Controller, req narration.Request) tea.Cmd {
	return func() tea.Msg {
		return narrationFetchedMsg{gen: gen, res: n.Fetch(req)}
	}
}

func waitForPlaybackCmd(gen int, ticket uint64, pb narration.Playback) tea.Cmd {
	return func() tea.Msg {
		<-pb.Done()
		return narrationFinishedMsg{gen: gen, ticket: ticket}
	}
}
