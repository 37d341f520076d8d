package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	normalDim = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray   = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	paper     = lipgloss.AdaptiveColor{Light: "#3A3A3A", Dark: "#E8E2D0"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	green     = lipgloss.Color("#04B575")
	amber     = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#E0B050"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray)

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Padding(0, 1)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	narrationLoadingStyle = lipgloss.NewStyle().
				Foreground(amber).
				Background(statusBarBg)

	narrationSpeakingStyle = lipgloss.NewStyle().
				Foreground(green).
				Background(statusBarBg).
				Bold(true)

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"})

	pageStyle = lipgloss.NewStyle().
			Foreground(paper)

	coverTitleStyle = lipgloss.NewStyle().
			Foreground(fuchsia).
			Bold(true)

	coverSubtitleStyle = lipgloss.NewStyle().
				Foreground(normalDim).
				Italic(true)

	pageNumberStyle = lipgloss.NewStyle().
			Foreground(midGray)

	leafStyle = lipgloss.NewStyle().
			Foreground(paper).
			Background(lipgloss.AdaptiveColor{Light: "#EFEAE0", Dark: "#2A2723"})
)

func logoView() string {
	return logoStyle.Render("FlipBook")
}
