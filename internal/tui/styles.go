package tui

import "github.com/charmbracelet/lipgloss"

const tileWidth = 10

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	tileStyle = lipgloss.NewStyle().
			Width(tileWidth).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444"))

	hiddenTileStyle = tileStyle.
			Foreground(lipgloss.Color("#626262"))

	faceUpTileStyle = tileStyle.
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	matchedTileStyle = tileStyle.
				Foreground(lipgloss.Color("#04B575")).
				BorderForeground(lipgloss.Color("#04B575"))

	emptyTileStyle = lipgloss.NewStyle().
			Width(tileWidth).
			Border(lipgloss.HiddenBorder())

	cursorBorder = lipgloss.Color("#FFD700")
	hintBorder   = lipgloss.Color("#7D56F4")
)
