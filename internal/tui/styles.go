package tui

import "github.com/charmbracelet/lipgloss"

// Static styles, palette carried over from the teacher's gameplay TUI.
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ActionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	FoldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	CallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	RaiseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	StateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
)

// actionStyleFor picks a color by action name, matching the gameplay
// TUI's fold/call/raise palette.
func actionStyleFor(action string) lipgloss.Style {
	switch action {
	case "fold":
		return FoldStyle
	case "check", "call":
		return CallStyle
	case "raise", "allin":
		return RaiseStyle
	default:
		return ActionStyle
	}
}
