package tui

import (
	"github.com/charmbracelet/lipgloss"

	"taskpro/internal/service"
)

// One Dark Pro color palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorFgComment = lipgloss.Color("#5C6370")
	ColorBgSelect  = lipgloss.Color("#2C313C")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")

	ColorBorder = lipgloss.Color("#3F4451")
)

// Component styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PaneTitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Background(ColorBgSelect).
			Bold(true)

	FilterStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	// Task item styles
	TaskPendingStyle = lipgloss.NewStyle().
				Foreground(ColorFgPrimary)

	TaskInProgressStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	TaskCompleteStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Strikethrough(true)

	PriorityHighStyle = lipgloss.NewStyle().
				Foreground(ColorRed)

	PriorityMediumStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	PriorityLowStyle = lipgloss.NewStyle().
				Foreground(ColorFgMuted)

	// Profile card
	AvatarStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(0, 1).
			Bold(true)

	StatValueStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	// Form overlay
	FormStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Width(13)

	FocusedLabelStyle = LabelStyle.
				Foreground(ColorGreen).
				Bold(true)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)
)

func statusStyle(s service.Status) lipgloss.Style {
	switch s {
	case service.StatusCompleted:
		return TaskCompleteStyle
	case service.StatusInProgress:
		return TaskInProgressStyle
	}
	return TaskPendingStyle
}

func priorityStyle(p service.Priority) lipgloss.Style {
	switch p {
	case service.PriorityHigh:
		return PriorityHighStyle
	case service.PriorityMedium:
		return PriorityMediumStyle
	}
	return PriorityLowStyle
}
