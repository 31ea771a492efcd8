package viz

import "github.com/charmbracelet/lipgloss"

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2).Foreground(lipgloss.Color("215"))
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)

	StatusRunning = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	StatusPaused  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	StatusWarn    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444"))

	// Table styles used by the CLI listings.
	TableHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	TableCell   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	Subtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
)

// Label renders a fixed-width label followed by a value.
func Label(name, value string) string {
	return labelStyle.Render(name) + valueStyle.Render(value)
}
