package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
)

// statusLabel renders a result status.
func statusLabel(status domain.Status) string {
	if status == domain.StatusOK {
		return okStyle.Render("ok")
	}
	return errorStyle.Render(string(status))
}
