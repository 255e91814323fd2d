package output

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5c800")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f46251")).Bold(true)
	debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9f83e4"))
	tipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4dca7d"))

	branchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ccbf1"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4dca7d")).Bold(true)
)

// style renders text through a lipgloss style when stdout is a terminal,
// and passes it through unchanged otherwise.
func (s *Splog) style(st lipgloss.Style, text string) string {
	if !s.styled {
		return text
	}
	return st.Render(text)
}

// Branch styles a branch name for console output.
func (s *Splog) Branch(name string) string {
	return s.style(branchStyle, name)
}

// CurrentBranch styles the currently checked out branch name.
func (s *Splog) CurrentBranch(name string) string {
	return s.style(currentStyle, name)
}
