package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

func (m ResultModel) View() string {
	title := titleStyle.Render(m.title)

	summary := fmt.Sprintf("%d records", m.recordCount)
	if m.diagCount > 0 {
		summary += warnStyle.Render(fmt.Sprintf("  %d diagnostics", m.diagCount))
	}

	var body string
	if m.showDiags {
		body = boxStyle.Render("Diagnostics\n" + m.diags.View())
	} else {
		body = boxStyle.Render("Records\n" + m.records.View())
	}

	out := lipgloss.JoinVertical(lipgloss.Left, title, summary, body)
	return out + "\nPress tab to switch view, q to quit."
}
