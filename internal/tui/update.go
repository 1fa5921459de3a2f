package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "d":
			m.showDiags = !m.showDiags
			return m, nil
		}
	}

	if m.showDiags {
		m.diags, cmd = m.diags.Update(msg)
	} else {
		m.records, cmd = m.records.Update(msg)
	}
	return m, cmd
}
