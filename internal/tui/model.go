// Package tui is a terminal browser for parse results: one table for the
// parsed records, one for the diagnostics, toggled with tab. It only
// presents finished parser output and never reaches back into the core.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"netsecparse/internal/diag"
)

type ResultModel struct {
	title     string
	records   table.Model
	diags     table.Model
	showDiags bool

	recordCount int
	diagCount   int
}

// NewResultModel builds the browser from pre-rendered record rows plus the
// raw diagnostics list.
func NewResultModel(title string, columns []table.Column, rows []table.Row, diags []diag.Diagnostic) ResultModel {
	records := newTable(columns, rows)

	diagCols := []table.Column{
		{Title: "Offset", Width: 8},
		{Title: "Reason", Width: 22},
		{Title: "Detail", Width: 40},
		{Title: "Fragment", Width: 40},
	}
	diagRows := make([]table.Row, len(diags))
	for i, d := range diags {
		diagRows[i] = table.Row{
			fmt.Sprintf("%d", d.Offset),
			string(d.Reason),
			d.Detail,
			d.Fragment,
		}
	}

	return ResultModel{
		title:       title,
		records:     records,
		diags:       newTable(diagCols, diagRows),
		recordCount: len(rows),
		diagCount:   len(diags),
	}
}

func newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m ResultModel) Init() tea.Cmd {
	return nil
}
