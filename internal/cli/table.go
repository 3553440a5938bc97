package cli

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Column is a table column. A zero Width sizes the column to its content.
type Column struct {
	Title string
	Width int
}

// RenderTable renders rows as a static, non-interactive table.
func RenderTable(columns []Column, rows [][]string) string {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		width := c.Width
		if width == 0 {
			width = lipgloss.Width(c.Title)
			for _, row := range rows {
				if i < len(row) {
					width = max(width, lipgloss.Width(row[i]))
				}
			}
		}
		cols[i] = table.Column{Title: c.Title, Width: width}
	}

	trows := make([]table.Row, len(rows))
	for i, row := range rows {
		trows[i] = table.Row(row)
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(trows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle.Padding(0, 1)
	s.Cell = TableCellStyle.PaddingLeft(1)
	s.Selected = s.Cell
	t.SetStyles(s)

	return t.View()
}
