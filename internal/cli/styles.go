// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Palette.
var (
	SpiceColor   = lipgloss.Color("#FF6B6B")
	IncomeColor  = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(SpiceColor).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(IncomeColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(SpiceColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// IncomeStyle and ExpenseStyle color amounts by the way money moved.
	IncomeStyle  = lipgloss.NewStyle().Foreground(IncomeColor)
	ExpenseStyle = lipgloss.NewStyle().Foreground(SpiceColor)

	// BoxStyle frames summaries.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// TableHeaderStyle underlines the header row of a table.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(BorderColor)

	// TableCellStyle keeps columns apart.
	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	SpiceIcon   = "🌶️"
	ChartIcon   = "📊"
	BellIcon    = "🔔"
	DefaultIcon = "★"
)

func withIcon(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string { return withIcon(SuccessStyle, SuccessIcon, message) }

// FormatError formats an error message with icon.
func FormatError(message string) string { return withIcon(ErrorStyle, ErrorIcon, message) }

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string { return withIcon(WarningStyle, WarningIcon, message) }

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string { return withIcon(InfoStyle, InfoIcon, message) }

// FormatTitle formats a section title.
func FormatTitle(title string) string { return withIcon(TitleStyle, SpiceIcon, title) }

// RenderBox renders content under a title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}

// FormatAmount renders an amount with two decimals, signed and colored by
// entry type. Transfers carry no sign.
func FormatAmount(amount decimal.Decimal, entryType model.EntryType) string {
	text := amount.StringFixed(2)
	switch entryType {
	case model.TypeIncome:
		return IncomeStyle.Render("+" + text)
	case model.TypeExpense:
		return ExpenseStyle.Render("-" + text)
	default:
		return text
	}
}
