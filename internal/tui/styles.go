package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the browser views.
var (
	ColorHeader    = lipgloss.Color("99")  //nolint:gochecknoglobals // palette
	ColorLabel     = lipgloss.Color("245") //nolint:gochecknoglobals // palette
	ColorValue     = lipgloss.Color("252") //nolint:gochecknoglobals // palette
	ColorMuted     = lipgloss.Color("240") //nolint:gochecknoglobals // palette
	ColorHighlight = lipgloss.Color("212") //nolint:gochecknoglobals // palette
	ColorError     = lipgloss.Color("196") //nolint:gochecknoglobals // palette
	ColorSelectedF = lipgloss.Color("229") //nolint:gochecknoglobals // palette
	ColorSelectedB = lipgloss.Color("57")  //nolint:gochecknoglobals // palette
)

// Styles used by the browser.
var (
	HeaderStyle = lipgloss.NewStyle(). //nolint:gochecknoglobals // style
			Foreground(ColorHeader).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(ColorMuted).
			BorderBottom(true)

	SelectedStyle = lipgloss.NewStyle(). //nolint:gochecknoglobals // style
			Foreground(ColorSelectedF).
			Background(ColorSelectedB)

	DetailStyle = lipgloss.NewStyle().Foreground(ColorLabel) //nolint:gochecknoglobals // style

	StatusStyle = lipgloss.NewStyle(). //nolint:gochecknoglobals // style
			Foreground(ColorValue).
			Background(lipgloss.Color("236"))

	StatusKeyStyle = lipgloss.NewStyle(). //nolint:gochecknoglobals // style
			Foreground(ColorHighlight).
			Background(lipgloss.Color("236")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError).Bold(true) //nolint:gochecknoglobals // style
)
