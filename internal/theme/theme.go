// Package theme holds the lipgloss styles used to print analysis reports.
// Every rendered element refers to a style in a Theme so the whole output
// can be recoloured, or left plain for pipes and files.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme holds a style for every element of a report.
type Theme struct {
	Name string

	// Headings
	Title    lipgloss.Style
	Database lipgloss.Style
	Section  lipgloss.Style

	// Schema objects
	Table      lipgloss.Style
	View       lipgloss.Style
	Remote     lipgloss.Style
	Column     lipgloss.Style
	ColumnType lipgloss.Style
	Key        lipgloss.Style
	Border     lipgloss.Style
	Header     lipgloss.Style

	// SQL syntax highlighting
	SQLKeyword    lipgloss.Style
	SQLString     lipgloss.Style
	SQLNumber     lipgloss.Style
	SQLComment    lipgloss.Style
	SQLOperator   lipgloss.Style
	SQLFunction   lipgloss.Style
	SQLType       lipgloss.Style
	SQLIdentifier lipgloss.Style

	// General
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	MutedText   lipgloss.Style
}

// palette is the handful of colours a theme is built from.
type palette struct {
	accent, database, table, view, remote, text, muted string
	keyword, str, number, comment, function, typ, ident string
	err, ok, warn                                       string
}

func fg(c string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

func build(name string, p palette) *Theme {
	return &Theme{
		Name: name,

		Title:    fg(p.accent).Bold(true).Underline(true),
		Database: fg(p.database).Bold(true),
		Section:  fg(p.accent).Bold(true).MarginTop(1),

		Table:      fg(p.table).Bold(true),
		View:       fg(p.view).Bold(true),
		Remote:     fg(p.remote).Italic(true),
		Column:     fg(p.text),
		ColumnType: fg(p.muted).Italic(true),
		Key:        fg(p.database).Bold(true),
		Border:     fg(p.muted),
		Header:     fg(p.accent).Bold(true).Padding(0, 1),

		SQLKeyword:    fg(p.keyword).Bold(true),
		SQLString:     fg(p.str),
		SQLNumber:     fg(p.number),
		SQLComment:    fg(p.comment).Italic(true),
		SQLOperator:   fg(p.text),
		SQLFunction:   fg(p.function),
		SQLType:       fg(p.typ),
		SQLIdentifier: fg(p.ident),

		ErrorText:   fg(p.err).Bold(true),
		SuccessText: fg(p.ok),
		WarningText: fg(p.warn),
		MutedText:   fg(p.muted),
	}
}

func newDefaultTheme() *Theme {
	return build("default", palette{
		accent: "#569CD6", database: "#DCDCAA", table: "#4EC9B0", view: "#C586C0",
		remote: "#9CDCFE", text: "#D4D4D4", muted: "#808080",
		keyword: "#569CD6", str: "#CE9178", number: "#B5CEA8", comment: "#6A9955",
		function: "#DCDCAA", typ: "#4EC9B0", ident: "#9CDCFE",
		err: "#F44747", ok: "#6A9955", warn: "#CCA700",
	})
}

func newLightTheme() *Theme {
	return build("light", palette{
		accent: "#0451A5", database: "#795E26", table: "#267F99", view: "#AF00DB",
		remote: "#001080", text: "#1E1E1E", muted: "#A0A0A0",
		keyword: "#0000FF", str: "#A31515", number: "#098658", comment: "#008000",
		function: "#795E26", typ: "#267F99", ident: "#001080",
		err: "#E51400", ok: "#16825D", warn: "#BF8803",
	})
}

func newMonokaiTheme() *Theme {
	return build("monokai", palette{
		accent: "#F92672", database: "#E6DB74", table: "#A6E22E", view: "#AE81FF",
		remote: "#66D9EF", text: "#F8F8F2", muted: "#75715E",
		keyword: "#F92672", str: "#E6DB74", number: "#AE81FF", comment: "#75715E",
		function: "#A6E22E", typ: "#66D9EF", ident: "#F8F8F2",
		err: "#F92672", ok: "#A6E22E", warn: "#E6DB74",
	})
}

// newPlainTheme renders nothing but text.
func newPlainTheme() *Theme {
	s := lipgloss.NewStyle()
	return &Theme{
		Name:  "plain",
		Title: s, Database: s, Section: s.MarginTop(1),
		Table: s, View: s, Remote: s, Column: s, ColumnType: s, Key: s, Border: s, Header: s.Padding(0, 1),
		SQLKeyword: s, SQLString: s, SQLNumber: s, SQLComment: s,
		SQLOperator: s, SQLFunction: s, SQLType: s, SQLIdentifier: s,
		ErrorText: s, SuccessText: s, WarningText: s, MutedText: s,
	}
}

// Themes maps theme names to their definitions.
var Themes = map[string]*Theme{
	"default": newDefaultTheme(),
	"light":   newLightTheme(),
	"monokai": newMonokaiTheme(),
	"plain":   newPlainTheme(),
}

// Default returns the default dark theme.
func Default() *Theme {
	return Themes["default"]
}

// Get returns the theme identified by name. If no theme with that name exists
// it falls back to the default theme.
func Get(name string) *Theme {
	if t, ok := Themes[name]; ok {
		return t
	}
	return Default()
}

// IsPlain reports whether th renders without colour.
func (th *Theme) IsPlain() bool { return th.Name == "plain" }
