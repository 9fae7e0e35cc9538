package report

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/schemahawk/internal/theme"
)

// Highlighter tokenises SQL text using chroma and renders it with lipgloss
// styles from a theme.
type Highlighter struct {
	lexer chroma.Lexer
}

// lexerNames maps adapter names to chroma lexers.
var lexerNames = map[string]string{
	"postgres": "PostgreSQL",
	"mysql":    "MySQL",
}

// NewHighlighter picks the lexer of the given adapter, falling back to the
// generic SQL lexer.
func NewHighlighter(adapterName string) *Highlighter {
	var l chroma.Lexer
	if name, ok := lexerNames[adapterName]; ok {
		l = lexers.Get(name)
	}
	if l == nil {
		l = lexers.Get("SQL")
	}
	if l == nil {
		l = lexers.Fallback
	}
	return &Highlighter{lexer: chroma.Coalesce(l)}
}

// Highlight styles each token of sql. Newlines are preserved so multi-line
// definitions keep their layout. A nil or plain theme returns sql unchanged.
func (h *Highlighter) Highlight(sql string, th *theme.Theme) string {
	if th == nil || th.IsPlain() {
		return sql
	}

	iter, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) * 2)

	for _, tok := range iter.Tokens() {
		if tok.Value == "" {
			continue
		}
		style, ok := styleFor(tok.Type, th)
		if !ok {
			b.WriteString(tok.Value)
			continue
		}
		lines := strings.Split(tok.Value, "\n")
		for i, line := range lines {
			if line != "" {
				b.WriteString(style.Render(line))
			}
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
	}
	out := b.String()
	// some lexers append a newline
	if !strings.HasSuffix(sql, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}

func styleFor(tt chroma.TokenType, th *theme.Theme) (lipgloss.Style, bool) {
	switch {
	// KeywordType is a Keyword subcategory; check it first so types get
	// their own colour.
	case tt == chroma.KeywordType:
		return th.SQLType, true
	case tt == chroma.NameFunction || tt == chroma.NameBuiltin:
		return th.SQLFunction, true
	case tt.InCategory(chroma.Keyword):
		return th.SQLKeyword, true
	case tt.InSubCategory(chroma.LiteralString):
		return th.SQLString, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return th.SQLNumber, true
	case tt.InCategory(chroma.Comment):
		return th.SQLComment, true
	case tt.InCategory(chroma.Operator):
		return th.SQLOperator, true
	case tt == chroma.Name:
		return th.SQLIdentifier, true
	default:
		return lipgloss.Style{}, false
	}
}
