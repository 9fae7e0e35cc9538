// Package sqlparam rewrites the named tokens allowed in operator-supplied SQL
// fragments into positional placeholders.
//
// Recognised tokens are :schema and :owner (the schema being read) and, when
// a table is in scope, :table and :view. A token runs from the colon up to
// the next whitespace, comma, quote or closing parenthesis. Because every colon
// starts a token, fragments cannot use the "::" cast syntax; write CAST(...)
// instead.
package sqlparam

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownParameter is returned for a token the resolver does not know.
var ErrUnknownParameter = errors.New("unknown sql parameter")

// ParamError describes a malformed fragment.
type ParamError struct {
	Token string
	SQL   string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("unexpected parameter %q in sql: %s", e.Token, e.SQL)
}

func (e *ParamError) Unwrap() error { return ErrUnknownParameter }

// Style selects the positional placeholder syntax of the target driver.
type Style int

const (
	// Question emits "?" (database/sql drivers for MySQL, SQLite, DuckDB).
	Question Style = iota
	// Dollar emits "$1", "$2", ... (pgx).
	Dollar
)

const delimiters = " \t\r\n,\"')"

// Context carries the values tokens resolve to. Table is empty when the
// fragment is not table-scoped.
type Context struct {
	Schema string
	// Database stands in for Schema on engines without schemas.
	Database string
	Table    string
}

func (c Context) schema() string {
	if c.Schema != "" {
		return c.Schema
	}
	return c.Database
}

// Resolve returns sql with every token replaced by a placeholder of the
// given style, and the values to bind in order.
func Resolve(sql string, ctx Context, style Style) (string, []any, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.Grow(len(sql))
	rest := sql
	for {
		i := strings.IndexByte(rest, ':')
		if i < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:i])
		rest = rest[i:]
		end := strings.IndexAny(rest, delimiters)
		if end < 0 {
			end = len(rest)
		}
		token := rest[:end]
		rest = rest[end:]

		var v string
		switch token {
		case ":schema", ":owner":
			v = ctx.schema()
		case ":table", ":view":
			if ctx.Table == "" {
				return "", nil, &ParamError{Token: token, SQL: sql}
			}
			v = ctx.Table
		default:
			return "", nil, &ParamError{Token: token, SQL: sql}
		}
		args = append(args, v)
		if style == Dollar {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(len(args)))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String(), args, nil
}
