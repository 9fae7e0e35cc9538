package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Rows is a forward-only cursor with access to columns by name. Asking for
// a column the result does not have is not an error: the accessors report
// ok == false, the same as for SQL NULL.
type Rows interface {
	Next() bool
	// Value returns the current row's value for col, matched case-insensitively.
	Value(col string) (any, bool)
	// String returns the value for col rendered as text.
	String(col string) (string, bool)
	Columns() []string
	Err() error
	Close() error
}

// Scanner is the subset of a driver cursor the generic Rows needs.
type Scanner interface {
	Next() bool
	Err() error
}

// cursor implements Rows over any driver by way of a fetch func that
// returns the current row's values.
type cursor struct {
	cols  []string
	index map[string]int
	src   Scanner
	fetch func() ([]any, error)
	close func() error
	row   []any
	err   error
}

// NewCursor builds Rows from column names, a driver cursor and a function
// returning the current row's values.
func NewCursor(cols []string, src Scanner, fetch func() ([]any, error), closeFn func() error) Rows {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		k := strings.ToLower(c)
		if _, dup := index[k]; !dup {
			index[k] = i
		}
	}
	return &cursor{cols: cols, index: index, src: src, fetch: fetch, close: closeFn}
}

// FromSQL adapts database/sql rows.
func FromSQL(rows *sql.Rows) (Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("columns: %w", err)
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	fetch := func() ([]any, error) {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out := make([]any, len(vals))
		copy(out, vals)
		return out, nil
	}
	return NewCursor(cols, rows, fetch, rows.Close), nil
}

func (c *cursor) Next() bool {
	if c.err != nil || !c.src.Next() {
		return false
	}
	c.row, c.err = c.fetch()
	return c.err == nil
}

func (c *cursor) Value(col string) (any, bool) {
	i, ok := c.index[strings.ToLower(col)]
	if !ok || i >= len(c.row) || c.row[i] == nil {
		return nil, false
	}
	if b, isBytes := c.row[i].([]byte); isBytes {
		return string(b), true
	}
	return c.row[i], true
}

func (c *cursor) String(col string) (string, bool) {
	v, ok := c.Value(col)
	if !ok {
		return "", false
	}
	return ValueString(v), true
}

func (c *cursor) Columns() []string { return c.cols }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.src.Err()
}

func (c *cursor) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

// ValueString renders a driver value as text.
func ValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

// Static returns Rows over in-memory data, used by engines that build
// results without a driver cursor.
func Static(cols []string, data [][]any) Rows {
	s := &staticScanner{n: len(data), pos: -1}
	fetch := func() ([]any, error) { return data[s.pos], nil }
	return NewCursor(cols, s, fetch, nil)
}

type staticScanner struct {
	n, pos int
}

func (s *staticScanner) Next() bool {
	if s.pos+1 >= s.n {
		return false
	}
	s.pos++
	return true
}

func (s *staticScanner) Err() error { return nil }

// QueryDB runs query on a database/sql handle and adapts the result.
func QueryDB(ctx context.Context, db *sql.DB, query string, args ...any) (Rows, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return FromSQL(rows)
}
