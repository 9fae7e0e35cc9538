package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/audit"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

// query resolves fragment against the database (and table, when non-empty),
// runs it and calls each for every row. Every execution is journaled.
//
// A malformed fragment returns a *sqlparam.ParamError, which callers must
// treat as fatal whatever their own failure policy.
func (r *Reader) query(ctx context.Context, phase, table, fragment string, each func(adapter.Rows) error) error {
	pctx := sqlparam.Context{Schema: r.db.Schema, Database: r.db.Name, Table: table}
	sql, args, err := sqlparam.Resolve(fragment, pctx, r.conn.Placeholder())
	if err != nil {
		return err
	}

	start := time.Now()
	var n int64
	err = r.run(ctx, sql, args, func(rows adapter.Rows) error {
		n++
		return each(rows)
	})
	r.journal(phase, table, sql, args, start, n, err)
	if err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}
	return nil
}

func (r *Reader) run(ctx context.Context, sql string, args []any, each func(adapter.Rows) error) error {
	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *Reader) journal(phase, table, sql string, args []any, start time.Time, n int64, err error) {
	if r.opts.Journal == nil {
		return
	}
	e := audit.Entry{
		Timestamp:  start,
		Phase:      phase,
		Table:      table,
		Query:      sql,
		DurationMS: time.Since(start).Milliseconds(),
		RowCount:   n,
	}
	for _, a := range args {
		e.Args = append(e.Args, fmt.Sprint(a))
	}
	if err != nil {
		e.IsError = true
		e.Error = err.Error()
	}
	r.opts.Journal.Log(e)
}

// str returns the named column as text, or "" when absent or NULL.
func str(rows adapter.Rows, col string) string {
	s, _ := rows.String(col)
	return s
}
