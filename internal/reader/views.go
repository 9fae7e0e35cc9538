package reader

import (
	"context"
	"errors"
	"strings"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

// initViews discovers views and reads their columns and defining SQL. Only
// a malformed fragment is fatal: a view whose details cannot be read is
// kept with what is known.
func (r *Reader) initViews(ctx context.Context) error {
	entries, err := r.discover(ctx, false)
	if err != nil {
		return err
	}

	v := NewNameValidator("view", r.opts.Include, r.opts.Exclude, r.opts.Queries.ViewTypes, r.log)
	for _, e := range entries {
		if !v.IsValid(e.name, e.typ) {
			continue
		}

		view := schema.NewTable(schema.KindView, e.schema, e.name)
		view.SetComments(e.remarks)
		view.ViewSQL = strings.TrimSpace(e.viewSQL)

		if view.ViewSQL == "" {
			sql, err := r.fetchViewSQL(ctx, view.Name)
			if errors.Is(err, sqlparam.ErrUnknownParameter) {
				return err
			}
			if err != nil {
				r.log.Warn("could not read view sql", "view", view.Name, "err", err)
			}
			view.ViewSQL = sql
		}

		if err := r.readColumns(ctx, view); err != nil {
			r.log.Warn("could not read view columns", "view", view.Name, "err", err)
		}

		r.db.Views.Put(view.Name, view)
		r.log.Debug("found details of view", "view", view.Name)
	}
	return nil
}

// fetchViewSQL runs the select_view_sql fragment, reading view_definition
// or, failing that, text. Blank text is reported as "".
func (r *Reader) fetchViewSQL(ctx context.Context, view string) (string, error) {
	fragment := r.opts.Queries.SelectViewSQL
	if fragment == "" {
		r.log.Debug("no select_view_sql configured", "view", view)
		return "", nil
	}

	var sql string
	found := false
	err := r.query(ctx, "view_sql", view, fragment, func(rows adapter.Rows) error {
		if found {
			return nil
		}
		found = true
		if s, ok := rows.String("view_definition"); ok {
			sql = s
		} else {
			sql = str(rows, "text")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sql), nil
}
