package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

// pass is one enrichment fragment and how to apply its rows.
type pass struct {
	phase    string
	fragment string
	// fatal passes re-raise execution failures as ErrIdentifierAssignment.
	fatal bool
	apply func(adapter.Rows) error
}

// enrich runs the optional fragments in order. A missing fragment is
// skipped, a failing one is logged and abandoned, except for the id passes,
// whose failure aborts the read.
func (r *Reader) enrich(ctx context.Context) error {
	q := r.opts.Queries
	passes := []pass{
		{"check_constraints", q.SelectCheckConstraintsSQL, false, r.applyCheckConstraint},
		{"table_ids", q.SelectTableIDsSQL, true, r.applyTableID},
		{"index_ids", q.SelectIndexIDsSQL, true, r.applyIndexID},
		{"table_comments", q.SelectTableCommentsSQL, false, r.applyTableComment},
		{"column_comments", q.SelectColumnCommentsSQL, false, r.applyColumnComment(false)},
		{"view_comments", q.SelectViewCommentsSQL, false, r.applyViewComment},
		{"view_column_comments", q.SelectViewColumnCommentsSQL, false, r.applyColumnComment(true)},
		{"stored_procedures", q.SelectStoredProcsSQL, false, r.applyProcedure},
		{"functions", q.SelectFunctionsSQL, false, r.applyFunction},
	}

	for _, p := range passes {
		if p.fragment == "" {
			continue
		}
		err := r.query(ctx, p.phase, "", p.fragment, p.apply)
		switch {
		case err == nil:
		case errors.Is(err, sqlparam.ErrUnknownParameter):
			return err
		case p.fatal:
			return fmt.Errorf("%w: %w", ErrIdentifierAssignment, err)
		default:
			r.log.Warn("enrichment abandoned", "phase", p.phase, "err", err, "sql", p.fragment)
		}
	}
	return nil
}

func (r *Reader) applyCheckConstraint(rows adapter.Rows) error {
	if t, ok := r.db.Tables.Get(str(rows, "table_name")); ok {
		t.CheckConstraints.Put(str(rows, "constraint_name"), str(rows, "text"))
	}
	return nil
}

func (r *Reader) applyTableID(rows adapter.Rows) error {
	if t, ok := r.db.Tables.Get(str(rows, "table_name")); ok {
		t.ID, _ = rows.Value("table_id")
	}
	return nil
}

func (r *Reader) applyIndexID(rows adapter.Rows) error {
	t, ok := r.db.Tables.Get(str(rows, "table_name"))
	if !ok {
		return nil
	}
	if idx, ok := t.Indexes.Get(str(rows, "index_name")); ok {
		idx.ID, _ = rows.Value("index_id")
	}
	return nil
}

// applyTableComment also accepts rows naming views, for engines whose
// fragment covers both.
func (r *Reader) applyTableComment(rows adapter.Rows) error {
	if t, ok := r.db.Lookup(str(rows, "table_name")); ok {
		t.SetComments(str(rows, "comments"))
	}
	return nil
}

func (r *Reader) applyViewComment(rows adapter.Rows) error {
	if v, ok := r.db.Views.Get(viewName(rows)); ok {
		v.SetComments(str(rows, "comments"))
	}
	return nil
}

func (r *Reader) applyColumnComment(views bool) func(adapter.Rows) error {
	return func(rows adapter.Rows) error {
		var (
			t  *schema.Table
			ok bool
		)
		if views {
			t, ok = r.db.Views.Get(viewName(rows))
		} else {
			t, ok = r.db.Tables.Get(str(rows, "table_name"))
		}
		if !ok {
			return nil
		}
		if c := t.Column(str(rows, "column_name")); c != nil {
			c.Comments = strings.TrimSpace(str(rows, "comments"))
		}
		return nil
	}
}

func (r *Reader) applyProcedure(rows adapter.Rows) error {
	name := str(rows, "name")
	if name == "" {
		return nil
	}
	r.db.Procedures.Put(name, &schema.Procedure{Name: name, Definition: str(rows, "definition")})
	r.log.Debug("read procedure definition", "procedure", name)
	return nil
}

func (r *Reader) applyFunction(rows adapter.Rows) error {
	name := str(rows, "name")
	if name == "" {
		return nil
	}
	r.db.Functions.Put(name, &schema.Function{
		Name:       name,
		ReturnType: str(rows, "return_type"),
		Definition: str(rows, "definition"),
	})
	r.log.Debug("read function definition", "function", name)
	return nil
}

// viewName reads view_name, falling back to table_name.
func viewName(rows adapter.Rows) string {
	if s, ok := rows.String("view_name"); ok {
		return s
	}
	return str(rows, "table_name")
}
