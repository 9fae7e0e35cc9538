package reader

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

// basicMeta is what discovery knows about a table or view before its
// details are read.
type basicMeta struct {
	schema  string
	name    string
	typ     string
	remarks string
	viewSQL string
	rows    int64 // -1 if unknown
}

// discover lists tables (or views) with the engine fragment when one is
// configured, falling back to the catalog when the fragment fails or finds
// nothing. A catalog failure is fatal for tables only.
func (r *Reader) discover(ctx context.Context, forTables bool) ([]basicMeta, error) {
	kind, fragment, types := "view", r.opts.Queries.SelectViewsSQL, r.opts.Queries.ViewTypes
	if forTables {
		kind, fragment, types = "table", r.opts.Queries.SelectTablesSQL, r.opts.Queries.TableTypes
	}

	var basics []basicMeta
	if fragment != "" {
		err := r.query(ctx, kind+"s", "", fragment, func(rows adapter.Rows) error {
			name := str(rows, kind+"_name")
			if name == "" {
				return nil
			}
			m := basicMeta{
				schema:  str(rows, kind+"_schema"),
				name:    name,
				typ:     str(rows, kind+"_type"),
				remarks: str(rows, kind+"_comment"),
				rows:    -1,
			}
			if m.schema == "" {
				m.schema = r.db.Schema
			}
			if m.typ == "" {
				m.typ = strings.ToUpper(kind)
			}
			if !forTables {
				m.viewSQL = str(rows, "view_definition")
			} else if s, ok := rows.String("table_rows"); ok {
				if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
					m.rows = n
				}
			}
			basics = append(basics, m)
			return nil
		})
		if errors.Is(err, sqlparam.ErrUnknownParameter) {
			return nil, err
		}
		if err != nil {
			r.log.Warn("failed to retrieve "+kind+" names with custom sql, using the catalog", "err", err)
			basics = nil
		}
	}

	if len(basics) > 0 {
		return basics, nil
	}

	infos, err := r.conn.Tables(ctx, r.db.Schema, types)
	if err != nil {
		if forTables {
			return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
		}
		r.log.Warn("ignoring views", "err", err)
		return nil, nil
	}
	for _, ti := range infos {
		basics = append(basics, basicMeta{
			schema:  ti.Schema,
			name:    ti.Name,
			typ:     ti.Type,
			remarks: ti.Remarks,
			rows:    -1,
		})
	}
	return basics, nil
}

// initTables discovers, filters and populates tables. With MaxThreads > 1
// the first valid table is read synchronously so a systemic failure shows
// up here, then the rest fan out over at most MaxThreads workers. Worker
// failures are logged and the table is left out; a failure of the first
// table, or of any table when reading sequentially, aborts the read.
func (r *Reader) initTables(ctx context.Context) error {
	entries, err := r.discover(ctx, true)
	if err != nil {
		return err
	}

	v := NewNameValidator("table", r.opts.Include, r.opts.Exclude, r.opts.Queries.TableTypes, r.log)
	var valid []basicMeta
	for _, e := range entries {
		if v.IsValid(e.name, e.typ) {
			valid = append(valid, e)
		}
	}

	if r.opts.MaxThreads == 1 {
		for _, e := range valid {
			if err := r.createTable(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}

	if len(valid) == 0 {
		return nil
	}
	if err := r.createTable(ctx, valid[0]); err != nil {
		return err
	}

	var g errgroup.Group
	g.SetLimit(r.opts.MaxThreads)
	for _, e := range valid[1:] {
		g.Go(func() error {
			if err := r.createTable(ctx, e); err != nil {
				r.log.Error("skipping table", "table", e.name, "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// createTable reads one table and stores it.
func (r *Reader) createTable(ctx context.Context, m basicMeta) error {
	t, err := r.readTable(ctx, schema.KindBase, m.schema, m.name, m.remarks)
	if err != nil {
		if errors.Is(err, sqlparam.ErrUnknownParameter) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrPopulate, m.name, err)
	}

	if m.rows >= 0 {
		t.RowCount = m.rows
	} else if r.opts.RowCounts {
		if err := r.fetchRowCount(ctx, t); err != nil {
			if errors.Is(err, sqlparam.ErrUnknownParameter) {
				return err
			}
			r.log.Debug("row count unavailable", "table", t.Name, "err", err)
		}
	}

	r.mu.Lock()
	r.db.Tables.Put(t.Name, t)
	r.mu.Unlock()

	r.log.Debug("found details of table", "table", t.Name)
	return nil
}

// readTable reads columns, primary key and indexes.
func (r *Reader) readTable(ctx context.Context, kind schema.Kind, schemaName, name, remarks string) (*schema.Table, error) {
	t := schema.NewTable(kind, schemaName, name)
	t.SetComments(remarks)

	if err := r.readColumns(ctx, t); err != nil {
		return nil, err
	}

	pks, err := r.conn.PrimaryKeys(ctx, schemaName, name)
	if err != nil {
		return nil, fmt.Errorf("primary keys: %w", err)
	}
	for _, pk := range pks {
		if c := t.Column(pk); c != nil {
			t.SetPrimaryColumn(c)
		}
	}

	if kind == schema.KindBase {
		if err := r.readIndexes(ctx, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (r *Reader) readColumns(ctx context.Context, t *schema.Table) error {
	cols, err := r.conn.Columns(ctx, t.Schema, t.Name)
	if err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	for _, ci := range cols {
		c := schema.NewColumn(t, ci.Name)
		c.ID = ci.Ordinal
		c.Type = ci.Type
		c.Length = ci.Length
		c.DecimalDigits = ci.Digits
		c.Nullable = ci.Nullable
		c.AutoUpdated = ci.AutoUpdated
		c.DefaultValue = ci.Default
		c.Comments = strings.TrimSpace(ci.Remarks)
		c.AllExcluded = columnExcluded(r.opts.ExcludeColumns, t.Name, c.Name)
		c.Excluded = c.AllExcluded || columnExcluded(r.opts.ExcludeIndirectColumns, t.Name, c.Name)
	}
	return nil
}

func (r *Reader) readIndexes(ctx context.Context, t *schema.Table) error {
	infos, err := r.conn.Indexes(ctx, t.Schema, t.Name)
	if err != nil {
		return fmt.Errorf("indexes: %w", err)
	}
	for _, ii := range infos {
		idx := &schema.TableIndex{Name: ii.Name, Unique: ii.Unique}
		for i, name := range ii.Columns {
			c := t.Column(name)
			if c == nil {
				// expression or hidden column
				continue
			}
			asc := true
			if i < len(ii.Ascending) {
				asc = ii.Ascending[i]
			}
			idx.AddColumn(c, asc)
		}
		if len(idx.Columns) > 0 {
			t.Indexes.Put(idx.Name, idx)
		}
	}
	return nil
}

func (r *Reader) fetchRowCount(ctx context.Context, t *schema.Table) error {
	fragment := r.opts.Queries.SelectRowCountSQL
	if fragment == "" {
		return nil
	}
	return r.query(ctx, "row_count", t.Name, fragment, func(rows adapter.Rows) error {
		s, ok := rows.String("row_count")
		if !ok {
			return nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			// some engines report estimates as floating point
			f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if ferr != nil {
				return fmt.Errorf("row_count %q: %w", s, err)
			}
			n = int64(f)
		}
		t.RowCount = n
		return nil
	})
}
