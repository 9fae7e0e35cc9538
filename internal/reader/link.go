package reader

import (
	"context"
	"strings"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/schema"
)

// connectTables links every table's catalog foreign keys. Parents outside
// the analysed schema become remote tables.
func (r *Reader) connectTables(ctx context.Context) {
	for _, t := range r.db.Tables.Values() {
		r.connectForeignKeys(ctx, t, false)
	}
}

// connectForeignKeys links t's catalog foreign keys. For a remote table only
// keys into the base schema are followed.
func (r *Reader) connectForeignKeys(ctx context.Context, t *schema.Table, remote bool) {
	fks, err := r.conn.ForeignKeys(ctx, t.Schema, t.Name)
	if err != nil {
		r.log.Warn("could not read foreign keys", "table", t.Name, "err", err)
		return
	}

	for _, fk := range fks {
		var parent *schema.Table
		crossSchema := fk.RefSchema != "" && !strings.EqualFold(fk.RefSchema, t.Schema)
		switch {
		case remote:
			if !strings.EqualFold(fk.RefSchema, t.BaseSchema) {
				continue
			}
			parent, _ = r.db.Tables.Get(fk.RefTable)
		case crossSchema:
			parent = r.addRemoteTable(ctx, fk.RefSchema, fk.RefTable, t.Schema, true)
		default:
			parent, _ = r.db.Tables.Get(fk.RefTable)
		}
		if parent == nil {
			r.log.Debug("foreign key parent not analysed", "table", t.Name, "fk", fk.Name, "parent", fk.RefTable)
			continue
		}
		r.link(t, parent, fk)
	}
}

// link adds fk to child, pairing columns by position. Columns that cannot
// be found on either side are skipped.
func (r *Reader) link(child, parent *schema.Table, fk adapter.ForeignKeyInfo) {
	c, ok := child.ForeignKeys.Get(fk.Name)
	if !ok {
		c = schema.NewForeignKey(fk.Name, child, parent,
			schema.ParseRule(fk.DeleteRule), schema.ParseRule(fk.UpdateRule), schema.Real)
	}

	linked := 0
	for i, name := range fk.Columns {
		if i >= len(fk.RefColumns) {
			break
		}
		childCol := child.Column(name)
		parentCol := parent.Column(fk.RefColumns[i])
		if childCol == nil || parentCol == nil {
			r.log.Warn("could not link foreign key column",
				"fk", fk.Name, "child", child.Name+"."+name, "parent", parent.Name+"."+fk.RefColumns[i])
			continue
		}
		c.Link(parentCol, childCol)
		linked++
	}
	if linked > 0 || ok {
		child.ForeignKeys.Put(c.Name, c)
	}
}

// addRemoteTable returns the table remoteSchema.name, creating it on first
// reference. With fromCatalog its columns, primary key and keys back into
// baseSchema are read from the catalog; otherwise it is a logical table
// described only by external metadata.
func (r *Reader) addRemoteTable(ctx context.Context, remoteSchema, name, baseSchema string, fromCatalog bool) *schema.Table {
	key := schema.RemoteKey(remoteSchema, name)
	if t, ok := r.db.RemoteTables.Get(key); ok {
		return t
	}

	kind := schema.KindExplicitRemote
	if fromCatalog {
		kind = schema.KindRemote
	}
	t := schema.NewTable(kind, remoteSchema, name)
	t.BaseSchema = baseSchema
	r.log.Debug("adding remote table", "table", key)
	r.db.RemoteTables.Put(key, t)

	if !fromCatalog {
		return t
	}
	if err := r.readColumns(ctx, t); err != nil {
		r.log.Warn("could not read remote table columns", "table", key, "err", err)
	}
	if pks, err := r.conn.PrimaryKeys(ctx, remoteSchema, name); err == nil {
		for _, pk := range pks {
			if c := t.Column(pk); c != nil {
				t.SetPrimaryColumn(c)
			}
		}
	}
	r.connectForeignKeys(ctx, t, true)
	return t
}
