package reader

import (
	"context"
	"fmt"

	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/xmlmeta"
)

// mergeMeta applies external metadata in three passes: create unknown
// tables, amend columns, then connect declared relationships. Connecting
// last lets a key refer to any table the document mentions.
func (r *Reader) mergeMeta(ctx context.Context, meta *xmlmeta.SchemaMeta) {
	if meta.Comments != "" {
		r.db.Description = meta.Comments
	}

	tables := make([]*schema.Table, len(meta.Tables))
	for i, tm := range meta.Tables {
		tables[i] = r.metaTable(ctx, tm)
	}

	for i, tm := range meta.Tables {
		t := tables[i]
		if tm.Comments != "" {
			t.SetComments(tm.Comments)
		}
		for _, cm := range tm.Columns {
			applyColumnMeta(t, cm)
		}
	}

	for i, tm := range meta.Tables {
		r.connectMeta(ctx, tables[i], tm)
	}
}

// metaTable finds or creates the table a descriptor refers to. A table the
// model does not know yet is read from the catalog; one the catalog does
// not know either is created empty.
func (r *Reader) metaTable(ctx context.Context, tm xmlmeta.TableMeta) *schema.Table {
	if tm.RemoteSchema != "" {
		return r.addRemoteTable(ctx, tm.RemoteSchema, tm.Name, r.db.Schema, false)
	}
	if t, ok := r.db.Lookup(tm.Name); ok {
		return t
	}

	t, err := r.readTable(ctx, schema.KindBase, r.db.Schema, tm.Name, "")
	if err != nil {
		r.log.Debug("table from metadata not in catalog", "table", tm.Name, "err", err)
		t = schema.NewTable(schema.KindBase, r.db.Schema, tm.Name)
	}
	r.db.Tables.Put(t.Name, t)
	return t
}

// applyColumnMeta adds or amends a column. Only attributes present in the
// document override what the catalog reported.
func applyColumnMeta(t *schema.Table, cm xmlmeta.ColumnMeta) *schema.TableColumn {
	c := t.Column(cm.Name)
	if c == nil {
		c = schema.NewColumn(t, cm.Name)
	}
	if cm.Type != "" {
		c.Type = cm.Type
	}
	if cm.ID != "" {
		c.ID = cm.ID
	}
	if cm.Size != nil {
		c.Length = *cm.Size
	}
	if cm.Digits != nil {
		c.DecimalDigits = *cm.Digits
	}
	if cm.Nullable != nil {
		c.Nullable = *cm.Nullable
	}
	if cm.AutoUpdated != nil {
		c.AutoUpdated = *cm.AutoUpdated
	}
	if cm.DefaultValue != nil {
		c.DefaultValue = *cm.DefaultValue
	}
	if cm.Comments != "" {
		c.Comments = cm.Comments
	}
	if cm.PrimaryKey {
		t.SetPrimaryColumn(c)
	}
	switch cm.DisableDiagramAssociations {
	case "all":
		c.AllExcluded = true
		c.Excluded = true
	case "exceptDirect":
		c.Excluded = true
	}
	return c
}

// connectMeta links the foreign keys a descriptor declares.
func (r *Reader) connectMeta(ctx context.Context, t *schema.Table, tm xmlmeta.TableMeta) {
	for _, cm := range tm.Columns {
		child := t.Column(cm.Name)
		if child == nil {
			continue
		}
		for _, fm := range cm.ForeignKeys {
			var parent *schema.Table
			if fm.RemoteSchema != "" {
				parent = r.addRemoteTable(ctx, fm.RemoteSchema, fm.Table, r.db.Schema, false)
			} else {
				parent, _ = r.db.Lookup(fm.Table)
			}
			if parent == nil {
				r.log.Warn("declared foreign key refers to an unknown table",
					"table", t.Name, "column", cm.Name, "parent", fm.Table)
				continue
			}

			pc := parent.Column(fm.Column)
			if pc == nil && parent.IsLogical() {
				pc = schema.NewColumn(parent, fm.Column)
			}
			if pc == nil {
				r.log.Warn("declared foreign key refers to an unknown column",
					"table", t.Name, "column", cm.Name, "parent", parent.Name+"."+fm.Column)
				continue
			}
			if child.ParentConstraint(pc) != nil {
				continue
			}

			name := fmt.Sprintf("%s_%s_%s_%s", t.Name, child.Name, parent.Name, pc.Name)
			fk := schema.NewForeignKey(name, t, parent, schema.RuleRestrict, schema.RuleRestrict, schema.Declared)
			fk.Link(pc, child)
			t.ForeignKeys.Put(name, fk)
		}
	}
}
