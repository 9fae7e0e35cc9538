package schema

import (
	"sort"
	"strings"
)

// Kind distinguishes tables by where they came from.
type Kind int

const (
	KindBase Kind = iota
	KindView
	// KindRemote tables live in another schema and were found through a
	// foreign key reported by the catalog.
	KindRemote
	// KindExplicitRemote tables live in another schema and were named by
	// external schema metadata.
	KindExplicitRemote
)

func (k Kind) String() string {
	switch k {
	case KindView:
		return "VIEW"
	case KindRemote:
		return "REMOTE"
	case KindExplicitRemote:
		return "EXPLICIT_REMOTE"
	default:
		return "BASE"
	}
}

// Table is a table, view or remote table. Views carry ViewSQL; remote tables
// carry BaseSchema, the schema being analysed.
type Table struct {
	Kind       Kind
	Schema     string
	BaseSchema string
	Name       string
	Comments   string
	// RowCount is -1 when unknown.
	RowCount int64
	ID       any
	ViewSQL  string

	Columns          NameMap[*TableColumn]
	PrimaryKeys      []*TableColumn
	ForeignKeys      NameMap[*ForeignKeyConstraint]
	Indexes          NameMap[*TableIndex]
	CheckConstraints NameMap[string]

	maxParents  int
	maxChildren int
}

// NewTable returns an empty table of the given kind.
func NewTable(kind Kind, schemaName, name string) *Table {
	return &Table{Kind: kind, Schema: schemaName, Name: name, RowCount: -1}
}

func (t *Table) String() string { return t.Name }

// IsView reports whether t is a view.
func (t *Table) IsView() bool { return t.Kind == KindView }

// IsRemote reports whether t lives outside the analysed schema.
func (t *Table) IsRemote() bool { return t.Kind == KindRemote || t.Kind == KindExplicitRemote }

// IsLogical reports whether t exists only in external metadata.
func (t *Table) IsLogical() bool { return t.Kind == KindExplicitRemote }

// AddColumn stores c, replacing any column of the same name.
func (t *Table) AddColumn(c *TableColumn) {
	c.Table = t
	t.Columns.Put(c.Name, c)
}

// Column looks a column up by name.
func (t *Table) Column(name string) *TableColumn {
	c, _ := t.Columns.Get(name)
	return c
}

// SetPrimaryColumn appends c to the primary key if it is not already there.
func (t *Table) SetPrimaryColumn(c *TableColumn) {
	for _, pk := range t.PrimaryKeys {
		if pk == c {
			return
		}
	}
	t.PrimaryKeys = append(t.PrimaryKeys, c)
}

// SetComments trims and stores comments, dropping InnoDB free-space noise
// that MySQL appends to table comments.
func (t *Table) SetComments(comments string) {
	c := strings.TrimSpace(comments)
	if i := strings.Index(c, "; InnoDB free: "); i >= 0 {
		c = c[:i]
	} else if strings.HasPrefix(c, "InnoDB free: ") {
		c = ""
	}
	t.Comments = strings.TrimSpace(c)
}

// SortedColumns orders columns by numeric ID when every column has one,
// otherwise by name.
func (t *Table) SortedColumns() []*TableColumn {
	cols := t.Columns.Values()
	byID := true
	for _, c := range cols {
		if _, ok := c.NumericID(); !ok {
			byID = false
			break
		}
	}
	if byID {
		sort.SliceStable(cols, func(i, j int) bool {
			a, _ := cols[i].NumericID()
			b, _ := cols[j].NumericID()
			return a < b
		})
	}
	return cols
}

// Compare orders tables by name, then schema, ignoring case. An empty schema
// sorts first.
func (t *Table) Compare(o *Table) int {
	if t == o {
		return 0
	}
	if o == nil {
		return 1
	}
	if c := strings.Compare(strings.ToLower(t.Name), strings.ToLower(o.Name)); c != 0 {
		return c
	}
	return strings.Compare(strings.ToLower(t.Schema), strings.ToLower(o.Schema))
}

// SortTables sorts ts in place with Compare.
func SortTables(ts []*Table) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Compare(ts[j]) < 0 })
}

// MaxParents is the highest number of outgoing edges t has had.
func (t *Table) MaxParents() int { return t.maxParents }

// MaxChildren is the highest number of incoming edges t has had.
func (t *Table) MaxChildren() int { return t.maxChildren }

// NumParents counts live outgoing edges.
func (t *Table) NumParents() int {
	n := 0
	for _, c := range t.Columns.items {
		n += len(c.parents)
	}
	return n
}

// NumChildren counts live incoming edges.
func (t *Table) NumChildren() int {
	n := 0
	for _, c := range t.Columns.items {
		n += len(c.children)
	}
	return n
}

// NumNonImpliedParents counts live outgoing edges that were not inferred.
func (t *Table) NumNonImpliedParents() int {
	n := 0
	for _, c := range t.Columns.items {
		for _, e := range c.parents {
			if !e.fk.IsImplied() {
				n++
			}
		}
	}
	return n
}

// NumNonImpliedChildren counts live incoming edges that were not inferred.
func (t *Table) NumNonImpliedChildren() int {
	n := 0
	for _, c := range t.Columns.items {
		for _, e := range c.children {
			if !e.fk.IsImplied() {
				n++
			}
		}
	}
	return n
}

// IsRoot reports whether no column of t references another column.
func (t *Table) IsRoot() bool {
	for _, c := range t.Columns.items {
		if c.IsForeignKey() {
			return false
		}
	}
	return true
}

// IsLeaf reports whether no column of t is referenced.
func (t *Table) IsLeaf() bool {
	for _, c := range t.Columns.items {
		if len(c.children) > 0 {
			return false
		}
	}
	return true
}

// IsOrphan reports whether t has never had any edge. With withImplied false,
// inferred edges are ignored and only live edges are considered.
func (t *Table) IsOrphan(withImplied bool) bool {
	if withImplied {
		return t.maxParents == 0 && t.maxChildren == 0
	}
	return t.NumNonImpliedParents() == 0 && t.NumNonImpliedChildren() == 0
}

// UnlinkParents removes every outgoing edge of t from both sides.
func (t *Table) UnlinkParents() {
	for _, c := range t.Columns.items {
		c.UnlinkParents()
	}
}

// UnlinkChildren removes every incoming edge of t from both sides.
func (t *Table) UnlinkChildren() {
	for _, c := range t.Columns.items {
		c.UnlinkChildren()
	}
}

func (t *Table) selfReferencingConstraint() *ForeignKeyConstraint {
	for _, c := range t.Columns.Values() {
		for _, e := range c.parents {
			if t.Compare(e.col.Table) == 0 {
				return e.fk
			}
		}
	}
	return nil
}

// RemoveSelfReferencingConstraint removes one constraint whose parent and
// child are both t, returning it, or nil if none exists.
func (t *Table) RemoveSelfReferencingConstraint() *ForeignKeyConstraint {
	fk := t.selfReferencingConstraint()
	if fk != nil {
		fk.unlink()
	}
	return fk
}

// RemoveAForeignKeyConstraint removes a single column-pair edge. The side
// with fewer live edges loses it, outgoing on a tie; if that side is empty
// the other side is used. Returns nil when t has no edges.
func (t *Table) RemoveAForeignKeyConstraint() *ForeignKeyConstraint {
	numParents, numChildren := t.NumParents(), t.NumChildren()
	if numParents+numChildren == 0 {
		return nil
	}
	fromParents := numParents <= numChildren
	if fromParents && numParents == 0 {
		fromParents = false
	}
	for _, c := range t.Columns.Values() {
		var fk *ForeignKeyConstraint
		if fromParents {
			fk = c.removeAParentFKConstraint()
		} else {
			fk = c.removeAChildFKConstraint()
		}
		if fk != nil {
			return fk
		}
	}
	return nil
}

// RemoveNonRealForeignKeys removes every constraint t owns that did not come
// from the catalog, implied and declared alike, and returns them. Keys other
// tables hold on t are left alone.
func (t *Table) RemoveNonRealForeignKeys() []*ForeignKeyConstraint {
	var removed []*ForeignKeyConstraint
	seen := make(map[*ForeignKeyConstraint]bool)
	collect := func(edges []edge) {
		for _, e := range edges {
			if e.fk != nil && !e.fk.IsReal() && !seen[e.fk] {
				seen[e.fk] = true
				removed = append(removed, e.fk)
			}
		}
	}
	for _, c := range t.Columns.Values() {
		collect(c.parents)
	}
	for _, fk := range removed {
		fk.unlink()
	}
	return removed
}
