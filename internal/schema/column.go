package schema

import (
	"fmt"
	"strconv"
)

// edge is one end of a foreign-key column pair.
type edge struct {
	col *TableColumn
	fk  *ForeignKeyConstraint
}

// TableColumn is a column of exactly one table.
type TableColumn struct {
	Table *Table
	Name  string
	// ID is the engine's column ordinal or an identifier assigned by an
	// enrichment query; nil when unknown.
	ID            any
	Type          string
	Length        int
	DecimalDigits int
	Nullable      bool
	AutoUpdated   bool
	// DefaultValue is nil when the column has no default.
	DefaultValue any
	Comments     string

	// Excluded hides the column from indirect relationship output.
	Excluded bool
	// AllExcluded hides the column from every relationship output.
	AllExcluded bool

	parents  []edge
	children []edge
}

// NewColumn creates a column and adds it to t.
func NewColumn(t *Table, name string) *TableColumn {
	c := &TableColumn{Table: t, Name: name}
	t.AddColumn(c)
	return c
}

func (c *TableColumn) String() string { return c.Name }

// FullName is "table.column".
func (c *TableColumn) FullName() string {
	if c.Table == nil {
		return c.Name
	}
	return c.Table.Name + "." + c.Name
}

// IDString renders ID for display; empty when nil.
func (c *TableColumn) IDString() string {
	if c.ID == nil {
		return ""
	}
	return fmt.Sprint(c.ID)
}

// NumericID returns ID as an integer when it is one.
func (c *TableColumn) NumericID() (int64, bool) {
	switch v := c.ID.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func findEdge(edges []edge, col *TableColumn) int {
	for i, e := range edges {
		if e.col == col {
			return i
		}
	}
	return -1
}

// addParent records that c references parent via fk. A repeated parent
// replaces the stored constraint; the table's high-water mark grows either way.
func (c *TableColumn) addParent(parent *TableColumn, fk *ForeignKeyConstraint) {
	if i := findEdge(c.parents, parent); i >= 0 {
		c.parents[i].fk = fk
	} else {
		c.parents = append(c.parents, edge{col: parent, fk: fk})
	}
	c.Table.maxParents++
}

func (c *TableColumn) addChild(child *TableColumn, fk *ForeignKeyConstraint) {
	if i := findEdge(c.children, child); i >= 0 {
		c.children[i].fk = fk
	} else {
		c.children = append(c.children, edge{col: child, fk: fk})
	}
	c.Table.maxChildren++
}

// RemoveParent drops the edge to parent from this column only. Callers
// pruning the graph should use the Table methods, which keep both sides in
// step.
func (c *TableColumn) RemoveParent(parent *TableColumn) {
	if i := findEdge(c.parents, parent); i >= 0 {
		c.parents = append(c.parents[:i], c.parents[i+1:]...)
	}
}

// RemoveChild drops the edge to child from this column only.
func (c *TableColumn) RemoveChild(child *TableColumn) {
	if i := findEdge(c.children, child); i >= 0 {
		c.children = append(c.children[:i], c.children[i+1:]...)
	}
}

// Parents returns the columns this column references.
func (c *TableColumn) Parents() []*TableColumn { return edgeColumns(c.parents) }

// Children returns the columns that reference this column.
func (c *TableColumn) Children() []*TableColumn { return edgeColumns(c.children) }

func edgeColumns(edges []edge) []*TableColumn {
	out := make([]*TableColumn, len(edges))
	for i, e := range edges {
		out[i] = e.col
	}
	return out
}

// ParentConstraint returns the constraint linking c to parent.
func (c *TableColumn) ParentConstraint(parent *TableColumn) *ForeignKeyConstraint {
	if i := findEdge(c.parents, parent); i >= 0 {
		return c.parents[i].fk
	}
	return nil
}

// ChildConstraint returns the constraint linking child to c.
func (c *TableColumn) ChildConstraint(child *TableColumn) *ForeignKeyConstraint {
	if i := findEdge(c.children, child); i >= 0 {
		return c.children[i].fk
	}
	return nil
}

// removeAParentFKConstraint removes one outgoing edge from both sides.
func (c *TableColumn) removeAParentFKConstraint() *ForeignKeyConstraint {
	if len(c.parents) == 0 {
		return nil
	}
	e := c.parents[0]
	c.parents = c.parents[1:]
	e.col.RemoveChild(c)
	return e.fk
}

// removeAChildFKConstraint removes one incoming edge from both sides.
func (c *TableColumn) removeAChildFKConstraint() *ForeignKeyConstraint {
	if len(c.children) == 0 {
		return nil
	}
	e := c.children[0]
	c.children = c.children[1:]
	e.col.RemoveParent(c)
	return e.fk
}

// UnlinkParents removes every outgoing edge from both sides.
func (c *TableColumn) UnlinkParents() {
	for _, e := range c.parents {
		e.col.RemoveChild(c)
	}
	c.parents = nil
}

// UnlinkChildren removes every incoming edge from both sides.
func (c *TableColumn) UnlinkChildren() {
	for _, e := range c.children {
		e.col.RemoveParent(c)
	}
	c.children = nil
}

// IsForeignKey reports whether the column references another column.
func (c *TableColumn) IsForeignKey() bool { return len(c.parents) > 0 }

// IsPrimary reports whether the column is part of its table's primary key.
func (c *TableColumn) IsPrimary() bool {
	if c.Table == nil {
		return false
	}
	for _, pk := range c.Table.PrimaryKeys {
		if pk == c {
			return true
		}
	}
	return false
}

// IsUnique reports whether a single-column unique index covers the column.
func (c *TableColumn) IsUnique() bool {
	if c.Table == nil {
		return false
	}
	for _, idx := range c.Table.Indexes.Values() {
		if idx.Unique && len(idx.Columns) == 1 && idx.Columns[0] == c {
			return true
		}
	}
	return false
}
