package schema

import (
	"fmt"
	"strings"
)

// Rule is a referential action applied on update or delete.
type Rule int

const (
	RuleRestrict Rule = iota // also NO ACTION
	RuleCascade
	RuleSetNull
)

// ParseRule maps catalog spellings such as "CASCADE", "SET NULL",
// "NO ACTION" or "no_action" onto a Rule. Unknown values map to RuleRestrict.
func ParseRule(s string) Rule {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	switch s {
	case "CASCADE":
		return RuleCascade
	case "SET NULL":
		return RuleSetNull
	default:
		return RuleRestrict
	}
}

func (r Rule) String() string {
	switch r {
	case RuleCascade:
		return "CASCADE"
	case RuleSetNull:
		return "SET NULL"
	default:
		return "RESTRICT"
	}
}

// Provenance records where a foreign key came from.
type Provenance int

const (
	// Real keys were reported by the catalog.
	Real Provenance = iota
	// Implied keys were inferred from column naming conventions.
	Implied
	// Declared keys were supplied by schema metadata outside the database.
	Declared
)

func (p Provenance) String() string {
	switch p {
	case Implied:
		return "implied"
	case Declared:
		return "declared"
	default:
		return "real"
	}
}

// ForeignKeyConstraint is a directed edge from child columns to parent
// columns. ChildColumns[i] references ParentColumns[i].
type ForeignKeyConstraint struct {
	Name          string
	ChildTable    *Table
	ParentTable   *Table
	ChildColumns  []*TableColumn
	ParentColumns []*TableColumn
	DeleteRule    Rule
	UpdateRule    Rule
	Provenance    Provenance
}

// NewForeignKey returns an empty constraint owned by child.
func NewForeignKey(name string, child, parent *Table, deleteRule, updateRule Rule, p Provenance) *ForeignKeyConstraint {
	return &ForeignKeyConstraint{
		Name:        name,
		ChildTable:  child,
		ParentTable: parent,
		DeleteRule:  deleteRule,
		UpdateRule:  updateRule,
		Provenance:  p,
	}
}

// Link adds the column pair to the constraint and records the edge on both
// columns, bumping both tables' high-water marks.
func (fk *ForeignKeyConstraint) Link(parent, child *TableColumn) {
	fk.ParentColumns = append(fk.ParentColumns, parent)
	fk.ChildColumns = append(fk.ChildColumns, child)
	child.addParent(parent, fk)
	parent.addChild(child, fk)
}

// IsReal reports whether the key came straight from the catalog.
func (fk *ForeignKeyConstraint) IsReal() bool { return fk.Provenance == Real }

// IsImplied reports whether the key was inferred.
func (fk *ForeignKeyConstraint) IsImplied() bool { return fk.Provenance == Implied }

// IsCascadeOnDelete reports whether deleting a parent deletes its children.
func (fk *ForeignKeyConstraint) IsCascadeOnDelete() bool { return fk.DeleteRule == RuleCascade }

// IsRestrictDelete reports whether deleting a referenced parent is refused.
func (fk *ForeignKeyConstraint) IsRestrictDelete() bool { return fk.DeleteRule == RuleRestrict }

// IsNullOnDelete reports whether deleting a parent nulls the child columns.
func (fk *ForeignKeyConstraint) IsNullOnDelete() bool { return fk.DeleteRule == RuleSetNull }

// DeleteRuleName is a short human label for the delete rule.
func (fk *ForeignKeyConstraint) DeleteRuleName() string {
	switch fk.DeleteRule {
	case RuleCascade:
		return "Cascade on delete"
	case RuleSetNull:
		return "Null on delete"
	default:
		return "Restrict delete"
	}
}

// DeleteRuleDescription explains the delete rule in a sentence.
func (fk *ForeignKeyConstraint) DeleteRuleDescription() string {
	switch fk.DeleteRule {
	case RuleCascade:
		return "Cascade on delete: deletion of parent deletes child"
	case RuleSetNull:
		return "Null on delete: foreign key to parent set to NULL when parent deleted"
	default:
		return "Restrict delete: parent cannot be deleted if children exist"
	}
}

// DeleteRuleAlias is a one-letter code for compact output.
func (fk *ForeignKeyConstraint) DeleteRuleAlias() string {
	switch fk.DeleteRule {
	case RuleCascade:
		return "C"
	case RuleSetNull:
		return "N"
	default:
		return "R"
	}
}

// IsSelfReferencing reports whether parent and child are the same table.
func (fk *ForeignKeyConstraint) IsSelfReferencing() bool {
	return fk.ChildTable != nil && fk.ChildTable.Compare(fk.ParentTable) == 0
}

// String renders "child.col refs parent.col [in schema] [via name]".
func (fk *ForeignKeyConstraint) String() string {
	var b strings.Builder
	b.WriteString(tableName(fk.ChildTable))
	b.WriteByte('.')
	b.WriteString(joinColumns(fk.ChildColumns))
	b.WriteString(" refs ")
	b.WriteString(tableName(fk.ParentTable))
	b.WriteByte('.')
	b.WriteString(joinColumns(fk.ParentColumns))
	if fk.ParentTable != nil && fk.ParentTable.Schema != "" &&
		(fk.ChildTable == nil || !strings.EqualFold(fk.ParentTable.Schema, fk.ChildTable.Schema)) {
		fmt.Fprintf(&b, " in %s", fk.ParentTable.Schema)
	}
	if fk.Name != "" {
		fmt.Fprintf(&b, " via %s", fk.Name)
	}
	return b.String()
}

func tableName(t *Table) string {
	if t == nil {
		return "?"
	}
	return t.Name
}

func joinColumns(cols []*TableColumn) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return strings.Join(names, ",")
}

// unlink removes every column pair of fk from both endpoints.
func (fk *ForeignKeyConstraint) unlink() {
	for i := range fk.ChildColumns {
		child, parent := fk.ChildColumns[i], fk.ParentColumns[i]
		child.RemoveParent(parent)
		parent.RemoveChild(child)
	}
}
