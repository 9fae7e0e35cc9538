// Package order sorts tables so that every table comes after the tables it
// references, the order in which rows can be inserted without violating
// referential integrity.
//
// Ordering consumes the foreign-key graph: edges are unlinked as tables are
// placed. Run it on a model nothing else will read afterwards.
package order

import (
	"sort"
	"strings"

	"github.com/sadopc/schemahawk/internal/schema"
)

// Result is the outcome of ordering.
type Result struct {
	// Tables in insertion order: roots first, leaves last.
	Tables []*schema.Table
	// Unattached tables had no relationships at all.
	Unattached []*schema.Table
	// Recursive lists the constraints removed to break cycles.
	Recursive []*schema.ForeignKeyConstraint
}

// ByReferentialIntegrity orders tables. Implied keys are dropped first;
// cycles are broken by removing self references, then by removing single
// edges from the table whose child and parent counts differ most.
func ByReferentialIntegrity(tables []*schema.Table) Result {
	var res Result
	var remaining []*schema.Table
	for _, t := range tables {
		if t.IsView() {
			continue
		}
		t.RemoveNonRealForeignKeys()
		if t.IsOrphan(false) {
			res.Unattached = append(res.Unattached, t)
			continue
		}
		remaining = append(remaining, t)
	}
	sortByName(res.Unattached)

	var heads, tails []*schema.Table
	for len(remaining) > 0 {
		before := len(remaining)

		var leaves []*schema.Table
		leaves, remaining = trimLeaves(remaining)
		tails = append(leaves, tails...)

		var roots []*schema.Table
		roots, remaining = trimRoots(remaining)
		heads = append(heads, roots...)

		if len(remaining) < before {
			continue
		}

		// stuck on a cycle
		removed := false
		for _, t := range remaining {
			if fk := t.RemoveSelfReferencingConstraint(); fk != nil {
				res.Recursive = append(res.Recursive, fk)
				removed = true
			}
		}
		if removed {
			continue
		}
		sort.SliceStable(remaining, func(i, j int) bool {
			return delta(remaining[i]) > delta(remaining[j])
		})
		for _, t := range remaining {
			if fk := t.RemoveAForeignKeyConstraint(); fk != nil {
				res.Recursive = append(res.Recursive, fk)
				break
			}
		}
	}

	res.Tables = append(heads, tails...)
	return res
}

// trimLeaves removes tables nothing references, unlinking their parents.
// Leaves are returned with the most connected first.
func trimLeaves(tables []*schema.Table) (leaves, rest []*schema.Table) {
	for _, t := range tables {
		if t.IsLeaf() {
			leaves = append(leaves, t)
		} else {
			rest = append(rest, t)
		}
	}
	for _, t := range leaves {
		t.UnlinkParents()
	}
	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].MaxParents() != leaves[j].MaxParents() {
			return leaves[i].MaxParents() > leaves[j].MaxParents()
		}
		return leaves[i].Compare(leaves[j]) < 0
	})
	return leaves, rest
}

// trimRoots removes tables that reference nothing, unlinking their children.
func trimRoots(tables []*schema.Table) (roots, rest []*schema.Table) {
	for _, t := range tables {
		if t.IsRoot() {
			roots = append(roots, t)
		} else {
			rest = append(rest, t)
		}
	}
	for _, t := range roots {
		t.UnlinkChildren()
	}
	sort.SliceStable(roots, func(i, j int) bool {
		if roots[i].MaxChildren() != roots[j].MaxChildren() {
			return roots[i].MaxChildren() > roots[j].MaxChildren()
		}
		return roots[i].Compare(roots[j]) < 0
	})
	return roots, rest
}

func delta(t *schema.Table) int {
	d := t.NumChildren() - t.NumParents()
	if d < 0 {
		return -d
	}
	return d
}

func sortByName(ts []*schema.Table) {
	sort.SliceStable(ts, func(i, j int) bool {
		return strings.ToLower(ts[i].Name) < strings.ToLower(ts[j].Name)
	})
}
