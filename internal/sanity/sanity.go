// Package sanity scans a read schema for common design mistakes. Every check
// is read-only and returns its findings sorted by table name, then column
// name.
package sanity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sadopc/schemahawk/internal/schema"
)

// Report collects the findings of every check.
type Report struct {
	UniqueNullable          []*schema.TableColumn
	WithoutIndexes          []*schema.Table
	IncrementingColumnNames []*schema.Table
	SingleColumn            []*schema.Table
	DefaultNullString       []*schema.TableColumn
}

// Check runs every check over tables.
func Check(tables []*schema.Table) Report {
	return Report{
		UniqueNullable:          UniqueNullableColumns(tables),
		WithoutIndexes:          TablesWithoutIndexes(tables),
		IncrementingColumnNames: TablesWithIncrementingColumnNames(tables),
		SingleColumn:            SingleColumnTables(tables),
		DefaultNullString:       DefaultNullStringColumns(tables),
	}
}

// Count is the total number of findings.
func (r Report) Count() int {
	return len(r.UniqueNullable) + len(r.WithoutIndexes) + len(r.IncrementingColumnNames) +
		len(r.SingleColumn) + len(r.DefaultNullString)
}

// UniqueNullableColumns returns the columns of unique indexes that allow
// nulls.
func UniqueNullableColumns(tables []*schema.Table) []*schema.TableColumn {
	seen := make(map[*schema.TableColumn]bool)
	var out []*schema.TableColumn
	for _, t := range tables {
		for _, idx := range t.Indexes.Values() {
			if !idx.IsUniqueNullable() {
				continue
			}
			for _, c := range idx.Columns {
				if !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
		}
	}
	sortColumns(out)
	return out
}

// TablesWithoutIndexes returns tables, not views, that have no index at all.
func TablesWithoutIndexes(tables []*schema.Table) []*schema.Table {
	var out []*schema.Table
	for _, t := range tables {
		if !t.IsView() && t.Indexes.Len() == 0 {
			out = append(out, t)
		}
	}
	sortTables(out)
	return out
}

// TablesWithIncrementingColumnNames flags tables that look denormalized:
// two columns share a name prefix and end in numbers one apart, such as
// phone1 and phone2. A column without a numeric suffix counts as suffix 1,
// so phone and phone2 match too.
func TablesWithIncrementingColumnNames(tables []*schema.Table) []*schema.Table {
	var out []*schema.Table
	for _, t := range tables {
		prefixes := make(map[string]int64)
		for _, c := range t.SortedColumns() {
			prefix, n, ok := splitSuffix(c.Name)
			if !ok {
				continue
			}
			if prev, found := prefixes[prefix]; found && (prev-n == 1 || n-prev == 1) {
				out = append(out, t)
				break
			}
			prefixes[prefix] = n
		}
	}
	sortTables(out)
	return out
}

// splitSuffix splits a trailing run of digits off name. The first character
// is never part of the suffix. ok is false when the suffix does not fit an
// int64.
func splitSuffix(name string) (prefix string, n int64, ok bool) {
	i := len(name)
	for i > 1 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return name, 1, true
	}
	n, err := strconv.ParseInt(name[i:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return name[:i], n, true
}

// SingleColumnTables returns tables with exactly one column.
func SingleColumnTables(tables []*schema.Table) []*schema.Table {
	var out []*schema.Table
	for _, t := range tables {
		if t.Columns.Len() == 1 {
			out = append(out, t)
		}
	}
	sortTables(out)
	return out
}

// DefaultNullStringColumns returns columns whose default is the text "null"
// rather than an actual null.
func DefaultNullStringColumns(tables []*schema.Table) []*schema.TableColumn {
	var out []*schema.TableColumn
	for _, t := range tables {
		for _, c := range t.Columns.Values() {
			s, ok := c.DefaultValue.(string)
			if ok && strings.EqualFold(strings.TrimSpace(s), "null") {
				out = append(out, c)
			}
		}
	}
	sortColumns(out)
	return out
}

func sortTables(ts []*schema.Table) {
	sort.SliceStable(ts, func(i, j int) bool {
		return strings.ToLower(ts[i].Name) < strings.ToLower(ts[j].Name)
	})
}

func sortColumns(cs []*schema.TableColumn) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := strings.ToLower(cs[i].Table.Name), strings.ToLower(cs[j].Table.Name)
		if a != b {
			return a < b
		}
		return strings.ToLower(cs[i].Name) < strings.ToLower(cs[j].Name)
	})
}
