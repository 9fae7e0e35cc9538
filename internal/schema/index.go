package schema

// TableIndex is an index over an ordered list of columns.
type TableIndex struct {
	Name    string
	ID      any
	Unique  bool
	Columns []*TableColumn
	// Ascending holds per-column sort direction; missing entries mean ascending.
	Ascending []bool
}

// AddColumn appends col to the index key.
func (i *TableIndex) AddColumn(col *TableColumn, ascending bool) {
	i.Columns = append(i.Columns, col)
	i.Ascending = append(i.Ascending, ascending)
}

// IsUniqueNullable reports a unique index whose columns are all nullable.
func (i *TableIndex) IsUniqueNullable() bool {
	if !i.Unique || len(i.Columns) == 0 {
		return false
	}
	for _, c := range i.Columns {
		if !c.Nullable {
			return false
		}
	}
	return true
}

// IsPrimaryKey reports whether the index covers exactly the table's primary key.
func (i *TableIndex) IsPrimaryKey() bool {
	if len(i.Columns) == 0 {
		return false
	}
	pks := i.Columns[0].Table.PrimaryKeys
	if len(pks) != len(i.Columns) {
		return false
	}
	for n, c := range i.Columns {
		if pks[n] != c {
			return false
		}
	}
	return true
}
