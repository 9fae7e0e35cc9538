package adapter

// ForeignKeyGroups assembles multi-column foreign keys from catalog rows
// that carry one column pair each. Keys come back in first-seen order.
type ForeignKeyGroups struct {
	byName map[string]*ForeignKeyInfo
	order  []string
}

// Add appends the column pair to the key named fk.Name, creating the key
// from fk on first sight.
func (g *ForeignKeyGroups) Add(fk ForeignKeyInfo, col, refCol string) {
	if g.byName == nil {
		g.byName = make(map[string]*ForeignKeyInfo)
	}
	cur, ok := g.byName[fk.Name]
	if !ok {
		fk.Columns, fk.RefColumns = nil, nil
		cur = &fk
		g.byName[fk.Name] = cur
		g.order = append(g.order, fk.Name)
	}
	cur.Columns = append(cur.Columns, col)
	cur.RefColumns = append(cur.RefColumns, refCol)
}

// List returns the assembled keys.
func (g *ForeignKeyGroups) List() []ForeignKeyInfo {
	out := make([]ForeignKeyInfo, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, *g.byName[name])
	}
	return out
}

// IndexGroups assembles indexes from one row per indexed column.
type IndexGroups struct {
	byName map[string]*IndexInfo
	order  []string
}

// Add appends col to the index called name.
func (g *IndexGroups) Add(name string, unique bool, col string, ascending bool) {
	if g.byName == nil {
		g.byName = make(map[string]*IndexInfo)
	}
	cur, ok := g.byName[name]
	if !ok {
		cur = &IndexInfo{Name: name, Unique: unique}
		g.byName[name] = cur
		g.order = append(g.order, name)
	}
	cur.Columns = append(cur.Columns, col)
	cur.Ascending = append(cur.Ascending, ascending)
}

// List returns the assembled indexes.
func (g *IndexGroups) List() []IndexInfo {
	out := make([]IndexInfo, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, *g.byName[name])
	}
	return out
}
