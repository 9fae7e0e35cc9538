package reader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

// fakeTable is one catalog relation served by fakeConn.
type fakeTable struct {
	info    adapter.TableInfo
	columns []adapter.ColumnInfo
	pks     []string
	fks     []adapter.ForeignKeyInfo
	indexes []adapter.IndexInfo
}

type fakeResult struct {
	match string
	cols  []string
	rows  [][]any
	err   error
}

// fakeConn is an in-memory catalog. Column reads can be slowed down and
// counted to observe how many tables are populated at once.
type fakeConn struct {
	name      string
	product   adapter.Product
	keywords  []string
	tables    []fakeTable
	tablesErr error
	// columnErrs fails Columns for the named tables.
	columnErrs map[string]error
	fkErr      error
	results    []fakeResult
	delay      time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
	queries   []string
	args      [][]any
}

var _ adapter.Connection = (*fakeConn)(nil)

func (c *fakeConn) lookup(schemaName, name string) *fakeTable {
	for i := range c.tables {
		t := &c.tables[i]
		if strings.EqualFold(t.info.Name, name) && (schemaName == "" || strings.EqualFold(t.info.Schema, schemaName)) {
			return t
		}
	}
	return nil
}

func (c *fakeConn) Product(context.Context) (adapter.Product, error) {
	if c.product.Name == "" {
		return adapter.Product{}, errors.New("no product")
	}
	return c.product, nil
}

func (c *fakeConn) Keywords(context.Context) ([]string, error) {
	if c.keywords == nil {
		return nil, errors.New("no keywords")
	}
	return c.keywords, nil
}

func (c *fakeConn) Tables(_ context.Context, schemaName string, types []string) ([]adapter.TableInfo, error) {
	if c.tablesErr != nil {
		return nil, c.tablesErr
	}
	var out []adapter.TableInfo
	for _, t := range c.tables {
		if strings.EqualFold(t.info.Schema, schemaName) && adapter.MatchesType(t.info.Type, types) {
			out = append(out, t.info)
		}
	}
	return out, nil
}

func (c *fakeConn) Columns(_ context.Context, schemaName, table string) ([]adapter.ColumnInfo, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
	}()
	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	if err := c.columnErrs[table]; err != nil {
		return nil, err
	}
	if t := c.lookup(schemaName, table); t != nil {
		return t.columns, nil
	}
	return nil, nil
}

func (c *fakeConn) PrimaryKeys(_ context.Context, schemaName, table string) ([]string, error) {
	if t := c.lookup(schemaName, table); t != nil {
		return t.pks, nil
	}
	return nil, nil
}

func (c *fakeConn) ForeignKeys(_ context.Context, schemaName, table string) ([]adapter.ForeignKeyInfo, error) {
	if c.fkErr != nil {
		return nil, c.fkErr
	}
	if t := c.lookup(schemaName, table); t != nil {
		return t.fks, nil
	}
	return nil, nil
}

func (c *fakeConn) Indexes(_ context.Context, schemaName, table string) ([]adapter.IndexInfo, error) {
	if t := c.lookup(schemaName, table); t != nil {
		return t.indexes, nil
	}
	return nil, nil
}

func (c *fakeConn) Query(_ context.Context, query string, args ...any) (adapter.Rows, error) {
	c.mu.Lock()
	c.queries = append(c.queries, query)
	c.args = append(c.args, args)
	c.mu.Unlock()
	for _, r := range c.results {
		if strings.Contains(query, r.match) {
			if r.err != nil {
				return nil, r.err
			}
			return adapter.Static(r.cols, r.rows), nil
		}
	}
	return adapter.Static(nil, nil), nil
}

func (c *fakeConn) Placeholder() sqlparam.Style { return sqlparam.Question }
func (c *fakeConn) Ping(context.Context) error  { return nil }
func (c *fakeConn) Close() error                { return nil }
func (c *fakeConn) DatabaseName() string        { return c.name }
func (c *fakeConn) AdapterName() string         { return "fake" }

// table builds a base table in schema "app" with an integer id primary key
// and the given extra columns.
func table(name string, cols ...string) fakeTable {
	t := fakeTable{
		info: adapter.TableInfo{Schema: "app", Name: name, Type: "TABLE"},
		pks:  []string{"id"},
	}
	t.columns = append(t.columns, adapter.ColumnInfo{Name: "id", Ordinal: 1, Type: "integer"})
	for i, c := range cols {
		t.columns = append(t.columns, adapter.ColumnInfo{Name: c, Ordinal: i + 2, Type: "integer", Nullable: true})
	}
	t.indexes = []adapter.IndexInfo{{Name: name + "_pkey", Columns: []string{"id"}, Unique: true, Ascending: []bool{true}}}
	return t
}

func view(name string, cols ...string) fakeTable {
	t := fakeTable{info: adapter.TableInfo{Schema: "app", Name: name, Type: "VIEW"}}
	for i, c := range cols {
		t.columns = append(t.columns, adapter.ColumnInfo{Name: c, Ordinal: i + 1, Type: "text"})
	}
	return t
}

func fk(name, col, refTable, refCol string) adapter.ForeignKeyInfo {
	return adapter.ForeignKeyInfo{
		Name:       name,
		Columns:    []string{col},
		RefSchema:  "app",
		RefTable:   refTable,
		RefColumns: []string{refCol},
		DeleteRule: "CASCADE",
		UpdateRule: "NO ACTION",
	}
}
