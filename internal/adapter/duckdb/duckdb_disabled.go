//go:build !duckdb

package duckdb

import (
	"context"
	"errors"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

var errDisabled = errors.New("DuckDB support not compiled in. Rebuild with -tags duckdb")

func init() {
	adapter.Register(&disabledAdapter{})
}

type disabledAdapter struct{}

func (d *disabledAdapter) Name() string     { return "duckdb" }
func (d *disabledAdapter) DefaultPort() int { return 0 }

func (d *disabledAdapter) Connect(_ context.Context, _ string) (adapter.Connection, error) {
	return nil, errDisabled
}

// disabledConnection is never instantiated but satisfies the interface at compile time.
var _ adapter.Connection = (*disabledConnection)(nil)

type disabledConnection struct{}

func (c *disabledConnection) Product(_ context.Context) (adapter.Product, error) {
	return adapter.Product{}, errDisabled
}
func (c *disabledConnection) Keywords(_ context.Context) ([]string, error) {
	return nil, errDisabled
}
func (c *disabledConnection) Tables(_ context.Context, _ string, _ []string) ([]adapter.TableInfo, error) {
	return nil, errDisabled
}
func (c *disabledConnection) Columns(_ context.Context, _, _ string) ([]adapter.ColumnInfo, error) {
	return nil, errDisabled
}
func (c *disabledConnection) PrimaryKeys(_ context.Context, _, _ string) ([]string, error) {
	return nil, errDisabled
}
func (c *disabledConnection) ForeignKeys(_ context.Context, _, _ string) ([]adapter.ForeignKeyInfo, error) {
	return nil, errDisabled
}
func (c *disabledConnection) Indexes(_ context.Context, _, _ string) ([]adapter.IndexInfo, error) {
	return nil, errDisabled
}
func (c *disabledConnection) Query(_ context.Context, _ string, _ ...any) (adapter.Rows, error) {
	return nil, errDisabled
}
func (c *disabledConnection) Placeholder() sqlparam.Style  { return sqlparam.Question }
func (c *disabledConnection) Ping(_ context.Context) error { return errDisabled }
func (c *disabledConnection) Close() error                 { return errDisabled }
func (c *disabledConnection) DatabaseName() string         { return "" }
func (c *disabledConnection) AdapterName() string          { return "duckdb" }
