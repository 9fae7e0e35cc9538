// Package adapter defines the catalog-reflection and SQL-execution
// capabilities a database engine must provide, and a registry of engines.
package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/sadopc/schemahawk/internal/sqlparam"
)

var (
	ErrNotConnected   = errors.New("not connected to database")
	ErrUnknownAdapter = errors.New("unknown adapter")
)

// Adapter creates database connections.
type Adapter interface {
	Connect(ctx context.Context, dsn string) (Connection, error)
	Name() string
	DefaultPort() int
}

// Connection is an open database handle that can describe its catalog and
// run parameterised statements.
type Connection interface {
	Catalog

	// Query runs a statement using the connection's placeholder style.
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Placeholder() sqlparam.Style

	Ping(ctx context.Context) error
	Close() error

	DatabaseName() string
	AdapterName() string
}

// Catalog reflects over the database's metadata.
type Catalog interface {
	Product(ctx context.Context) (Product, error)
	// Keywords returns engine-specific reserved words and function names.
	Keywords(ctx context.Context) ([]string, error)
	// Tables lists relations in schemaName whose type matches one of types,
	// compared case-insensitively.
	Tables(ctx context.Context, schemaName string, types []string) ([]TableInfo, error)
	Columns(ctx context.Context, schemaName, table string) ([]ColumnInfo, error)
	// PrimaryKeys returns primary-key column names in key order.
	PrimaryKeys(ctx context.Context, schemaName, table string) ([]string, error)
	ForeignKeys(ctx context.Context, schemaName, table string) ([]ForeignKeyInfo, error)
	Indexes(ctx context.Context, schemaName, table string) ([]IndexInfo, error)
}

// Product identifies the engine.
type Product struct {
	Name    string
	Version string
}

func (p Product) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + " - " + p.Version
}

// TableInfo is one row of catalog table discovery. Type is upper case,
// "TABLE" or "VIEW" for the built-in adapters.
type TableInfo struct {
	Schema  string
	Name    string
	Type    string
	Remarks string
}

// ColumnInfo describes a column as the catalog reports it.
type ColumnInfo struct {
	Name        string
	Ordinal     int
	Type        string
	Length      int
	Digits      int
	Nullable    bool
	AutoUpdated bool
	// Default is nil when the column has no default.
	Default any
	Remarks string
}

// ForeignKeyInfo is a foreign key declared on a table. Columns[i]
// references RefColumns[i].
type ForeignKeyInfo struct {
	Name       string
	Columns    []string
	RefSchema  string
	RefTable   string
	RefColumns []string
	UpdateRule string
	DeleteRule string
}

// IndexInfo describes an index.
type IndexInfo struct {
	Name      string
	Columns   []string
	Unique    bool
	Ascending []bool
}

// MatchesType reports whether typ equals one of types, ignoring case.
func MatchesType(typ string, types []string) bool {
	for _, t := range types {
		if strings.EqualFold(typ, t) {
			return true
		}
	}
	return false
}

// Registry holds registered adapters by name.
var Registry = map[string]Adapter{}

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	Registry[a.Name()] = a
}

// Lookup returns the adapter registered under name.
func Lookup(name string) (Adapter, error) {
	a, ok := Registry[name]
	if !ok {
		return nil, errors.Join(ErrUnknownAdapter, errors.New(name))
	}
	return a, nil
}
