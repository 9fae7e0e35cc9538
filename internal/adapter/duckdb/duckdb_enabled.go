//go:build duckdb

package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

func init() {
	adapter.Register(&duckdbAdapter{})
}

// ---------------------------------------------------------------------------
// Adapter
// ---------------------------------------------------------------------------

type duckdbAdapter struct{}

func (a *duckdbAdapter) Name() string     { return "duckdb" }
func (a *duckdbAdapter) DefaultPort() int { return 0 }

func (a *duckdbAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	dsn = normalizeDSN(dsn)

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping: %w", err)
	}

	name := dsn
	if dsn != ":memory:" {
		name = strings.TrimSuffix(filepath.Base(dsn), filepath.Ext(dsn))
	}
	return &duckdbConn{db: db, dbName: name}, nil
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

type duckdbConn struct {
	db     *sql.DB
	dbName string
}

func (c *duckdbConn) DatabaseName() string        { return c.dbName }
func (c *duckdbConn) AdapterName() string         { return "duckdb" }
func (c *duckdbConn) Placeholder() sqlparam.Style { return sqlparam.Question }

func (c *duckdbConn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *duckdbConn) Close() error {
	return c.db.Close()
}

func (c *duckdbConn) Query(ctx context.Context, query string, args ...any) (adapter.Rows, error) {
	return adapter.QueryDB(ctx, c.db, query, args...)
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (c *duckdbConn) Product(ctx context.Context) (adapter.Product, error) {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return adapter.Product{}, fmt.Errorf("duckdb: product: %w", err)
	}
	return adapter.Product{Name: "DuckDB", Version: version}, nil
}

func (c *duckdbConn) Keywords(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT upper(keyword_name) FROM duckdb_keywords() WHERE keyword_category = 'reserved'")
	if err != nil {
		return nil, fmt.Errorf("duckdb: keywords: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("duckdb: keywords scan: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (c *duckdbConn) Tables(ctx context.Context, schemaName string, types []string) ([]adapter.TableInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT table_schema, table_name, table_type, COALESCE(TABLE_COMMENT, '')
		FROM information_schema.tables
		WHERE table_schema = ?
		ORDER BY table_name`, schemaOrMain(schemaName))
	if err != nil {
		return nil, fmt.Errorf("duckdb: tables: %w", err)
	}
	defer rows.Close()

	var tables []adapter.TableInfo
	for rows.Next() {
		var ti adapter.TableInfo
		if err := rows.Scan(&ti.Schema, &ti.Name, &ti.Type, &ti.Remarks); err != nil {
			return nil, fmt.Errorf("duckdb: tables scan: %w", err)
		}
		if strings.EqualFold(ti.Type, "BASE TABLE") {
			ti.Type = "TABLE"
		}
		ti.Type = strings.ToUpper(ti.Type)
		if adapter.MatchesType(ti.Type, types) {
			tables = append(tables, ti)
		}
	}
	return tables, rows.Err()
}

func (c *duckdbConn) Columns(ctx context.Context, schemaName, table string) ([]adapter.ColumnInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT column_name,
			ordinal_position,
			data_type,
			COALESCE(character_maximum_length, numeric_precision, 0),
			COALESCE(numeric_scale, 0),
			is_nullable = 'YES',
			column_default,
			COALESCE(COLUMN_COMMENT, '')
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, schemaOrMain(schemaName), table)
	if err != nil {
		return nil, fmt.Errorf("duckdb: columns: %w", err)
	}
	defer rows.Close()

	var cols []adapter.ColumnInfo
	for rows.Next() {
		var (
			ci   adapter.ColumnInfo
			dflt sql.NullString
		)
		if err := rows.Scan(&ci.Name, &ci.Ordinal, &ci.Type, &ci.Length, &ci.Digits,
			&ci.Nullable, &dflt, &ci.Remarks); err != nil {
			return nil, fmt.Errorf("duckdb: columns scan: %w", err)
		}
		if dflt.Valid {
			ci.Default = dflt.String
			ci.AutoUpdated = strings.HasPrefix(strings.ToLower(dflt.String), "nextval(")
		}
		cols = append(cols, ci)
	}
	return cols, rows.Err()
}

func (c *duckdbConn) PrimaryKeys(ctx context.Context, schemaName, table string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = ?
		  AND tc.table_name = ?
		ORDER BY kcu.ordinal_position`, schemaOrMain(schemaName), table)
	if err != nil {
		return nil, fmt.Errorf("duckdb: primary keys: %w", err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("duckdb: primary keys scan: %w", err)
		}
		pk = append(pk, name)
	}
	return pk, rows.Err()
}

func (c *duckdbConn) Indexes(ctx context.Context, schemaName, table string) ([]adapter.IndexInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT index_name, is_unique, sql
		FROM duckdb_indexes()
		WHERE schema_name = ? AND table_name = ?
		ORDER BY index_name`, schemaOrMain(schemaName), table)
	if err != nil {
		return nil, fmt.Errorf("duckdb: indexes: %w", err)
	}
	defer rows.Close()

	var indexes []adapter.IndexInfo
	for rows.Next() {
		var (
			idx    adapter.IndexInfo
			sqlStr sql.NullString
		)
		if err := rows.Scan(&idx.Name, &idx.Unique, &sqlStr); err != nil {
			return nil, fmt.Errorf("duckdb: indexes scan: %w", err)
		}
		idx.Columns, idx.Ascending = parseIndexColumns(sqlStr.String)
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

func (c *duckdbConn) ForeignKeys(ctx context.Context, schemaName, table string) ([]adapter.ForeignKeyInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT
			rc.constraint_name,
			kcu.column_name,
			kcu2.table_schema AS ref_schema,
			kcu2.table_name AS ref_table,
			kcu2.column_name AS ref_column,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
		  ON rc.constraint_catalog = kcu.constraint_catalog
		  AND rc.constraint_schema = kcu.constraint_schema
		  AND rc.constraint_name = kcu.constraint_name
		JOIN information_schema.key_column_usage kcu2
		  ON rc.unique_constraint_catalog = kcu2.constraint_catalog
		  AND rc.unique_constraint_schema = kcu2.constraint_schema
		  AND rc.unique_constraint_name = kcu2.constraint_name
		  AND kcu.ordinal_position = kcu2.ordinal_position
		WHERE kcu.table_schema = ? AND kcu.table_name = ?
		ORDER BY rc.constraint_name, kcu.ordinal_position`, schemaOrMain(schemaName), table)
	if err != nil {
		return nil, fmt.Errorf("duckdb: foreign keys: %w", err)
	}
	defer rows.Close()

	var groups adapter.ForeignKeyGroups
	for rows.Next() {
		var name, col, refSchema, refTable, refCol, upd, del string
		if err := rows.Scan(&name, &col, &refSchema, &refTable, &refCol, &upd, &del); err != nil {
			return nil, fmt.Errorf("duckdb: foreign keys scan: %w", err)
		}
		groups.Add(adapter.ForeignKeyInfo{
			Name:       name,
			RefSchema:  refSchema,
			RefTable:   refTable,
			UpdateRule: upd,
			DeleteRule: del,
		}, col, refCol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups.List(), nil
}
