package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/keywords"
	"github.com/sadopc/schemahawk/internal/sqlparam"

	_ "modernc.org/sqlite"
)

func init() {
	adapter.Register(&sqliteAdapter{})
}

// sqliteAdapter implements adapter.Adapter for SQLite databases.
type sqliteAdapter struct{}

func (a *sqliteAdapter) Name() string     { return "sqlite" }
func (a *sqliteAdapter) DefaultPort() int { return 0 }

func (a *sqliteAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	dsn = normalizeDSN(dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite enable foreign keys: %w", err)
	}

	dbName := dsn
	if dsn != ":memory:" {
		dbName = filepath.Base(dsn)
	} else {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	return &sqliteConn{
		db:     db,
		dbName: dbName,
	}, nil
}

// normalizeDSN strips common SQLite URI prefixes.
func normalizeDSN(dsn string) string {
	if strings.HasPrefix(dsn, "sqlite://") {
		return strings.TrimPrefix(dsn, "sqlite://")
	}
	if strings.HasPrefix(dsn, "file:") {
		return strings.TrimPrefix(dsn, "file:")
	}
	return dsn
}

// sqliteConn implements adapter.Connection. SQLite has a single schema,
// "main"; schema arguments are ignored.
type sqliteConn struct {
	db     *sql.DB
	dbName string
}

func (c *sqliteConn) AdapterName() string         { return "sqlite" }
func (c *sqliteConn) DatabaseName() string        { return c.dbName }
func (c *sqliteConn) Placeholder() sqlparam.Style { return sqlparam.Question }

func (c *sqliteConn) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqliteConn) Close() error {
	return c.db.Close()
}

func (c *sqliteConn) Query(ctx context.Context, query string, args ...any) (adapter.Rows, error) {
	return adapter.QueryDB(ctx, c.db, query, args...)
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (c *sqliteConn) Product(ctx context.Context) (adapter.Product, error) {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return adapter.Product{}, fmt.Errorf("sqlite product: %w", err)
	}
	return adapter.Product{Name: "SQLite", Version: version}, nil
}

// Keywords returns SQLite's reserved words. SQLite exposes no catalog table
// for them.
func (c *sqliteConn) Keywords(ctx context.Context) ([]string, error) {
	return keywords.SQLite, nil
}

// Tables returns user tables and views from sqlite_master.
func (c *sqliteConn) Tables(ctx context.Context, schemaName string, types []string) ([]adapter.TableInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT name, upper(type) FROM sqlite_master WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite tables: %w", err)
	}
	defer rows.Close()

	var tables []adapter.TableInfo
	for rows.Next() {
		ti := adapter.TableInfo{Schema: "main"}
		if err := rows.Scan(&ti.Name, &ti.Type); err != nil {
			return nil, fmt.Errorf("sqlite tables scan: %w", err)
		}
		if adapter.MatchesType(ti.Type, types) {
			tables = append(tables, ti)
		}
	}
	return tables, rows.Err()
}

type tableInfoRow struct {
	cid     int
	name    string
	colType string
	notNull int
	dflt    sql.NullString
	pk      int
}

func (c *sqliteConn) tableInfo(ctx context.Context, table string) ([]tableInfoRow, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlite table_info: %w", err)
	}
	defer rows.Close()

	var out []tableInfoRow
	for rows.Next() {
		var r tableInfoRow
		if err := rows.Scan(&r.cid, &r.name, &r.colType, &r.notNull, &r.dflt, &r.pk); err != nil {
			return nil, fmt.Errorf("sqlite table_info scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Columns returns column metadata for the given table using PRAGMA table_info.
func (c *sqliteConn) Columns(ctx context.Context, schemaName, table string) ([]adapter.ColumnInfo, error) {
	info, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	pkCount := 0
	for _, r := range info {
		if r.pk > 0 {
			pkCount++
		}
	}

	columns := make([]adapter.ColumnInfo, 0, len(info))
	for _, r := range info {
		length, digits := parseTypeSize(r.colType)
		col := adapter.ColumnInfo{
			Name:     r.name,
			Ordinal:  r.cid + 1,
			Type:     r.colType,
			Length:   length,
			Digits:   digits,
			Nullable: r.notNull == 0,
			// A lone INTEGER PRIMARY KEY aliases the rowid.
			AutoUpdated: r.pk > 0 && pkCount == 1 && strings.EqualFold(r.colType, "INTEGER"),
		}
		if r.dflt.Valid {
			col.Default = r.dflt.String
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// parseTypeSize extracts the size arguments from a declared type such as
// "VARCHAR(100)" or "DECIMAL(10, 2)".
func parseTypeSize(declared string) (length, digits int) {
	open := strings.IndexByte(declared, '(')
	end := strings.LastIndexByte(declared, ')')
	if open < 0 || end < open {
		return 0, 0
	}
	parts := strings.Split(declared[open+1:end], ",")
	length, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	if len(parts) > 1 {
		digits, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return length, digits
}

// PrimaryKeys returns primary-key columns in key order.
func (c *sqliteConn) PrimaryKeys(ctx context.Context, schemaName, table string) ([]string, error) {
	info, err := c.tableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	var pks []tableInfoRow
	for _, r := range info {
		if r.pk > 0 {
			pks = append(pks, r)
		}
	}
	sort.Slice(pks, func(i, j int) bool { return pks[i].pk < pks[j].pk })
	names := make([]string, len(pks))
	for i, r := range pks {
		names[i] = r.name
	}
	return names, nil
}

// Indexes returns index information for the given table.
func (c *sqliteConn) Indexes(ctx context.Context, schemaName, table string) ([]adapter.IndexInfo, error) {
	listRows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlite index_list: %w", err)
	}

	type indexEntry struct {
		name   string
		unique bool
	}
	var entries []indexEntry
	for listRows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := listRows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			listRows.Close()
			return nil, fmt.Errorf("sqlite index_list scan: %w", err)
		}
		entries = append(entries, indexEntry{name: name, unique: unique == 1})
	}
	listRows.Close()
	if err := listRows.Err(); err != nil {
		return nil, err
	}

	var groups adapter.IndexGroups
	for _, entry := range entries {
		infoRows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_xinfo(%q)", entry.name))
		if err != nil {
			return nil, fmt.Errorf("sqlite index_xinfo: %w", err)
		}

		for infoRows.Next() {
			var (
				seqno, cid, desc, key int
				name                  sql.NullString
				coll                  sql.NullString
			)
			if err := infoRows.Scan(&seqno, &cid, &name, &desc, &coll, &key); err != nil {
				infoRows.Close()
				return nil, fmt.Errorf("sqlite index_xinfo scan: %w", err)
			}
			// auxiliary columns (rowid) have key = 0
			if key == 0 || !name.Valid {
				continue
			}
			groups.Add(entry.name, entry.unique, name.String, desc == 0)
		}
		infoRows.Close()
		if err := infoRows.Err(); err != nil {
			return nil, err
		}
	}
	return groups.List(), nil
}

// ForeignKeys returns foreign key constraints for the given table. SQLite
// does not name them, so names are synthesised from the table and key id.
func (c *sqliteConn) ForeignKeys(ctx context.Context, schemaName, table string) ([]adapter.ForeignKeyInfo, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("sqlite foreign_key_list: %w", err)
	}
	defer rows.Close()

	var groups adapter.ForeignKeyGroups
	for rows.Next() {
		var (
			id       int
			seq      int
			refTable string
			from     string
			to       sql.NullString
			onUpdate string
			onDelete string
			match    string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("sqlite foreign_key_list scan: %w", err)
		}
		refCol := to.String
		if !to.Valid {
			// REFERENCES t without a column list targets the primary key.
			refCol = ""
		}
		groups.Add(adapter.ForeignKeyInfo{
			Name:       fmt.Sprintf("fk_%s_%d", table, id),
			RefSchema:  "main",
			RefTable:   refTable,
			UpdateRule: onUpdate,
			DeleteRule: onDelete,
		}, from, refCol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	fks := groups.List()

	// Resolve implicit primary-key targets.
	for i := range fks {
		for j, rc := range fks[i].RefColumns {
			if rc != "" {
				continue
			}
			pks, err := c.PrimaryKeys(ctx, schemaName, fks[i].RefTable)
			if err != nil {
				return nil, err
			}
			if j < len(pks) {
				fks[i].RefColumns[j] = pks[j]
			}
		}
	}
	return fks, nil
}
