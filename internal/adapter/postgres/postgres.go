package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

func init() {
	adapter.Register(&postgresAdapter{})
}

// postgresAdapter implements adapter.Adapter for PostgreSQL.
type postgresAdapter struct{}

func (a *postgresAdapter) Name() string     { return "postgres" }
func (a *postgresAdapter) DefaultPort() int { return 5432 }

func (a *postgresAdapter) Connect(ctx context.Context, dsn string) (adapter.Connection, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &pgConn{
		pool:   pool,
		dbName: extractDBName(dsn),
	}, nil
}

// extractDBName parses the database name from the DSN.
func extractDBName(dsn string) string {
	if dsn == "" {
		return ""
	}
	// Try URL format first (postgres://... or postgresql://...)
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" {
		return strings.TrimPrefix(u.Path, "/")
	}
	// Fallback: keyword=value format (e.g. "host=localhost dbname=myapp")
	for _, part := range strings.Fields(dsn) {
		if strings.HasPrefix(part, "dbname=") {
			return strings.TrimPrefix(part, "dbname=")
		}
	}
	return ""
}

// pgConn implements adapter.Connection for PostgreSQL.
type pgConn struct {
	pool   *pgxpool.Pool
	dbName string
}

func (c *pgConn) DatabaseName() string           { return c.dbName }
func (c *pgConn) AdapterName() string            { return "postgres" }
func (c *pgConn) Placeholder() sqlparam.Style    { return sqlparam.Dollar }
func (c *pgConn) Ping(ctx context.Context) error { return c.pool.Ping(ctx) }

func (c *pgConn) Close() error {
	c.pool.Close()
	return nil
}

// Query runs a statement on the pool. The connection is held until the
// returned Rows is closed.
func (c *pgConn) Query(ctx context.Context, query string, args ...any) (adapter.Rows, error) {
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return wrapRows(rows), nil
}

func wrapRows(rows pgx.Rows) adapter.Rows {
	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	fetch := func() ([]any, error) {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		return vals, nil
	}
	return adapter.NewCursor(cols, rows, fetch, func() error {
		rows.Close()
		return nil
	})
}

// normalizeValue turns pgx-specific values into plain Go values.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		dv, err := val.Value()
		if err != nil {
			return nil
		}
		return dv
	case [16]byte:
		// UUID
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	default:
		return v
	}
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func (c *pgConn) Product(ctx context.Context) (adapter.Product, error) {
	var version string
	if err := c.pool.QueryRow(ctx, `SHOW server_version`).Scan(&version); err != nil {
		return adapter.Product{}, fmt.Errorf("product: %w", err)
	}
	return adapter.Product{Name: "PostgreSQL", Version: version}, nil
}

func (c *pgConn) Keywords(ctx context.Context) ([]string, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT upper(word) FROM pg_get_keywords() WHERE catcode <> 'U' ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("keywords: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("keywords scan: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (c *pgConn) Tables(ctx context.Context, schemaName string, types []string) ([]adapter.TableInfo, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := c.pool.Query(ctx,
		`SELECT t.table_schema,
		        t.table_name,
		        t.table_type,
		        COALESCE(obj_description(cl.oid, 'pg_class'), '')
		 FROM information_schema.tables t
		 JOIN pg_namespace n ON n.nspname = t.table_schema
		 LEFT JOIN pg_class cl ON cl.relname = t.table_name AND cl.relnamespace = n.oid
		 WHERE t.table_schema = $1
		 ORDER BY t.table_name`, schemaName)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	defer rows.Close()

	var tables []adapter.TableInfo
	for rows.Next() {
		var ti adapter.TableInfo
		if err := rows.Scan(&ti.Schema, &ti.Name, &ti.Type, &ti.Remarks); err != nil {
			return nil, fmt.Errorf("tables scan: %w", err)
		}
		ti.Type = normalizeTableType(ti.Type)
		if adapter.MatchesType(ti.Type, types) {
			tables = append(tables, ti)
		}
	}
	return tables, rows.Err()
}

// normalizeTableType maps information_schema table types onto the
// TABLE/VIEW vocabulary.
func normalizeTableType(t string) string {
	switch strings.ToUpper(t) {
	case "BASE TABLE":
		return "TABLE"
	case "FOREIGN", "FOREIGN TABLE":
		return "FOREIGN TABLE"
	default:
		return strings.ToUpper(t)
	}
}

func (c *pgConn) Columns(ctx context.Context, schemaName, table string) ([]adapter.ColumnInfo, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := c.pool.Query(ctx,
		`SELECT c.column_name,
		        c.ordinal_position::int,
		        c.data_type,
		        COALESCE(c.character_maximum_length, c.numeric_precision, 0)::int,
		        COALESCE(c.numeric_scale, 0)::int,
		        c.is_nullable,
		        c.column_default,
		        (c.is_identity = 'YES' OR COALESCE(c.column_default, '') LIKE 'nextval(%'),
		        COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), '')
		 FROM information_schema.columns c
		 WHERE c.table_schema = $1
		   AND c.table_name   = $2
		 ORDER BY c.ordinal_position`, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	defer rows.Close()

	var cols []adapter.ColumnInfo
	for rows.Next() {
		var (
			ci       adapter.ColumnInfo
			nullable string
			dflt     *string
		)
		if err := rows.Scan(&ci.Name, &ci.Ordinal, &ci.Type, &ci.Length, &ci.Digits,
			&nullable, &dflt, &ci.AutoUpdated, &ci.Remarks); err != nil {
			return nil, fmt.Errorf("columns scan: %w", err)
		}
		ci.Nullable = nullable == "YES"
		if dflt != nil {
			ci.Default = *dflt
		}
		cols = append(cols, ci)
	}
	return cols, rows.Err()
}

func (c *pgConn) PrimaryKeys(ctx context.Context, schemaName, table string) ([]string, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := c.pool.Query(ctx,
		`SELECT a.attname
		 FROM pg_index i
		 JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		 WHERE i.indrelid = format('%I.%I', $1::text, $2::text)::regclass
		   AND i.indisprimary
		 ORDER BY array_position(i.indkey::int2[], a.attnum)`, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys: %w", err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("primary keys scan: %w", err)
		}
		pk = append(pk, name)
	}
	return pk, rows.Err()
}

func (c *pgConn) Indexes(ctx context.Context, schemaName, table string) ([]adapter.IndexInfo, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := c.pool.Query(ctx,
		`SELECT i.relname                         AS index_name,
		        array_agg(a.attname::text ORDER BY k.n) AS columns,
		        array_agg((ix.indoption[k.n - 1] & 1) = 0 ORDER BY k.n) AS ascending,
		        ix.indisunique                     AS is_unique
		 FROM pg_index ix
		 JOIN pg_class  t ON t.oid  = ix.indrelid
		 JOIN pg_class  i ON i.oid  = ix.indexrelid
		 JOIN pg_namespace n ON n.oid = t.relnamespace
		 JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, n) ON true
		 JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		 WHERE n.nspname = $1
		   AND t.relname = $2
		 GROUP BY i.relname, ix.indisunique
		 ORDER BY i.relname`, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("indexes: %w", err)
	}
	defer rows.Close()

	var indexes []adapter.IndexInfo
	for rows.Next() {
		var idx adapter.IndexInfo
		if err := rows.Scan(&idx.Name, &idx.Columns, &idx.Ascending, &idx.Unique); err != nil {
			return nil, fmt.Errorf("indexes scan: %w", err)
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}

func (c *pgConn) ForeignKeys(ctx context.Context, schemaName, table string) ([]adapter.ForeignKeyInfo, error) {
	if schemaName == "" {
		schemaName = "public"
	}

	rows, err := c.pool.Query(ctx,
		`SELECT con.conname,
		        att.attname,
		        rn.nspname,
		        rc.relname,
		        ratt.attname,
		        con.confupdtype::text,
		        con.confdeltype::text
		 FROM pg_constraint con
		 JOIN pg_class cl      ON cl.oid = con.conrelid
		 JOIN pg_namespace n   ON n.oid = cl.relnamespace
		 JOIN pg_class rc      ON rc.oid = con.confrelid
		 JOIN pg_namespace rn  ON rn.oid = rc.relnamespace
		 JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, refnum, n) ON true
		 JOIN pg_attribute att  ON att.attrelid = con.conrelid AND att.attnum = k.attnum
		 JOIN pg_attribute ratt ON ratt.attrelid = con.confrelid AND ratt.attnum = k.refnum
		 WHERE con.contype = 'f'
		   AND n.nspname   = $1
		   AND cl.relname  = $2
		 ORDER BY con.conname, k.n`, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys: %w", err)
	}
	defer rows.Close()

	var groups adapter.ForeignKeyGroups
	for rows.Next() {
		var cname, col, refSchema, refTable, refCol, upd, del string
		if err := rows.Scan(&cname, &col, &refSchema, &refTable, &refCol, &upd, &del); err != nil {
			return nil, fmt.Errorf("foreign keys scan: %w", err)
		}
		groups.Add(adapter.ForeignKeyInfo{
			Name:       cname,
			RefSchema:  refSchema,
			RefTable:   refTable,
			UpdateRule: ruleName(upd),
			DeleteRule: ruleName(del),
		}, col, refCol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups.List(), nil
}

// ruleName decodes pg_constraint.confupdtype / confdeltype.
func ruleName(code string) string {
	switch code {
	case "c":
		return "CASCADE"
	case "n":
		return "SET NULL"
	case "d":
		return "SET DEFAULT"
	case "r":
		return "RESTRICT"
	default:
		return "NO ACTION"
	}
}
