// Package keywords holds reserved-word lists: the SQL-92 set every engine
// shares and the additions each supported engine reserves.
package keywords

import "strings"

// SQL92 are the reserved and non-reserved words of SQL-92.
var SQL92 = []string{
	"ADA", "C", "CATALOG_NAME", "CHARACTER_SET_CATALOG", "CHARACTER_SET_NAME",
	"CHARACTER_SET_SCHEMA", "CLASS_ORIGIN", "COBOL", "COLLATION_CATALOG",
	"COLLATION_NAME", "COLLATION_SCHEMA", "COLUMN_NAME", "COMMAND_FUNCTION",
	"COMMITTED", "CONDITION_NUMBER", "CONNECTION_NAME", "CONSTRAINT_CATALOG",
	"CONSTRAINT_NAME", "CONSTRAINT_SCHEMA", "CURSOR_NAME", "DATA",
	"DATETIME_INTERVAL_CODE", "DATETIME_INTERVAL_PRECISION",
	"DYNAMIC_FUNCTION", "FORTRAN", "LENGTH", "MESSAGE_LENGTH",
	"MESSAGE_OCTET_LENGTH", "MESSAGE_TEXT", "MORE", "MUMPS", "NAME",
	"NULLABLE", "NUMBER", "PASCAL", "PLI", "REPEATABLE", "RETURNED_LENGTH",
	"RETURNED_OCTET_LENGTH", "RETURNED_SQLSTATE", "ROW_COUNT", "SCALE",
	"SCHEMA_NAME", "SERIALIZABLE", "SERVER_NAME", "SUBCLASS_ORIGIN",
	"TABLE_NAME", "TYPE", "UNCOMMITTED", "UNNAMED", "ABSOLUTE", "ACTION",
	"ADD", "ALL", "ALLOCATE", "ALTER", "AND", "ANY", "ARE", "AS", "ASC",
	"ASSERTION", "AT", "AUTHORIZATION", "AVG", "BEGIN", "BETWEEN", "BIT",
	"BIT_LENGTH", "BOTH", "BY", "CASCADE", "CASCADED", "CASE", "CAST",
	"CATALOG", "CHAR", "CHARACTER", "CHAR_LENGTH", "CHARACTER_LENGTH",
	"CHECK", "CLOSE", "COALESCE", "COLLATE", "COLLATION", "COLUMN", "COMMIT",
	"CONNECT", "CONNECTION", "CONSTRAINT", "CONSTRAINTS", "CONTINUE",
	"CONVERT", "CORRESPONDING", "COUNT", "CREATE", "CROSS", "CURRENT",
	"CURRENT_DATE", "CURRENT_TIME", "CURRENT_TIMESTAMP", "CURRENT_USER",
	"CURSOR", "DATE", "DAY", "DEALLOCATE", "DEC", "DECIMAL", "DECLARE",
	"DEFAULT", "DEFERRABLE", "DEFERRED", "DELETE", "DESC", "DESCRIBE",
	"DESCRIPTOR", "DIAGNOSTICS", "DISCONNECT", "DISTINCT", "DOMAIN", "DOUBLE",
	"DROP", "ELSE", "END", "END-EXEC", "ESCAPE", "EXCEPT", "EXCEPTION",
	"EXEC", "EXECUTE", "EXISTS", "EXTERNAL", "EXTRACT", "FALSE", "FETCH",
	"FIRST", "FLOAT", "FOR", "FOREIGN", "FOUND", "FROM", "FULL", "GET",
	"GLOBAL", "GO", "GOTO", "GRANT", "GROUP", "HAVING", "HOUR", "IDENTITY",
	"IMMEDIATE", "IN", "INDICATOR", "INITIALLY", "INNER", "INPUT",
	"INSENSITIVE", "INSERT", "INT", "INTEGER", "INTERSECT", "INTERVAL",
	"INTO", "IS", "ISOLATION", "JOIN", "KEY", "LANGUAGE", "LAST", "LEADING",
	"LEFT", "LEVEL", "LIKE", "LOCAL", "LOWER", "MATCH", "MAX", "MIN",
	"MINUTE", "MODULE", "MONTH", "NAMES", "NATIONAL", "NATURAL", "NCHAR",
	"NEXT", "NO", "NOT", "NULL", "NULLIF", "NUMERIC", "OCTET_LENGTH", "OF",
	"ON", "ONLY", "OPEN", "OPTION", "OR", "ORDER", "OUTER", "OUTPUT",
	"OVERLAPS", "PAD", "PARTIAL", "POSITION", "PRECISION", "PREPARE",
	"PRESERVE", "PRIMARY", "PRIOR", "PRIVILEGES", "PROCEDURE", "PUBLIC",
	"READ", "REAL", "REFERENCES", "RELATIVE", "RESTRICT", "REVOKE", "RIGHT",
	"ROLLBACK", "ROWS", "SCHEMA", "SCROLL", "SECOND", "SECTION", "SELECT",
	"SESSION", "SESSION_USER", "SET", "SIZE", "SMALLINT", "SOME", "SPACE",
	"SQL", "SQLCODE", "SQLERROR", "SQLSTATE", "SUBSTRING", "SUM",
	"SYSTEM_USER", "TABLE", "TEMPORARY", "THEN", "TIME", "TIMESTAMP",
	"TIMEZONE_HOUR", "TIMEZONE_MINUTE", "TO", "TRAILING", "TRANSACTION",
	"TRANSLATE", "TRANSLATION", "TRIM", "TRUE", "UNION", "UNIQUE", "UNKNOWN",
	"UPDATE", "UPPER", "USAGE", "USER", "USING", "VALUE", "VALUES", "VARCHAR",
	"VARYING", "VIEW", "WHEN", "WHENEVER", "WHERE", "WITH", "WORK", "WRITE",
	"YEAR", "ZONE",
}

// Functions are built-in function names common across engines.
var Functions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX", "COALESCE", "NULLIF", "CAST",
	"CASE", "LOWER", "UPPER", "TRIM", "LTRIM", "RTRIM", "LENGTH",
	"SUBSTRING", "REPLACE", "CONCAT", "ABS", "CEIL", "FLOOR", "ROUND",
	"NOW", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "EXTRACT",
	"DATE_TRUNC", "TO_CHAR", "TO_DATE", "TO_NUMBER", "ROW_NUMBER", "RANK",
	"DENSE_RANK", "LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTILE",
	"STRING_AGG", "ARRAY_AGG", "JSON_AGG", "BOOL_AND", "BOOL_OR", "EVERY",
}

// Postgres are additional keywords specific to PostgreSQL.
var Postgres = []string{
	"SERIAL", "BIGSERIAL", "RETURNING", "ILIKE", "SIMILAR", "LATERAL",
	"MATERIALIZED", "CONCURRENTLY", "TABLESPACE", "SCHEMA", "EXTENSION",
	"SEQUENCE", "OWNED", "NOTIFY", "LISTEN", "PERFORM", "RAISE", "COPY",
}

// MySQL are additional keywords specific to MySQL.
var MySQL = []string{
	"AUTO_INCREMENT", "ENGINE", "CHARSET", "COLLATE", "SHOW", "DESCRIBE",
	"USE", "DATABASES", "TABLES", "COLUMNS", "STATUS", "VARIABLES",
	"PROCESSLIST", "BINARY", "UNSIGNED", "ZEROFILL", "ENUM", "MEDIUMTEXT",
	"LONGTEXT", "TINYINT", "MEDIUMINT",
}

// SQLite are additional keywords specific to SQLite.
var SQLite = []string{
	"PRAGMA", "AUTOINCREMENT", "GLOB", "ATTACH", "DETACH", "REINDEX",
	"INDEXED", "WITHOUT", "ROWID", "STRICT",
}

// DuckDB are additional keywords specific to DuckDB.
var DuckDB = []string{
	"PIVOT", "UNPIVOT", "SAMPLE", "USING", "QUALIFY", "COLUMNS", "STRUCT",
	"LIST", "MAP", "HUGEINT", "UBIGINT", "UINTEGER",
}

// ForDialect returns the additions for the named adapter.
func ForDialect(dialect string) []string {
	switch dialect {
	case "postgres", "postgresql":
		return Postgres
	case "mysql":
		return MySQL
	case "sqlite":
		return SQLite
	case "duckdb":
		return DuckDB
	}
	return nil
}

// Set builds an upper-cased set from SQL92 plus every extra list. Blank
// entries are skipped.
func Set(extra ...[]string) map[string]struct{} {
	set := make(map[string]struct{}, len(SQL92))
	add := func(words []string) {
		for _, w := range words {
			w = strings.ToUpper(strings.TrimSpace(w))
			if w != "" {
				set[w] = struct{}{}
			}
		}
	}
	add(SQL92)
	for _, words := range extra {
		add(words)
	}
	return set
}
