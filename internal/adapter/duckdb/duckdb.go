package duckdb

import "strings"

// normalizeDSN strips the "duckdb://" prefix; an empty DSN opens an
// in-memory database.
func normalizeDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "duckdb://")
	if dsn == "" {
		return ":memory:"
	}
	return dsn
}

func schemaOrMain(schemaName string) string {
	if schemaName == "" {
		return "main"
	}
	return schemaName
}

// parseIndexColumns extracts column names and sort directions from a
// CREATE INDEX statement.
// Example: "CREATE INDEX idx ON tbl (col1, col2 DESC)" -> [col1 col2], [true false]
func parseIndexColumns(sqlStr string) ([]string, []bool) {
	if sqlStr == "" {
		return nil, nil
	}
	start := strings.LastIndex(sqlStr, "(")
	end := strings.LastIndex(sqlStr, ")")
	if start < 0 || end <= start {
		return nil, nil
	}
	inner := sqlStr[start+1 : end]
	var (
		cols []string
		asc  []bool
	)
	for _, p := range strings.Split(inner, ",") {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			continue
		}
		cols = append(cols, strings.Trim(fields[0], `"`))
		asc = append(asc, !(len(fields) > 1 && strings.EqualFold(fields[1], "DESC")))
	}
	return cols, asc
}
