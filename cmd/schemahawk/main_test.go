package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/config"
	"github.com/sadopc/schemahawk/internal/reader"
	"github.com/sadopc/schemahawk/internal/sqlparam"
)

// shopDB creates a small SQLite database and points the config directory at
// a temporary location so runs do not touch the user's history.
func shopDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("HOME", dir)
	t.Setenv(config.EnvAdapter, "")
	t.Setenv(config.EnvDSN, "")

	path := filepath.Join(dir, "shop.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			customer_id INTEGER REFERENCES customers(id),
			total NUMERIC(10,2)
		)`,
		`CREATE TABLE order_lines (
			id INTEGER PRIMARY KEY,
			order_id INTEGER REFERENCES orders(id),
			sku TEXT
		)`,
		`CREATE INDEX idx_orders_customer ON orders(customer_id)`,
		`CREATE VIEW big_orders AS SELECT id, total FROM orders WHERE total > 100`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAnalyzeText(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "analyze", path, "--theme", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "shop.db")
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "order_lines")
}

func TestAnalyzeYAML(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "analyze", path, "-o", "yaml")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "shop.db", doc["database"])
	tables, ok := doc["tables"].([]any)
	require.True(t, ok)
	assert.Len(t, tables, 3)
}

func TestAnalyzeNoViews(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "analyze", path, "-o", "json", "--no-views")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc["views"])
}

func TestAnalyzeInclude(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "analyze", path, "-o", "json", "--include", "order.*")
	require.NoError(t, err)

	var doc struct {
		Tables []struct {
			Name string `json:"name"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, "order_lines", doc.Tables[0].Name)
	assert.Equal(t, "orders", doc.Tables[1].Name)
}

func TestShow(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "show", "orders", path, "--theme", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "customer_id")
	assert.Contains(t, out, "idx_orders_customer")

	out, _, err = run(t, "show", "big_orders", path, "--theme", "plain")
	require.NoError(t, err)
	assert.Contains(t, out, "SELECT")
}

func TestShowNotFound(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "show", "ordrs", path, "--theme", "plain")
	require.ErrorIs(t, err, errNotFound)
	assert.Contains(t, out, `no object named "ordrs"`)
	assert.Contains(t, out, "orders")
}

func TestOrder(t *testing.T) {
	path := shopDB(t)

	out, _, err := run(t, "order", path, "-o", "json")
	require.NoError(t, err)

	var doc struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, []string{"customers", "orders", "order_lines"}, doc.Tables)
}

func TestHistoryRecordsRuns(t *testing.T) {
	path := shopDB(t)

	_, _, err := run(t, "analyze", path, "-o", "json")
	require.NoError(t, err)
	_, _, err = run(t, "analyze", path, "-o", "json", "--include", "(")
	require.ErrorIs(t, err, config.ErrInvalid)

	out, _, err := run(t, "history", "-o", "json")
	require.NoError(t, err)
	var runs []struct {
		Database string
		Tables   int
		Views    int
	}
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "shop.db", runs[0].Database)
	assert.Equal(t, 3, runs[0].Tables)
	assert.Equal(t, 1, runs[0].Views)

	out, _, err = run(t, "history", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared.")

	out, _, err = run(t, "history", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "null", strings.TrimSpace(out))
}

func TestUnknownAdapter(t *testing.T) {
	shopDB(t)

	_, _, err := run(t, "analyze", "-a", "oracle", "-d", "x")
	require.ErrorIs(t, err, adapter.ErrUnknownAdapter)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), `"oracle"`)
	assert.Contains(t, buf.String(), "sqlite")
}

func TestNoDatabase(t *testing.T) {
	shopDB(t)

	_, _, err := run(t, "analyze")
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"param", &sqlparam.ParamError{Token: ":bogus", SQL: "select :bogus"}, "unknown parameter :bogus"},
		{"config", config.ErrInvalid, "Configuration error"},
		{"discovery", reader.ErrDiscovery, "Could not list tables"},
		{"ids", reader.ErrIdentifierAssignment, "Could not assign identifiers"},
		{"populate", reader.ErrPopulate, "Could not read table"},
		{"other", errors.New("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err)
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	var buf bytes.Buffer
	printError(&buf, errNotFound)
	assert.Empty(t, buf.String())
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schemahawk dev")
	for _, name := range []string{"duckdb", "mysql", "postgres", "sqlite"} {
		assert.Contains(t, out, "  - "+name)
	}
}
