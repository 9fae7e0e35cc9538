package dbtype

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/schemahawk/internal/sqlparam"
)

func TestEngines(t *testing.T) {
	assert.Equal(t, []string{"duckdb", "mysql", "postgres", "sqlite"}, Engines())
}

func TestLoad_AllBundlesResolve(t *testing.T) {
	for _, engine := range Engines() {
		t.Run(engine, func(t *testing.T) {
			q, err := Load(engine)
			require.NoError(t, err)
			require.NoError(t, q.Check())
			assert.NotEmpty(t, q.TableTypes)
			assert.NotEmpty(t, q.ViewTypes)
			assert.NotEmpty(t, q.SelectViewSQL, "every engine can read view text")
		})
	}
}

func TestLoad_NoCastSyntax(t *testing.T) {
	for _, engine := range Engines() {
		q, err := Load(engine)
		require.NoError(t, err)
		for _, f := range q.fragments() {
			assert.NotContains(t, *f.field(&q), "::", "%s %s", engine, f.name)
		}
	}
}

func TestLoad_Unknown(t *testing.T) {
	q, err := Load("oracle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEngine))
	assert.Equal(t, Defaults(), q)
}

func TestLoad_CaseInsensitive(t *testing.T) {
	q, err := Load("PostGres")
	require.NoError(t, err)
	assert.Contains(t, q.SelectCheckConstraintsSQL, "pg_constraint")
}

func TestMerge(t *testing.T) {
	base := Queries{
		SelectViewSQL:     "select a",
		SelectRowCountSQL: "select n",
		TableTypes:        []string{"TABLE"},
		ViewTypes:         []string{"VIEW"},
	}
	override := Queries{
		SelectViewSQL:        "select b",
		SelectRowCountSQL:    "   ",
		SelectStoredProcsSQL: "select p",
		ViewTypes:            []string{"VIEW", "MATERIALIZED VIEW"},
	}

	got := Merge(base, override)
	assert.Equal(t, "select b", got.SelectViewSQL)
	assert.Equal(t, "select n", got.SelectRowCountSQL, "blank override keeps base")
	assert.Equal(t, "select p", got.SelectStoredProcsSQL)
	assert.Equal(t, []string{"TABLE"}, got.TableTypes)
	assert.Equal(t, []string{"VIEW", "MATERIALIZED VIEW"}, got.ViewTypes)

	// base untouched
	assert.Equal(t, "select a", base.SelectViewSQL)
}

func TestCheck_BadToken(t *testing.T) {
	q := Queries{SelectTableIDsSQL: "select id from t where owner = :ownr"}
	err := q.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sqlparam.ErrUnknownParameter))
	assert.True(t, strings.HasPrefix(err.Error(), "select_table_ids_sql:"))
}

func TestConfigured(t *testing.T) {
	q := Queries{SelectViewSQL: "x", SelectFunctionsSQL: "y"}
	assert.Equal(t, []string{"select_functions_sql", "select_view_sql"}, q.Configured())
}
