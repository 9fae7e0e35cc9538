// Package dbtype holds the per-engine SQL fragments used to enrich what the
// catalog reports. Every fragment is optional; an empty one disables the
// phase that would run it.
package dbtype

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/schemahawk/internal/sqlparam"
)

//go:embed bundles/*.yaml
var bundles embed.FS

// ErrUnknownEngine is returned by Load for an engine without a bundle.
var ErrUnknownEngine = errors.New("no query bundle for engine")

// Queries is the resolved set of fragments for one engine.
type Queries struct {
	SelectTablesSQL             string `yaml:"select_tables_sql,omitempty"`
	SelectViewsSQL              string `yaml:"select_views_sql,omitempty"`
	SelectCheckConstraintsSQL   string `yaml:"select_check_constraints_sql,omitempty"`
	SelectTableIDsSQL           string `yaml:"select_table_ids_sql,omitempty"`
	SelectIndexIDsSQL           string `yaml:"select_index_ids_sql,omitempty"`
	SelectTableCommentsSQL      string `yaml:"select_table_comments_sql,omitempty"`
	SelectViewCommentsSQL       string `yaml:"select_view_comments_sql,omitempty"`
	SelectColumnCommentsSQL     string `yaml:"select_column_comments_sql,omitempty"`
	SelectViewColumnCommentsSQL string `yaml:"select_view_column_comments_sql,omitempty"`
	SelectStoredProcsSQL        string `yaml:"select_stored_procs_sql,omitempty"`
	SelectFunctionsSQL          string `yaml:"select_functions_sql,omitempty"`
	SelectViewSQL               string `yaml:"select_view_sql,omitempty"`
	SelectRowCountSQL           string `yaml:"select_row_count_sql,omitempty"`

	// TableTypes and ViewTypes are the catalog types accepted as tables and
	// views. Empty means TABLE and VIEW.
	TableTypes []string `yaml:"table_types,omitempty"`
	ViewTypes  []string `yaml:"view_types,omitempty"`
}

// Defaults returns a bundle with no fragments and the standard types.
func Defaults() Queries {
	return Queries{
		TableTypes: []string{"TABLE"},
		ViewTypes:  []string{"VIEW"},
	}
}

// Engines lists the engines with a bundled fragment set.
func Engines() []string {
	entries, err := bundles.ReadDir("bundles")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load returns the bundle for engine over the defaults. For an engine
// without a bundle it returns the defaults and ErrUnknownEngine.
func Load(engine string) (Queries, error) {
	q := Defaults()
	data, err := bundles.ReadFile("bundles/" + strings.ToLower(engine) + ".yaml")
	if err != nil {
		return q, fmt.Errorf("%w: %s", ErrUnknownEngine, engine)
	}
	var b Queries
	if err := yaml.Unmarshal(data, &b); err != nil {
		return q, fmt.Errorf("parsing %s bundle: %w", engine, err)
	}
	return Merge(q, b), nil
}

// Merge overlays the non-empty fields of override onto base.
func Merge(base, override Queries) Queries {
	out := base
	for _, f := range out.fragments() {
		if v := *f.field(&override); strings.TrimSpace(v) != "" {
			*f.field(&out) = v
		}
	}
	if len(override.TableTypes) > 0 {
		out.TableTypes = append([]string(nil), override.TableTypes...)
	}
	if len(override.ViewTypes) > 0 {
		out.ViewTypes = append([]string(nil), override.ViewTypes...)
	}
	return out
}

// Check resolves every configured fragment so a malformed one is reported
// before any database work starts.
func (q Queries) Check() error {
	ctx := sqlparam.Context{Schema: "schema", Table: "table"}
	for _, f := range q.fragments() {
		sql := *f.field(&q)
		if sql == "" {
			continue
		}
		if _, _, err := sqlparam.Resolve(sql, ctx, sqlparam.Question); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// Configured returns the keys of the fragments that are set.
func (q Queries) Configured() []string {
	var names []string
	for _, f := range q.fragments() {
		if *f.field(&q) != "" {
			names = append(names, f.name)
		}
	}
	return names
}

type fragment struct {
	name  string
	field func(*Queries) *string
}

func (Queries) fragments() []fragment {
	return []fragment{
		{"select_tables_sql", func(q *Queries) *string { return &q.SelectTablesSQL }},
		{"select_views_sql", func(q *Queries) *string { return &q.SelectViewsSQL }},
		{"select_check_constraints_sql", func(q *Queries) *string { return &q.SelectCheckConstraintsSQL }},
		{"select_table_ids_sql", func(q *Queries) *string { return &q.SelectTableIDsSQL }},
		{"select_index_ids_sql", func(q *Queries) *string { return &q.SelectIndexIDsSQL }},
		{"select_table_comments_sql", func(q *Queries) *string { return &q.SelectTableCommentsSQL }},
		{"select_view_comments_sql", func(q *Queries) *string { return &q.SelectViewCommentsSQL }},
		{"select_column_comments_sql", func(q *Queries) *string { return &q.SelectColumnCommentsSQL }},
		{"select_view_column_comments_sql", func(q *Queries) *string { return &q.SelectViewColumnCommentsSQL }},
		{"select_stored_procs_sql", func(q *Queries) *string { return &q.SelectStoredProcsSQL }},
		{"select_functions_sql", func(q *Queries) *string { return &q.SelectFunctionsSQL }},
		{"select_view_sql", func(q *Queries) *string { return &q.SelectViewSQL }},
		{"select_row_count_sql", func(q *Queries) *string { return &q.SelectRowCountSQL }},
	}
}
