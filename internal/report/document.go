package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/schemahawk/internal/order"
	"github.com/sadopc/schemahawk/internal/sanity"
	"github.com/sadopc/schemahawk/internal/schema"
)

// Document is the machine-readable form of an analysis.
type Document struct {
	Database     string       `yaml:"database" json:"database"`
	Schema       string       `yaml:"schema,omitempty" json:"schema,omitempty"`
	Dbms         string       `yaml:"dbms,omitempty" json:"dbms,omitempty"`
	Description  string       `yaml:"description,omitempty" json:"description,omitempty"`
	GeneratedAt  time.Time    `yaml:"generated_at" json:"generated_at"`
	Tables       []TableDoc   `yaml:"tables" json:"tables"`
	Views        []TableDoc   `yaml:"views,omitempty" json:"views,omitempty"`
	RemoteTables []TableDoc   `yaml:"remote_tables,omitempty" json:"remote_tables,omitempty"`
	Procedures   []RoutineDoc `yaml:"procedures,omitempty" json:"procedures,omitempty"`
	Functions    []RoutineDoc `yaml:"functions,omitempty" json:"functions,omitempty"`
	Anomalies    AnomalyDoc   `yaml:"anomalies" json:"anomalies"`
}

type TableDoc struct {
	Name             string            `yaml:"name" json:"name"`
	Schema           string            `yaml:"schema,omitempty" json:"schema,omitempty"`
	Kind             string            `yaml:"kind" json:"kind"`
	Comments         string            `yaml:"comments,omitempty" json:"comments,omitempty"`
	RowCount         *int64            `yaml:"row_count,omitempty" json:"row_count,omitempty"`
	Columns          []ColumnDoc       `yaml:"columns" json:"columns"`
	PrimaryKey       []string          `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	ForeignKeys      []ForeignKeyDoc   `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
	Indexes          []IndexDoc        `yaml:"indexes,omitempty" json:"indexes,omitempty"`
	CheckConstraints map[string]string `yaml:"check_constraints,omitempty" json:"check_constraints,omitempty"`
	ViewSQL          string            `yaml:"view_sql,omitempty" json:"view_sql,omitempty"`
}

type ColumnDoc struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty"`
	Length      int    `yaml:"length,omitempty" json:"length,omitempty"`
	Digits      int    `yaml:"digits,omitempty" json:"digits,omitempty"`
	Nullable    bool   `yaml:"nullable" json:"nullable"`
	AutoUpdated bool   `yaml:"auto_updated,omitempty" json:"auto_updated,omitempty"`
	Default     string `yaml:"default,omitempty" json:"default,omitempty"`
	Comments    string `yaml:"comments,omitempty" json:"comments,omitempty"`
	Excluded    bool   `yaml:"excluded,omitempty" json:"excluded,omitempty"`
}

type ForeignKeyDoc struct {
	Name       string   `yaml:"name" json:"name"`
	Columns    []string `yaml:"columns" json:"columns"`
	References string   `yaml:"references" json:"references"`
	RefColumns []string `yaml:"ref_columns" json:"ref_columns"`
	OnDelete   string   `yaml:"on_delete" json:"on_delete"`
	OnUpdate   string   `yaml:"on_update" json:"on_update"`
	Provenance string   `yaml:"provenance" json:"provenance"`
}

type IndexDoc struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []string `yaml:"columns" json:"columns"`
	Unique  bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
}

type RoutineDoc struct {
	Name       string `yaml:"name" json:"name"`
	ReturnType string `yaml:"return_type,omitempty" json:"return_type,omitempty"`
	Definition string `yaml:"definition,omitempty" json:"definition,omitempty"`
}

// AnomalyDoc lists findings by qualified name.
type AnomalyDoc struct {
	UniqueNullable          []string `yaml:"unique_nullable,omitempty" json:"unique_nullable,omitempty"`
	WithoutIndexes          []string `yaml:"without_indexes,omitempty" json:"without_indexes,omitempty"`
	IncrementingColumnNames []string `yaml:"incrementing_column_names,omitempty" json:"incrementing_column_names,omitempty"`
	SingleColumn            []string `yaml:"single_column,omitempty" json:"single_column,omitempty"`
	DefaultNullString       []string `yaml:"default_null_string,omitempty" json:"default_null_string,omitempty"`
}

// Build converts a model and its findings into a Document.
func Build(db *schema.Database, findings sanity.Report) Document {
	doc := Document{
		Database:    db.Name,
		Schema:      db.Schema,
		Dbms:        db.Dbms,
		Description: db.Description,
		GeneratedAt: db.GeneratedAt,
		Tables:      []TableDoc{},
		Anomalies: AnomalyDoc{
			UniqueNullable:          columnNames(findings.UniqueNullable),
			WithoutIndexes:          tableNames(findings.WithoutIndexes),
			IncrementingColumnNames: tableNames(findings.IncrementingColumnNames),
			SingleColumn:            tableNames(findings.SingleColumn),
			DefaultNullString:       columnNames(findings.DefaultNullString),
		},
	}
	for _, t := range db.Tables.Values() {
		doc.Tables = append(doc.Tables, BuildTable(t))
	}
	for _, t := range db.Views.Values() {
		doc.Views = append(doc.Views, BuildTable(t))
	}
	for _, t := range db.RemoteTables.Values() {
		doc.RemoteTables = append(doc.RemoteTables, BuildTable(t))
	}
	for _, p := range db.Procedures.Values() {
		doc.Procedures = append(doc.Procedures, RoutineDoc{Name: p.Name, Definition: p.Definition})
	}
	for _, f := range db.Functions.Values() {
		doc.Functions = append(doc.Functions, RoutineDoc{Name: f.Name, ReturnType: f.ReturnType, Definition: f.Definition})
	}
	return doc
}

func BuildTable(t *schema.Table) TableDoc {
	d := TableDoc{
		Name:     t.Name,
		Schema:   t.Schema,
		Kind:     t.Kind.String(),
		Comments: t.Comments,
		ViewSQL:  t.ViewSQL,
		Columns:  []ColumnDoc{},
	}
	if t.RowCount >= 0 {
		n := t.RowCount
		d.RowCount = &n
	}
	for _, c := range t.SortedColumns() {
		cd := ColumnDoc{
			Name:        c.Name,
			Type:        c.Type,
			Length:      c.Length,
			Digits:      c.DecimalDigits,
			Nullable:    c.Nullable,
			AutoUpdated: c.AutoUpdated,
			Comments:    c.Comments,
			Excluded:    c.Excluded,
		}
		if c.DefaultValue != nil {
			cd.Default = fmt.Sprint(c.DefaultValue)
		}
		d.Columns = append(d.Columns, cd)
	}
	for _, c := range t.PrimaryKeys {
		d.PrimaryKey = append(d.PrimaryKey, c.Name)
	}
	for _, fk := range t.ForeignKeys.Values() {
		d.ForeignKeys = append(d.ForeignKeys, ForeignKeyDoc{
			Name:       fk.Name,
			Columns:    names(fk.ChildColumns),
			References: qualified(fk.ParentTable, t.Schema),
			RefColumns: names(fk.ParentColumns),
			OnDelete:   fk.DeleteRule.String(),
			OnUpdate:   fk.UpdateRule.String(),
			Provenance: fk.Provenance.String(),
		})
	}
	for _, idx := range t.Indexes.Values() {
		d.Indexes = append(d.Indexes, IndexDoc{Name: idx.Name, Columns: names(idx.Columns), Unique: idx.Unique})
	}
	if t.CheckConstraints.Len() > 0 {
		d.CheckConstraints = make(map[string]string, t.CheckConstraints.Len())
		for _, name := range t.CheckConstraints.Names() {
			d.CheckConstraints[name], _ = t.CheckConstraints.Get(name)
		}
	}
	return d
}

// OrderDoc is the machine-readable form of an insertion order.
type OrderDoc struct {
	Tables     []string `yaml:"tables" json:"tables"`
	Unattached []string `yaml:"unattached,omitempty" json:"unattached,omitempty"`
	Recursive  []string `yaml:"recursive,omitempty" json:"recursive,omitempty"`
}

// BuildOrder converts an ordering into an OrderDoc.
func BuildOrder(res order.Result) OrderDoc {
	doc := OrderDoc{
		Tables:     tableNames(res.Tables),
		Unattached: tableNames(res.Unattached),
	}
	for _, fk := range res.Recursive {
		doc.Recursive = append(doc.Recursive, fk.String())
	}
	return doc
}

// WriteYAML encodes doc as YAML.
func WriteYAML(w io.Writer, doc any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// qualified names t, prefixed with its schema when that differs from
// the referring table's.
func qualified(t *schema.Table, from string) string {
	if t == nil {
		return ""
	}
	if t.Schema != "" && t.Schema != from {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

func names(cols []*schema.TableColumn) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func tableNames(ts []*schema.Table) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func columnNames(cs []*schema.TableColumn) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.FullName())
	}
	return out
}
