// Package schema holds the in-memory graph model of a database catalog:
// tables and views, their columns, and the foreign keys that connect them.
//
// Every foreign-key edge is stored on both of its endpoints. Use
// ForeignKeyConstraint.Link to create edges; there is no way to add only one
// side.
package schema

import (
	"sort"
	"strings"
	"time"
)

// Database is the root of the model produced by a catalog read.
type Database struct {
	Name        string
	Schema      string
	Description string
	// Dbms identifies the engine, e.g. "PostgreSQL - 16.2".
	Dbms        string
	Keywords    map[string]struct{}
	GeneratedAt time.Time

	Tables       NameMap[*Table]
	Views        NameMap[*Table]
	RemoteTables NameMap[*Table]
	Procedures   NameMap[*Procedure]
	Functions    NameMap[*Function]
}

// NewDatabase returns an empty Database stamped with the current time.
func NewDatabase(name, schemaName, description string) *Database {
	return &Database{
		Name:        name,
		Schema:      schemaName,
		Description: description,
		Keywords:    make(map[string]struct{}),
		GeneratedAt: time.Now(),
	}
}

// TablesAndViews returns every table followed by every view, each group
// sorted by name.
func (d *Database) TablesAndViews() []*Table {
	out := d.Tables.Values()
	return append(out, d.Views.Values()...)
}

// Lookup finds a table or view by name. Tables win over views.
func (d *Database) Lookup(name string) (*Table, bool) {
	if t, ok := d.Tables.Get(name); ok {
		return t, true
	}
	return d.Views.Get(name)
}

// RemoteKey is the key under which a remote table is stored.
func RemoteKey(schemaName, name string) string {
	return schemaName + "." + name
}

// IsKeyword reports whether word is in the engine's reserved keyword set.
func (d *Database) IsKeyword(word string) bool {
	_, ok := d.Keywords[strings.ToUpper(strings.TrimSpace(word))]
	return ok
}

// KeywordList returns the keyword set sorted.
func (d *Database) KeywordList() []string {
	out := make([]string, 0, len(d.Keywords))
	for k := range d.Keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Procedure is a stored procedure and its source text.
type Procedure struct {
	Name       string
	Definition string
}

// Function is a stored function. ReturnType is empty when the engine does
// not report it.
type Function struct {
	Name       string
	ReturnType string
	Definition string
}
