// Package xmlmeta parses the XML document that supplements what a database
// catalog reports: comments, extra columns, and relationships the schema
// does not declare.
//
//	<schemaMeta>
//	  <comments>Order processing</comments>
//	  <tables>
//	    <table name="orders" comments="One row per order">
//	      <column name="customer_ref" comments="loose link">
//	        <foreignKey table="customers" column="id"/>
//	      </column>
//	    </table>
//	    <table name="accounts" remoteSchema="billing">
//	      <column name="id" type="int" primaryKey="true"/>
//	    </table>
//	  </tables>
//	</schemaMeta>
package xmlmeta

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// ErrInvalid is returned for a document that does not describe schema metadata.
var ErrInvalid = errors.New("invalid schema metadata")

// SchemaMeta is the root of a metadata document.
type SchemaMeta struct {
	Comments string
	Tables   []TableMeta
}

// TableMeta describes one table. RemoteSchema is set for a table that lives
// in another schema.
type TableMeta struct {
	Name         string
	Comments     string
	RemoteSchema string
	Columns      []ColumnMeta
}

// ColumnMeta describes a column to add or amend. Pointer fields are nil when
// the attribute is absent, so that only stated attributes override the
// catalog.
type ColumnMeta struct {
	Name         string
	Type         string
	ID           string
	Size         *int
	Digits       *int
	Nullable     *bool
	AutoUpdated  *bool
	DefaultValue *string
	Comments     string
	PrimaryKey   bool

	// DisableImpliedKeys stops naming-convention key inference for the column.
	DisableImpliedKeys bool
	// DisableDiagramAssociations is "all", "exceptDirect" or empty.
	DisableDiagramAssociations string

	ForeignKeys []ForeignKeyMeta
}

// ForeignKeyMeta declares that the enclosing column references Table.Column.
type ForeignKeyMeta struct {
	Table        string
	Column       string
	RemoteSchema string
}

// Parse reads a metadata document.
func Parse(r io.Reader) (*SchemaMeta, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return fromDocument(doc)
}

// ParseString reads a metadata document held in memory.
func ParseString(s string) (*SchemaMeta, error) {
	return Parse(strings.NewReader(s))
}

// Load reads the metadata document at path.
func Load(path string) (*SchemaMeta, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("xmlmeta: %w", err)
	}
	meta, err := fromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

func fromDocument(doc *etree.Document) (*SchemaMeta, error) {
	root := doc.Root()
	if root == nil || root.Tag != "schemaMeta" {
		return nil, fmt.Errorf("%w: root element must be <schemaMeta>", ErrInvalid)
	}

	meta := &SchemaMeta{Comments: commentsOf(root)}

	tables := root.SelectElement("tables")
	if tables == nil {
		return meta, nil
	}
	for _, el := range tables.SelectElements("table") {
		t, err := parseTable(el)
		if err != nil {
			return nil, err
		}
		meta.Tables = append(meta.Tables, t)
	}
	return meta, nil
}

func parseTable(el *etree.Element) (TableMeta, error) {
	t := TableMeta{
		Name:         strings.TrimSpace(el.SelectAttrValue("name", "")),
		Comments:     commentsOf(el),
		RemoteSchema: strings.TrimSpace(el.SelectAttrValue("remoteSchema", "")),
	}
	if t.Name == "" {
		return t, fmt.Errorf("%w: <table> without a name", ErrInvalid)
	}
	for _, cel := range el.SelectElements("column") {
		c, err := parseColumn(cel)
		if err != nil {
			return t, fmt.Errorf("table %s: %w", t.Name, err)
		}
		t.Columns = append(t.Columns, c)
	}
	return t, nil
}

func parseColumn(el *etree.Element) (ColumnMeta, error) {
	c := ColumnMeta{
		Name:     strings.TrimSpace(el.SelectAttrValue("name", "")),
		Type:     strings.TrimSpace(el.SelectAttrValue("type", "")),
		ID:       strings.TrimSpace(el.SelectAttrValue("id", "")),
		Comments: commentsOf(el),
	}
	if c.Name == "" {
		return c, fmt.Errorf("%w: <column> without a name", ErrInvalid)
	}

	var err error
	if c.Size, err = intAttr(el, "size"); err != nil {
		return c, err
	}
	if c.Digits, err = intAttr(el, "digits"); err != nil {
		return c, err
	}
	if c.Nullable, err = boolAttr(el, "nullable"); err != nil {
		return c, err
	}
	if c.AutoUpdated, err = boolAttr(el, "autoUpdated"); err != nil {
		return c, err
	}
	if a := el.SelectAttr("defaultValue"); a != nil {
		v := a.Value
		c.DefaultValue = &v
	}
	pk, err := boolAttr(el, "primaryKey")
	if err != nil {
		return c, err
	}
	c.PrimaryKey = pk != nil && *pk
	noImplied, err := boolAttr(el, "disableImpliedKeys")
	if err != nil {
		return c, err
	}
	c.DisableImpliedKeys = noImplied != nil && *noImplied

	switch v := strings.TrimSpace(el.SelectAttrValue("disableDiagramAssociations", "")); strings.ToLower(v) {
	case "", "false":
	case "all", "true":
		c.DisableDiagramAssociations = "all"
	case "exceptdirect":
		c.DisableDiagramAssociations = "exceptDirect"
	default:
		return c, fmt.Errorf("%w: column %s: disableDiagramAssociations %q", ErrInvalid, c.Name, v)
	}

	for _, fel := range el.SelectElements("foreignKey") {
		fk := ForeignKeyMeta{
			Table:        strings.TrimSpace(fel.SelectAttrValue("table", "")),
			Column:       strings.TrimSpace(fel.SelectAttrValue("column", "")),
			RemoteSchema: strings.TrimSpace(fel.SelectAttrValue("remoteSchema", "")),
		}
		if fk.Table == "" || fk.Column == "" {
			return c, fmt.Errorf("%w: column %s: <foreignKey> needs table and column", ErrInvalid, c.Name)
		}
		c.ForeignKeys = append(c.ForeignKeys, fk)
	}
	return c, nil
}

// commentsOf prefers a comments attribute over a <comments> child.
func commentsOf(el *etree.Element) string {
	if a := el.SelectAttr("comments"); a != nil {
		return strings.TrimSpace(a.Value)
	}
	if child := el.SelectElement("comments"); child != nil {
		return strings.TrimSpace(child.Text())
	}
	return ""
}

func intAttr(el *etree.Element, name string) (*int, error) {
	a := el.SelectAttr(name)
	if a == nil || strings.TrimSpace(a.Value) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(a.Value))
	if err != nil {
		return nil, fmt.Errorf("%w: attribute %s=%q is not a number", ErrInvalid, name, a.Value)
	}
	return &n, nil
}

func boolAttr(el *etree.Element, name string) (*bool, error) {
	a := el.SelectAttr(name)
	if a == nil || strings.TrimSpace(a.Value) == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(a.Value))
	if err != nil {
		return nil, fmt.Errorf("%w: attribute %s=%q is not a boolean", ErrInvalid, name, a.Value)
	}
	return &b, nil
}
