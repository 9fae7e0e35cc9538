package sanity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sadopc/schemahawk/internal/schema"
)

func newTable(name string, cols ...string) *schema.Table {
	t := schema.NewTable(schema.KindBase, "public", name)
	for _, c := range cols {
		schema.NewColumn(t, c)
	}
	return t
}

func names(ts []*schema.Table) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func fullNames(cs []*schema.TableColumn) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.FullName()
	}
	return out
}

func TestIncrementingColumnNames(t *testing.T) {
	tests := []struct {
		cols []string
		want bool
	}{
		{[]string{"id", "phone1", "phone2"}, true},
		{[]string{"id", "phone", "phone2"}, true},
		{[]string{"id", "phone", "fax"}, false},
		{[]string{"id", "address1", "address3"}, false},
		{[]string{"id", "line9", "line10"}, true},
		{[]string{"id", "v2", "v4", "v3"}, true},
		{[]string{"1", "2"}, false},
		{[]string{"a99999999999999999999", "a1"}, false},
	}
	for _, tt := range tests {
		tbl := newTable("t", tt.cols...)
		got := len(TablesWithIncrementingColumnNames([]*schema.Table{tbl})) == 1
		if got != tt.want {
			t.Errorf("columns %v: flagged = %v, want %v", tt.cols, got, tt.want)
		}
	}
}

func TestSplitSuffix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		n      int64
	}{
		{"phone2", "phone", 2},
		{"phone", "phone", 1},
		{"line10", "line", 10},
		{"7", "7", 1},
		{"77", "7", 7},
	}
	for _, tt := range tests {
		prefix, n, ok := splitSuffix(tt.name)
		if !ok || prefix != tt.prefix || n != tt.n {
			t.Errorf("splitSuffix(%q) = %q, %d, %v; want %q, %d", tt.name, prefix, n, ok, tt.prefix, tt.n)
		}
	}
}

func TestTablesWithoutIndexes(t *testing.T) {
	indexed := newTable("Orders", "id")
	indexed.Indexes.Put("orders_pkey", &schema.TableIndex{Name: "orders_pkey", Unique: true})
	bare := newTable("zeta", "id")
	bare2 := newTable("Alpha", "id")
	v := schema.NewTable(schema.KindView, "public", "big_orders")

	got := TablesWithoutIndexes([]*schema.Table{bare, indexed, v, bare2})
	assert.Equal(t, []string{"Alpha", "zeta"}, names(got))
}

func TestSingleColumnTables(t *testing.T) {
	got := SingleColumnTables([]*schema.Table{
		newTable("tags", "name"),
		newTable("orders", "id", "total"),
		newTable("empty"),
		newTable("flags", "on"),
	})
	assert.Equal(t, []string{"flags", "tags"}, names(got))
}

func TestUniqueNullableColumns(t *testing.T) {
	users := newTable("users", "id", "email", "nick")
	users.Column("email").Nullable = true
	users.Column("nick").Nullable = true

	uq := &schema.TableIndex{Name: "uq_email_nick", Unique: true}
	uq.AddColumn(users.Column("nick"), true)
	uq.AddColumn(users.Column("email"), true)
	users.Indexes.Put(uq.Name, uq)

	uq2 := &schema.TableIndex{Name: "uq_email", Unique: true}
	uq2.AddColumn(users.Column("email"), true)
	users.Indexes.Put(uq2.Name, uq2)

	plain := &schema.TableIndex{Name: "ix_nick"}
	plain.AddColumn(users.Column("nick"), true)
	users.Indexes.Put(plain.Name, plain)

	accounts := newTable("accounts", "id", "code")
	strict := &schema.TableIndex{Name: "uq_code", Unique: true}
	strict.AddColumn(accounts.Column("code"), true)
	accounts.Indexes.Put(strict.Name, strict)

	got := UniqueNullableColumns([]*schema.Table{users, accounts})
	assert.Equal(t, []string{"users.email", "users.nick"}, fullNames(got))
}

func TestDefaultNullStringColumns(t *testing.T) {
	a := newTable("b_table", "x", "y", "z", "w")
	a.Column("x").DefaultValue = " NULL "
	a.Column("y").DefaultValue = nil
	a.Column("z").DefaultValue = "nullable"
	a.Column("w").DefaultValue = 0
	b := newTable("a_table", "q")
	b.Column("q").DefaultValue = "null"

	got := DefaultNullStringColumns([]*schema.Table{a, b})
	assert.Equal(t, []string{"a_table.q", "b_table.x"}, fullNames(got))
}

func TestCheck(t *testing.T) {
	tags := newTable("tags", "name")
	phones := newTable("phones", "id", "phone1", "phone2")
	r := Check([]*schema.Table{tags, phones})

	assert.Equal(t, []string{"phones", "tags"}, names(r.WithoutIndexes))
	assert.Equal(t, []string{"phones"}, names(r.IncrementingColumnNames))
	assert.Equal(t, []string{"tags"}, names(r.SingleColumn))
	assert.Empty(t, r.UniqueNullable)
	assert.Empty(t, r.DefaultNullString)
	assert.Equal(t, 4, r.Count())
}
