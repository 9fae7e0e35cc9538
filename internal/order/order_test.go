package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/schemahawk/internal/schema"
)

func newTable(name string) *schema.Table {
	t := schema.NewTable(schema.KindBase, "public", name)
	schema.NewColumn(t, "id")
	return t
}

// ref links child.col to parent.id, creating col when needed.
func ref(child *schema.Table, col string, parent *schema.Table, p schema.Provenance) *schema.ForeignKeyConstraint {
	c := child.Column(col)
	if c == nil {
		c = schema.NewColumn(child, col)
	}
	fk := schema.NewForeignKey("fk_"+child.Name+"_"+col, child, parent, schema.RuleRestrict, schema.RuleRestrict, p)
	fk.Link(parent.Column("id"), c)
	child.ForeignKeys.Put(fk.Name, fk)
	return fk
}

func names(ts []*schema.Table) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func TestChain(t *testing.T) {
	customers, orders, items := newTable("customers"), newTable("orders"), newTable("order_items")
	ref(orders, "customer_id", customers, schema.Real)
	ref(items, "order_id", orders, schema.Real)

	res := ByReferentialIntegrity([]*schema.Table{items, orders, customers})
	assert.Equal(t, []string{"customers", "orders", "order_items"}, names(res.Tables))
	assert.Empty(t, res.Unattached)
	assert.Empty(t, res.Recursive)
}

func TestUnattachedAndViews(t *testing.T) {
	customers, orders := newTable("customers"), newTable("orders")
	ref(orders, "customer_id", customers, schema.Real)
	lonely, alone := newTable("zz_settings"), newTable("audit")
	guessed := newTable("guessed")
	ref(guessed, "customer_id", customers, schema.Implied)
	v := schema.NewTable(schema.KindView, "public", "v_orders")

	res := ByReferentialIntegrity([]*schema.Table{lonely, guessed, v, orders, customers, alone})
	assert.Equal(t, []string{"customers", "orders"}, names(res.Tables))
	assert.Equal(t, []string{"audit", "guessed", "zz_settings"}, names(res.Unattached))
}

func TestSelfReference(t *testing.T) {
	employees := newTable("employees")
	self := ref(employees, "manager_id", employees, schema.Real)
	depts := newTable("departments")
	ref(employees, "dept_id", depts, schema.Real)

	res := ByReferentialIntegrity([]*schema.Table{employees, depts})
	assert.Equal(t, []string{"departments", "employees"}, names(res.Tables))
	require.Len(t, res.Recursive, 1)
	assert.Same(t, self, res.Recursive[0])
}

func TestCycle(t *testing.T) {
	a, b, c := newTable("a"), newTable("b"), newTable("c")
	ref(a, "b_id", b, schema.Real)
	ref(b, "a_id", a, schema.Real)
	ref(c, "a_id", a, schema.Real)

	res := ByReferentialIntegrity([]*schema.Table{a, b, c})
	assert.ElementsMatch(t, []string{"a", "b", "c"}, names(res.Tables))
	require.Len(t, res.Recursive, 1)
	assert.Equal(t, "c", res.Tables[2].Name)

	for _, tbl := range []*schema.Table{a, b, c} {
		assert.Zero(t, tbl.NumParents()+tbl.NumChildren(), tbl.Name)
	}
}

func TestLeavesSortedByParents(t *testing.T) {
	root1, root2 := newTable("root1"), newTable("root2")
	wide := newTable("wide")
	ref(wide, "r1", root1, schema.Real)
	ref(wide, "r2", root2, schema.Real)
	narrow := newTable("narrow")
	ref(narrow, "r1", root1, schema.Real)

	res := ByReferentialIntegrity([]*schema.Table{narrow, wide, root1, root2})
	assert.Equal(t, []string{"wide", "narrow"}, names(res.Tables[2:]))
}
