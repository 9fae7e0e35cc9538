package schema

import "testing"

func TestNameMapIgnoresCase(t *testing.T) {
	var m NameMap[int]
	m.Put("Customers", 1)
	m.Put("CUSTOMERS", 2)
	m.Put("orders", 3)

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if v, ok := m.Get("customers"); !ok || v != 2 {
		t.Errorf("Get(customers) = %d, %v, want 2, true", v, ok)
	}
	names := m.Names()
	if names[0] != "Customers" || names[1] != "orders" {
		t.Errorf("Names() = %v, want [Customers orders]", names)
	}
	m.Delete("ORDERS")
	if m.Has("orders") {
		t.Error("orders still present after Delete")
	}
}

func TestZeroNameMap(t *testing.T) {
	var m NameMap[string]
	if _, ok := m.Get("x"); ok {
		t.Error("Get on zero map reported a value")
	}
	if len(m.Values()) != 0 {
		t.Error("Values on zero map not empty")
	}
}
