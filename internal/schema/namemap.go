package schema

import (
	"sort"
	"strings"
)

// NameMap is a map keyed by name where lookups ignore case. The name as
// first inserted is retained for display.
type NameMap[T any] struct {
	items map[string]T
	names map[string]string
}

func fold(name string) string { return strings.ToLower(name) }

// Put stores v under name, replacing any entry whose name differs only in case.
func (m *NameMap[T]) Put(name string, v T) {
	if m.items == nil {
		m.items = make(map[string]T)
		m.names = make(map[string]string)
	}
	k := fold(name)
	if _, ok := m.names[k]; !ok {
		m.names[k] = name
	}
	m.items[k] = v
}

// Get returns the entry stored under name.
func (m *NameMap[T]) Get(name string) (T, bool) {
	v, ok := m.items[fold(name)]
	return v, ok
}

// Has reports whether name is present.
func (m *NameMap[T]) Has(name string) bool {
	_, ok := m.items[fold(name)]
	return ok
}

// Delete removes name. Deleting an absent name is a no-op.
func (m *NameMap[T]) Delete(name string) {
	k := fold(name)
	delete(m.items, k)
	delete(m.names, k)
}

// Len returns the number of entries.
func (m *NameMap[T]) Len() int { return len(m.items) }

// Names returns the stored names sorted case-insensitively.
func (m *NameMap[T]) Names() []string {
	keys := make([]string, 0, len(m.names))
	for k := range m.names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = m.names[k]
	}
	return out
}

// Values returns the entries ordered by case-insensitive name.
func (m *NameMap[T]) Values() []T {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, len(keys))
	for i, k := range keys {
		out[i] = m.items[k]
	}
	return out
}
