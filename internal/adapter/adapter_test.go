package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// mockAdapter is a minimal adapter for testing the registry.
type mockAdapter struct {
	name string
	port int
}

func (m *mockAdapter) Name() string     { return m.name }
func (m *mockAdapter) DefaultPort() int { return m.port }
func (m *mockAdapter) Connect(_ context.Context, _ string) (Connection, error) {
	return nil, errors.New("mock: not implemented")
}

func saveRegistry(t *testing.T) {
	t.Helper()
	orig := make(map[string]Adapter)
	for k, v := range Registry {
		orig[k] = v
	}
	t.Cleanup(func() { Registry = orig })
	Registry = map[string]Adapter{}
}

func TestRegister(t *testing.T) {
	saveRegistry(t)

	Register(&mockAdapter{name: "testdb", port: 9999})

	got, ok := Registry["testdb"]
	if !ok {
		t.Fatal("expected adapter 'testdb' to be registered")
	}
	if got.Name() != "testdb" {
		t.Errorf("Name() = %q, want %q", got.Name(), "testdb")
	}
	if got.DefaultPort() != 9999 {
		t.Errorf("DefaultPort() = %d, want %d", got.DefaultPort(), 9999)
	}
}

func TestLookup(t *testing.T) {
	saveRegistry(t)
	Register(&mockAdapter{name: "alpha", port: 1111})

	if _, err := Lookup("alpha"); err != nil {
		t.Errorf("Lookup(alpha) error: %v", err)
	}
	_, err := Lookup("bravo")
	if !errors.Is(err, ErrUnknownAdapter) {
		t.Errorf("Lookup(bravo) err = %v, want ErrUnknownAdapter", err)
	}
}

func TestMatchesType(t *testing.T) {
	tests := []struct {
		typ   string
		types []string
		want  bool
	}{
		{"TABLE", []string{"TABLE"}, true},
		{"table", []string{"VIEW", "TABLE"}, true},
		{"VIEW", []string{"TABLE"}, false},
		{"TABLE", nil, false},
	}
	for _, tt := range tests {
		if got := MatchesType(tt.typ, tt.types); got != tt.want {
			t.Errorf("MatchesType(%q, %v) = %v, want %v", tt.typ, tt.types, got, tt.want)
		}
	}
}

func TestProductString(t *testing.T) {
	if got := (Product{Name: "SQLite", Version: "3.45"}).String(); got != "SQLite - 3.45" {
		t.Errorf("String() = %q, want %q", got, "SQLite - 3.45")
	}
	if got := (Product{Name: "DuckDB"}).String(); got != "DuckDB" {
		t.Errorf("String() = %q, want %q", got, "DuckDB")
	}
}

func TestFromSQLToleratesMissingColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("select").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_NAME", "comments"}).
			AddRow("orders", []byte("order headers")).
			AddRow("lines", nil),
	)

	rows, err := QueryDB(context.Background(), db, "select table_name, comments from t")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		name, ok := rows.String("table_name")
		if !ok {
			t.Fatal("table_name missing")
		}
		comment, hasComment := rows.String("comments")
		if _, ok := rows.Value("view_definition"); ok {
			t.Error("absent column reported present")
		}
		if name == "lines" && hasComment {
			t.Errorf("NULL comment reported present: %q", comment)
		}
		got = append(got, name+":"+comment)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	want := []string{"orders:order headers", "lines:"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStatic(t *testing.T) {
	rows := Static([]string{"name", "n"}, [][]any{{"a", int64(1)}, {"b", nil}})
	var names []string
	for rows.Next() {
		name, _ := rows.String("NAME")
		names = append(names, name)
		if name == "b" {
			if _, ok := rows.Value("n"); ok {
				t.Error("nil value reported present")
			}
		}
	}
	if len(names) != 2 || names[1] != "b" {
		t.Errorf("names = %v, want [a b]", names)
	}
}
