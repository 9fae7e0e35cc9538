package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.IncludeTables != ".*" {
		t.Errorf("Analysis.IncludeTables = %q, want %q", cfg.Analysis.IncludeTables, ".*")
	}
	if cfg.Analysis.MaxThreads != 4 {
		t.Errorf("Analysis.MaxThreads = %d, want %d", cfg.Analysis.MaxThreads, 4)
	}
	if !cfg.Analysis.Views {
		t.Error("Analysis.Views = false, want true")
	}
	if !cfg.Analysis.RowCounts {
		t.Error("Analysis.RowCounts = false, want true")
	}
	if cfg.Audit.Enabled {
		t.Error("Audit.Enabled = true, want false")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.Report.Format != "text" || cfg.Report.Theme != "default" {
		t.Errorf("Report = %+v, want text/default", cfg.Report)
	}
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `connection:
  adapter: postgres
  host: db.example.com
  port: 5432
  user: admin
  password: secret
  database: production
schema: sales
description: Sales warehouse
analysis:
  include_tables: "ord.*"
  exclude_tables: "ord_tmp"
  max_threads: 8
  views: false
queries:
  select_row_count_sql: select 1 as row_count from dual where :table = :table
meta_file: meta.xml
audit:
  enabled: true
  path: /tmp/audit.jsonl
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Connection.Adapter != "postgres" {
		t.Errorf("Connection.Adapter = %q, want %q", cfg.Connection.Adapter, "postgres")
	}
	if cfg.Connection.Port != 5432 {
		t.Errorf("Connection.Port = %d, want %d", cfg.Connection.Port, 5432)
	}
	if cfg.Schema != "sales" {
		t.Errorf("Schema = %q, want %q", cfg.Schema, "sales")
	}
	if cfg.Description != "Sales warehouse" {
		t.Errorf("Description = %q", cfg.Description)
	}
	if cfg.Analysis.MaxThreads != 8 {
		t.Errorf("Analysis.MaxThreads = %d, want %d", cfg.Analysis.MaxThreads, 8)
	}
	if cfg.Analysis.Views {
		t.Error("Analysis.Views = true, want false")
	}
	if !cfg.Analysis.RowCounts {
		t.Error("Analysis.RowCounts lost its default")
	}
	if !strings.Contains(cfg.Queries.SelectRowCountSQL, "row_count") {
		t.Errorf("Queries.SelectRowCountSQL = %q", cfg.Queries.SelectRowCountSQL)
	}
	if cfg.MetaFile != "meta.xml" {
		t.Errorf("MetaFile = %q, want %q", cfg.MetaFile, "meta.xml")
	}
	if !cfg.Audit.Enabled || cfg.Audit.MaxSizeMB != 10 {
		t.Errorf("Audit = %+v, want enabled with default size", cfg.Audit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cfg.Analysis.MaxThreads != 4 {
		t.Errorf("missing file should give defaults, got MaxThreads = %d", cfg.Analysis.MaxThreads)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("analysis: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Connection = Connection{Adapter: "sqlite", File: "/tmp/x.db"}
	cfg.Analysis.ExcludeColumns = "audit_.*"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Connection != cfg.Connection {
		t.Errorf("Connection = %+v, want %+v", got.Connection, cfg.Connection)
	}
	if got.Analysis != cfg.Analysis {
		t.Errorf("Analysis = %+v, want %+v", got.Analysis, cfg.Analysis)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.IncludeTables = "cust.*"
	cfg.Analysis.ExcludeTables = "cust_tmp"
	cfg.Analysis.ExcludeColumns = "secret"

	p, err := cfg.Validate()
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !p.Include.MatchString("customers") {
		t.Error("include should match customers")
	}
	if p.Include.MatchString("xcustomers") {
		t.Error("include must match the whole name")
	}
	if !p.Exclude.MatchString("cust_tmp") || p.Exclude.MatchString("cust_tmp2") {
		t.Error("exclude must match the whole name only")
	}
	if p.ExcludeColumns == nil {
		t.Error("ExcludeColumns not compiled")
	}
	if p.ExcludeIndirectColumns != nil {
		t.Error("empty pattern should compile to nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad include", func(c *Config) { c.Analysis.IncludeTables = "(" }},
		{"bad exclude", func(c *Config) { c.Analysis.ExcludeTables = "[a-" }},
		{"zero threads", func(c *Config) { c.Analysis.MaxThreads = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "chatty" }},
		{"bad fragment", func(c *Config) { c.Queries.SelectViewSQL = "select :nope" }},
		{"bad format", func(c *Config) { c.Report.Format = "html" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			_, err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "SCHEMAHAWK_DSN=postgres://app@db/shop\nSCHEMAHAWK_PASSWORD=hunter2\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvDSN, "")
	t.Setenv(EnvPassword, "")
	t.Setenv(EnvAdapter, "")
	os.Unsetenv(EnvDSN)
	os.Unsetenv(EnvPassword)
	os.Unsetenv(EnvAdapter)

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(envFile); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Connection.DSN != "postgres://app@db/shop" {
		t.Errorf("DSN = %q", cfg.Connection.DSN)
	}
	if cfg.Connection.Password != "hunter2" {
		t.Errorf("Password = %q", cfg.Connection.Password)
	}
	if cfg.Connection.Adapter != "postgres" {
		t.Errorf("Adapter = %q, want detected postgres", cfg.Connection.Adapter)
	}
}

func TestApplyEnv_KeepsExplicitValues(t *testing.T) {
	t.Setenv(EnvDSN, "from-env.db")
	cfg := DefaultConfig()
	cfg.Connection.DSN = "explicit.db"
	if err := cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("ApplyEnv() with missing file error = %v", err)
	}
	if cfg.Connection.DSN != "explicit.db" {
		t.Errorf("DSN = %q, want explicit value kept", cfg.Connection.DSN)
	}
}

func TestSchemaFor(t *testing.T) {
	tests := []struct {
		adapter, schema, db, want string
	}{
		{"postgres", "", "shop", "public"},
		{"postgres", "sales", "shop", "sales"},
		{"sqlite", "", "file", "main"},
		{"duckdb", "", "warehouse", "main"},
		{"mysql", "", "shop", "shop"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Connection.Adapter = tt.adapter
		cfg.Schema = tt.schema
		if got := cfg.SchemaFor(tt.db); got != tt.want {
			t.Errorf("SchemaFor(%s, %q) = %q, want %q", tt.adapter, tt.schema, got, tt.want)
		}
	}
}

func TestDetectAdapter(t *testing.T) {
	tests := []struct {
		dsn, want string
	}{
		{"postgres://u@h/db", "postgres"},
		{"postgresql://u@h/db", "postgres"},
		{"mysql://u@h/db", "mysql"},
		{"root:pw@tcp(localhost:3306)/shop", "mysql"},
		{"data.db", "sqlite"},
		{"file:test.sqlite?mode=ro", "sqlite"},
		{"warehouse.duckdb", "duckdb"},
		{"user@host", "postgres"},
		{"whatever", ""},
	}
	for _, tt := range tests {
		if got := DetectAdapter(tt.dsn); got != tt.want {
			t.Errorf("DetectAdapter(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		want string
	}{
		{
			name: "explicit dsn wins",
			conn: Connection{Adapter: "postgres", DSN: "postgres://x@y/z", Host: "ignored"},
			want: "postgres://x@y/z",
		},
		{
			name: "postgres full",
			conn: Connection{Adapter: "postgres", Host: "db", Port: 5432, User: "admin", Password: "pw", Database: "shop"},
			want: "postgres://admin:pw@db:5432/shop",
		},
		{
			name: "postgres default host",
			conn: Connection{Adapter: "postgres", Database: "shop"},
			want: "postgres://localhost/shop",
		},
		{
			name: "mysql",
			conn: Connection{Adapter: "mysql", User: "root", Password: "pw", Database: "shop"},
			want: "root:pw@tcp(localhost:3306)/shop",
		},
		{
			name: "sqlite file",
			conn: Connection{Adapter: "sqlite", File: "/tmp/a.db"},
			want: "/tmp/a.db",
		},
		{
			name: "duckdb memory",
			conn: Connection{Adapter: "duckdb"},
			want: ":memory:",
		},
		{
			name: "unknown adapter",
			conn: Connection{Adapter: "oracle", Host: "h"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conn.BuildDSN(); got != tt.want {
				t.Errorf("BuildDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayString(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		want string
	}{
		{"postgres", Connection{Adapter: "postgres", Host: "db", Port: 5432, Password: "pw", Database: "shop"}, "postgres://db:5432/shop"},
		{"mysql no db", Connection{Adapter: "mysql"}, "mysql://localhost"},
		{"sqlite", Connection{Adapter: "sqlite", File: "a.db"}, "sqlite://a.db"},
		{"duckdb dsn", Connection{Adapter: "duckdb", DSN: "w.duckdb"}, "duckdb://w.duckdb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conn.DisplayString(); got != tt.want {
				t.Errorf("DisplayString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if filepath.Base(dir) != "schemahawk" {
		t.Errorf("ConfigDir() base = %q, want %q", filepath.Base(dir), "schemahawk")
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Path = "/var/log/sh.jsonl"
	if p, err := cfg.AuditPath(); err != nil || p != "/var/log/sh.jsonl" {
		t.Errorf("AuditPath() = %q, %v", p, err)
	}
	p, err := cfg.HistoryPath()
	if err != nil {
		t.Fatalf("HistoryPath() error = %v", err)
	}
	if filepath.Base(p) != "history.db" {
		t.Errorf("HistoryPath() = %q, want .../history.db", p)
	}
}
