// Package config loads the YAML configuration of an analysis run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/schemahawk/internal/dbtype"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAdapter  = "SCHEMAHAWK_ADAPTER"
	EnvDSN      = "SCHEMAHAWK_DSN"
	EnvPassword = "SCHEMAHAWK_PASSWORD"
)

// ErrInvalid marks a configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration of an analysis run.
type Config struct {
	Connection  Connection     `yaml:"connection"`
	Schema      string         `yaml:"schema,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Analysis    AnalysisConfig `yaml:"analysis"`
	// Queries override the engine's bundled fragments field by field.
	Queries  dbtype.Queries `yaml:"queries,omitempty"`
	MetaFile string         `yaml:"meta_file,omitempty"`
	Audit    AuditConfig    `yaml:"audit"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
	Report   ReportConfig   `yaml:"report"`
}

// Connection holds the parameters of the database to analyse.
type Connection struct {
	Adapter  string `yaml:"adapter"`
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
	File     string `yaml:"file,omitempty"`
}

// AnalysisConfig controls which objects are read and how.
type AnalysisConfig struct {
	// IncludeTables and ExcludeTables must match a whole table or view name.
	IncludeTables string `yaml:"include_tables"`
	ExcludeTables string `yaml:"exclude_tables,omitempty"`
	// ExcludeColumns hides matching columns from every relationship.
	ExcludeColumns string `yaml:"exclude_columns,omitempty"`
	// ExcludeIndirectColumns hides matching columns from indirect relationships.
	ExcludeIndirectColumns string `yaml:"exclude_indirect_columns,omitempty"`
	Views                  bool   `yaml:"views"`
	MaxThreads             int    `yaml:"max_threads"`
	RowCounts              bool   `yaml:"row_counts"`
}

// AuditConfig controls the query journal.
type AuditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb,omitempty"`
}

// HistoryConfig controls the run history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// ReportConfig controls how results are printed.
type ReportConfig struct {
	Theme  string `yaml:"theme"`  // default, light, monokai or plain
	Format string `yaml:"format"` // text, yaml or json
}

// Formats lists the accepted report formats.
var Formats = []string{"text", "yaml", "json"}

// Patterns are the compiled name filters. A nil pattern matches nothing.
type Patterns struct {
	Include                *regexp.Regexp
	Exclude                *regexp.Regexp
	ExcludeColumns         *regexp.Regexp
	ExcludeIndirectColumns *regexp.Regexp
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			IncludeTables: ".*",
			Views:         true,
			MaxThreads:    4,
			RowCounts:     true,
		},
		Audit:   AuditConfig{MaxSizeMB: 10},
		History: HistoryConfig{Enabled: true},
		Log:     LogConfig{Level: "info"},
		Report:  ReportConfig{Theme: "default", Format: "text"},
	}
}

// ConfigDir returns the schemahawk configuration directory, typically
// ~/.config/schemahawk/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "schemahawk"), nil
}

// Load reads a Config from the YAML file at path. If the file does not exist,
// it returns DefaultConfig without error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from ConfigDir()/config.yaml.
func LoadDefault() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// Save writes the Config to the YAML file at path, creating any necessary
// parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv loads envFile (".env" when empty) if it exists and fills
// connection fields the file left unset. A missing env file is not an error.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if c.Connection.Adapter == "" {
		c.Connection.Adapter = os.Getenv(EnvAdapter)
	}
	if c.Connection.DSN == "" {
		c.Connection.DSN = os.Getenv(EnvDSN)
	}
	if c.Connection.Password == "" {
		c.Connection.Password = os.Getenv(EnvPassword)
	}
	if c.Connection.Adapter == "" && c.Connection.DSN != "" {
		c.Connection.Adapter = DetectAdapter(c.Connection.DSN)
	}
	return nil
}

// Validate checks the configuration and compiles its patterns.
func (c *Config) Validate() (*Patterns, error) {
	if c.Analysis.MaxThreads < 1 {
		return nil, fmt.Errorf("%w: analysis.max_threads must be at least 1, got %d", ErrInvalid, c.Analysis.MaxThreads)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return nil, err
	}
	if !validFormat(c.Report.Format) {
		return nil, fmt.Errorf("%w: report.format must be one of %s, got %q",
			ErrInvalid, strings.Join(Formats, ", "), c.Report.Format)
	}
	if err := c.Queries.Check(); err != nil {
		return nil, fmt.Errorf("%w: queries.%w", ErrInvalid, err)
	}

	var (
		p   Patterns
		err error
	)
	include := c.Analysis.IncludeTables
	if include == "" {
		include = ".*"
	}
	if p.Include, err = compile("include_tables", include); err != nil {
		return nil, err
	}
	if p.Exclude, err = compile("exclude_tables", c.Analysis.ExcludeTables); err != nil {
		return nil, err
	}
	if p.ExcludeColumns, err = compile("exclude_columns", c.Analysis.ExcludeColumns); err != nil {
		return nil, err
	}
	if p.ExcludeIndirectColumns, err = compile("exclude_indirect_columns", c.Analysis.ExcludeIndirectColumns); err != nil {
		return nil, err
	}
	return &p, nil
}

func validFormat(f string) bool {
	if f == "" {
		return true
	}
	for _, ok := range Formats {
		if f == ok {
			return true
		}
	}
	return false
}

// compile anchors pattern so it must match the whole name. An empty pattern
// yields nil.
func compile(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: analysis.%s: %w", ErrInvalid, field, err)
	}
	return re, nil
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalid, name)
}

// SchemaFor returns the configured schema or the engine's conventional one:
// public for PostgreSQL, main for SQLite and DuckDB, and the database itself
// for MySQL.
func (c *Config) SchemaFor(databaseName string) string {
	if c.Schema != "" {
		return c.Schema
	}
	switch strings.ToLower(c.Connection.Adapter) {
	case "postgres":
		return "public"
	case "sqlite", "duckdb":
		return "main"
	}
	return databaseName
}

// AuditPath returns the journal path, defaulting to ConfigDir()/audit.jsonl.
func (c *Config) AuditPath() (string, error) {
	if c.Audit.Path != "" {
		return c.Audit.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.jsonl"), nil
}

// HistoryPath returns the run database path, defaulting to
// ConfigDir()/history.db.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// DetectAdapter guesses the adapter from the shape of a DSN.
func DetectAdapter(dsn string) string {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(lower, "mysql://"):
		return "mysql"
	case strings.HasPrefix(lower, "sqlite://") || strings.HasPrefix(lower, "file:"):
		return "sqlite"
	case strings.HasPrefix(lower, "duckdb://"):
		return "duckdb"
	case strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3"):
		return "sqlite"
	case strings.HasSuffix(lower, ".duckdb"):
		return "duckdb"
	case strings.Contains(lower, "@tcp("):
		return "mysql"
	case strings.Contains(dsn, "@"):
		return "postgres"
	}
	return ""
}

// BuildDSN returns the driver connection string. An explicit DSN wins;
// otherwise one is assembled from the individual fields in the driver's
// native format.
func (sc *Connection) BuildDSN() string {
	if sc.DSN != "" {
		return sc.DSN
	}

	host := sc.Host
	if host == "" {
		host = "localhost"
	}

	switch strings.ToLower(sc.Adapter) {
	case "postgres":
		u := &url.URL{Scheme: "postgres", Host: host}
		if sc.User != "" {
			if sc.Password != "" {
				u.User = url.UserPassword(sc.User, sc.Password)
			} else {
				u.User = url.User(sc.User)
			}
		}
		if sc.Port > 0 {
			u.Host = fmt.Sprintf("%s:%d", host, sc.Port)
		}
		if sc.Database != "" {
			u.Path = "/" + sc.Database
		}
		return u.String()

	case "mysql":
		// go-sql-driver format: user:pass@tcp(host:port)/db
		var b strings.Builder
		if sc.User != "" {
			b.WriteString(sc.User)
			if sc.Password != "" {
				b.WriteByte(':')
				b.WriteString(sc.Password)
			}
			b.WriteByte('@')
		}
		port := sc.Port
		if port == 0 {
			port = 3306
		}
		fmt.Fprintf(&b, "tcp(%s:%d)", host, port)
		if sc.Database != "" {
			b.WriteByte('/')
			b.WriteString(sc.Database)
		}
		return b.String()

	case "sqlite", "duckdb":
		if sc.File != "" {
			return sc.File
		}
		if sc.Database != "" {
			return sc.Database
		}
		return ":memory:"
	}
	return ""
}

// DisplayString returns a human-readable representation of the connection,
// formatted as "adapter://host:port/database" for network adapters or
// "adapter://file" for file-based adapters. It never includes credentials.
func (sc *Connection) DisplayString() string {
	adapter := strings.ToLower(sc.Adapter)
	if adapter == "sqlite" || adapter == "duckdb" {
		file := sc.File
		if file == "" {
			file = sc.DSN
		}
		return fmt.Sprintf("%s://%s", sc.Adapter, file)
	}

	host := sc.Host
	if host == "" {
		host = "localhost"
	}

	location := host
	if sc.Port > 0 {
		location = fmt.Sprintf("%s:%d", host, sc.Port)
	}

	if sc.Database != "" {
		return fmt.Sprintf("%s://%s/%s", sc.Adapter, location, sc.Database)
	}
	return fmt.Sprintf("%s://%s", sc.Adapter, location)
}
