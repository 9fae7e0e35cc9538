// Package reader builds a schema.Database from a live connection.
//
// A read runs in phases: tables are discovered, filtered and populated
// (concurrently, bounded by Options.MaxThreads), views are discovered,
// optional per-engine fragments enrich what was found, foreign keys are
// linked across the whole set, and finally an optional XML document is
// merged in. Only population is concurrent.
package reader

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/audit"
	"github.com/sadopc/schemahawk/internal/dbtype"
	"github.com/sadopc/schemahawk/internal/keywords"
	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/xmlmeta"
)

var (
	// ErrDiscovery means the catalog could not list the tables to read.
	ErrDiscovery = errors.New("table discovery failed")
	// ErrIdentifierAssignment means a table or index id fragment failed.
	ErrIdentifierAssignment = errors.New("identifier assignment failed")
	// ErrPopulate means a table's details could not be read.
	ErrPopulate = errors.New("table population failed")
)

// Options control a read.
type Options struct {
	// Name defaults to the connection's database name.
	Name        string
	Schema      string
	Description string

	// Include and Exclude must match a whole table or view name. A nil
	// Include admits everything; a nil Exclude excludes nothing.
	Include *regexp.Regexp
	Exclude *regexp.Regexp
	// ExcludeColumns and ExcludeIndirectColumns flag matching columns,
	// tested against both "table.column" and the bare column name.
	ExcludeColumns         *regexp.Regexp
	ExcludeIndirectColumns *regexp.Regexp

	Views      bool
	RowCounts  bool
	MaxThreads int

	Queries dbtype.Queries
	// Meta is merged into the model after linking when non-nil.
	Meta *xmlmeta.SchemaMeta

	Logger  *slog.Logger
	Journal *audit.Logger
}

// Reader reads one database. It is not reusable.
type Reader struct {
	conn adapter.Connection
	opts Options
	log  *slog.Logger
	db   *schema.Database

	// mu guards db.Tables during population.
	mu sync.Mutex
}

// Read reflects over conn and returns the populated model.
func Read(ctx context.Context, conn adapter.Connection, opts Options) (*schema.Database, error) {
	return New(conn, opts).Read(ctx)
}

// New prepares a Reader.
func New(conn adapter.Connection, opts Options) *Reader {
	if opts.Name == "" {
		opts.Name = conn.DatabaseName()
	}
	if opts.MaxThreads < 1 {
		opts.MaxThreads = 1
	}
	if len(opts.Queries.TableTypes) == 0 {
		opts.Queries.TableTypes = dbtype.Defaults().TableTypes
	}
	if len(opts.Queries.ViewTypes) == 0 {
		opts.Queries.ViewTypes = dbtype.Defaults().ViewTypes
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Reader{
		conn: conn,
		opts: opts,
		log:  log.With("database", opts.Name),
	}
}

// Read runs every phase in order.
func (r *Reader) Read(ctx context.Context) (*schema.Database, error) {
	start := time.Now()
	r.db = schema.NewDatabase(r.opts.Name, r.opts.Schema, r.opts.Description)
	r.db.Dbms = r.product(ctx)
	r.db.Keywords = r.keywords(ctx)

	if err := r.initTables(ctx); err != nil {
		return nil, err
	}
	if r.opts.Views {
		if err := r.initViews(ctx); err != nil {
			return nil, err
		}
	}

	if err := r.enrich(ctx); err != nil {
		return nil, err
	}

	r.connectTables(ctx)

	if r.opts.Meta != nil {
		r.mergeMeta(ctx, r.opts.Meta)
	}

	r.log.Info("schema read",
		"tables", r.db.Tables.Len(),
		"views", r.db.Views.Len(),
		"remote_tables", r.db.RemoteTables.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return r.db, nil
}

func (r *Reader) product(ctx context.Context) string {
	p, err := r.conn.Product(ctx)
	if err != nil {
		r.log.Debug("product unavailable", "err", err)
		return ""
	}
	return p.String()
}

// keywords unions SQL-92 with the engine's own words. The engine list is a
// nicety: failing to read it keeps the static lists.
func (r *Reader) keywords(ctx context.Context) map[string]struct{} {
	lists := [][]string{keywords.Functions, keywords.ForDialect(r.conn.AdapterName())}
	words, err := r.conn.Keywords(ctx)
	if err != nil {
		r.log.Warn("could not read engine keywords", "err", err)
	} else {
		lists = append(lists, words)
	}
	return keywords.Set(lists...)
}

// columnExcluded reports whether re matches the column by qualified or
// bare name.
func columnExcluded(re *regexp.Regexp, table, column string) bool {
	if re == nil {
		return false
	}
	return re.MatchString(table+"."+column) || re.MatchString(column)
}
