package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/schemahawk/internal/adapter"
	"github.com/sadopc/schemahawk/internal/audit"
	"github.com/sadopc/schemahawk/internal/config"
	"github.com/sadopc/schemahawk/internal/dbtype"
	"github.com/sadopc/schemahawk/internal/history"
	"github.com/sadopc/schemahawk/internal/order"
	"github.com/sadopc/schemahawk/internal/reader"
	"github.com/sadopc/schemahawk/internal/report"
	"github.com/sadopc/schemahawk/internal/sanity"
	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/theme"
	"github.com/sadopc/schemahawk/internal/xmlmeta"
)

// errNotFound is returned after a missing object has already been reported.
var errNotFound = errors.New("not found")

// session is an open connection plus everything needed to read it.
type session struct {
	cfg     *config.Config
	stderr  io.Writer
	conn    adapter.Connection
	journal *audit.Logger
	opts    reader.Options
}

// loadConfig reads the config file, the env file and the command-line
// overrides, in that order of precedence from lowest to highest.
func loadConfig(cmd *cobra.Command, f *flags, args []string) (*config.Config, error) {
	stderr := cmd.ErrOrStderr()

	var (
		cfg *config.Config
		err error
	)
	if f.config != "" {
		cfg, err = config.Load(f.config)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		if f.config != "" {
			return nil, err
		}
		warnf(stderr, "could not load config: %v", err)
		cfg = config.DefaultConfig()
	}

	changed := cmd.Flags().Changed
	c := &cfg.Connection
	if len(args) > 0 {
		c.DSN = args[0]
		c.Adapter = config.DetectAdapter(args[0])
	}
	if f.adapter != "" {
		c.Adapter = f.adapter
	}
	if changed("host") {
		c.Host = f.host
	}
	if f.port > 0 {
		c.Port = f.port
	}
	if f.user != "" {
		c.User = f.user
	}
	if f.password != "" {
		c.Password = f.password
	}
	if f.database != "" {
		c.Database = f.database
	}
	if f.file != "" {
		c.File = f.file
	}

	if err := cfg.ApplyEnv(f.envFile); err != nil {
		return nil, err
	}

	if f.schema != "" {
		cfg.Schema = f.schema
	}
	if changed("include") {
		cfg.Analysis.IncludeTables = f.include
	}
	if changed("exclude") {
		cfg.Analysis.ExcludeTables = f.exclude
	}
	if f.threads > 0 {
		cfg.Analysis.MaxThreads = f.threads
	}
	if f.noViews {
		cfg.Analysis.Views = false
	}
	if f.meta != "" {
		cfg.MetaFile = f.meta
	}
	if f.audit {
		cfg.Audit.Enabled = true
	}
	if f.theme != "" {
		cfg.Report.Theme = f.theme
	}
	if f.format != "" {
		cfg.Report.Format = f.format
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func openSession(cmd *cobra.Command, f *flags, args []string) (*session, error) {
	cfg, err := loadConfig(cmd, f, args)
	if err != nil {
		return nil, err
	}
	patterns, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	stderr := cmd.ErrOrStderr()
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	name := cfg.Connection.Adapter
	if name == "" {
		return nil, fmt.Errorf("%w: no database given; pass a DSN or --adapter", config.ErrInvalid)
	}
	a, ok := adapter.Registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", adapter.ErrUnknownAdapter, name)
	}

	queries, err := dbtype.Load(name)
	if err != nil {
		logger.Warn("no bundled catalog queries", "adapter", name, "err", err)
		queries = dbtype.Defaults()
	}
	queries = dbtype.Merge(queries, cfg.Queries)

	var meta *xmlmeta.SchemaMeta
	if cfg.MetaFile != "" {
		if meta, err = xmlmeta.Load(cfg.MetaFile); err != nil {
			return nil, err
		}
	}

	dsn := cfg.Connection.BuildDSN()
	logger.Debug("connecting", "target", cfg.Connection.DisplayString())
	conn, err := a.Connect(cmd.Context(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Connection.DisplayString(), err)
	}

	s := &session{cfg: cfg, stderr: stderr, conn: conn}
	if cfg.Audit.Enabled {
		s.journal = openJournal(cfg, stderr)
		s.journal.Bind(name, conn.DatabaseName(), dsn)
	}

	s.opts = reader.Options{
		Schema:                 cfg.SchemaFor(conn.DatabaseName()),
		Description:            cfg.Description,
		Include:                patterns.Include,
		Exclude:                patterns.Exclude,
		ExcludeColumns:         patterns.ExcludeColumns,
		ExcludeIndirectColumns: patterns.ExcludeIndirectColumns,
		Views:                  cfg.Analysis.Views,
		RowCounts:              cfg.Analysis.RowCounts,
		MaxThreads:             cfg.Analysis.MaxThreads,
		Queries:                queries,
		Meta:                   meta,
		Logger:                 logger,
		Journal:                s.journal,
	}
	return s, nil
}

// openJournal falls back to a nil journal, which discards entries, when the
// file cannot be opened.
func openJournal(cfg *config.Config, stderr io.Writer) *audit.Logger {
	path, err := cfg.AuditPath()
	if err == nil {
		var j *audit.Logger
		if j, err = audit.New(path, cfg.Audit.MaxSizeMB); err == nil {
			return j
		}
	}
	warnf(stderr, "query journal disabled: %v", err)
	return nil
}

func (s *session) read(ctx context.Context) (*schema.Database, error) {
	return reader.Read(ctx, s.conn, s.opts)
}

func (s *session) Close() {
	if s.journal != nil {
		s.journal.Close()
	}
	s.conn.Close()
}

func (s *session) renderer(w io.Writer) *report.Renderer {
	return report.New(w, theme.Get(s.cfg.Report.Theme), s.conn.AdapterName())
}

// write encodes doc for the yaml and json formats. It reports false for the
// text format, which callers render themselves.
func (s *session) write(w io.Writer, doc any) (bool, error) {
	switch s.cfg.Report.Format {
	case "yaml":
		return true, report.WriteYAML(w, doc)
	case "json":
		return true, report.WriteJSON(w, doc)
	}
	return false, nil
}

// record stores the outcome of a read in the run history. Failures to do so
// only warn.
func (s *session) record(started time.Time, db *schema.Database, findings sanity.Report, readErr error) {
	if !s.cfg.History.Enabled {
		return
	}
	path, err := s.cfg.HistoryPath()
	if err != nil {
		warnf(s.stderr, "history disabled: %v", err)
		return
	}
	h, err := history.Open(path)
	if err != nil {
		warnf(s.stderr, "history disabled: %v", err)
		return
	}
	defer h.Close()

	run := history.Run{
		Database:   s.conn.DatabaseName(),
		Schema:     s.opts.Schema,
		Adapter:    s.conn.AdapterName(),
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
	}
	if readErr != nil {
		run.Error = readErr.Error()
	} else {
		run.Database = db.Name
		run.Dbms = db.Dbms
		run.Tables = db.Tables.Len()
		run.Views = db.Views.Len()
		run.Anomalies = findings.Count()
		for _, t := range db.Tables.Values() {
			run.Constraints += t.ForeignKeys.Len()
		}
	}
	if _, err := h.Add(run); err != nil {
		warnf(s.stderr, "could not record run: %v", err)
	}
}

func newAnalyzeCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [dsn]",
		Short: "Read a schema and report its anomalies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, f, args)
			if err != nil {
				return err
			}
			defer s.Close()

			started := time.Now()
			db, err := s.read(cmd.Context())
			var findings sanity.Report
			if err == nil {
				findings = sanity.Check(db.TablesAndViews())
			}
			s.record(started, db, findings, err)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if done, err := s.write(out, report.Build(db, findings)); done {
				return err
			}
			s.renderer(out).Summary(db, findings)
			return nil
		},
	}
}

func newShowCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME [dsn]",
		Short: "Describe one table, view, remote table or routine",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			s, err := openSession(cmd, f, args[1:])
			if err != nil {
				return err
			}
			defer s.Close()

			db, err := s.read(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := s.renderer(out)
			t, ok := db.Lookup(name)
			if !ok {
				t, ok = db.RemoteTables.Get(name)
			}
			if ok {
				if done, err := s.write(out, report.BuildTable(t)); done {
					return err
				}
				r.Table(t)
				return nil
			}
			if p, ok := db.Procedures.Get(name); ok {
				r.Routine(p.Name, "", p.Definition)
				return nil
			}
			if fn, ok := db.Functions.Get(name); ok {
				r.Routine(fn.Name, fn.ReturnType, fn.Definition)
				return nil
			}

			var candidates []string
			candidates = append(candidates, db.Tables.Names()...)
			candidates = append(candidates, db.Views.Names()...)
			candidates = append(candidates, db.RemoteTables.Names()...)
			candidates = append(candidates, db.Procedures.Names()...)
			candidates = append(candidates, db.Functions.Names()...)
			r.NotFound("object", name, candidates)
			return errNotFound
		},
	}
}

func newOrderCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "order [dsn]",
		Short: "Print tables in an order that satisfies their foreign keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, f, args)
			if err != nil {
				return err
			}
			defer s.Close()

			db, err := s.read(cmd.Context())
			if err != nil {
				return err
			}
			res := order.ByReferentialIntegrity(db.Tables.Values())

			out := cmd.OutOrStdout()
			if done, err := s.write(out, report.BuildOrder(res)); done {
				return err
			}
			s.renderer(out).Order(res)
			return nil
		},
	}
}
