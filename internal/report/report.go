// Package report prints analysis results for people: a model summary with
// its anomalies, single-table details with highlighted SQL, insertion
// orders and run history. Machine-readable output lives in document.go.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/schemahawk/internal/history"
	"github.com/sadopc/schemahawk/internal/order"
	"github.com/sadopc/schemahawk/internal/sanity"
	"github.com/sadopc/schemahawk/internal/schema"
	"github.com/sadopc/schemahawk/internal/theme"
)

// Renderer writes styled text reports.
type Renderer struct {
	w  io.Writer
	th *theme.Theme
	hl *Highlighter
}

// New returns a Renderer writing to w. adapterName picks the SQL lexer.
func New(w io.Writer, th *theme.Theme, adapterName string) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	return &Renderer{w: w, th: th, hl: NewHighlighter(adapterName)}
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *Renderer) grid(headers []string, rows [][]string) string {
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.th.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.th.Header
			}
			return cell
		}).
		String()
}

// Summary prints counts, the tables, views and remote tables, and every
// anomaly found.
func (r *Renderer) Summary(db *schema.Database, findings sanity.Report) {
	r.println(r.th.Title.Render("Schema analysis"))
	head := r.th.Database.Render(db.Name)
	if db.Schema != "" && db.Schema != db.Name {
		head += r.th.MutedText.Render(" schema ") + db.Schema
	}
	if db.Dbms != "" {
		head += r.th.MutedText.Render(" on " + db.Dbms)
	}
	r.println(head)
	if db.Description != "" {
		r.println(db.Description)
	}
	r.println(r.th.MutedText.Render(fmt.Sprintf("%d tables, %d views, %d remote tables, %d procedures, %d functions",
		db.Tables.Len(), db.Views.Len(), db.RemoteTables.Len(), db.Procedures.Len(), db.Functions.Len())))

	if db.Tables.Len() > 0 {
		r.println(r.th.Section.Render("Tables"))
		var rows [][]string
		for _, t := range db.Tables.Values() {
			rows = append(rows, []string{
				r.th.Table.Render(t.Name),
				strconv.Itoa(t.Columns.Len()),
				rowCount(t),
				strconv.Itoa(t.NumParents()),
				strconv.Itoa(t.NumChildren()),
				truncate(t.Comments, 48),
			})
		}
		r.println(r.grid([]string{"Table", "Columns", "Rows", "Parents", "Children", "Comments"}, rows))
	}

	if db.Views.Len() > 0 {
		r.println(r.th.Section.Render("Views"))
		var rows [][]string
		for _, v := range db.Views.Values() {
			rows = append(rows, []string{r.th.View.Render(v.Name), strconv.Itoa(v.Columns.Len()), truncate(v.Comments, 48)})
		}
		r.println(r.grid([]string{"View", "Columns", "Comments"}, rows))
	}

	if db.RemoteTables.Len() > 0 {
		r.println(r.th.Section.Render("Remote tables"))
		for _, t := range db.RemoteTables.Values() {
			r.println("  " + r.th.Remote.Render(schema.RemoteKey(t.Schema, t.Name)) +
				r.th.MutedText.Render(" ("+strings.ToLower(t.Kind.String())+")"))
		}
	}

	r.Anomalies(findings)
}

// Anomalies prints each check's findings, or that there were none.
func (r *Renderer) Anomalies(findings sanity.Report) {
	r.println(r.th.Section.Render("Anomalies"))
	if findings.Count() == 0 {
		r.println("  " + r.th.SuccessText.Render("none found"))
		return
	}
	r.anomaly("Unique indexes over nullable columns", columnNames(findings.UniqueNullable))
	r.anomaly("Tables without indexes", tableNames(findings.WithoutIndexes))
	r.anomaly("Tables with incrementing column names (possibly denormalized)", tableNames(findings.IncrementingColumnNames))
	r.anomaly("Tables with a single column", tableNames(findings.SingleColumn))
	r.anomaly("Columns whose default is the string 'null'", columnNames(findings.DefaultNullString))
}

func (r *Renderer) anomaly(title string, items []string) {
	if len(items) == 0 {
		return
	}
	r.println("  " + r.th.WarningText.Render(fmt.Sprintf("%s (%d)", title, len(items))))
	for _, it := range items {
		r.println("    " + it)
	}
}

// Table prints the details of one table or view.
func (r *Renderer) Table(t *schema.Table) {
	name := r.th.Table.Render(t.Name)
	if t.IsView() {
		name = r.th.View.Render(t.Name)
	} else if t.IsRemote() {
		name = r.th.Remote.Render(schema.RemoteKey(t.Schema, t.Name))
	}
	r.println(name + r.th.MutedText.Render(" "+strings.ToLower(t.Kind.String())))
	if t.Comments != "" {
		r.println(t.Comments)
	}
	if t.RowCount >= 0 {
		r.println(r.th.MutedText.Render(rowCount(t) + " rows"))
	}

	var rows [][]string
	for _, c := range t.SortedColumns() {
		def := ""
		if c.DefaultValue != nil {
			def = fmt.Sprint(c.DefaultValue)
		}
		nulls := ""
		if c.Nullable {
			nulls = "√"
		}
		rows = append(rows, []string{
			c.Name,
			r.th.ColumnType.Render(c.Type),
			size(c),
			nulls,
			def,
			r.th.Key.Render(keyMarks(c)),
			truncate(c.Comments, 40),
		})
	}
	r.println(r.grid([]string{"Column", "Type", "Size", "Nulls", "Default", "Key", "Comments"}, rows))

	if t.ForeignKeys.Len() > 0 {
		r.println(r.th.Section.Render("References"))
		for _, fk := range t.ForeignKeys.Values() {
			r.println(fmt.Sprintf("  %s %s", fk, r.th.MutedText.Render("["+fk.DeleteRuleName()+", "+fk.Provenance.String()+"]")))
		}
	}

	if children := referencedBy(t); len(children) > 0 {
		r.println(r.th.Section.Render("Referenced by"))
		for _, fk := range children {
			r.println(fmt.Sprintf("  %s %s", fk, r.th.MutedText.Render("["+fk.DeleteRuleName()+"]")))
		}
	}

	if t.Indexes.Len() > 0 {
		r.println(r.th.Section.Render("Indexes"))
		for _, idx := range t.Indexes.Values() {
			line := "  " + idx.Name + " (" + strings.Join(names(idx.Columns), ", ") + ")"
			if idx.Unique {
				line += r.th.MutedText.Render(" unique")
			}
			r.println(line)
		}
	}

	if t.CheckConstraints.Len() > 0 {
		r.println(r.th.Section.Render("Check constraints"))
		for _, name := range t.CheckConstraints.Names() {
			text, _ := t.CheckConstraints.Get(name)
			r.println("  " + name + ": " + r.hl.Highlight(text, r.th))
		}
	}

	if t.ViewSQL != "" {
		r.println(r.th.Section.Render("Definition"))
		r.println(r.hl.Highlight(t.ViewSQL, r.th))
	}
}

// Routine prints a procedure or function definition.
func (r *Renderer) Routine(name, returnType, definition string) {
	head := r.th.Database.Render(name)
	if returnType != "" {
		head += r.th.MutedText.Render(" returns ") + r.th.ColumnType.Render(returnType)
	}
	r.println(head)
	if definition != "" {
		r.println(r.hl.Highlight(definition, r.th))
	}
}

// NotFound reports an unknown name with close matches.
func (r *Renderer) NotFound(kind, name string, candidates []string) {
	r.println(r.th.ErrorText.Render(fmt.Sprintf("no %s named %q", kind, name)))
	if s := Suggest(name, candidates, 5); len(s) > 0 {
		r.println(r.th.MutedText.Render("did you mean: ") + strings.Join(s, ", "))
	}
}

// Order prints tables in insertion order.
func (r *Renderer) Order(res order.Result) {
	r.println(r.th.Section.Render("Insertion order"))
	width := len(strconv.Itoa(len(res.Tables)))
	for i, t := range res.Tables {
		r.println(fmt.Sprintf("  %*d  %s", width, i+1, r.th.Table.Render(t.Name)))
	}
	if len(res.Unattached) > 0 {
		r.println(r.th.Section.Render("Unattached"))
		r.println("  " + strings.Join(tableNames(res.Unattached), ", "))
	}
	if len(res.Recursive) > 0 {
		r.println(r.th.Section.Render("Constraints removed to break cycles"))
		for _, fk := range res.Recursive {
			r.println("  " + r.th.WarningText.Render(fk.String()))
		}
	}
}

// History prints past runs, most recent first.
func (r *Renderer) History(runs []history.Run) {
	if len(runs) == 0 {
		r.println(r.th.MutedText.Render("no runs recorded"))
		return
	}
	var rows [][]string
	for _, run := range runs {
		status := r.th.SuccessText.Render("ok")
		if run.Failed() {
			status = r.th.ErrorText.Render(truncate(run.Error, 40))
		}
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Database,
			run.Schema,
			run.Adapter,
			strconv.Itoa(run.Tables),
			strconv.Itoa(run.Views),
			strconv.Itoa(run.Anomalies),
			fmt.Sprintf("%dms", run.DurationMS),
			status,
		})
	}
	r.println(r.grid([]string{"#", "Started", "Database", "Schema", "Adapter", "Tables", "Views", "Anomalies", "Took", "Status"}, rows))
}

// referencedBy returns the constraints of other tables pointing at t.
func referencedBy(t *schema.Table) []*schema.ForeignKeyConstraint {
	seen := make(map[*schema.ForeignKeyConstraint]bool)
	var out []*schema.ForeignKeyConstraint
	for _, c := range t.SortedColumns() {
		for _, child := range c.Children() {
			fk := c.ChildConstraint(child)
			if fk != nil && !seen[fk] {
				seen[fk] = true
				out = append(out, fk)
			}
		}
	}
	return out
}

func keyMarks(c *schema.TableColumn) string {
	var marks []string
	if c.IsPrimary() {
		marks = append(marks, "PK")
	}
	if c.IsForeignKey() {
		marks = append(marks, "FK")
	}
	if c.AllExcluded {
		marks = append(marks, "hidden")
	} else if c.Excluded {
		marks = append(marks, "direct only")
	}
	return strings.Join(marks, " ")
}

func size(c *schema.TableColumn) string {
	switch {
	case c.Length > 0 && c.DecimalDigits > 0:
		return fmt.Sprintf("%d,%d", c.Length, c.DecimalDigits)
	case c.Length > 0:
		return strconv.Itoa(c.Length)
	}
	return ""
}

func rowCount(t *schema.Table) string {
	if t.RowCount < 0 {
		return ""
	}
	return strconv.FormatInt(t.RowCount, 10)
}

// truncate collapses whitespace and cuts s to n display cells.
func truncate(s string, n int) string {
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), n, "…")
}
