package output

import (
	"io"
	"strings"
	"text/tabwriter"
)

// Tabular is implemented by results that know their table layout. Wide
// asks for the optional columns too.
type Tabular interface {
	Table(wide bool) *Table
}

// TableFormatter writes Tabular values as aligned columns. Anything else
// has no table layout and is written as YAML instead.
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format writes data to w.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	var t *Table
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		t = v
	case Tabular:
		t = v.Table(f.Wide)
	default:
		return (&YAMLFormatter{}).Format(w, data)
	}
	if f.NoHeaders {
		t = &Table{Rows: t.Rows}
	}
	return t.WriteTo(w)
}

// Table is a header row plus data rows. Empty cells print as "-".
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable starts a table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// Row appends one row and returns t.
func (t *Table) Row(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// WriteTo renders t with two spaces between columns.
func (t *Table) WriteTo(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	line := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				io.WriteString(tw, "\t")
			}
			if c == "" {
				c = "-"
			}
			io.WriteString(tw, c)
		}
		io.WriteString(tw, "\n")
	}
	if len(t.Headers) > 0 {
		line(t.Headers)
	}
	for _, r := range t.Rows {
		line(r)
	}
	return tw.Flush()
}

// KeyValues lays out pairs as a FIELD/VALUE table.
func KeyValues(pairs ...string) *Table {
	t := NewTable("FIELD", "VALUE")
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Row(pairs[i], pairs[i+1])
	}
	return t
}

// Header upper-cases column names.
func Header(names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}
