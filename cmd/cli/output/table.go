package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Out is where command output goes. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

// RenderTable prints a pretty table
func RenderTable(headers []string, rows [][]interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(Out)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	t.Render()
}

// RenderRecord prints one record as a two-column field/value table.
func RenderRecord(title string, record map[string]any, order []string) {
	t := table.NewWriter()
	t.SetOutputMirror(Out)
	if title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, k := range fieldOrder(record, order) {
		t.AppendRow(table.Row{k, Display(record[k])})
	}
	t.Render()
}

// RenderRows prints records as a table using columns, or the sorted union of keys when
// columns is empty.
func RenderRows(rows []map[string]any, columns []string) {
	if len(columns) == 0 {
		seen := map[string]bool{}
		for _, r := range rows {
			for k := range r {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}
	out := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		line := make([]interface{}, len(columns))
		for i, c := range columns {
			line[i] = Display(r[c])
		}
		out = append(out, line)
	}
	RenderTable(columns, out)
}

// PrintJSON prints v indented.
func PrintJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Out, string(b))
	return err
}

// Display renders a JSON value for a table cell. Null is empty.
func Display(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func fieldOrder(record map[string]any, order []string) []string {
	keys := make([]string, 0, len(record))
	listed := map[string]bool{}
	for _, k := range order {
		if _, ok := record[k]; ok {
			keys = append(keys, k)
			listed[k] = true
		}
	}
	var rest []string
	for k := range record {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
