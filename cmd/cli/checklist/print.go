package checklist

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render writes the issuing form and the checklist as two tables, stamped with now.
func Render(w io.Writer, r Record, now time.Time) {
	form := table.NewWriter()
	form.SetOutputMirror(w)
	form.SetTitle(fmt.Sprintf("System Allocation #%d", r.SrNo))
	form.SetStyle(table.StyleLight)
	form.AppendRows([]table.Row{
		{"User Name", r.Username},
		{"Department", r.Department},
		{"Date of Issue", r.DateOfIssue},
		{"Laptop", r.Laptop},
		{"Serial No", r.SerialNo},
		{"Configuration", r.Configuration},
		{"Accessories", r.Accessories},
		{"Asset Tag", r.AssetTag},
		{"Issued By", r.IssuedBy},
	})
	form.Render()

	list := table.NewWriter()
	list.SetOutputMirror(w)
	list.SetTitle("Checklist: " + r.Checklist.SystemName)
	list.SetStyle(table.StyleLight)
	list.AppendHeader(table.Row{"#", "Status"})
	list.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	for i := 1; i <= StatusCount; i++ {
		status := r.Checklist.Statuses[StatusKey(i)]
		if status == "" {
			status = StatusNA
		}
		list.AppendRow(table.Row{i, status})
	}
	list.AppendFooter(table.Row{"", "Printed " + now.Format("1/2/06 3:04 PM")})
	list.Render()
}
