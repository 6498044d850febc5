// Package export renders asset rows as an inventory spreadsheet.
package export

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/crucial707/it-inventory/internal/models"
)

const (
	SheetName   = "Inventory"
	Title       = "IT Inventory Management"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	logoPlaceholder = "Company Logo Placeholder"
	headerRow       = 6
	columnWidth     = 20
)

var docDetails = [][2]string{
	{"Document Number", "ITD-F-003"},
	{"Effective From", "15-Jun-23"},
	{"Page Number", "01 of 01"},
}

// Options controls the sheet layout.
type Options struct {
	// Columns is the preferred column order, usually the table's. Row keys not listed here
	// follow in name order. Empty means name order for everything.
	Columns []string
	// LogoPath is placed at A1 when the file exists.
	LogoPath string
}

// FileName is the download name for an export taken at now.
func FileName(now time.Time) string {
	return "System_Inventory_" + now.Format("02_01_06") + ".xlsx"
}

// ColumnCaption turns a column name into a header: "date_of_issue" becomes "Date of Issue".
func ColumnCaption(column string) string {
	words := strings.Split(column, "_")
	for i, w := range words {
		w = strings.ToLower(w)
		if i > 0 && w == "of" {
			words[i] = w
			continue
		}
		if w != "" {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

// Columns returns the exported columns of rows: the union of their keys minus metadata,
// ordered by preferred first.
func Columns(rows []models.Row, preferred []string) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			if !models.IsMetadataColumn(k) {
				seen[k] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for _, c := range preferred {
		if seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for c := range seen {
		rest = append(rest, c)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Workbook builds the inventory spreadsheet. The caller closes the returned file.
func Workbook(rows []models.Row, opts Options) (*excelize.File, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to export")
	}
	cols := Columns(rows, opts.Columns)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := layout(f, rows, cols, opts); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook of rows to w.
func Write(w io.Writer, rows []models.Row, opts Options) error {
	f, err := Workbook(rows, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func layout(f *excelize.File, rows []models.Row, cols []string, opts Options) error {
	s := SheetName

	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	logoStyle, err := f.NewStyle(&excelize.Style{Alignment: centered})
	if err != nil {
		return err
	}
	if fileExists(opts.LogoPath) {
		if err := f.AddPicture(s, "A1", opts.LogoPath, &excelize.GraphicOptions{
			ScaleX: 0.5, ScaleY: 0.5, Positioning: "oneCell",
		}); err != nil {
			return fmt.Errorf("add logo: %w", err)
		}
	} else if err := f.SetCellValue(s, "A1", logoPlaceholder); err != nil {
		return err
	}
	if err := f.SetCellStyle(s, "A1", "A1", logoStyle); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: centered,
	})
	if err != nil {
		return err
	}
	if err := f.SetCellValue(s, "E1", Title); err != nil {
		return err
	}
	if err := f.SetCellStyle(s, "E1", "E1", titleStyle); err != nil {
		return err
	}

	// Document details sit two columns right of invoice_file, or of the last column.
	anchor := len(cols)
	for i, c := range cols {
		if c == "invoice_file" {
			anchor = i + 1
		}
	}
	for i, d := range docDetails {
		key, _ := excelize.CoordinatesToCellName(anchor+2, 2+i)
		val, _ := excelize.CoordinatesToCellName(anchor+3, 2+i)
		if err := f.SetCellValue(s, key, d[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(s, val, d[1]); err != nil {
			return err
		}
	}

	borders := []excelize.Border{
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D3D3D3"}},
		Border: borders,
	})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: borders})
	if err != nil {
		return err
	}

	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(cols), headerRow)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = ColumnCaption(c)
	}
	if err := f.SetSheetRow(s, first, &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(s, first, last, headerStyle); err != nil {
		return err
	}

	for i, r := range rows {
		values := make([]any, len(cols))
		for j, c := range cols {
			values[j] = cellValue(c, r[c])
		}
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		if err := f.SetSheetRow(s, cell, &values); err != nil {
			return err
		}
	}
	dataFirst, _ := excelize.CoordinatesToCellName(1, headerRow+1)
	dataLast, _ := excelize.CoordinatesToCellName(len(cols), headerRow+len(rows))
	if err := f.SetCellStyle(s, dataFirst, dataLast, cellStyle); err != nil {
		return err
	}

	if err := f.SetPanes(s, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      headerRow,
		TopLeftCell: "B7",
		ActivePane:  "bottomRight",
	}); err != nil {
		return err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	return f.SetColWidth(s, "A", lastCol, columnWidth)
}

func cellValue(column string, v any) any {
	if v == nil {
		return ""
	}
	if column == "invoice_file" {
		if s, ok := v.(string); ok && s != "" {
			return path.Base(s)
		}
	}
	return v
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
