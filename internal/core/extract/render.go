package extract

import (
	"strings"

	"github.com/obinna-dev/drivesage/internal/core"
)

// RenderWordDocument flattens a structural document body into plain text:
// run texts concatenated in order, one newline per paragraph boundary.
// Table cells arrive as ordinary paragraphs from the store, so tables are
// not unrolled specially; this is a known simplification.
func RenderWordDocument(doc *core.WordDocument) string {
	var b strings.Builder
	for _, p := range doc.Paragraphs {
		for _, run := range p.Runs {
			b.WriteString(run)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSpreadsheet emits, per sheet in workbook order, a "Sheet: <name>"
// header, then each row's cells joined by tabs (blank cells stay empty),
// with a blank line terminating every sheet.
func RenderSpreadsheet(sheets []core.SheetData) string {
	var b strings.Builder
	for _, sheet := range sheets {
		b.WriteString("Sheet: ")
		b.WriteString(sheet.Name)
		b.WriteString("\n")
		for _, row := range sheet.Rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
