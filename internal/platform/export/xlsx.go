// Package export renders tabular listings as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tealeg/xlsx"
)

// maxSheetName is the longest sheet name, in characters, spreadsheet applications accept.
const maxSheetName = 31

// sheetNameReplacer swaps out the characters spreadsheet applications reject in sheet names.
var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// Table is a header row plus data rows. Cell values may be strings, integers,
// floats, bools, times or nil.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

// WriteXLSX encodes t as a single-sheet workbook.
func WriteXLSX(w io.Writer, t Table) error {
	file := xlsx.NewFile()
	name := sheetNameReplacer.Replace(t.Sheet)
	if runes := []rune(name); len(runes) > maxSheetName {
		name = string(runes[:maxSheetName])
	}
	if name == "" {
		name = "sheet1"
	}
	sheet, err := file.AddSheet(name)
	if err != nil {
		return fmt.Errorf("add sheet %q: %w", name, err)
	}

	head := sheet.AddRow()
	for _, h := range t.Header {
		cell := head.AddCell()
		cell.Value = h
	}
	for _, values := range t.Rows {
		row := sheet.AddRow()
		for _, v := range values {
			setCell(row.AddCell(), v)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(cell *xlsx.Cell, v any) {
	switch v := v.(type) {
	case nil:
	case string:
		cell.SetString(v)
	case int:
		cell.SetInt(v)
	case int64:
		cell.SetInt64(v)
	case float64:
		cell.SetFloat(v)
	case bool:
		cell.SetBool(v)
	case time.Time:
		cell.SetDateTime(v)
	default:
		cell.SetString(fmt.Sprint(v))
	}
}
