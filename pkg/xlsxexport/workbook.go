package xlsxexport

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/goliatone/go-tablesync/components/tablesync"
)

// maxSheetName is the Excel limit on tab titles.
const maxSheetName = 31

var invalidSheetChars = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// Sheet is one tab of the workbook.
type Sheet struct {
	Name string
	Rows []tablesync.TableRow
}

// Collect fetches each source through the registry and formats its rows
// the same way a table sync would. Sources that fail are left out.
func Collect(ctx context.Context, reg *tablesync.Registry, ids []string) []Sheet {
	if len(ids) == 0 {
		for _, desc := range reg.EnabledSources() {
			ids = append(ids, desc.ID)
		}
	}
	exports := reg.GetMultipleData(ctx, ids)
	sheets := make([]Sheet, 0, len(exports))
	for _, id := range ids {
		export, ok := exports[id]
		if !ok {
			continue
		}
		sheets = append(sheets, Sheet{Name: id, Rows: tablesync.FormatAsTableRows(export)})
	}
	return sheets
}

// Build lays every sheet out with a header row of column names followed by
// one row per table row.
func Build(sheets []Sheet) (*xlsx.File, error) {
	file := xlsx.NewFile()
	used := map[string]int{}
	for _, s := range sheets {
		sheet, err := file.AddSheet(sheetName(s.Name, used))
		if err != nil {
			return nil, fmt.Errorf("xlsxexport: add sheet %q: %w", s.Name, err)
		}
		columns := Columns(s.Rows)
		header := sheet.AddRow()
		for _, col := range columns {
			header.AddCell().SetString(col)
		}
		for _, row := range s.Rows {
			r := sheet.AddRow()
			for _, col := range columns {
				setCell(r.AddCell(), row[col])
			}
		}
	}
	return file, nil
}

// Write builds the workbook and streams it to w.
func Write(w io.Writer, sheets []Sheet) error {
	file, err := Build(sheets)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("xlsxexport: write: %w", err)
	}
	return nil
}

// Save builds the workbook and stores it at path.
func Save(path string, sheets []Sheet) error {
	file, err := Build(sheets)
	if err != nil {
		return err
	}
	if err := file.Save(path); err != nil {
		return fmt.Errorf("xlsxexport: save %s: %w", path, err)
	}
	return nil
}

// Columns returns the union of row keys, id first and the rest sorted.
func Columns(rows []tablesync.TableRow) []string {
	seen := map[string]struct{}{}
	var cols []string
	for _, row := range rows {
		for key := range row {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			cols = append(cols, key)
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i] == "id" || cols[j] == "id" {
			return cols[i] == "id"
		}
		return cols[i] < cols[j]
	})
	return cols
}

func sheetName(name string, used map[string]int) string {
	name = invalidSheetChars.Replace(strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	used[name]++
	if n := used[name]; n > 1 {
		suffix := fmt.Sprintf("_%d", n)
		if len(name)+len(suffix) > maxSheetName {
			name = name[:maxSheetName-len(suffix)]
		}
		name += suffix
	}
	return name
}

func setCell(cell *xlsx.Cell, value any) {
	switch v := value.(type) {
	case nil:
	case string:
		cell.SetString(v)
	case bool:
		cell.SetBool(v)
	case int:
		cell.SetInt(v)
	case int64:
		cell.SetInt64(v)
	case int32:
		cell.SetInt64(int64(v))
	case float64:
		cell.SetFloat(v)
	case float32:
		cell.SetFloat(float64(v))
	default:
		cell.SetString(fmt.Sprint(v))
	}
}
