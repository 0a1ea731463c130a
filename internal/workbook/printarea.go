package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const printAreaName = "_xlnm.Print_Area"

// PrepareForCapture copies src to dst with each sheet's print area set to
// its used range and fit-to-page enabled, so a renderer emits the whole
// sheet on one page. Empty sheets are left unchanged.
func PrepareForCapture(src, dst string) error {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		if err := setPrintArea(f, sheet); err != nil {
			return fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}

	if err := f.SaveAs(dst); err != nil {
		return fmt.Errorf("save capture workbook: %w", err)
	}

	return nil
}

// ContentSheets returns the 1-based indices, in workbook order, of the
// sheets that hold at least one value or merged range. Renderers that
// paginate skip the others.
func ContentSheets(path string) ([]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var indices []int
	for i, sheet := range f.GetSheetList() {
		ref, err := contentBounds(f, sheet)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		if ref != "" {
			indices = append(indices, i+1)
		}
	}
	return indices, nil
}

func setPrintArea(f *excelize.File, sheet string) error {
	ref, err := contentBounds(f, sheet)
	if err != nil {
		return err
	}
	if ref == "" {
		return nil
	}

	// SetDefinedName refuses to overwrite an existing name in the same scope.
	_ = f.DeleteDefinedName(&excelize.DefinedName{Name: printAreaName, Scope: sheet})

	if err := f.SetDefinedName(&excelize.DefinedName{
		Name:     printAreaName,
		RefersTo: fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), ref),
		Scope:    sheet,
	}); err != nil {
		return fmt.Errorf("print area: %w", err)
	}

	fit := true
	if err := f.SetSheetProps(sheet, &excelize.SheetPropsOptions{FitToPage: &fit}); err != nil {
		return fmt.Errorf("fit to page: %w", err)
	}

	return nil
}

// contentBounds returns the absolute range from A1 to the last non-empty
// row and column, widened to cover merged ranges. The stored <dimension>
// element is not used: excelize does not refresh it on save.
func contentBounds(f *excelize.File, sheet string) (string, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("rows: %w", err)
	}

	var maxRow, maxCol int
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			maxRow = max(maxRow, r+1)
			maxCol = max(maxCol, c+1)
		}
	}

	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return "", fmt.Errorf("merged cells: %w", err)
	}
	for _, mc := range merged {
		col, row, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return "", fmt.Errorf("merged range %s: %w", mc.GetEndAxis(), err)
		}
		maxRow = max(maxRow, row)
		maxCol = max(maxCol, col)
	}

	if maxRow == 0 {
		return "", nil
	}

	end, err := excelize.CoordinatesToCellName(maxCol, maxRow, true)
	if err != nil {
		return "", err
	}
	return "$A$1:" + end, nil
}
