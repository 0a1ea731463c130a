// Package workbook reads and rewrites Excel workbooks for field detection:
// a deterministic text description of each sheet, highlighted overlays of
// candidate input cells, and print-area preparation before rendering.
package workbook

import (
	"errors"
	"io"
	"regexp"

	"github.com/xuri/excelize/v2"
)

var addressPattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+$`)

// ValidAddress reports whether addr is an A1-style reference (column letters
// followed by row digits) that falls inside the Excel grid.
func ValidAddress(addr string) bool {
	if !addressPattern.MatchString(addr) {
		return false
	}
	_, _, err := excelize.CellNameToCoordinates(addr)
	return err == nil
}

// SheetNames returns the workbook's sheet names in workbook order.
func SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Inspect opens an in-memory workbook and returns its sheet names. It fails
// when r is not a readable xlsx package.
func Inspect(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return sheets, nil
}
