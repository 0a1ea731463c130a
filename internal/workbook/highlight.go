package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// HighlightColor is the solid fill applied to candidate input cells.
const HighlightColor = "FFFF00"

// HighlightResult reports what Highlight changed.
type HighlightResult struct {
	// Applied counts marked cells across all sheets.
	Applied int
	// Skipped lists malformed addresses, each once, in input order.
	Skipped []string
}

// Highlight copies the workbook at src to dst with every well-formed address
// marked on every sheet: the cell keeps its style but gets a solid yellow
// fill, and its value becomes "{addr}:{original}" or "{addr}" when blank.
// The result depends only on src and addresses, so re-highlighting from the
// same base is reproducible.
func Highlight(src, dst string, addresses []string) (HighlightResult, error) {
	var result HighlightResult

	f, err := excelize.OpenFile(src)
	if err != nil {
		return result, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var valid []string
	seen := make(map[string]bool)
	for _, addr := range addresses {
		if !ValidAddress(addr) {
			if !seen[addr] {
				seen[addr] = true
				result.Skipped = append(result.Skipped, addr)
			}
			continue
		}

		key := strings.ToUpper(addr)
		if !seen[key] {
			seen[key] = true
			valid = append(valid, key)
		}
	}

	fills := make(map[int]int)

	for _, sheet := range f.GetSheetList() {
		for _, addr := range valid {
			if err := markCell(f, sheet, addr, fills); err != nil {
				return result, fmt.Errorf("mark %s!%s: %w", sheet, addr, err)
			}
			result.Applied++
		}
	}

	if err := f.SaveAs(dst); err != nil {
		return result, fmt.Errorf("save highlighted workbook: %w", err)
	}

	return result, nil
}

// markCell rewrites one cell. fills caches the highlighted variant of each
// original style ID so a style is derived once per workbook.
func markCell(f *excelize.File, sheet, addr string, fills map[int]int) error {
	original, err := f.GetCellValue(sheet, addr)
	if err != nil {
		return err
	}

	styleID, err := f.GetCellStyle(sheet, addr)
	if err != nil {
		return err
	}

	highlighted, ok := fills[styleID]
	if !ok {
		highlighted, err = highlightStyle(f, styleID)
		if err != nil {
			return err
		}
		fills[styleID] = highlighted
	}

	if err := f.SetCellStyle(sheet, addr, addr, highlighted); err != nil {
		return err
	}

	label := addr
	if strings.TrimSpace(original) != "" {
		label = addr + ":" + original
	}

	return f.SetCellStr(sheet, addr, label)
}

func highlightStyle(f *excelize.File, styleID int) (int, error) {
	style := &excelize.Style{}
	if styleID != 0 {
		existing, err := f.GetStyle(styleID)
		if err != nil {
			return 0, err
		}
		style = existing
	}

	style.Fill = excelize.Fill{
		Type:    "pattern",
		Pattern: 1,
		Color:   []string{HighlightColor},
	}

	return f.NewStyle(style)
}
