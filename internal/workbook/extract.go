package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Extract opens the workbook at path and returns its Describe output.
func Extract(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return Describe(f)
}

// Describe renders every sheet as markdown: a heading, the merged ranges,
// and a Cell | Value | Format table of non-empty cells in row-major order.
// The output depends only on workbook content.
func Describe(f *excelize.File) (string, error) {
	var sb strings.Builder

	for i, sheet := range f.GetSheetList() {
		if i > 0 {
			sb.WriteString("\n")
		}
		if err := describeSheet(&sb, f, sheet); err != nil {
			return "", fmt.Errorf("sheet %q: %w", sheet, err)
		}
	}

	return sb.String(), nil
}

func describeSheet(sb *strings.Builder, f *excelize.File, sheet string) error {
	fmt.Fprintf(sb, "## Sheet: %s\n\n", sheet)

	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return fmt.Errorf("merged cells: %w", err)
	}

	sb.WriteString("### Merged cells\n\n")
	if len(merged) == 0 {
		sb.WriteString("- (none)\n")
	}
	for _, mc := range merged {
		fmt.Fprintf(sb, "- %s:%s\n", mc.GetStartAxis(), mc.GetEndAxis())
	}

	// Formatted values, so dates and currency read as a person sees them.
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("rows: %w", err)
	}

	sb.WriteString("\n### Cells\n\n")
	sb.WriteString("| Cell | Value | Format |\n")
	sb.WriteString("|------|-------|--------|\n")

	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}

			format, err := cellFormat(f, sheet, cell)
			if err != nil {
				return fmt.Errorf("format %s: %w", cell, err)
			}

			fmt.Fprintf(sb, "| %s | %s | %s |\n", cell, escapeCell(value), format)
		}
	}

	return nil
}

// cellFormat summarizes the styling a reader uses to tell labels from inputs.
func cellFormat(f *excelize.File, sheet, cell string) (string, error) {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return "", err
	}
	if id == 0 {
		return "-", nil
	}

	style, err := f.GetStyle(id)
	if err != nil {
		return "", err
	}

	var parts []string
	if style.Font != nil && style.Font.Bold {
		parts = append(parts, "bold")
	}
	if color := solidFill(style.Fill); color != "" {
		parts = append(parts, "fill:"+color)
	}

	if len(parts) == 0 {
		return "-", nil
	}
	return strings.Join(parts, ", "), nil
}

// solidFill returns the normalized RGB of a solid pattern fill, or "" for
// no fill, non-solid patterns, and the transparent default.
func solidFill(fill excelize.Fill) string {
	if fill.Type != "pattern" || fill.Pattern != 1 || len(fill.Color) == 0 {
		return ""
	}

	color := strings.ToUpper(strings.TrimPrefix(fill.Color[0], "#"))
	if color == "" || color == "00000000" {
		return ""
	}
	return color
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeCell(v string) string {
	return cellEscaper.Replace(v)
}
