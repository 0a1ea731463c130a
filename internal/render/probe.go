package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// Candidate proposes an output filename for the sheet at 1-based index in a
// workbook of total sheets, or "" when it does not apply.
type Candidate func(base, sheet string, index, total int) string

// Candidates lists the filename patterns renderers are known to emit, in
// the order they are tried. A single-sheet workbook converted with
// "soffice --convert-to png" comes out as {base}.png, so that is tried first.
var Candidates = []Candidate{
	BareSingle,
	Numbered,
	SheetNamed,
	Dashed,
	SheetIndexed,
	ZeroIndexedSingle,
}

// Numbered matches {base}_{index}.png.
func Numbered(base, _ string, index, _ int) string {
	return fmt.Sprintf("%s_%d.png", base, index)
}

// SheetNamed matches {base}_{sheet}.png.
func SheetNamed(base, sheet string, _, _ int) string {
	return fmt.Sprintf("%s_%s.png", base, sheet)
}

// Dashed matches {base}-{index}.png, the page naming of the pdf renderer.
func Dashed(base, _ string, index, _ int) string {
	return fmt.Sprintf("%s-%d.png", base, index)
}

// SheetIndexed matches {base}_sheet{index}.png.
func SheetIndexed(base, _ string, index, _ int) string {
	return fmt.Sprintf("%s_sheet%d.png", base, index)
}

// BareSingle matches {base}.png for single-sheet workbooks.
func BareSingle(base, _ string, _, total int) string {
	if total != 1 {
		return ""
	}
	return base + ".png"
}

// ZeroIndexedSingle matches {base}_sheet0.png for single-sheet workbooks.
func ZeroIndexedSingle(base, _ string, _, total int) string {
	if total != 1 {
		return ""
	}
	return base + "_sheet0.png"
}

// Capture is one rendered sheet image.
type Capture struct {
	Sheet string `json:"sheet"`
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// Failure records a sheet with no rendered image and the names tried.
type Failure struct {
	Sheet string   `json:"sheet"`
	Index int      `json:"index"`
	Tried []string `json:"tried"`
}

// Result holds the per-sheet outcome of a render in sheet order.
type Result struct {
	Captures []Capture `json:"captures"`
	Failures []Failure `json:"failures,omitempty"`
}

// Paths returns the capture paths in sheet order.
func (r Result) Paths() []string {
	paths := make([]string, len(r.Captures))
	for i, c := range r.Captures {
		paths[i] = c.Path
	}
	return paths
}

// Probe resolves each sheet's image in dir by trying candidates in order.
// A sheet with no match is recorded as a failure; the rest still resolve.
func Probe(dir, base string, sheets []string, candidates []Candidate) Result {
	var result Result
	total := len(sheets)

	for i, sheet := range sheets {
		index := i + 1
		tried := make([]string, 0, len(candidates))
		seen := make(map[string]bool, len(candidates))
		found := ""

		for _, candidate := range candidates {
			name := candidate(base, sheet, index, total)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			tried = append(tried, name)

			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				found = path
				break
			}
		}

		if found == "" {
			result.Failures = append(result.Failures, Failure{Sheet: sheet, Index: index, Tried: tried})
			continue
		}

		result.Captures = append(result.Captures, Capture{Sheet: sheet, Index: index, Path: found})
	}

	return result
}
