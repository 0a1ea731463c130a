package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Artifact names under {output_dir}/format_data.
const (
	DataDirName = "format_data"

	capturesDir         = "captures"
	extractedTextFile   = "extracted_excel_text.md"
	originalCaptureBase = "original_excel"
	finalDefinitionFile = "final_form_definition.json"
	finalStructuredFile = "final_structured_form_definition.json"
	StateFile           = "workflow_state.json"

	structuredFieldsFile     = "structured_fields_v%d.json"
	estimatedFieldsFile      = "estimated_fields_v%d.json"
	highlightedWorkbookFile  = "highlighted_excel_v%d.xlsx"
	highlightedCaptureBase   = "highlighted_excel_v%d"
	validationTextFile       = "validation_result_v%d.txt"
	structuredValidationFile = "structured_validation_v%d.json"
	fieldChangesFile         = "field_changes_v%d.txt"
)

// DataDir returns the artifact directory for outputDir.
func DataDir(outputDir string) string {
	return filepath.Join(outputDir, DataDirName)
}

type artifacts string

func artifactsFor(s State) artifacts {
	return artifacts(DataDir(s.OutputDir))
}

func (a artifacts) path(name string) string {
	return filepath.Join(string(a), name)
}

func (a artifacts) versioned(pattern string, n int) string {
	return a.path(fmt.Sprintf(pattern, n))
}

func (a artifacts) captures() string {
	return a.path(capturesDir)
}

// reset wipes the artifact directory and recreates it empty.
func (a artifacts) reset() error {
	if err := os.RemoveAll(string(a)); err != nil {
		return fmt.Errorf("clear %s: %w", a, err)
	}
	if err := os.MkdirAll(a.captures(), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", a, err)
	}
	return nil
}

// writeFields persists the structured set and its flattened definition for
// iteration n.
func (a artifacts) writeFields(fs FieldSet, n int) error {
	if err := writeJSON(a.versioned(structuredFieldsFile, n), fs); err != nil {
		return err
	}
	return writeJSON(a.versioned(estimatedFieldsFile, n), fs.Flatten())
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	return writeText(path, buf.String())
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// lineDiff renders a unified-style line diff: "+ " added, "- " removed,
// "  " unchanged.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}

		for line := range strings.Lines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(strings.TrimSuffix(line, "\n"))
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
