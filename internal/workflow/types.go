package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/formscout/internal/workbook"
)

// Field is a cell identified as requiring user input. CellAddress is its
// identity.
type Field struct {
	CellAddress string `json:"cell_address"`
	Description string `json:"description"`
}

// FieldSet is the current hypothesis of a workbook's input fields together
// with the rationale that produced it.
type FieldSet struct {
	Fields []Field `json:"fields"`
	Reason string  `json:"reason"`
}

// Addresses returns the field addresses in order.
func (fs FieldSet) Addresses() []string {
	out := make([]string, len(fs.Fields))
	for i, f := range fs.Fields {
		out[i] = f.CellAddress
	}
	return out
}

// Clone returns a copy that shares no slice storage with fs.
func (fs FieldSet) Clone() FieldSet {
	return FieldSet{Fields: slices.Clone(fs.Fields), Reason: fs.Reason}
}

// Sanitize returns a copy of fs holding only well-formed addresses,
// normalized to upper case. A repeated address keeps its first position and
// takes the description of its last occurrence. The dropped malformed
// addresses and the duplicated addresses are returned for logging.
func (fs FieldSet) Sanitize() (clean FieldSet, malformed, duplicates []string) {
	clean.Reason = fs.Reason
	index := make(map[string]int, len(fs.Fields))

	for _, f := range fs.Fields {
		addr := strings.ToUpper(strings.TrimSpace(f.CellAddress))
		if !workbook.ValidAddress(addr) {
			malformed = append(malformed, f.CellAddress)
			continue
		}

		f.CellAddress = addr
		if i, ok := index[addr]; ok {
			clean.Fields[i] = f
			duplicates = append(duplicates, addr)
			continue
		}

		index[addr] = len(clean.Fields)
		clean.Fields = append(clean.Fields, f)
	}

	return clean, malformed, duplicates
}

// Apply derives the next FieldSet from a correction. Deletes are applied
// first, then additions are upserted: an address that survives is replaced
// in place, a new address is appended. The reason is taken from the
// correction. fs is not modified.
func (fs FieldSet) Apply(c CorrectionInstruction) FieldSet {
	deleted := make(map[string]bool, len(c.DeleteFields))
	for _, f := range c.DeleteFields {
		deleted[normalize(f.CellAddress)] = true
	}

	next := FieldSet{Reason: c.Reason}
	index := make(map[string]int, len(fs.Fields)+len(c.AddFields))

	for _, f := range fs.Fields {
		addr := normalize(f.CellAddress)
		if deleted[addr] {
			continue
		}
		if _, ok := index[addr]; ok {
			continue
		}
		index[addr] = len(next.Fields)
		next.Fields = append(next.Fields, f)
	}

	for _, f := range c.AddFields {
		addr := normalize(f.CellAddress)
		f.CellAddress = addr
		if i, ok := index[addr]; ok {
			next.Fields[i] = f
			continue
		}
		index[addr] = len(next.Fields)
		next.Fields = append(next.Fields, f)
	}

	return next
}

// Flatten returns the address to description map in field order.
func (fs FieldSet) Flatten() FlatMap {
	return FlatMap(slices.Clone(fs.Fields))
}

func normalize(addr string) string {
	return strings.ToUpper(strings.TrimSpace(addr))
}

// FlatMap is a flattened form definition. It marshals as a JSON object
// keyed by cell address, preserving field order.
type FlatMap []Field

// MarshalJSON writes {"B2": "...", "C5": "..."} in order.
func (m FlatMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(f.CellAddress)
		if err != nil {
			return nil, err
		}
		val, err := marshalString(f.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lines renders one "address: description" line per field, for diffs.
func (m FlatMap) Lines() string {
	var sb strings.Builder
	for _, f := range m {
		fmt.Fprintf(&sb, "%s: %s\n", f.CellAddress, f.Description)
	}
	return sb.String()
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// CorrectionInstruction is the reasoning model's patch to a FieldSet.
type CorrectionInstruction struct {
	AddFields    []Field `json:"add_fields"`
	DeleteFields []Field `json:"delete_fields"`
	Reason       string  `json:"reason"`
}

// UnmarshalJSON accepts delete_fields entries either as Field objects or as
// bare address strings.
func (c *CorrectionInstruction) UnmarshalJSON(data []byte) error {
	var raw struct {
		AddFields    []Field           `json:"add_fields"`
		DeleteFields []json.RawMessage `json:"delete_fields"`
		Reason       string            `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.AddFields = raw.AddFields
	c.Reason = raw.Reason
	c.DeleteFields = make([]Field, 0, len(raw.DeleteFields))

	for _, item := range raw.DeleteFields {
		var addr string
		if err := json.Unmarshal(item, &addr); err == nil {
			c.DeleteFields = append(c.DeleteFields, Field{CellAddress: addr})
			continue
		}

		var f Field
		if err := json.Unmarshal(item, &f); err != nil {
			return fmt.Errorf("delete_fields entry: %w", err)
		}
		c.DeleteFields = append(c.DeleteFields, f)
	}

	return nil
}

// VerdictStatus is the reasoning model's judgment of a highlighted proposal.
type VerdictStatus string

// Verdict statuses.
const (
	VerdictOK            VerdictStatus = "OK"
	VerdictNeedsRevision VerdictStatus = "NEEDS_REVISION"
)

// Verdict is one review of one highlighted capture.
type Verdict struct {
	Status      VerdictStatus `json:"status"`
	Issues      []string      `json:"issues,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

func (v Verdict) validate() error {
	switch v.Status {
	case VerdictOK, VerdictNeedsRevision:
		return nil
	}
	return fmt.Errorf("%w: unknown verdict status %q", ErrSchema, v.Status)
}

// String renders the verdict as readable text.
func (v Verdict) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status: %s\n", v.Status)

	if len(v.Issues) > 0 {
		sb.WriteString("Issues:\n")
		for _, s := range v.Issues {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	if len(v.Suggestions) > 0 {
		sb.WriteString("Suggestions:\n")
		for _, s := range v.Suggestions {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
	}

	return sb.String()
}

// Aggregate returns NEEDS_REVISION when any verdict asks for revision.
func Aggregate(verdicts []Verdict) VerdictStatus {
	if slices.ContainsFunc(verdicts, func(v Verdict) bool {
		return v.Status == VerdictNeedsRevision
	}) {
		return VerdictNeedsRevision
	}
	return VerdictOK
}

// RunStatus is the tri-state outcome surfaced to callers.
type RunStatus string

// Run statuses.
const (
	StatusInProgress RunStatus = "IN_PROGRESS"
	StatusComplete   RunStatus = "COMPLETE"
	StatusError      RunStatus = "ERROR"
)

// DefaultMaxIterations bounds the loop when the caller sets no limit.
const DefaultMaxIterations = 5

// Input starts a detection run.
type Input struct {
	ExcelFile     string
	OutputDir     string
	MaxIterations int
}

// State is the workflow snapshot handed from step to step. Steps receive a
// copy and return an updated copy.
type State struct {
	ExcelFile        string    `json:"excel_file"`
	OutputDir        string    `json:"output_dir"`
	MaxIterations    int       `json:"max_iterations"`
	CurrentIteration int       `json:"current_iteration"`
	Step             Step      `json:"step"`
	Status           RunStatus `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`

	ExtractedTextPath       string        `json:"extracted_text_path,omitempty"`
	OriginalCapturePath     string        `json:"original_capture_path,omitempty"`
	FieldSet                FieldSet      `json:"field_set"`
	HighlightedWorkbookPath string        `json:"highlighted_workbook_path,omitempty"`
	HighlightedCapturePaths []string      `json:"highlighted_capture_paths,omitempty"`
	Verdict                 *Verdict      `json:"verdict,omitempty"`
	AggregateStatus         VerdictStatus `json:"aggregate_status,omitempty"`
	FinalDefinitionPath     string        `json:"final_definition_path,omitempty"`
	FinalStructuredPath     string        `json:"final_structured_path,omitempty"`
}

func (s State) clone() State {
	s.FieldSet = s.FieldSet.Clone()
	s.HighlightedCapturePaths = slices.Clone(s.HighlightedCapturePaths)
	if s.Verdict != nil {
		v := *s.Verdict
		v.Issues = slices.Clone(v.Issues)
		v.Suggestions = slices.Clone(v.Suggestions)
		s.Verdict = &v
	}
	return s
}

// Result is the outcome of Execute.
type Result struct {
	Status       RunStatus `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Iterations   int       `json:"iterations"`
	FieldSet     FieldSet  `json:"field_set"`
	Definition   FlatMap   `json:"definition"`
	DataDir      string    `json:"data_dir"`
	State        State     `json:"state"`
	CompletedAt  time.Time `json:"completed_at"`
}
