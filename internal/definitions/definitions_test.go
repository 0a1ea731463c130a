package definitions_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/formscout/internal/definitions"
	"github.com/JaimeStill/formscout/internal/forms"
	"github.com/JaimeStill/formscout/internal/workflow"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", definitions.ErrNotFound, http.StatusNotFound},
		{"form not found", forms.ErrNotFound, http.StatusNotFound},
		{"duplicate", definitions.ErrDuplicate, http.StatusConflict},
		{"not complete", definitions.ErrInvalidStatus, http.StatusConflict},
		{"detection running", fmt.Errorf("detect: %w", definitions.ErrInProgress), http.StatusConflict},
		{"invalid", definitions.ErrInvalid, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := definitions.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpdateCommandNormalize(t *testing.T) {
	t.Run("uppercases and collapses duplicates", func(t *testing.T) {
		cmd := definitions.UpdateCommand{
			Fields: []workflow.Field{
				{CellAddress: "b2", Description: "Employee name"},
				{CellAddress: "C4", Description: "Amount"},
				{CellAddress: "B2", Description: "Employee full name"},
			},
			Reason:    "reviewed by hand",
			UpdatedBy: "auditor@example.com",
		}

		fs, err := cmd.Normalize()
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}

		want := []workflow.Field{
			{CellAddress: "B2", Description: "Employee full name"},
			{CellAddress: "C4", Description: "Amount"},
		}
		if len(fs.Fields) != len(want) {
			t.Fatalf("fields = %+v, want %+v", fs.Fields, want)
		}
		for i := range want {
			if fs.Fields[i] != want[i] {
				t.Errorf("fields[%d] = %+v, want %+v", i, fs.Fields[i], want[i])
			}
		}
		if fs.Reason != "reviewed by hand" {
			t.Errorf("reason = %q", fs.Reason)
		}
	})

	t.Run("empty field list is kept", func(t *testing.T) {
		fs, err := definitions.UpdateCommand{UpdatedBy: "auditor"}.Normalize()
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if fs.Fields == nil || len(fs.Fields) != 0 {
			t.Errorf("fields = %#v, want empty non-nil slice", fs.Fields)
		}
	})

	tests := []struct {
		name string
		cmd  definitions.UpdateCommand
	}{
		{"missing updated_by", definitions.UpdateCommand{
			Fields: []workflow.Field{{CellAddress: "A1", Description: "x"}},
		}},
		{"malformed address", definitions.UpdateCommand{
			Fields:    []workflow.Field{{CellAddress: "1A", Description: "x"}},
			UpdatedBy: "auditor",
		}},
		{"range address", definitions.UpdateCommand{
			Fields:    []workflow.Field{{CellAddress: "A1:B2", Description: "x"}},
			UpdatedBy: "auditor",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cmd.Normalize(); !errors.Is(err, definitions.ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDefinitionFlatten(t *testing.T) {
	d := definitions.Definition{
		Fields: []workflow.Field{
			{CellAddress: "D7", Description: "Total"},
			{CellAddress: "B2", Description: "Name"},
		},
	}

	data, err := json.Marshal(d.Flatten())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if got, want := string(data), `{"D7":"Total","B2":"Name"}`; got != want {
		t.Errorf("flattened = %s, want %s", got, want)
	}
}

func TestFiltersFromQuery(t *testing.T) {
	formID := uuid.New()

	f := definitions.FiltersFromQuery(url.Values{
		"status":       {"complete"},
		"form_id":      {formID.String()},
		"model_name":   {"llava"},
		"validated_by": {"auditor"},
	})

	if f.Status == nil || *f.Status != workflow.StatusComplete {
		t.Errorf("Status = %v, want COMPLETE", f.Status)
	}
	if f.FormID == nil || *f.FormID != formID {
		t.Errorf("FormID = %v, want %s", f.FormID, formID)
	}
	if f.ModelName == nil || *f.ModelName != "llava" {
		t.Errorf("ModelName = %v", f.ModelName)
	}
	if f.ValidatedBy == nil || *f.ValidatedBy != "auditor" {
		t.Errorf("ValidatedBy = %v", f.ValidatedBy)
	}

	t.Run("invalid values ignored", func(t *testing.T) {
		f := definitions.FiltersFromQuery(url.Values{
			"status":  {"IN_PROGRESS"},
			"form_id": {"nope"},
		})
		if f.Status != nil || f.FormID != nil {
			t.Errorf("filters = %+v, want status and form_id unset", f)
		}
	})
}
