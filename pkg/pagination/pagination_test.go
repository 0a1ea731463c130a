package pagination_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/formscout/pkg/pagination"
)

func TestConfigFinalize(t *testing.T) {
	cfg := pagination.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.DefaultPageSize != 20 || cfg.MaxPageSize != 100 {
		t.Errorf("defaults = %+v", cfg)
	}

	t.Setenv("SCOUT_PAGE_SIZE", "50")
	t.Setenv("SCOUT_MAX_PAGE", "200")

	cfg = pagination.Config{}
	env := &pagination.ConfigEnv{DefaultPageSize: "SCOUT_PAGE_SIZE", MaxPageSize: "SCOUT_MAX_PAGE"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.DefaultPageSize != 50 || cfg.MaxPageSize != 200 {
		t.Errorf("env overrides = %+v", cfg)
	}

	bad := pagination.Config{DefaultPageSize: 200, MaxPageSize: 100}
	err := bad.Finalize(nil)
	if err == nil || !strings.Contains(err.Error(), "cannot exceed") {
		t.Errorf("err = %v, want cannot exceed", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
	base.Merge(&pagination.Config{MaxPageSize: 500})

	if base.DefaultPageSize != 20 || base.MaxPageSize != 500 {
		t.Errorf("merged = %+v", base)
	}
}

func TestPageRequestFromQuery(t *testing.T) {
	cfg := pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

	values := url.Values{
		"page":      {"3"},
		"page_size": {"500"},
		"search":    {"expense"},
		"sort":      {"filename,-uploaded_at"},
	}

	req := pagination.PageRequestFromQuery(values, cfg)

	if req.Page != 3 {
		t.Errorf("Page = %d, want 3", req.Page)
	}
	if req.PageSize != 100 {
		t.Errorf("PageSize = %d, want clamp to 100", req.PageSize)
	}
	if req.Search == nil || *req.Search != "expense" {
		t.Errorf("Search = %v", req.Search)
	}
	if len(req.Sort) != 2 || req.Sort[0].Field != "filename" || !req.Sort[1].Descending {
		t.Errorf("Sort = %+v", req.Sort)
	}
	if req.Offset() != 200 {
		t.Errorf("Offset = %d, want 200", req.Offset())
	}

	empty := pagination.PageRequestFromQuery(url.Values{}, cfg)
	if empty.Page != 1 || empty.PageSize != 20 || empty.Search != nil || empty.Sort != nil {
		t.Errorf("empty = %+v", empty)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		data      []string
		total     int
		pageSize  int
		wantPages int
	}{
		{"no rows", nil, 0, 20, 1},
		{"exact fit", []string{"a"}, 40, 20, 2},
		{"remainder", []string{"a"}, 41, 20, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pagination.NewPageResult(tt.data, tt.total, 1, tt.pageSize)
			if res.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", res.TotalPages, tt.wantPages)
			}
			if res.Data == nil {
				t.Error("Data is nil, want empty slice")
			}
		})
	}
}
