package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/formscout/pkg/module"
)

func TestNewInvalidPrefixPanics(t *testing.T) {
	for _, prefix := range []string{"", "api", "/api/v1"} {
		t.Run(prefix, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) did not panic", prefix)
				}
			}()
			module.New(prefix, http.NewServeMux())
		})
	}
}

func TestModuleStripsPrefix(t *testing.T) {
	mux := http.NewServeMux()

	var seen string
	mux.HandleFunc("GET /forms/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path + "|" + r.PathValue("id")
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	})

	m := module.New("/api", mux)
	if m.Prefix() != "/api" {
		t.Errorf("Prefix = %q", m.Prefix())
	}

	tests := []struct {
		path string
		want string
	}{
		{"/api/forms/42", "/forms/42|42"},
		{"/api", "/"},
	}

	for _, tt := range tests {
		seen = ""
		m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))
		if seen != tt.want {
			t.Errorf("%s: inner saw %q, want %q", tt.path, seen, tt.want)
		}
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/api/forms", nil))

	if rec.Header().Get("X-Module") != "api" {
		t.Error("module middleware not applied")
	}
}

func TestRouter(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /forms", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("forms"))
	})

	r := module.NewRouter()
	r.Mount(module.New("/api", api))
	r.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/api/forms", http.StatusOK, "forms"},
		{"/api/forms/", http.StatusOK, "forms"},
		{"/healthz", http.StatusOK, "ok"},
		{"/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}
