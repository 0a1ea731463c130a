package routes

import "net/http"

// Group nests routes under a shared prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups, including nested children, to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		g.register(mux, "")
	}
}

func (g Group) register(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.pattern(prefix), r.Handler)
	}
	for _, child := range g.Children {
		child.register(mux, prefix)
	}
}
