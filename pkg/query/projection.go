// Package query builds parameterized PostgreSQL SELECT statements from a
// projection of logical field names onto qualified columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified column references
// (alias.column) for one base table and any joined tables.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	joins      []string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column on the base table to field.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	return p.ProjectFrom(p.alias, column, field)
}

// ProjectFrom maps column on the table aliased by alias to field.
func (p *ProjectionMap) ProjectFrom(alias, column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", alias, column)
	p.columns[field] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Join adds a JOIN of schema.table aliased as alias using the on condition.
// kind is the join keyword, e.g. "JOIN" or "LEFT JOIN".
func (p *ProjectionMap) Join(kind, schema, table, alias, on string) *ProjectionMap {
	p.joins = append(p.joins, fmt.Sprintf("%s %s.%s %s ON %s", kind, schema, table, alias, on))
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the qualified base table reference with alias.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// From returns the base table reference followed by any joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}
	return p.Table() + " " + strings.Join(p.joins, " ")
}

// Column returns the qualified column for field, or field itself if unmapped.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// Has reports whether field is projected.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.columns[field]
	return ok
}

// Columns returns all projected columns as a comma-separated list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}
