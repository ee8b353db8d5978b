// Package catalog loads and holds an immutable snapshot of the PostgreSQL
// schema: enum types, named types, and tables with their columns, not-null
// flags, defaults, and primary keys.
package catalog

import "github.com/lenguyenthanh/sqltyper/pkg/pgsql"

// Enum describes an enum type with its ordered labels.
type Enum struct {
	OID    uint32
	Name   string
	Labels []string
}

// Type describes a named type by oid.
type Type struct {
	OID  uint32
	Name string
}

// Column describes a table column.
type Column struct {
	Name       string
	TypeOID    uint32
	NotNull    bool
	HasDefault bool
}

// Table describes a table with its ordered columns and primary key.
type Table struct {
	Schema     string
	Name       string
	Columns    []Column
	PrimaryKey map[string]bool // column names in the primary key
}

// Column returns the named column, matched case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	normalized := pgsql.NormalizeName(name)
	for _, c := range t.Columns {
		if pgsql.NormalizeName(c.Name) == normalized {
			return c, true
		}
	}
	return Column{}, false
}

// Catalog is the immutable schema snapshot. It is never mutated after
// construction; concurrent readers need no locking.
type Catalog struct {
	enums  map[uint32]*Enum
	types  map[uint32]*Type
	tables map[string]*Table // "schema.name", lowercase
}

// New builds a snapshot from pre-loaded data. Used by Load and by tests.
func New(tables []*Table, types []Type, enums []Enum) *Catalog {
	c := &Catalog{
		enums:  make(map[uint32]*Enum, len(enums)),
		types:  make(map[uint32]*Type, len(types)),
		tables: make(map[string]*Table, len(tables)),
	}
	for i := range enums {
		c.enums[enums[i].OID] = &enums[i]
	}
	for i := range types {
		c.types[types[i].OID] = &types[i]
	}
	for _, t := range tables {
		c.tables[tableKey(t.Schema, t.Name)] = t
	}
	return c
}

// Table looks up a table. An empty schema defaults to "public".
func (c *Catalog) Table(schema, name string) (*Table, bool) {
	if schema == "" {
		schema = "public"
	}
	t, ok := c.tables[tableKey(schema, name)]
	return t, ok
}

// TypeName returns the name of the type with the given oid.
func (c *Catalog) TypeName(oid uint32) (string, bool) {
	if t, ok := c.types[oid]; ok {
		return t.Name, true
	}
	return "", false
}

// Enum returns the enum type with the given oid, if any.
func (c *Catalog) Enum(oid uint32) (*Enum, bool) {
	e, ok := c.enums[oid]
	return e, ok
}

func tableKey(schema, name string) string {
	return pgsql.NormalizeName(schema) + "." + pgsql.NormalizeName(name)
}
