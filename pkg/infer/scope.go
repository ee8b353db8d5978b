package infer

import (
	"fmt"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/pgsql"
)

// sourceColumn is one column visible in a query body, with the nullability
// it has at that point (base nullability adjusted for outer joins).
// Identity matters: non-null sets are keyed by pointer.
type sourceColumn struct {
	table    string // effective table name, normalized
	name     string // column name, normalized
	nullable bool
	pk       bool // member of its table's primary key
}

// scopeTable groups the columns contributed by one FROM element.
type scopeTable struct {
	name    string // effective (alias or table) name, normalized
	columns []*sourceColumn
}

// scope is the name-resolution environment of a query body: every table
// the body can reference, in join-definition order.
type scope struct {
	tables []scopeTable
}

// addTable appends a table's columns to the scope.
func (s *scope) addTable(t scopeTable) {
	s.tables = append(s.tables, t)
}

// lookup resolves a column reference. For unqualified references matching
// columns in more than one table, ambiguous is true and the column is nil;
// the caller falls back to conservative nullability.
func (s *scope) lookup(table, column string) (col *sourceColumn, ambiguous bool) {
	table = pgsql.NormalizeName(table)
	column = pgsql.NormalizeName(column)

	if table != "" {
		for _, t := range s.tables {
			if t.name != table {
				continue
			}
			for _, c := range t.columns {
				if c.name == column {
					return c, false
				}
			}
		}
		return nil, false
	}

	var found *sourceColumn
	for _, t := range s.tables {
		for _, c := range t.columns {
			if c.name == column {
				if found != nil {
					return nil, true
				}
				found = c
			}
		}
	}
	return found, false
}

// expandAll returns every column in scope, in join-definition order.
func (s *scope) expandAll() []*sourceColumn {
	var cols []*sourceColumn
	for _, t := range s.tables {
		cols = append(cols, t.columns...)
	}
	return cols
}

// expandTable returns the columns of the named table in catalog order.
func (s *scope) expandTable(name string) ([]*sourceColumn, bool) {
	name = pgsql.NormalizeName(name)
	for _, t := range s.tables {
		if t.name == name {
			return t.columns, true
		}
	}
	return nil, false
}

// markNullable makes every column of the given tables nullable, as outer
// joins do to the non-preserved side.
func markNullable(tables ...scopeTable) {
	for _, t := range tables {
		for _, c := range t.columns {
			c.nullable = true
		}
	}
}

// resolveTable turns a table reference into a scope table: a CTE output if
// the name matches one, otherwise a catalog table.
func (inf *inferrer) resolveTable(ref *ast.TableRef) (scopeTable, error) {
	effective := pgsql.NormalizeName(ref.EffectiveName())

	if ref.Schema == "" {
		if cols, ok := inf.ctes[pgsql.NormalizeName(ref.Name)]; ok {
			t := scopeTable{name: effective}
			for _, c := range cols {
				t.columns = append(t.columns, &sourceColumn{
					table:    effective,
					name:     pgsql.NormalizeName(c.Name),
					nullable: c.Nullable,
				})
			}
			return t, nil
		}
	}

	table, ok := inf.cat.Table(ref.Schema, ref.Name)
	if !ok {
		return scopeTable{}, &Error{Message: fmt.Sprintf("table %q not found in catalog", ref.Name)}
	}

	t := scopeTable{name: effective}
	for _, c := range table.Columns {
		t.columns = append(t.columns, &sourceColumn{
			table:    effective,
			name:     pgsql.NormalizeName(c.Name),
			nullable: !c.NotNull,
			pk:       table.PrimaryKey[c.Name],
		})
	}
	return t, nil
}

// scopeForFrom builds the scope of a FROM clause and applies join-induced
// nullability: LEFT makes the right side nullable, RIGHT the left side,
// FULL both. Joins associate left to right.
func (inf *inferrer) scopeForFrom(from *ast.FromClause) (*scope, error) {
	sc := &scope{}

	base, err := inf.resolveTable(from.Table)
	if err != nil {
		return nil, err
	}
	sc.addTable(base)

	for _, join := range from.Joins {
		right, err := inf.resolveTable(join.Table)
		if err != nil {
			return nil, err
		}

		switch join.Type {
		case ast.JoinLeft:
			markNullable(right)
		case ast.JoinRight:
			markNullable(sc.tables...)
		case ast.JoinFull:
			markNullable(sc.tables...)
			markNullable(right)
		case ast.JoinInner:
			// preserves both sides
		}

		sc.addTable(right)
	}

	return sc, nil
}
