package infer

import (
	"fmt"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
	"github.com/lenguyenthanh/sqltyper/pkg/pgsql"
)

// INSERT / UPDATE / DELETE inference. Statements without RETURNING report
// an affected-row count and no columns; with RETURNING, the target table's
// columns enter scope with their post-statement nullability.

// affectedCount is the result shape for DML without RETURNING.
func affectedCount() *Result {
	return &Result{RowCount: RowCountMany, AffectedRowCount: true}
}

// insertStmt infers an INSERT statement.
func (inf *inferrer) insertStmt(s *ast.InsertStmt) (*Result, error) {
	restore, err := inf.registerCTEs(s.With)
	if err != nil {
		return nil, err
	}
	defer restore()

	table, ok := inf.cat.Table(s.Table.Schema, s.Table.Name)
	if !ok {
		return nil, &Error{Message: fmt.Sprintf("table %q not found in catalog", s.Table.Name)}
	}

	if len(s.Returning) == 0 {
		return affectedCount(), nil
	}

	sc := inf.insertReturningScope(table, s)
	cols, err := inf.projectItems(s.Returning, sc, make(nnSet))
	if err != nil {
		return nil, err
	}

	rc := RowCountOne
	if len(s.Rows) > 1 {
		rc = RowCountMany
	}
	return &Result{Columns: cols, RowCount: rc}, nil
}

// insertReturningScope builds the scope RETURNING sees: each target column
// with the nullability it has after the insert.
//
// An explicitly assigned column takes its value expression's nullability,
// ORed across multi-row VALUES; a DEFAULT placeholder or an omitted column
// falls back to the column's declared nullability (the default expression
// itself is approximated by the not-null flag).
func (inf *inferrer) insertReturningScope(table *catalog.Table, s *ast.InsertStmt) *scope {
	// Map each assigned column name to its position in the VALUES rows.
	assigned := make(map[string]int)
	if !s.DefaultValues {
		names := s.Columns
		if len(names) == 0 {
			// No explicit column list: rows bind to the leading table
			// columns in order.
			for i, c := range table.Columns {
				if len(s.Rows) > 0 && i >= len(s.Rows[0]) {
					break
				}
				assigned[pgsql.NormalizeName(c.Name)] = i
			}
		} else {
			for i, n := range names {
				assigned[pgsql.NormalizeName(n)] = i
			}
		}
	}

	emptyScope := &scope{}
	noNN := make(nnSet)

	effective := scopeTable{name: pgsql.NormalizeName(s.Table.EffectiveName())}
	for _, c := range table.Columns {
		name := pgsql.NormalizeName(c.Name)
		nullable := !c.NotNull

		if idx, ok := assigned[name]; ok {
			// OR across all VALUES rows assigning this column.
			nullable = false
			for _, row := range s.Rows {
				if idx >= len(row) {
					continue
				}
				if _, isDefault := row[idx].(*ast.DefaultExpr); isDefault {
					nullable = nullable || !c.NotNull
				} else {
					nullable = nullable || inf.exprNullable(row[idx], emptyScope, noNN)
				}
			}
		}

		effective.columns = append(effective.columns, &sourceColumn{
			table:    effective.name,
			name:     name,
			nullable: nullable,
			pk:       table.PrimaryKey[c.Name],
		})
	}

	return &scope{tables: []scopeTable{effective}}
}

// updateStmt infers an UPDATE statement.
func (inf *inferrer) updateStmt(s *ast.UpdateStmt) (*Result, error) {
	restore, err := inf.registerCTEs(s.With)
	if err != nil {
		return nil, err
	}
	defer restore()

	target, err := inf.resolveTable(s.Table)
	if err != nil {
		return nil, err
	}

	sc := &scope{}
	sc.addTable(target)
	if s.From != nil {
		fromScope, err := inf.scopeForFrom(s.From)
		if err != nil {
			return nil, err
		}
		sc.tables = append(sc.tables, fromScope.tables...)
	}

	if len(s.Returning) == 0 {
		return affectedCount(), nil
	}

	nn := make(nnSet)
	if s.Where != nil {
		nn.union(inf.nonNullSet(s.Where, sc))
	}

	// Assignment expressions see the pre-update row, narrowed by WHERE.
	assignNullable := make(map[string]bool, len(s.Assignments))
	for _, a := range s.Assignments {
		name := pgsql.NormalizeName(a.Column)
		if _, isDefault := a.Expr.(*ast.DefaultExpr); isDefault {
			col, _ := sc.lookup(target.name, name)
			assignNullable[name] = col == nil || col.nullable
		} else {
			assignNullable[name] = inf.exprNullable(a.Expr, sc, nn)
		}
	}

	// RETURNING sees the post-update row: assigned columns take their
	// assignment's nullability, the rest keep the narrowed base.
	for _, c := range target.columns {
		if n, ok := assignNullable[c.name]; ok {
			c.nullable = n
		} else if nn[c] {
			c.nullable = false
		}
	}
	for _, t := range sc.tables[1:] {
		for _, c := range t.columns {
			if nn[c] {
				c.nullable = false
			}
		}
	}

	cols, err := inf.projectItems(s.Returning, sc, make(nnSet))
	if err != nil {
		return nil, err
	}
	return &Result{Columns: cols, RowCount: RowCountMany}, nil
}

// deleteStmt infers a DELETE statement.
func (inf *inferrer) deleteStmt(s *ast.DeleteStmt) (*Result, error) {
	restore, err := inf.registerCTEs(s.With)
	if err != nil {
		return nil, err
	}
	defer restore()

	target, err := inf.resolveTable(s.Table)
	if err != nil {
		return nil, err
	}
	sc := &scope{tables: []scopeTable{target}}

	if len(s.Returning) == 0 {
		return affectedCount(), nil
	}

	nn := make(nnSet)
	if s.Where != nil {
		nn.union(inf.nonNullSet(s.Where, sc))
	}

	cols, err := inf.projectItems(s.Returning, sc, nn)
	if err != nil {
		return nil, err
	}
	return &Result{Columns: cols, RowCount: RowCountMany}, nil
}
