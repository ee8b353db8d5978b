// Package infer is the nullability-and-cardinality inference engine. It
// walks a parsed statement with the catalog snapshot and computes, for
// every output column, whether it can be NULL at runtime, plus the row
// multiplicity of the statement.
//
// The inference is sound but conservative: a column may be reported
// nullable when it is in fact always present, never the reverse.
package infer

import (
	"fmt"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
	"github.com/lenguyenthanh/sqltyper/pkg/pgsql"
)

// RowCount classifies how many rows a statement may produce.
type RowCount string

// RowCount values.
const (
	RowCountZero      RowCount = "zero"
	RowCountOne       RowCount = "one"
	RowCountZeroOrOne RowCount = "zeroOrOne"
	RowCountMany      RowCount = "many"
)

// Column is one inferred output column.
type Column struct {
	Name     string
	Nullable bool
}

// Result is the engine's verdict on a statement.
type Result struct {
	Columns          []Column
	RowCount         RowCount
	AffectedRowCount bool // statement returns a count, not rows
}

// Error reports an internal invariant violation during inference.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "inference error: " + e.Message
}

// inferrer carries the catalog and the CTE outputs visible at the current
// point of the walk.
type inferrer struct {
	cat  *catalog.Catalog
	ctes map[string][]Column
}

// Statement runs inference over a parsed statement.
func Statement(stmt ast.Stmt, cat *catalog.Catalog) (*Result, error) {
	inf := &inferrer{
		cat:  cat,
		ctes: make(map[string][]Column),
	}
	return inf.statement(stmt)
}

func (inf *inferrer) statement(stmt ast.Stmt) (*Result, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		cols, err := inf.selectColumns(s)
		if err != nil {
			return nil, err
		}
		return &Result{Columns: cols, RowCount: inf.selectCardinality(s)}, nil

	case *ast.InsertStmt:
		return inf.insertStmt(s)

	case *ast.UpdateStmt:
		return inf.updateStmt(s)

	case *ast.DeleteStmt:
		return inf.deleteStmt(s)

	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported statement type %T", stmt)}
	}
}

// registerCTEs analyzes each CTE independently and injects its output as a
// virtual table. The returned restore function unwinds the registrations,
// so sibling scopes do not leak names into each other.
func (inf *inferrer) registerCTEs(withs []*ast.WithQuery) (func(), error) {
	type saved struct {
		name    string
		cols    []Column
		present bool
	}
	var savedEntries []saved

	restore := func() {
		for i := len(savedEntries) - 1; i >= 0; i-- {
			s := savedEntries[i]
			if s.present {
				inf.ctes[s.name] = s.cols
			} else {
				delete(inf.ctes, s.name)
			}
		}
	}

	for _, w := range withs {
		res, err := inf.statement(w.Stmt)
		if err != nil {
			restore()
			return nil, err
		}

		cols := res.Columns
		if len(w.Columns) > 0 {
			if len(w.Columns) != len(cols) {
				restore()
				return nil, &Error{Message: fmt.Sprintf("CTE %q declares %d columns but produces %d", w.Name, len(w.Columns), len(cols))}
			}
			renamed := make([]Column, len(cols))
			for i, c := range cols {
				renamed[i] = Column{Name: w.Columns[i], Nullable: c.Nullable}
			}
			cols = renamed
		}

		name := pgsql.NormalizeName(w.Name)
		prev, present := inf.ctes[name]
		savedEntries = append(savedEntries, saved{name: name, cols: prev, present: present})
		inf.ctes[name] = cols
	}

	return restore, nil
}

// selectColumns infers the output columns of a SELECT, including set
// operation arms: the combined column i is nullable iff any arm's column i
// is nullable.
func (inf *inferrer) selectColumns(s *ast.SelectStmt) ([]Column, error) {
	restore, err := inf.registerCTEs(s.With)
	if err != nil {
		return nil, err
	}
	defer restore()

	cols, err := inf.bodyColumns(s.Body)
	if err != nil {
		return nil, err
	}

	for _, arm := range s.Ops {
		armCols, err := inf.bodyColumns(arm.Body)
		if err != nil {
			return nil, err
		}
		if len(armCols) != len(cols) {
			return nil, &Error{Message: fmt.Sprintf("set operation arms produce %d and %d columns", len(cols), len(armCols))}
		}
		for i := range cols {
			cols[i].Nullable = cols[i].Nullable || armCols[i].Nullable
		}
	}

	return cols, nil
}

// bodyColumns infers the output columns of a single SELECT body.
func (inf *inferrer) bodyColumns(body *ast.SelectBody) ([]Column, error) {
	sc := &scope{}
	nn := make(nnSet)

	if body.From != nil {
		var err error
		sc, err = inf.scopeForFrom(body.From)
		if err != nil {
			return nil, err
		}

		// INNER-join ON conditions filter like WHERE does. Outer joins
		// cannot narrow the preserved side, so their conditions are
		// skipped.
		for _, join := range body.From.Joins {
			if join.Type == ast.JoinInner && join.Condition != nil {
				nn.union(inf.nonNullSet(join.Condition, sc))
			}
		}
	}

	if body.Where != nil {
		nn.union(inf.nonNullSet(body.Where, sc))
	}

	return inf.projectItems(body.Columns, sc, nn)
}

// projectItems expands a select list against a scope.
func (inf *inferrer) projectItems(items []ast.SelectItem, sc *scope, nn nnSet) ([]Column, error) {
	var cols []Column

	for _, item := range items {
		switch {
		case item.Star:
			for _, c := range sc.expandAll() {
				cols = append(cols, Column{Name: c.name, Nullable: !nn[c] && c.nullable})
			}

		case item.TableStar != "":
			tableCols, ok := sc.expandTable(item.TableStar)
			if !ok {
				return nil, &Error{Message: fmt.Sprintf("table %q not in scope", item.TableStar)}
			}
			for _, c := range tableCols {
				cols = append(cols, Column{Name: c.name, Nullable: !nn[c] && c.nullable})
			}

		default:
			name := item.Alias
			if name == "" {
				name = outputName(item.Expr)
			}
			cols = append(cols, Column{
				Name:     name,
				Nullable: inf.exprNullable(item.Expr, sc, nn),
			})
		}
	}

	return cols, nil
}
