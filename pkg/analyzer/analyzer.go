// Package analyzer turns a raw SQL statement with ${name} placeholders
// into a precise static description: ordered input parameters with types
// and an ordered output shape with per-column nullability.
//
// The pipeline runs the preprocessor, the parser, the prepared-statement
// probe, and the inference engine, then assembles their results. The
// server is authoritative for types, parameter counts, and column names;
// the AST plus inference rules are authoritative for nullability and row
// cardinality.
package analyzer

import (
	"context"
	"log/slog"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
	"github.com/lenguyenthanh/sqltyper/pkg/infer"
	"github.com/lenguyenthanh/sqltyper/pkg/parser"
	"github.com/lenguyenthanh/sqltyper/pkg/preprocess"
	"github.com/lenguyenthanh/sqltyper/pkg/probe"
)

// Analyze describes a single statement. The catalog snapshot is read-only
// and shareable; the probe connection is used for exactly one
// prepare/describe/deallocate round-trip.
func Analyze(ctx context.Context, sql string, cat *catalog.Catalog, db probe.Conn, logger *slog.Logger) (*StatementDescription, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pre, err := preprocess.Rewrite(sql)
	if err != nil {
		if perr, ok := err.(*preprocess.Error); ok {
			return nil, locatedError(KindPreprocessor, perr.Offset, perr.Message)
		}
		return nil, wrapError(KindPreprocessor, err)
	}

	stmt, err := parser.Parse(pre.SQL)
	if err != nil {
		if perr, ok := err.(*parser.ParseError); ok {
			return nil, locatedError(KindParse, perr.Pos.Offset, perr.Message)
		}
		return nil, wrapError(KindParse, err)
	}

	if err := checkParameterUse(stmt, pre.Params); err != nil {
		return nil, err
	}

	desc, err := probe.Describe(ctx, db, pre.SQL, logger)
	if err != nil {
		return nil, wrapError(KindProbe, err)
	}

	result, err := infer.Statement(stmt, cat)
	if err != nil {
		return nil, wrapError(KindInference, err)
	}

	return assemble(pre, desc, result, cat)
}

// checkParameterUse enforces the required-parameter policy: a parameter
// appearing under an IS [NOT] NULL test only makes sense if it may be
// NULL, which this tool rejects rather than guesses about.
func checkParameterUse(stmt ast.Stmt, params []string) *Error {
	var rejected *Error

	ast.Inspect(stmt, func(e ast.Expr) bool {
		if rejected != nil {
			return false
		}
		if p, ok := e.(*ast.Param); ok && p.Index > len(params) {
			// Only the preprocessor mints indices, so a larger one means a
			// literal $n was mixed into the source.
			rejected = newError(KindUserSchema,
				"positional marker $%d has no ${name} placeholder; use named placeholders only", p.Index)
			return false
		}
		is, ok := e.(*ast.IsExpr)
		if !ok || is.Test != ast.IsNull {
			return true
		}
		if p, ok := unwrapParam(is.Expr); ok {
			name := "?"
			if p.Index >= 1 && p.Index <= len(params) {
				name = params[p.Index-1]
			}
			rejected = newError(KindUserSchema,
				"parameter ${%s} is tested for NULL; parameters are required and never NULL", name)
			return false
		}
		return true
	})

	return rejected
}

// unwrapParam sees through parentheses and casts to a bare parameter.
func unwrapParam(e ast.Expr) (*ast.Param, bool) {
	switch ex := e.(type) {
	case *ast.Param:
		return ex, true
	case *ast.ParenExpr:
		return unwrapParam(ex.Expr)
	case *ast.CastExpr:
		return unwrapParam(ex.Expr)
	default:
		return nil, false
	}
}

// assemble merges the probe's types with the engine's nullability into the
// final description. Counts must line up exactly; a mismatch means an
// internal bug, not a user error.
func assemble(pre *preprocess.Result, desc *probe.Description, result *infer.Result, cat *catalog.Catalog) (*StatementDescription, error) {
	if len(pre.Params) != len(desc.ParamOIDs) {
		return nil, newError(KindInference,
			"preprocessor found %d parameters but the server reports %d", len(pre.Params), len(desc.ParamOIDs))
	}

	out := &StatementDescription{
		SQL:              pre.SQL,
		RowCount:         result.RowCount,
		AffectedRowCount: result.AffectedRowCount,
	}

	for i, name := range pre.Params {
		oid := desc.ParamOIDs[i]
		if oid == 0 {
			return nil, newError(KindUserSchema,
				"the server could not resolve a type for parameter ${%s}", name)
		}
		out.Parameters = append(out.Parameters, Parameter{Name: name, TypeOID: oid})
	}

	if result.AffectedRowCount {
		if len(desc.Columns) != 0 {
			return nil, newError(KindInference,
				"statement classified as returning a count but the server reports %d columns", len(desc.Columns))
		}
	} else {
		if len(desc.Columns) != len(result.Columns) {
			return nil, newError(KindInference,
				"inference produced %d columns but the server reports %d", len(result.Columns), len(desc.Columns))
		}

		seen := make(map[string]bool, len(desc.Columns))
		for i, f := range desc.Columns {
			if seen[f.Name] {
				return nil, newError(KindUserSchema, "duplicate output column name %q", f.Name)
			}
			seen[f.Name] = true
			out.Columns = append(out.Columns, Column{
				Name:     f.Name, // server names are authoritative
				TypeOID:  f.TypeOID,
				Nullable: result.Columns[i].Nullable,
			})
		}
	}

	collectEnums(out, cat)
	return out, nil
}

// collectEnums lists the enum types referenced by the description, in
// first-reference order.
func collectEnums(out *StatementDescription, cat *catalog.Catalog) {
	seen := make(map[uint32]bool)
	add := func(oid uint32) {
		if seen[oid] {
			return
		}
		if e, ok := cat.Enum(oid); ok {
			seen[oid] = true
			out.Enums = append(out.Enums, EnumType{OID: e.OID, Name: e.Name, Labels: e.Labels})
		}
	}
	for _, p := range out.Parameters {
		add(p.TypeOID)
	}
	for _, c := range out.Columns {
		add(c.TypeOID)
	}
}
