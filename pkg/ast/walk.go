package ast

// Inspect traverses every expression reachable from a statement in
// pre-order, calling f on each. If f returns false, the expression's
// children are skipped. Subquery statements (CTEs, IN, EXISTS) are
// descended into.
func Inspect(stmt Stmt, f func(Expr) bool) {
	switch s := stmt.(type) {
	case *SelectStmt:
		inspectWiths(s.With, f)
		inspectBody(s.Body, f)
		for _, op := range s.Ops {
			inspectBody(op.Body, f)
		}
		for _, item := range s.OrderBy {
			inspectExpr(item.Expr, f)
		}
		if s.Limit != nil {
			inspectExpr(s.Limit.Count, f)
			inspectExpr(s.Limit.Offset, f)
		}

	case *InsertStmt:
		inspectWiths(s.With, f)
		for _, row := range s.Rows {
			for _, e := range row {
				inspectExpr(e, f)
			}
		}
		inspectItems(s.Returning, f)

	case *UpdateStmt:
		inspectWiths(s.With, f)
		for _, a := range s.Assignments {
			inspectExpr(a.Expr, f)
		}
		if s.From != nil {
			inspectJoins(s.From, f)
		}
		inspectExpr(s.Where, f)
		inspectItems(s.Returning, f)

	case *DeleteStmt:
		inspectWiths(s.With, f)
		inspectExpr(s.Where, f)
		inspectItems(s.Returning, f)
	}
}

func inspectWiths(withs []*WithQuery, f func(Expr) bool) {
	for _, w := range withs {
		Inspect(w.Stmt, f)
	}
}

func inspectBody(body *SelectBody, f func(Expr) bool) {
	if body == nil {
		return
	}
	inspectItems(body.Columns, f)
	if body.From != nil {
		inspectJoins(body.From, f)
	}
	inspectExpr(body.Where, f)
	for _, e := range body.GroupBy {
		inspectExpr(e, f)
	}
}

func inspectJoins(from *FromClause, f func(Expr) bool) {
	for _, j := range from.Joins {
		inspectExpr(j.Condition, f)
	}
}

func inspectItems(items []SelectItem, f func(Expr) bool) {
	for _, item := range items {
		inspectExpr(item.Expr, f)
	}
}

func inspectExpr(e Expr, f func(Expr) bool) {
	if e == nil {
		return
	}
	if !f(e) {
		return
	}

	switch ex := e.(type) {
	case *FuncCall:
		for _, arg := range ex.Args {
			inspectExpr(arg, f)
		}
	case *UnaryExpr:
		inspectExpr(ex.Expr, f)
	case *BinaryExpr:
		inspectExpr(ex.Left, f)
		inspectExpr(ex.Right, f)
	case *IsExpr:
		inspectExpr(ex.Expr, f)
	case *CastExpr:
		inspectExpr(ex.Expr, f)
	case *SubscriptExpr:
		inspectExpr(ex.Expr, f)
		inspectExpr(ex.Index, f)
	case *InExpr:
		inspectExpr(ex.Expr, f)
		for _, v := range ex.Values {
			inspectExpr(v, f)
		}
		if ex.Query != nil {
			Inspect(ex.Query, f)
		}
	case *ExistsExpr:
		if ex.Select != nil {
			Inspect(ex.Select, f)
		}
	case *ParenExpr:
		inspectExpr(ex.Expr, f)
	}
}
