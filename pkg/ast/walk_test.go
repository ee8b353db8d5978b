package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenguyenthanh/sqltyper/pkg/ast"
	"github.com/lenguyenthanh/sqltyper/pkg/parser"
)

// maxParamIndex walks a statement and returns the highest $n seen.
func maxParamIndex(stmt ast.Stmt) int {
	max := 0
	ast.Inspect(stmt, func(e ast.Expr) bool {
		if p, ok := e.(*ast.Param); ok && p.Index > max {
			max = p.Index
		}
		return true
	})
	return max
}

func TestInspectReachesAllParameters(t *testing.T) {
	tests := []struct {
		sql  string
		want int
	}{
		{"SELECT $1", 1},
		{"SELECT x FROM a WHERE id = $1 AND x IN (SELECT y FROM b WHERE y > $2)", 2},
		{"WITH v AS (SELECT $3 FROM t) SELECT * FROM v WHERE a = $1 OR b = $2", 3},
		{"INSERT INTO a (x, y) VALUES ($1, $2) RETURNING x + $3", 3},
		{"UPDATE a SET x = $1 FROM b WHERE a.id = $2 RETURNING $3", 3},
		{"DELETE FROM a WHERE id = $1 RETURNING x = $2", 2},
		{"SELECT 1 FROM t WHERE EXISTS (SELECT 1 FROM u WHERE u.id = $4)", 4},
		{"SELECT a FROM t ORDER BY $1 LIMIT $2 OFFSET $3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			stmt, err := parser.Parse(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.want, maxParamIndex(stmt))
		})
	}
}

func TestInspectPruning(t *testing.T) {
	stmt, err := parser.Parse("SELECT a + b, c FROM t")
	require.NoError(t, err)

	var visited int
	ast.Inspect(stmt, func(e ast.Expr) bool {
		visited++
		_, isBinary := e.(*ast.BinaryExpr)
		return !isBinary // do not descend into a + b
	})

	// a + b counts once, its operands are pruned, c counts once.
	assert.Equal(t, 2, visited)
}
