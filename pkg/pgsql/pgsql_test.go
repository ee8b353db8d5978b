package pgsql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lenguyenthanh/sqltyper/pkg/pgsql"
)

func TestOperatorNullSafe(t *testing.T) {
	nullSafe := []string{"+", "-", "*", "/", "%", "^", "<", ">", "=", "<=", ">=", "<>", "||", "::", "->", "@>"}
	for _, op := range nullSafe {
		assert.True(t, pgsql.OperatorNullSafe(op), "operator %s", op)
	}

	notNullSafe := []string{"AND", "OR", "NOT", "IS", "totally-made-up"}
	for _, op := range notNullSafe {
		assert.False(t, pgsql.OperatorNullSafe(op), "operator %s", op)
	}
}

func TestClassifyFunction(t *testing.T) {
	tests := []struct {
		name string
		want pgsql.FunctionClass
	}{
		{"concat", pgsql.FuncNeverNull},
		{"coalesce", pgsql.FuncNeverNull},
		{"count", pgsql.FuncNeverNull},
		{"now", pgsql.FuncNeverNull},
		{"lower", pgsql.FuncNullSafe},
		{"length", pgsql.FuncNullSafe},
		{"bool", pgsql.FuncNullSafe},
		{"abs", pgsql.FuncNullSafe},
		{"UPPER", pgsql.FuncNullSafe}, // case-insensitive
		{"some_custom_thing", pgsql.FuncUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pgsql.ClassifyFunction(tt.name))
		})
	}
}

func TestIsReservedWord(t *testing.T) {
	assert.True(t, pgsql.IsReservedWord("user"))
	assert.True(t, pgsql.IsReservedWord("SELECT"))
	assert.True(t, pgsql.IsReservedWord("Order"))
	assert.False(t, pgsql.IsReservedWord("age"))
	assert.False(t, pgsql.IsReservedWord("name"))
}

func TestFunctionClassString(t *testing.T) {
	assert.Equal(t, "null_safe", pgsql.FuncNullSafe.String())
	assert.Equal(t, "never_null", pgsql.FuncNeverNull.String())
	assert.Equal(t, "unknown", pgsql.FuncUnknown.String())
}
