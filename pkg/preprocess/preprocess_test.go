package preprocess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenguyenthanh/sqltyper/pkg/preprocess"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name       string
		sql        string
		wantSQL    string
		wantParams []string
	}{
		{
			name:       "no placeholders",
			sql:        "SELECT 1",
			wantSQL:    "SELECT 1",
			wantParams: nil,
		},
		{
			name:       "single placeholder",
			sql:        "SELECT x FROM a WHERE id = ${id}",
			wantSQL:    "SELECT x FROM a WHERE id = $1",
			wantParams: []string{"id"},
		},
		{
			name:       "placeholders numbered in first-appearance order",
			sql:        "SELECT ${b}, ${a}, ${c}",
			wantSQL:    "SELECT $1, $2, $3",
			wantParams: []string{"b", "a", "c"},
		},
		{
			name:       "repeated name reuses its index",
			sql:        "SELECT ${a}, ${b}, ${a}",
			wantSQL:    "SELECT $1, $2, $1",
			wantParams: []string{"a", "b"},
		},
		{
			name:       "placeholder inside string literal untouched",
			sql:        "SELECT '${not_a_param}', ${real}",
			wantSQL:    "SELECT '${not_a_param}', $1",
			wantParams: []string{"real"},
		},
		{
			name:       "placeholder inside quoted identifier untouched",
			sql:        `SELECT "${weird}" FROM t WHERE x = ${x}`,
			wantSQL:    `SELECT "${weird}" FROM t WHERE x = $1`,
			wantParams: []string{"x"},
		},
		{
			name:       "escaped quote does not end the literal",
			sql:        `SELECT 'it\'s ${nope}' , ${yes}`,
			wantSQL:    `SELECT 'it\'s ${nope}' , $1`,
			wantParams: []string{"yes"},
		},
		{
			name:       "literal dollar markers pass through",
			sql:        "SELECT $1 + ${n}",
			wantSQL:    "SELECT $1 + $1",
			wantParams: []string{"n"},
		},
		{
			name:       "underscore and digits in names",
			sql:        "SELECT ${user_id2}",
			wantSQL:    "SELECT $1",
			wantParams: []string{"user_id2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := preprocess.Rewrite(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, res.SQL)
			assert.Equal(t, tt.wantParams, res.Params)
		})
	}
}

func TestRewriteErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "unterminated placeholder", sql: "SELECT ${abc"},
		{name: "empty placeholder", sql: "SELECT ${}"},
		{name: "name starting with digit", sql: "SELECT ${1abc}"},
		{name: "name with invalid character", sql: "SELECT ${a-b}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := preprocess.Rewrite(tt.sql)
			require.Error(t, err)

			var perr *preprocess.Error
			require.ErrorAs(t, err, &perr)
			assert.GreaterOrEqual(t, perr.Offset, 0)
		})
	}
}

// Offsets of characters outside placeholders are preserved until the first
// placeholder, and the rewritten text stays aligned for equal-width
// replacements.
func TestRewritePreservesPrefix(t *testing.T) {
	sql := "SELECT x FROM a WHERE id = ${id}"
	res, err := preprocess.Rewrite(sql)
	require.NoError(t, err)
	assert.Equal(t, sql[:27], res.SQL[:27])
}
