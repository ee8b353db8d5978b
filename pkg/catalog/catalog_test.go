package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
)

func snapshot() *catalog.Catalog {
	users := &catalog.Table{
		Schema: "public",
		Name:   "users",
		Columns: []catalog.Column{
			{Name: "id", TypeOID: 23, NotNull: true, HasDefault: true},
			{Name: "email", TypeOID: 25, NotNull: true},
			{Name: "nickname", TypeOID: 25},
		},
		PrimaryKey: map[string]bool{"id": true},
	}
	audit := &catalog.Table{
		Schema:     "billing",
		Name:       "events",
		Columns:    []catalog.Column{{Name: "id", TypeOID: 20, NotNull: true}},
		PrimaryKey: map[string]bool{"id": true},
	}

	return catalog.New(
		[]*catalog.Table{users, audit},
		[]catalog.Type{{OID: 23, Name: "int4"}, {OID: 25, Name: "text"}, {OID: 99001, Name: "mood"}},
		[]catalog.Enum{{OID: 99001, Name: "mood", Labels: []string{"sad", "ok", "happy"}}},
	)
}

func TestTableLookup(t *testing.T) {
	cat := snapshot()

	tbl, ok := cat.Table("public", "users")
	require.True(t, ok)
	assert.Len(t, tbl.Columns, 3)
	assert.True(t, tbl.PrimaryKey["id"])

	// Empty schema defaults to public.
	tbl, ok = cat.Table("", "users")
	require.True(t, ok)
	assert.Equal(t, "users", tbl.Name)

	// Lookups are case-insensitive.
	_, ok = cat.Table("PUBLIC", "Users")
	assert.True(t, ok)

	_, ok = cat.Table("billing", "events")
	assert.True(t, ok)

	_, ok = cat.Table("", "events")
	assert.False(t, ok, "schema-qualified table must not resolve bare")

	_, ok = cat.Table("", "missing")
	assert.False(t, ok)
}

func TestColumnLookup(t *testing.T) {
	cat := snapshot()
	tbl, ok := cat.Table("", "users")
	require.True(t, ok)

	col, ok := tbl.Column("email")
	require.True(t, ok)
	assert.True(t, col.NotNull)

	col, ok = tbl.Column("NICKNAME")
	require.True(t, ok)
	assert.False(t, col.NotNull)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
}

func TestTypeAndEnumLookup(t *testing.T) {
	cat := snapshot()

	name, ok := cat.TypeName(23)
	require.True(t, ok)
	assert.Equal(t, "int4", name)

	_, ok = cat.TypeName(424242)
	assert.False(t, ok)

	enum, ok := cat.Enum(99001)
	require.True(t, ok)
	assert.Equal(t, "mood", enum.Name)
	assert.Equal(t, []string{"sad", "ok", "happy"}, enum.Labels)

	_, ok = cat.Enum(23)
	assert.False(t, ok)
}
