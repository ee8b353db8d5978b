package analyzer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenguyenthanh/sqltyper/internal/testutil"
	"github.com/lenguyenthanh/sqltyper/pkg/analyzer"
	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
	"github.com/lenguyenthanh/sqltyper/pkg/probe"
)

// fakeConn plays back a canned statement description.
type fakeConn struct {
	desc       *pgconn.StatementDescription
	prepareErr error
}

func (c *fakeConn) Prepare(_ context.Context, _, _ string) (*pgconn.StatementDescription, error) {
	if c.prepareErr != nil {
		return nil, c.prepareErr
	}
	return c.desc, nil
}

func (c *fakeConn) Deallocate(context.Context, string) error { return nil }

func conn(paramOIDs []uint32, fields ...pgconn.FieldDescription) probe.Conn {
	return &fakeConn{desc: &pgconn.StatementDescription{ParamOIDs: paramOIDs, Fields: fields}}
}

func field(name string, oid uint32) pgconn.FieldDescription {
	return pgconn.FieldDescription{Name: name, DataTypeOID: oid}
}

func testCatalog() *catalog.Catalog {
	person := &catalog.Table{
		Schema: "public",
		Name:   "person",
		Columns: []catalog.Column{
			{Name: "age", TypeOID: pgtype.Int4OID},
			{Name: "shoe_size", TypeOID: pgtype.Int4OID},
			{Name: "height", TypeOID: pgtype.Int4OID},
			{Name: "weight", TypeOID: pgtype.Int4OID},
			{Name: "name", TypeOID: pgtype.TextOID},
		},
		PrimaryKey: map[string]bool{},
	}
	tableA := &catalog.Table{
		Schema: "public",
		Name:   "a",
		Columns: []catalog.Column{
			{Name: "id", TypeOID: pgtype.Int4OID, NotNull: true, HasDefault: true},
			{Name: "x", TypeOID: pgtype.Int4OID, NotNull: true},
		},
		PrimaryKey: map[string]bool{"id": true},
	}
	tableB := &catalog.Table{
		Schema: "public",
		Name:   "b",
		Columns: []catalog.Column{
			{Name: "id", TypeOID: pgtype.Int4OID, NotNull: true, HasDefault: true},
			{Name: "a_id", TypeOID: pgtype.Int4OID},
			{Name: "y", TypeOID: pgtype.Int4OID, NotNull: true},
		},
		PrimaryKey: map[string]bool{"id": true},
	}

	return catalog.New(
		[]*catalog.Table{person, tableA, tableB},
		[]catalog.Type{
			{OID: pgtype.Int4OID, Name: "int4"},
			{OID: pgtype.TextOID, Name: "text"},
		},
		nil,
	)
}

func TestAnalyzeWherePropagation(t *testing.T) {
	sql := `SELECT age + 5 AS age_plus_5, shoe_size, height, weight,
	               concat(name, 'foo') AS name_foo, name
	        FROM person
	        WHERE age + 5 < 60 AND shoe_size = 45
	          AND bool(height) IS NOT NULL
	          AND weight IS NOT NULL
	          AND concat(name, 'foo') IS NOT NULL`

	db := conn(nil,
		field("age_plus_5", pgtype.Int4OID),
		field("shoe_size", pgtype.Int4OID),
		field("height", pgtype.Int4OID),
		field("weight", pgtype.Int4OID),
		field("name_foo", pgtype.TextOID),
		field("name", pgtype.TextOID),
	)

	desc, err := analyzer.Analyze(context.Background(), sql, testCatalog(), db, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, analyzer.RowCountMany, desc.RowCount)
	assert.False(t, desc.AffectedRowCount)
	assert.Empty(t, desc.Parameters)

	wantNullable := []bool{false, false, false, false, false, true}
	require.Len(t, desc.Columns, 6)
	for i, c := range desc.Columns {
		assert.Equal(t, wantNullable[i], c.Nullable, "column %s", c.Name)
	}
	assert.Equal(t, "name_foo", desc.Columns[4].Name)
}

func TestAnalyzeLeftJoin(t *testing.T) {
	db := conn(nil, field("x", pgtype.Int4OID), field("y", pgtype.Int4OID))

	desc, err := analyzer.Analyze(context.Background(),
		"SELECT a.x, b.y FROM a LEFT JOIN b ON b.a_id = a.id",
		testCatalog(), db, nil)
	require.NoError(t, err)

	require.Len(t, desc.Columns, 2)
	assert.False(t, desc.Columns[0].Nullable)
	assert.True(t, desc.Columns[1].Nullable)
}

func TestAnalyzePrimaryKeyLookup(t *testing.T) {
	db := conn([]uint32{pgtype.Int4OID}, field("x", pgtype.Int4OID))

	desc, err := analyzer.Analyze(context.Background(),
		"SELECT x FROM a WHERE id = ${id} LIMIT 1",
		testCatalog(), db, nil)
	require.NoError(t, err)

	assert.Equal(t, analyzer.RowCountZeroOrOne, desc.RowCount)
	require.Len(t, desc.Parameters, 1)
	assert.Equal(t, analyzer.Parameter{Name: "id", TypeOID: pgtype.Int4OID}, desc.Parameters[0])
	require.Len(t, desc.Columns, 1)
	assert.Equal(t, analyzer.Column{Name: "x", TypeOID: pgtype.Int4OID}, desc.Columns[0])
}

func TestAnalyzeInsertReturning(t *testing.T) {
	db := conn([]uint32{pgtype.Int4OID}, field("id", pgtype.Int4OID), field("x", pgtype.Int4OID))

	desc, err := analyzer.Analyze(context.Background(),
		"INSERT INTO a (x) VALUES (${v}) RETURNING id, x",
		testCatalog(), db, nil)
	require.NoError(t, err)

	assert.Equal(t, analyzer.RowCountOne, desc.RowCount)
	require.Len(t, desc.Parameters, 1)
	assert.Equal(t, "v", desc.Parameters[0].Name)
	require.Len(t, desc.Columns, 2)
	assert.False(t, desc.Columns[0].Nullable)
	assert.False(t, desc.Columns[1].Nullable)
}

func TestAnalyzeUpdateWithoutReturning(t *testing.T) {
	db := conn([]uint32{pgtype.Int4OID, pgtype.Int4OID})

	desc, err := analyzer.Analyze(context.Background(),
		"UPDATE a SET x = ${v} WHERE id = ${i}",
		testCatalog(), db, nil)
	require.NoError(t, err)

	assert.True(t, desc.AffectedRowCount)
	assert.Empty(t, desc.Columns)
	require.Len(t, desc.Parameters, 2)
	assert.Equal(t, "v", desc.Parameters[0].Name)
	assert.Equal(t, "i", desc.Parameters[1].Name)
	for _, p := range desc.Parameters {
		assert.False(t, p.Nullable)
	}
}

func TestAnalyzeUnionNullability(t *testing.T) {
	db := conn(nil, field("x", pgtype.Int4OID))

	desc, err := analyzer.Analyze(context.Background(),
		"SELECT x FROM a UNION ALL SELECT NULL FROM b",
		testCatalog(), db, nil)
	require.NoError(t, err)

	require.Len(t, desc.Columns, 1)
	assert.True(t, desc.Columns[0].Nullable)
}

func TestAnalyzeRepeatedPlaceholder(t *testing.T) {
	db := conn([]uint32{pgtype.Int4OID}, field("x", pgtype.Int4OID))

	desc, err := analyzer.Analyze(context.Background(),
		"SELECT x FROM a WHERE id = ${n} AND x = ${n}",
		testCatalog(), db, nil)
	require.NoError(t, err)

	assert.Equal(t, "SELECT x FROM a WHERE id = $1 AND x = $1", desc.SQL)
	require.Len(t, desc.Parameters, 1)
}

func TestAnalyzeDeterminism(t *testing.T) {
	sql := "SELECT a.x, b.y FROM a LEFT JOIN b ON b.a_id = a.id WHERE a.id = ${id}"
	mk := func() ([]byte, error) {
		db := conn([]uint32{pgtype.Int4OID}, field("x", pgtype.Int4OID), field("y", pgtype.Int4OID))
		desc, err := analyzer.Analyze(context.Background(), sql, testCatalog(), db, nil)
		if err != nil {
			return nil, err
		}
		return json.Marshal(desc)
	}

	first, err := mk()
	require.NoError(t, err)
	second, err := mk()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeErrors(t *testing.T) {
	cat := testCatalog()

	t.Run("preprocessor error", func(t *testing.T) {
		_, err := analyzer.Analyze(context.Background(), "SELECT ${", cat, conn(nil), nil)
		requireKind(t, err, analyzer.KindPreprocessor)
	})

	t.Run("parse error with offset", func(t *testing.T) {
		_, err := analyzer.Analyze(context.Background(), "SELECT FROM WHERE", cat, conn(nil), nil)
		var aerr *analyzer.Error
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, analyzer.KindParse, aerr.Kind)
		assert.True(t, aerr.HasOffset)
	})

	t.Run("probe error carries server message", func(t *testing.T) {
		db := &fakeConn{prepareErr: errors.New("relation does not exist")}
		_, err := analyzer.Analyze(context.Background(), "SELECT x FROM a", cat, db, nil)
		requireKind(t, err, analyzer.KindProbe)
		assert.Contains(t, err.Error(), "relation does not exist")
	})

	t.Run("inference error on unknown table", func(t *testing.T) {
		db := conn(nil, field("x", pgtype.Int4OID))
		_, err := analyzer.Analyze(context.Background(), "SELECT x FROM missing", cat, db, nil)
		requireKind(t, err, analyzer.KindInference)
	})

	t.Run("parameter count mismatch is internal", func(t *testing.T) {
		db := conn([]uint32{pgtype.Int4OID, pgtype.Int4OID}, field("x", pgtype.Int4OID))
		_, err := analyzer.Analyze(context.Background(), "SELECT x FROM a WHERE id = ${id}", cat, db, nil)
		requireKind(t, err, analyzer.KindInference)
	})

	t.Run("duplicate output column names", func(t *testing.T) {
		db := conn(nil, field("x", pgtype.Int4OID), field("x", pgtype.Int4OID))
		_, err := analyzer.Analyze(context.Background(), "SELECT x, x FROM a", cat, db, nil)
		requireKind(t, err, analyzer.KindUserSchema)
	})

	t.Run("parameter tested for NULL", func(t *testing.T) {
		db := conn([]uint32{pgtype.Int4OID}, field("?column?", pgtype.BoolOID))
		_, err := analyzer.Analyze(context.Background(), "SELECT ${p} IS NULL", cat, db, nil)
		requireKind(t, err, analyzer.KindUserSchema)
	})

	t.Run("literal positional marker without placeholder", func(t *testing.T) {
		db := conn([]uint32{pgtype.Int4OID}, field("x", pgtype.Int4OID))
		_, err := analyzer.Analyze(context.Background(), "SELECT x FROM a WHERE id = $3", cat, db, nil)
		requireKind(t, err, analyzer.KindUserSchema)
	})

	t.Run("unresolved parameter type", func(t *testing.T) {
		db := conn([]uint32{0}, field("?column?", pgtype.TextOID))
		_, err := analyzer.Analyze(context.Background(), "SELECT ${p}::text", cat, db, nil)
		requireKind(t, err, analyzer.KindUserSchema)
	})
}

func requireKind(t *testing.T, err error, kind analyzer.Kind) {
	t.Helper()
	require.Error(t, err)
	var aerr *analyzer.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, kind, aerr.Kind)
}
