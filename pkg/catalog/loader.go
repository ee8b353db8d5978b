package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Querier is the read-only query capability the loader needs. *pgx.Conn
// satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const enumQuery = `
SELECT t.oid, t.typname, e.enumlabel
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid
ORDER BY t.oid, e.enumsortorder`

const typeQuery = `
SELECT t.oid, t.typname
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON t.typnamespace = n.oid
WHERE t.typtype IN ('b', 'e', 'c', 'd', 'r')`

const columnQuery = `
SELECT n.nspname, c.relname, a.attname, a.atttypid, a.attnotnull, a.atthasdef
FROM pg_catalog.pg_attribute a
JOIN pg_catalog.pg_class c ON a.attrelid = c.oid
JOIN pg_catalog.pg_namespace n ON c.relnamespace = n.oid
WHERE c.relkind IN ('r', 'p', 'v', 'm')
  AND a.attnum > 0
  AND NOT a.attisdropped
  AND n.nspname NOT IN ('pg_catalog', 'information_schema')
ORDER BY n.nspname, c.relname, a.attnum`

const primaryKeyQuery = `
SELECT n.nspname, c.relname, a.attname
FROM pg_catalog.pg_constraint con
JOIN pg_catalog.pg_class c ON con.conrelid = c.oid
JOIN pg_catalog.pg_namespace n ON c.relnamespace = n.oid
JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY (con.conkey)
WHERE con.contype = 'p'
  AND n.nspname NOT IN ('pg_catalog', 'information_schema')`

// Load reads the schema snapshot from a live connection. The catalog is
// queried once per run; the returned snapshot is immutable.
func Load(ctx context.Context, db Querier, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	enums, err := loadEnums(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load enums: %w", err)
	}

	types, err := loadTypes(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load types: %w", err)
	}

	tables, err := loadTables(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}

	logger.Debug("catalog loaded",
		slog.Int("tables", len(tables)),
		slog.Int("types", len(types)),
		slog.Int("enums", len(enums)))

	return New(tables, types, enums), nil
}

func loadEnums(ctx context.Context, db Querier) ([]Enum, error) {
	rows, err := db.Query(ctx, enumQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enums []Enum
	for rows.Next() {
		var oid uint32
		var name, label string
		if err := rows.Scan(&oid, &name, &label); err != nil {
			return nil, err
		}
		// Labels arrive in enumsortorder within each oid group.
		if n := len(enums); n > 0 && enums[n-1].OID == oid {
			enums[n-1].Labels = append(enums[n-1].Labels, label)
		} else {
			enums = append(enums, Enum{OID: oid, Name: name, Labels: []string{label}})
		}
	}
	return enums, rows.Err()
}

func loadTypes(ctx context.Context, db Querier) ([]Type, error) {
	rows, err := db.Query(ctx, typeQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []Type
	for rows.Next() {
		var t Type
		if err := rows.Scan(&t.OID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func loadTables(ctx context.Context, db Querier) ([]*Table, error) {
	rows, err := db.Query(ctx, columnQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byKey := make(map[string]*Table)
	var tables []*Table
	for rows.Next() {
		var schema, table, column string
		var typeOID uint32
		var notNull, hasDefault bool
		if err := rows.Scan(&schema, &table, &column, &typeOID, &notNull, &hasDefault); err != nil {
			return nil, err
		}

		key := tableKey(schema, table)
		t, ok := byKey[key]
		if !ok {
			t = &Table{Schema: schema, Name: table, PrimaryKey: make(map[string]bool)}
			byKey[key] = t
			tables = append(tables, t)
		}
		t.Columns = append(t.Columns, Column{
			Name:       column,
			TypeOID:    typeOID,
			NotNull:    notNull,
			HasDefault: hasDefault,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pkRows, err := db.Query(ctx, primaryKeyQuery)
	if err != nil {
		return nil, err
	}
	defer pkRows.Close()

	for pkRows.Next() {
		var schema, table, column string
		if err := pkRows.Scan(&schema, &table, &column); err != nil {
			return nil, err
		}
		if t, ok := byKey[tableKey(schema, table)]; ok {
			t.PrimaryKey[column] = true
		}
	}
	return tables, pkRows.Err()
}
