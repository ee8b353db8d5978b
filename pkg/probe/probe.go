// Package probe prepares a rewritten statement against a live PostgreSQL
// connection and collects the server's description of it: parameter type
// oids and the result-row shape.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conn is the minimal capability set the probe needs. *pgx.Conn satisfies
// it directly.
type Conn interface {
	Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error)
	Deallocate(ctx context.Context, name string) error
}

// Field is one column of the server's row description.
type Field struct {
	Name    string
	TypeOID uint32
}

// Description is the server's view of a prepared statement.
type Description struct {
	ParamOIDs []uint32
	Columns   []Field
}

// Error wraps a server rejection with the rewritten SQL that provoked it.
// The server message is surfaced verbatim.
type Error struct {
	SQL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("postgres rejected statement: %v\nstatement: %s", e.Err, e.SQL)
}

func (e *Error) Unwrap() error { return e.Err }

// Describe prepares sql under a unique statement name, captures the
// server's description, and deallocates the statement on every exit path.
func Describe(ctx context.Context, conn Conn, sql string, logger *slog.Logger) (*Description, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	name := "sqltyper_probe_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	sd, err := conn.Prepare(ctx, name, sql)
	if err != nil {
		// Prepare failed server-side; the statement may still have been
		// reserved, so release the name regardless.
		if derr := conn.Deallocate(ctx, name); derr != nil {
			logger.Debug("deallocate after failed prepare", slog.String("error", derr.Error()))
		}
		return nil, &Error{SQL: sql, Err: err}
	}

	if derr := conn.Deallocate(ctx, name); derr != nil {
		logger.Debug("deallocate prepared statement", slog.String("error", derr.Error()))
	}

	desc := &Description{ParamOIDs: append([]uint32(nil), sd.ParamOIDs...)}
	for _, f := range sd.Fields {
		desc.Columns = append(desc.Columns, Field{Name: f.Name, TypeOID: f.DataTypeOID})
	}

	logger.Debug("statement described",
		slog.Int("params", len(desc.ParamOIDs)),
		slog.Int("columns", len(desc.Columns)))

	return desc, nil
}
