package analyzer

import "github.com/lenguyenthanh/sqltyper/pkg/infer"

// RowCount re-exports the inference engine's row multiplicity.
type RowCount = infer.RowCount

// RowCount values.
const (
	RowCountZero      = infer.RowCountZero
	RowCountOne       = infer.RowCountOne
	RowCountZeroOrOne = infer.RowCountZeroOrOne
	RowCountMany      = infer.RowCountMany
)

// Parameter is one input parameter of the statement, in placeholder
// order.
type Parameter struct {
	Name     string `json:"name"`
	TypeOID  uint32 `json:"type_oid"`
	Nullable bool   `json:"nullable"`
}

// Column is one output column of the statement, in result order.
type Column struct {
	Name     string `json:"name"`
	TypeOID  uint32 `json:"type_oid"`
	Nullable bool   `json:"nullable"`
}

// EnumType describes an enum type referenced by a parameter or column, so
// emitters can map its labels.
type EnumType struct {
	OID    uint32   `json:"oid"`
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

// StatementDescription is the precise static description of a statement:
// its rewritten SQL, row multiplicity, ordered parameters, and ordered
// output columns.
type StatementDescription struct {
	SQL              string      `json:"sql"`
	RowCount         RowCount    `json:"row_count"`
	AffectedRowCount bool        `json:"affected_row_count"`
	Parameters       []Parameter `json:"parameters"`
	Columns          []Column    `json:"columns"`
	Enums            []EnumType  `json:"enums,omitempty"`
}
