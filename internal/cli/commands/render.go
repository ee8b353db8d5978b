package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lenguyenthanh/sqltyper/pkg/analyzer"
	"github.com/lenguyenthanh/sqltyper/pkg/catalog"
)

// renderDescription writes one statement description in the configured
// output format.
func renderDescription(w io.Writer, file string, desc *analyzer.StatementDescription, cat *catalog.Catalog, format string) error {
	if format == "json" {
		return renderJSON(w, file, desc)
	}
	return renderText(w, file, desc, cat)
}

// renderJSON emits one JSON document per file.
func renderJSON(w io.Writer, file string, desc *analyzer.StatementDescription) error {
	doc := struct {
		File string `json:"file"`
		*analyzer.StatementDescription
	}{File: file, StatementDescription: desc}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// renderText emits a human-readable summary with parameter and column
// tables.
func renderText(w io.Writer, file string, desc *analyzer.StatementDescription, cat *catalog.Catalog) error {
	fmt.Fprintf(w, "%s\n", file)

	switch {
	case desc.AffectedRowCount:
		fmt.Fprintf(w, "  returns: affected row count\n")
	default:
		fmt.Fprintf(w, "  returns: %s\n", desc.RowCount)
	}

	if len(desc.Parameters) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "parameter", "type"})
		for i, p := range desc.Parameters {
			t.AppendRow(table.Row{i + 1, p.Name, typeName(cat, p.TypeOID)})
		}
		t.Render()
	}

	if len(desc.Columns) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"column", "type", "nullable"})
		for _, c := range desc.Columns {
			t.AppendRow(table.Row{c.Name, typeName(cat, c.TypeOID), c.Nullable})
		}
		t.Render()
	}

	if len(desc.Enums) > 0 {
		for _, e := range desc.Enums {
			fmt.Fprintf(w, "  enum %s: %s\n", e.Name, strings.Join(e.Labels, " | "))
		}
	}

	fmt.Fprintln(w)
	return nil
}

// typeName resolves an oid to its catalog name, falling back to the raw
// oid.
func typeName(cat *catalog.Catalog, oid uint32) string {
	if name, ok := cat.TypeName(oid); ok {
		return name
	}
	return "oid:" + strconv.FormatUint(uint64(oid), 10)
}
