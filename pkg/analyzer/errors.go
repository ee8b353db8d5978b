package analyzer

import "fmt"

// Kind identifies the failure class of an analysis error.
type Kind string

// Error kinds.
const (
	KindPreprocessor Kind = "preprocessor" // malformed ${...} placeholder
	KindParse        Kind = "parse"        // statement not in the supported grammar
	KindProbe        Kind = "probe"        // PostgreSQL refused to prepare the statement
	KindCatalog      Kind = "catalog"      // catalog load failed or is incomplete
	KindInference    Kind = "inference"    // internal invariant violated; always a bug
	KindUserSchema   Kind = "user-schema"  // query violates a usability rule
)

// Error is the structured analysis error: a kind, a message, and — when
// the failure is located in the SQL source — a byte offset. Preprocessor
// offsets are into the raw source; parse offsets are into the rewritten
// SQL, which differs from the raw source after the first placeholder.
type Error struct {
	Kind      Kind
	Message   string
	Offset    int
	HasOffset bool
	err       error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.HasOffset {
		return fmt.Sprintf("%s error at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// newError builds an unlocated error.
func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// locatedError builds an error pointing at a byte offset in the source.
func locatedError(kind Kind, offset int, message string) *Error {
	return &Error{Kind: kind, Message: message, Offset: offset, HasOffset: true}
}

// wrapError attaches a cause to an unlocated error.
func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), err: err}
}

// CatalogError wraps a failure to load or complete the catalog snapshot.
// The loader itself lives in pkg/catalog; callers tag its failures here so
// the whole pipeline reports one error shape.
func CatalogError(err error) *Error {
	return wrapError(KindCatalog, err)
}
