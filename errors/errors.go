package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Op indicates which operation the error occurred in
type Op string

const (
	OpDecode    Op = "decode"    // decode configuration
	OpLayout    Op = "layout"    // layout parsing and validation
	OpKeys      Op = "keys"      // row-key format and entity ids
	OpOpen      Op = "open"      // table open
	OpUpdate    Op = "update"    // layout update
	OpLifecycle Op = "lifecycle" // retain/release lifecycle
	OpMeta      Op = "meta"      // metadata store operations
)

// Kind categorizes the error
type Kind string

const (
	// KindInvalidConfig marks an invalid combination of decode
	// configuration values, such as a reader schema supplied for a schema
	// mode that does not take one.
	KindInvalidConfig Kind = "invalid_config"

	// KindInvalidInput marks a caller-supplied value that is rejected
	// outright, such as a nil reader schema.
	KindInvalidInput Kind = "invalid_input"

	// KindNotFound marks a missing layout, table, column, or physical
	// resource.
	KindNotFound Kind = "not_found"

	// KindState marks retain/release misuse: use after close, double
	// teardown. Treated as a programmer error, never retried.
	KindState Kind = "state"

	// KindUnsupportedFormat marks a row-key format or layout version this
	// client cannot interpret. Fatal, non-retryable.
	KindUnsupportedFormat Kind = "unsupported_format"

	// KindIO marks a failure that came out of a storage or metadata
	// collaborator. Propagated to the caller unwrapped; this library does
	// not retry.
	KindIO Kind = "io"

	// KindInconsistency marks drift between the metadata store and the
	// physical store, such as a layout whose backing table is gone.
	KindInconsistency Kind = "inconsistency"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Op     Op
	Kind   Kind
	Table  string
	Column string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Op))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Table != "" || e.Column != "" {
		b.WriteString(": ")
		if e.Table != "" && e.Column != "" {
			b.WriteString("table ")
			b.WriteString(e.Table)
			b.WriteString(", column ")
			b.WriteString(e.Column)
		} else if e.Table != "" {
			b.WriteString("table ")
			b.WriteString(e.Table)
		} else {
			b.WriteString("column ")
			b.WriteString(e.Column)
		}
	}

	if e.Detail != "" {
		if e.Table != "" || e.Column != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Op == t.Op && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is a structured error of the given kind,
// whatever operation it occurred in.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Convenience constructors for common error patterns

// InvalidConfig creates an invalid decode configuration error
func InvalidConfig(op Op, detail string, args ...any) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidConfig,
		Detail: format(detail, args...),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(op Op, detail string, args ...any) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInvalidInput,
		Detail: format(detail, args...),
	}
}

// NotFound creates a not-found error
func NotFound(op Op, what, name string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// State creates a lifecycle state error
func State(op Op, detail string, args ...any) *Error {
	return &Error{
		Op:     op,
		Kind:   KindState,
		Detail: format(detail, args...),
	}
}

// UnsupportedFormat creates an unsupported format error
func UnsupportedFormat(op Op, detail string, args ...any) *Error {
	return &Error{
		Op:     op,
		Kind:   KindUnsupportedFormat,
		Detail: format(detail, args...),
	}
}

// IO wraps a collaborator failure
func IO(op Op, cause error, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindIO,
		Detail: detail,
		Cause:  cause,
	}
}

// Inconsistency creates a metadata/storage drift error for a table
func Inconsistency(op Op, table, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   KindInconsistency,
		Table:  table,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(op Op, kind Kind, cause error, detail string) *Error {
	return &Error{
		Op:     op,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// WithTable returns a copy of the error annotated with a table name
func (e *Error) WithTable(table string) *Error {
	dup := *e
	dup.Table = table
	return &dup
}

// WithColumn returns a copy of the error annotated with a column name
func (e *Error) WithColumn(column string) *Error {
	dup := *e
	dup.Column = column
	return &dup
}

func format(detail string, args ...any) string {
	if len(args) > 0 {
		return fmt.Sprintf(detail, args...)
	}
	return detail
}
