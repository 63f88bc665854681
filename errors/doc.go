// Package errors provides structured error types for the strata-go library.
//
// Errors are categorized by Op (the operation that failed) and Kind (error
// category). The Error type carries the table and column involved plus a
// cause chain.
//
// Use the convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.OpOpen, "table", "users")
//	err := errors.State(errors.OpLifecycle, "retain on closed handle")
//
// All errors implement the standard error interface and support
// errors.Is/As. Two *Error values match under errors.Is when their Op and
// Kind are equal, so callers can classify failures without string matching:
//
//	if errors.Is(err, &errors.Error{Op: errors.OpOpen, Kind: errors.KindNotFound}) {
//	    // no layout for this table
//	}
package errors
