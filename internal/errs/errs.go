// Package errs defines the typed error kinds the engine surfaces:
// ConfigError and store-level ConnectionError abort the run; CompileError,
// QueryError, and AnalyzerWarning are isolated to the leaf that produced
// them.
package errs

import (
	"errors"
	"fmt"
)

// Kind tags an error with its propagation policy: abort the run, or
// isolate the failure to the leaf that produced it.
type Kind string

const (
	KindConfig     Kind = "config"
	KindCompile    Kind = "compile"
	KindConnection Kind = "connection"
	KindQuery      Kind = "query"
	KindAnalyzer   Kind = "analyzer_warning"
)

// Error wraps an underlying cause with a Kind so callers (the CLI, the
// Runner) can branch on propagation policy without string matching.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Config reports an invalid configuration document: bad YAML, an
// unresolved template variable, an unknown type/condition, a malformed
// between threshold, or an anomaly check missing both check_id and
// filter. Aborts the run before any query.
func Config(format string, args ...any) *Error {
	return newf(KindConfig, nil, format, args...)
}

// ConfigWrap is Config with an underlying cause attached.
func ConfigWrap(cause error, format string, args ...any) *Error {
	return newf(KindConfig, cause, format, args...)
}

// Compile reports a Composer invariant violated for a specific leaf (e.g.
// sum with no measure). Isolated to that leaf; other leaves proceed.
func Compile(format string, args ...any) *Error {
	return newf(KindCompile, nil, format, args...)
}

// CompileWrap is Compile with an underlying cause attached.
func CompileWrap(cause error, format string, args ...any) *Error {
	return newf(KindCompile, cause, format, args...)
}

// Connection reports a pool-init or authentication failure for a source or
// the store. Source-level connection errors are isolated to the leaves
// that needed that source; a store-level connection error aborts the run
// (nothing can be persisted).
func Connection(cause error, format string, args ...any) *Error {
	return newf(KindConnection, cause, format, args...)
}

// Query reports that the source returned an error or an unexpected result
// shape. Recorded as a failed leaf; propagated in the run summary.
func Query(cause error, format string, args ...any) *Error {
	return newf(KindQuery, cause, format, args...)
}

// AnalyzerWarning reports insufficient history for anomaly analysis. Not
// an error: the caller still records success with z=0.
func AnalyzerWarning(format string, args ...any) *Error {
	return newf(KindAnalyzer, nil, format, args...)
}

// Is reports whether err (or anything it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// Aborts reports whether an error of this kind should abort the whole run
// rather than being isolated to the leaf that produced it.
func (k Kind) Aborts() bool {
	return k == KindConfig
}
