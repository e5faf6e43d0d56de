// Package sdkerr defines the SDK's error-kind taxonomy (spec.md §7): a small
// typed Error wrapping an underlying cause with a Kind so callers can branch
// on failure category with errors.As instead of string matching, mirroring
// the teacher's ExhaustedError/HTTPStatusError pattern of small typed errors
// over ad hoc fmt.Errorf.
package sdkerr

import "fmt"

// Kind categorizes an SDK error per spec.md §7.
type Kind string

const (
	// Configuration indicates a missing/invalid env var, malformed credential,
	// or empty required config key. Fatal at init.
	Configuration Kind = "configuration"
	// Connection indicates the transport exhausted retries or the flow engine
	// is unreachable.
	Connection Kind = "connection"
	// NotFound indicates a missing knowledge/secret/task/workflow lookup.
	// Ordinary lookups represent this as a nil/false return, not this error;
	// it exists for callers that need to distinguish the case explicitly.
	NotFound Kind = "not_found"
	// Conflict indicates a duplicate secret key or a workflow ID already in
	// use under a non-Terminate ID-reuse policy.
	Conflict Kind = "conflict"
	// Validation indicates a bad parameter at an API boundary (empty required
	// field, oversize key, non-member action).
	Validation Kind = "validation"
	// ActivityExecution wraps an exception raised inside an activity.
	ActivityExecution Kind = "activity_execution"
	// Timeout indicates an HTTP request exhausted retries due to timeouts.
	// Task timeouts are NOT represented by this kind — a timed-out task is a
	// normal result with TimedOut=true, per spec.md §4.11.
	Timeout Kind = "timeout"
)

// Error is the SDK's typed error, carrying enough context (operation, kind,
// underlying cause) to diagnose without re-deriving it from a message string.
type Error struct {
	Kind Kind
	Op   string
	Err  error

	// ActivityName and Tenant are populated for Kind == ActivityExecution,
	// per spec.md §4.11/§7.
	ActivityName string
	Tenant       string
}

func (e *Error) Error() string {
	if e.ActivityName != "" {
		return fmt.Sprintf("sdk: %s: activity %q (tenant %q): %v", e.Op, e.ActivityName, e.Tenant, e.Err)
	}
	return fmt.Sprintf("sdk: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, sdkerr.NotFound)-style matching against a bare
// Kind value by wrapping it in an *Error for comparison.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind for operation op wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds an *Error of the given kind for operation op from a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Validationf is a convenience constructor for Kind == Validation.
func Validationf(op, format string, args ...any) *Error {
	return Newf(Validation, op, format, args...)
}

// ActivityFailure wraps err raised inside activityName for tenant as a
// Kind == ActivityExecution error, per spec.md §4.11/§7.
func ActivityFailure(activityName, tenant string, err error) *Error {
	return &Error{Kind: ActivityExecution, Op: "activity", Err: err, ActivityName: activityName, Tenant: tenant}
}

// KindOf reports the Kind of err, if it (or a wrapped cause) is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
