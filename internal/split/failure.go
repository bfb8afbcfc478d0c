// Package split implements the atomic replacement of one task with N derived
// tasks: validation, field projection, the transactional replace, and the
// post-commit notification hand-off.
package split

import "errors"

// Code classifies a split failure for the client-facing error response.
type Code string

const (
	// CodeInvalidRequest covers malformed input: bad task ID syntax, an
	// empty split list, or a spec with a missing title or unparseable
	// duration.
	CodeInvalidRequest Code = "invalid_request"

	// CodeNotFound means the target task does not exist.
	CodeNotFound Code = "not_found"

	// CodeForbidden means the target task is owned by a different user.
	CodeForbidden Code = "forbidden"

	// CodeInternal covers store failures during the transactional phase.
	// The store state is unchanged; the caller may resubmit.
	CodeInternal Code = "internal_error"
)

// Failure is the typed error crossing the split component boundary. Every
// failed operation produces exactly one Failure and zero broadcast events.
type Failure struct {
	Code    Code
	Message string
}

func (f *Failure) Error() string {
	return string(f.Code) + ": " + f.Message
}

func failf(code Code, message string) *Failure {
	return &Failure{Code: code, Message: message}
}

// AsFailure unwraps err into a *Failure if it is one.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
