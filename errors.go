package cartforge

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the ten error kinds the core distinguishes. Each has a
// stable numeric serialized code used by CLI collaborators to set process
// exit codes.
type Kind uint8

const (
	// ShellTaskFailed means an external process returned a non-zero exit
	// code. Carries the exit code and captured stderr.
	ShellTaskFailed Kind = iota + 1
	// InvalidArgument means caller-side misuse.
	InvalidArgument
	// MissingBuildSetting means expected build-tool output was absent.
	MissingBuildSetting
	// ReadFailed means an I/O read failed.
	ReadFailed
	// IncompatibleRequirements means constraint intersection yielded None.
	// Recoverable during resolver search.
	IncompatibleRequirements
	// RequiredVersionNotFound means no existing version satisfies a
	// specifier. Recoverable during resolver search.
	RequiredVersionNotFound
	// RepositoryCheckoutFailed means a VCS or filesystem failure occurred
	// during clone/fetch/checkout.
	RepositoryCheckoutFailed
	// WriteFailed means an I/O write failed.
	WriteFailed
	// ParseError means a manifest or build-tool output was malformed.
	ParseError
	// DuplicateDependencies means two entries exist for the same project.
	DuplicateDependencies
)

// code returns the stable serialized error code for the kind.
func (k Kind) code() int {
	switch k {
	case ShellTaskFailed:
		return 1
	case InvalidArgument:
		return 2
	case MissingBuildSetting:
		return 3
	case ReadFailed:
		return 4
	case IncompatibleRequirements:
		return 5
	case RequiredVersionNotFound:
		return 6
	case RepositoryCheckoutFailed:
		return 7
	case WriteFailed:
		return 8
	case ParseError:
		return 9
	case DuplicateDependencies:
		return 10
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case ShellTaskFailed:
		return "shell-task-failed"
	case InvalidArgument:
		return "invalid-argument"
	case MissingBuildSetting:
		return "missing-build-setting"
	case ReadFailed:
		return "read-failed"
	case IncompatibleRequirements:
		return "incompatible-requirements"
	case RequiredVersionNotFound:
		return "required-version-not-found"
	case RepositoryCheckoutFailed:
		return "repository-checkout-failed"
	case WriteFailed:
		return "write-failed"
	case ParseError:
		return "parse-error"
	case DuplicateDependencies:
		return "duplicate-dependencies"
	default:
		return "unknown"
	}
}

// Recoverable reports whether the resolver may catch this kind at a
// backtracking frame and try the next candidate tuple. Every other kind
// propagates immediately.
func (k Kind) Recoverable() bool {
	return k == IncompatibleRequirements || k == RequiredVersionNotFound
}

// Error is the core's single error type. Every failure surfaced across a
// component boundary is a *Error, carrying a stable Kind and a Cause when
// one exists (I/O, subprocess, or a lower-level parse failure).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs a *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a *Error of the given kind, recording cause as the
// underlying reason. cause is run through pkg/errors.WithStack so a caller
// that formats the returned Cause with "%+v" gets a stack trace pointing at
// the crossing point.
func Wrap(cause error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Code returns the stable serialized error code for e's kind.
func (e *Error) Code() int {
	return e.Kind.code()
}

// AsError reports whether err is (or wraps) a *Error, returning it if so.
func AsError(err error) (*Error, bool) {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			return ce, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}
