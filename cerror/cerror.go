// Package cerror defines the error kinds raised across the Concerto
// runtime: schema-load failures ([ErrIllegalModel]), runtime lookups
// ([ErrTypeNotFound]), instance validation ([ErrModelViolation]),
// relationship URI parsing ([ErrInvalidURI]), and instance-generation
// recursion ([ErrRecursion]). Every returned error wraps one of these
// sentinels so callers can branch with [errors.Is] while still receiving
// a human-readable, located message.
package cerror

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Wrap one of these with [fmt.Errorf] and "%w", or
// construct a [ModelError] via [New] for a location-carrying error.
var (
	// ErrIllegalModel covers any validation failure on schema load: an
	// unresolved import, an unresolved type, a duplicate declaration or
	// property, a disallowed super-type, an illegal identifier
	// redeclaration, a missing identifier on a non-abstract identifiable
	// declaration, a malformed validator, or a version mismatch.
	ErrIllegalModel = errors.New("illegal model")

	// ErrTypeNotFound is raised by a runtime lookup of a nonexistent FQN.
	ErrTypeNotFound = errors.New("type not found")

	// ErrModelViolation is raised when an instance fails validation: a
	// missing required field, a value type mismatch, a regex/range
	// failure, a non-finite numeric, an unexpected property, or an
	// attempt to instantiate an abstract declaration.
	ErrModelViolation = errors.New("model violation")

	// ErrInvalidURI is raised by a malformed relationship URI.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrRecursion is raised when the instance generator reaches a
	// required recursive field with no way to terminate.
	ErrRecursion = errors.New("model is recursive")

	// ErrSecurity and ErrIO are raised by collaborators (the downloader,
	// the code-generator file writer) and propagated unchanged.
	ErrSecurity = errors.New("security error")
	ErrIO       = errors.New("io error")
)

// FileLocation is a line/column span in a source file, attached to a
// [ModelError] when the failure can be pinned to a parse location.
type FileLocation struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (l FileLocation) String() string {
	if l.File == "" {
		return ""
	}

	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// ModelError is the concrete error type returned by this module's
// packages. It wraps one of the sentinel kinds above and optionally
// carries a [FileLocation] and the fully-qualified name of the
// declaration or instance the error concerns.
type ModelError struct {
	Kind     error
	Message  string
	Location *FileLocation
	FQN      string
}

// New constructs a [ModelError] wrapping kind.
func New(kind error, format string, args ...any) *ModelError {
	return &ModelError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithFQN returns a copy of e with FQN set.
func (e *ModelError) WithFQN(fqn string) *ModelError {
	cp := *e
	cp.FQN = fqn

	return &cp
}

// WithLocation returns a copy of e with Location set.
func (e *ModelError) WithLocation(loc FileLocation) *ModelError {
	cp := *e
	cp.Location = &loc

	return &cp
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	msg := e.Message

	if e.FQN != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.FQN)
	}

	if e.Location != nil {
		if loc := e.Location.String(); loc != "" {
			msg = fmt.Sprintf("%s [%s]", msg, loc)
		}
	}

	return msg
}

// Unwrap allows [errors.Is] and [errors.As] to see through to Kind.
func (e *ModelError) Unwrap() error {
	return e.Kind
}
