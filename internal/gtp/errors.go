package gtp

import "fmt"

// ErrorKind is the closed set of reasons a dispatcher-level (as opposed to
// handler-level) operation can fail. Handler-level failures — illegal
// moves, bad SGF, unknown properties — surface as whatever typed error
// the underlying package (rules, sgf, gogame) produced; Dispatch only
// renders their Error() text into the response.
type ErrorKind int

const (
	UnknownCommand ErrorKind = iota
	InvalidArguments
	CannotShadowBuiltin
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownCommand:
		return "unknown command"
	case InvalidArguments:
		return "invalid arguments"
	case CannotShadowBuiltin:
		return "cannot shadow a built-in command"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the typed error this package's own operations (as distinct
// from a matched handler's own error) fail with. It keeps the same
// Kind/Is shape used across the rest of this codebase rather than the
// Kind()/Unwrap() method pair, for consistency with rules.Error,
// sgftree.Error, sgf.Error, and gogame.Error.
type Error struct {
	Kind ErrorKind
	Name string
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Name)
	}
	return e.Kind.String()
}

func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newErr(k ErrorKind, name string) *Error { return &Error{Kind: k, Name: name} }
