// Package apperr names the error taxonomy the simulation side uses to
// decide how to react to a failure (spec §7): protocol, authorization,
// domain, invariant, and external-service errors, each carrying whether the
// tick loop may simply continue past it.
package apperr

import "fmt"

// Category is one of the five error classes spec §7 defines.
type Category int

const (
	Protocol Category = iota
	Authorization
	Domain
	Invariant
	External
)

func (c Category) String() string {
	switch c {
	case Protocol:
		return "protocol"
	case Authorization:
		return "authorization"
	case Domain:
		return "domain"
	case Invariant:
		return "invariant"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Category and whether the caller may
// recover by simply dropping the message/action and continuing.
type Error struct {
	Category    Category
	Recoverable bool
	Reason      string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(cat Category, recoverable bool, reason string, err error) *Error {
	return &Error{Category: cat, Recoverable: recoverable, Reason: reason, Err: err}
}

// NewProtocol reports a malformed frame or wrong-typed field: the message is
// dropped and logged, the connection stays open (spec §7).
func NewProtocol(reason string, err error) *Error { return newErr(Protocol, true, reason, err) }

// NewAuthorization reports an unauthenticated action or bad token: the
// message is dropped; the router additionally marks the session closed, which
// stops dispatch but does not close the socket.
func NewAuthorization(reason string) *Error { return newErr(Authorization, true, reason, nil) }

// NewDomain reports a legal-but-rejected game action (move-to-same-cell,
// shoot-too-early, ...): dropped silently, logged at debug (spec §7).
func NewDomain(reason string) *Error { return newErr(Domain, true, reason, nil) }

// NewInvariant reports a violated structural invariant (double-remove,
// node-ordering corruption): fatal for the round (spec §7).
func NewInvariant(reason string, err error) *Error { return newErr(Invariant, false, reason, err) }

// NewExternal reports a non-2xx or failed call to the lobby-lifecycle
// service (spec §7).
func NewExternal(reason string, err error) *Error { return newErr(External, true, reason, err) }

// Is reports whether err is an *Error of category cat.
func Is(err error, cat Category) bool {
	var ae *Error
	if e, ok := err.(*Error); ok {
		ae = e
	} else {
		return false
	}
	return ae.Category == cat
}
