/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"errors"
	"fmt"

	"github.com/mikeb26/voobly/internal"
)

// Kind discriminates the failures a Session can report.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindAuth
	KindBadResponse
	KindRateLimit
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK"
	case KindAuth:
		return "AUTH"
	case KindBadResponse:
		return "BAD_RESPONSE"
	case KindRateLimit:
		return "RATE_LIMIT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION"
	default:
		return "?"
	}
}

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrNetwork     = &Error{Kind: KindNetwork, Message: "network failure"}
	ErrAuth        = &Error{Kind: KindAuth, Message: "not authorized"}
	ErrBadResponse = &Error{Kind: KindBadResponse, Message: "bad response"}
	ErrRateLimit   = &Error{Kind: KindRateLimit, Message: "rate limited"}
	ErrNotFound    = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation  = &Error{Kind: KindValidation, Message: "invalid input"}
)

const maxPayload = 512

// Error is the single error type returned by this package for remote API
// failures and invalid caller input.
type Error struct {
	Kind     Kind
	Message  string
	Endpoint string
	// Payload holds (a prefix of) the offending response body, if any.
	Payload []byte
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("voobly: %v: %v", e.Kind, e.Message)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%v (%v)", msg, e.Endpoint)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%v: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, ep Endpoint, msg string, payload []byte,
	cause error) *Error {

	e := &Error{
		Kind:     kind,
		Message:  msg,
		Endpoint: ep.Path,
		Cause:    cause,
	}
	if len(payload) > 0 {
		e.Payload = append([]byte(nil), internal.Truncate(payload, maxPayload)...)
	}
	return e
}

func validationErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}
