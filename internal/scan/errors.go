package scan

import (
	"errors"
	"fmt"

	"github.com/vbonduro/snapcal/internal/domain"
)

// User-facing messages. Scan failures are reduced to one of these; the
// underlying error is only logged.
const (
	MessageNoFood  = "No food items detected in the image. Please try again."
	MessageGeneric = "Something went wrong while scanning. Please try again."
)

// ErrNoFood is wrapped by the Error returned when identification succeeds
// but finds nothing.
var ErrNoFood = errors.New("no food items detected")

type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindParse
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Error is the only error type Scanner.Scan returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scan failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(err error) *Error {
	if errors.Is(err, ErrNoFood) {
		return &Error{Kind: KindEmpty, Message: MessageNoFood, Err: err}
	}
	return &Error{Kind: classify(err), Message: MessageGeneric, Err: err}
}

func classify(err error) Kind {
	var transportErr *domain.TransportError
	var parseErr *domain.ParseError
	switch {
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &parseErr):
		return KindParse
	default:
		return KindUnknown
	}
}

// UserMessage returns the message to show an end user for err.
func UserMessage(err error) string {
	var scanErr *Error
	if errors.As(err, &scanErr) {
		return scanErr.Message
	}
	return MessageGeneric
}
