package domain

import "fmt"

// TransportError reports that a call to an external service did not complete
// successfully: the request failed or the service answered with a non-2xx
// status. StatusCode is zero when no response was received.
type TransportError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to call %s: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a model response that is not the expected JSON shape.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse food list: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
