package energa

import "fmt"

// ValidationError reports malformed construction input, such as a
// credential pair that cannot possibly log in. It is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// AuthenticationError reports a failed step of the login handshake:
// a missing anti-forgery token, a rejected credential POST or an
// unresolvable meter id.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// DataUnavailableError reports an upstream response that cannot serve
// a data query, either a non-success status or an unusable payload.
type DataUnavailableError struct {
	Reason string
	Status int
}

func (e *DataUnavailableError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("data unavailable: %s (status %d)", e.Reason, e.Status)
	}
	return fmt.Sprintf("data unavailable: %s", e.Reason)
}

// ErrNoData marks a successful chart response whose chart array is
// empty or absent. Callers map it to a not-found classification.
var ErrNoData = &DataUnavailableError{Reason: "no data available"}
