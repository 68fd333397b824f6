package riskclient

import "fmt"

// NetworkError reports a transport failure or a non-success HTTP
// status from the scoring service. It is never retried; the affected
// link stays unscored for the session and fails open.
type NetworkError struct {
	// URL is the analyzed target, not the service endpoint.
	URL string

	// StatusCode is the HTTP status when a response was received,
	// zero for transport-level failures.
	StatusCode int

	// Err is the underlying transport error, nil for status failures.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("risk analysis request for %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("risk analysis request for %s failed: status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response the client could not use:
// undecodable JSON, or a missing or out-of-range risk_score. Handled
// identically to NetworkError: no retry, fail open.
type MalformedResponseError struct {
	// URL is the analyzed target.
	URL string

	// Reason describes what was wrong with the payload.
	Reason string
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed risk analysis response for %s: %s", e.URL, e.Reason)
}
