package youtube

import "fmt"

// ErrorKind classifies API client failures.
type ErrorKind string

const (
	// KindRateLimited marks a 429 that survived every retry.
	KindRateLimited ErrorKind = "rate_limited"

	// KindUpstream marks a non-retryable 4xx/5xx platform response.
	KindUpstream ErrorKind = "upstream"

	// KindTransport marks a network/timeout failure that survived every
	// retry.
	KindTransport ErrorKind = "transport"
)

// APIError is returned for every failed platform call. Message carries
// the platform's own error text when the response included one.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("youtube api: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("youtube api: %s (%d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("youtube api: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("youtube api: %s: %s", e.Kind, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}
