package llm

import (
	"errors"
	"fmt"
)

// TransportError covers network failures, timeouts, and provider-side
// conditions worth retrying (rate limits, 5xx). Bounded retries happen
// inside the client; an error of this kind escaping the client means the
// attempts were exhausted.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError is a non-retryable provider rejection: bad credentials,
// exhausted quota, invalid model.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model provider rejected request (%d): %s", e.StatusCode, e.Message)
}

// MalformedResponseError means the model answered but the payload does not
// parse into the shape a stage expects. The stage retries it a small fixed
// number of times before discarding the item.
type MalformedResponseError struct {
	Stage string
	Raw   string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v (raw: %s)", e.Stage, e.Err, snippet(e.Raw))
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsMalformed reports whether err is a malformed-response failure.
func IsMalformed(err error) bool {
	var malformed *MalformedResponseError
	return errors.As(err, &malformed)
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var transport *TransportError
	return errors.As(err, &transport)
}
