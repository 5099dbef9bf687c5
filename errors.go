package ntfy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"ntfy/internal/queue"
)

// ErrNoTopic is returned by publish and poll operations when no topic was
// given and the client has no default topic configured.
var ErrNoTopic = fmt.Errorf("ntfy: no topic could be resolved")

// ErrAlreadyConnected is returned by Subscription.Connect when the
// subscription already has a live connection.
var ErrAlreadyConnected = fmt.Errorf("ntfy: subscription already connected")

// ErrReceiveTimeout is returned by Subscription.ReceiveTimeout when no
// message arrived within the given duration. The stream itself is unaffected.
var ErrReceiveTimeout = queue.ErrTimeout

// ErrSubscriptionClosed is returned by receive operations once the
// subscription has been closed and its queue fully drained.
var ErrSubscriptionClosed = queue.ErrClosed

// DecodeError indicates that a line read from the stream was not a valid
// event payload: either malformed JSON or missing the "event" discriminant.
// The connection manager treats it as non-fatal and skips the line.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ntfy: decode event: %v", e.Err)
	}
	return "ntfy: decode event: missing event field"
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnknownEventError indicates a syntactically valid event line whose "event"
// discriminant is not one of the recognized types. Skipped, never fatal, so
// new server-side event types do not terminate existing subscribers.
type UnknownEventError struct {
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("ntfy: unknown event type %q", e.Event)
}

// ConnectionError indicates that the initial, synchronous connection attempt
// of a subscription failed. Reconnects after a successful initial connect are
// handled internally and never surface as ConnectionError.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ntfy: connect %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the ntfy service. Code and Link carry
// the service's structured error body when one was present.
type APIError struct {
	// HTTPStatus is the HTTP status code of the response.
	HTTPStatus int
	// Code is the ntfy-specific error code (e.g. 42201), zero if absent.
	Code int
	// Message is the human-readable error from the response body.
	Message string
	// Link points at documentation for the error, if the service provided one.
	Link string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ntfy: api error (http=%d code=%d): %s", e.HTTPStatus, e.Code, e.Message)
	}
	return fmt.Sprintf("ntfy: api error (http=%d)", e.HTTPStatus)
}

// newAPIError builds an APIError from a non-2xx response, decoding the ntfy
// error body when possible and falling back to the bare status code.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{HTTPStatus: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Code  int    `json:"code"`
		HTTP  int    `json:"http"`
		Error string `json:"error"`
		Link  string `json:"link"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	apiErr.Code = payload.Code
	apiErr.Message = payload.Error
	apiErr.Link = payload.Link
	return apiErr
}
