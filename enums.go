package ntfy

import "strconv"

// EventType identifies the kind of event carried by a single line of the
// subscription stream. It is the discriminant used by the decoder to select
// how the rest of the payload is interpreted.
type EventType string

const (
	// EventOpen is emitted once when the stream is opened.
	EventOpen EventType = "open"
	// EventKeepalive is emitted periodically to signal connection liveness.
	EventKeepalive EventType = "keepalive"
	// EventMessage carries an actual notification.
	EventMessage EventType = "message"
	// EventPollRequest asks the subscriber to poll for messages, used by the
	// service for clients that cannot hold a persistent connection.
	EventPollRequest EventType = "poll_request"
)

// known reports whether the event type is one the decoder recognizes.
func (e EventType) known() bool {
	switch e {
	case EventOpen, EventKeepalive, EventMessage, EventPollRequest:
		return true
	}
	return false
}

// Priority is the ntfy message priority, ranging from PriorityMin (1) to
// PriorityMax (5). The zero value means "unset" and is omitted from
// serialized messages and filters.
type Priority int

const (
	PriorityMin     Priority = 1
	PriorityLow     Priority = 2
	PriorityDefault Priority = 3
	PriorityHigh    Priority = 4
	PriorityMax     Priority = 5
)

// String returns the numeric wire representation used in headers and query
// parameters.
func (p Priority) String() string {
	return strconv.Itoa(int(p))
}

// Valid reports whether the priority is within the range the service accepts.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// ActionType identifies the kind of an action button attached to a message.
type ActionType string

const (
	ActionView      ActionType = "view"
	ActionBroadcast ActionType = "broadcast"
	ActionHTTP      ActionType = "http"
)
