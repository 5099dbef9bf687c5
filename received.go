package ntfy

// ReceivedMessage is a single decoded event from the subscription stream or
// the poll endpoint. Event selects which fields are populated: control
// events (open, keepalive, poll_request) carry little more than ID, Time and
// Topic, while message events carry the full notification payload.
//
// Instances are produced by the decoder and must be treated as immutable.
type ReceivedMessage struct {
	// ID is the server-assigned message identifier.
	ID string `json:"id"`
	// Time is the message timestamp as a Unix timestamp.
	Time int64 `json:"time"`
	// Event is the discriminant naming the event kind.
	Event EventType `json:"event"`
	// Topic names the channel(s) the message belongs to.
	Topic string `json:"topic"`

	// Expires is the Unix timestamp at which the server deletes the message.
	Expires int64 `json:"expires,omitempty"`
	// Message is the notification body.
	Message string `json:"message,omitempty"`
	// Title is the notification title.
	Title string `json:"title,omitempty"`
	// Tags are the message tags; tags matching emoji short codes are
	// rendered as emoji by clients.
	Tags []string `json:"tags,omitempty"`
	// Priority is the message priority, zero if the server omitted it.
	Priority Priority `json:"priority,omitempty"`
	// Click is the URL opened when the notification is tapped.
	Click string `json:"click,omitempty"`
	// Icon is the URL of the notification icon.
	Icon string `json:"icon,omitempty"`
	// Actions are the action buttons attached to the message.
	Actions []ReceivedAction `json:"actions,omitempty"`
	// Attachment describes an attached file, if any.
	Attachment *ReceivedAttachment `json:"attachment,omitempty"`
	// ContentType is the body content type ("text/markdown" for markdown
	// messages), empty for plain text.
	ContentType string `json:"content_type,omitempty"`
}

// ReceivedAction is an action button on a received message, discriminated by
// Action. URL/Method/Headers/Body apply to view and http actions;
// Intent/Extras apply to broadcast actions.
type ReceivedAction struct {
	ID     string     `json:"id"`
	Action ActionType `json:"action"`
	Label  string     `json:"label"`
	Clear  bool       `json:"clear,omitempty"`

	URL     string            `json:"url,omitempty"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`

	Intent string            `json:"intent,omitempty"`
	Extras map[string]string `json:"extras,omitempty"`
}

// ReceivedAttachment describes a file attached to a received message. Type,
// Size and Expires are only set for files uploaded to the ntfy server, not
// for externally hosted attachments.
type ReceivedAttachment struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Type    string `json:"type,omitempty"`
	Size    int64  `json:"size,omitempty"`
	Expires int64  `json:"expires,omitempty"`
}
