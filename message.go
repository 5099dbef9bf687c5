package ntfy

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is a notification to be published. All fields are optional except
// that a topic must be resolvable at publish time (either here, as a Publish
// argument, or as the client's default topic).
//
// The message is serialized into X-* request headers; Data, when set,
// becomes the request body (raw attachment bytes, or the template context
// when Templating is set).
type Message struct {
	// Topic the message is sent to. Falls back to the client default.
	Topic string
	// Message is the notification body.
	Message string
	// Title is the notification title.
	Title string
	// Priority from PriorityMin to PriorityMax; zero leaves the server
	// default in effect.
	Priority Priority `validate:"omitempty,min=1,max=5"`
	// Tags attached to the message; emoji short codes render as emoji.
	Tags []string
	// Markdown renders the body as markdown.
	Markdown bool
	// Delay schedules delivery: a Unix timestamp, a duration ("30m") or a
	// natural-language offset ("tomorrow, 10am").
	Delay string
	// Templating interprets Data as JSON template context for Go-style
	// templates in Message and Title. Mutually exclusive with Filename.
	Templating bool
	// Actions are the action buttons attached to the message.
	Actions []Action
	// Click is the URL opened when the notification is tapped.
	Click string `validate:"omitempty,url"`
	// Attachment is the URL of an externally hosted attachment.
	Attachment string `validate:"omitempty,url"`
	// Filename names the attachment carried in Data. Mutually exclusive
	// with Templating.
	Filename string
	// Icon is the URL of the notification icon.
	Icon string `validate:"omitempty,url"`
	// Email forwards the message to an email address.
	Email string `validate:"omitempty,email"`
	// Call forwards the message to a phone number.
	Call string
	// NoCache skips the server-side message cache.
	NoCache bool
	// NoFirebase skips forwarding to Firebase.
	NoFirebase bool
	// UnifiedPush marks the message as a UnifiedPush delivery.
	UnifiedPush bool
	// Data is the request body: raw attachment bytes, or the template
	// context when Templating is set.
	Data io.Reader
}

// Header serializes the message fields into ntfy publish headers. The topic
// and Data are excluded; they travel in the URL and request body.
func (m *Message) Header() (http.Header, error) {
	if m.Templating && m.Filename != "" {
		return nil, fmt.Errorf("ntfy: message templating and filename are mutually exclusive")
	}

	h := http.Header{}
	setHeader := func(key, value string) {
		if value != "" {
			h.Set(key, escapeHeaderValue(value))
		}
	}

	setHeader("X-Message", m.Message)
	setHeader("X-Title", m.Title)
	if m.Priority != 0 {
		h.Set("X-Priority", m.Priority.String())
	}
	if len(m.Tags) > 0 {
		setHeader("X-Tags", strings.Join(m.Tags, ","))
	}
	if m.Markdown {
		h.Set("X-Markdown", "1")
	}
	setHeader("X-Delay", m.Delay)
	if m.Templating {
		h.Set("X-Template", "1")
	}
	if len(m.Actions) > 0 {
		setHeader("X-Actions", serializeActions(m.Actions))
	}
	setHeader("X-Click", m.Click)
	setHeader("X-Attach", m.Attachment)
	setHeader("X-Filename", m.Filename)
	setHeader("X-Icon", m.Icon)
	setHeader("X-Email", m.Email)
	setHeader("X-Call", m.Call)
	if m.NoCache {
		h.Set("X-Cache", "no")
	}
	if m.NoFirebase {
		h.Set("X-Firebase", "no")
	}
	if m.UnifiedPush {
		h.Set("X-UnifiedPush", "1")
	}
	return h, nil
}

// escapeHeaderValue makes a string safe for use in an HTTP header by
// escaping line breaks and form feeds; the server unescapes them.
func escapeHeaderValue(v string) string {
	r := strings.NewReplacer("\n", `\n`, "\r", `\r`, "\f", `\f`)
	return r.Replace(v)
}

