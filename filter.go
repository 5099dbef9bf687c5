package ntfy

import (
	"net/http"
	"net/url"
	"strings"
)

// Filter narrows which messages a poll or subscription receives. Filters are
// server-side predicates applied at request time; a nil *Filter matches
// everything. Once a subscription is opened its filter is fixed.
type Filter struct {
	// Since returns cached messages newer than a timestamp, duration
	// (e.g. "10m") or message ID. The special value "all" returns everything
	// the server still has cached.
	Since string
	// Scheduled includes messages that are scheduled but not yet delivered.
	Scheduled bool
	// ID matches a single message by its exact ID.
	ID string
	// Message matches messages with this exact body.
	Message string
	// Title matches messages with this exact title.
	Title string
	// Priority matches messages with any of the given priorities.
	Priority []Priority
	// Tags matches messages carrying all of the given tags.
	Tags []string
}

// Query encodes the filter as URL query parameters, the form used on
// streaming endpoints.
func (f *Filter) Query() url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if f.Since != "" {
		q.Set("since", f.Since)
	}
	if f.Scheduled {
		q.Set("scheduled", "1")
	}
	if f.ID != "" {
		q.Set("id", f.ID)
	}
	if f.Message != "" {
		q.Set("message", f.Message)
	}
	if f.Title != "" {
		q.Set("title", f.Title)
	}
	if len(f.Priority) > 0 {
		q.Set("priority", joinPriorities(f.Priority))
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	return q
}

// Header encodes the filter as X-* request headers, the form used on the
// one-shot poll endpoint.
func (f *Filter) Header() http.Header {
	h := http.Header{}
	if f == nil {
		return h
	}
	if f.Since != "" {
		h.Set("X-Since", escapeHeaderValue(f.Since))
	}
	if f.Scheduled {
		h.Set("X-Scheduled", "1")
	}
	if f.ID != "" {
		h.Set("X-ID", escapeHeaderValue(f.ID))
	}
	if f.Message != "" {
		h.Set("X-Message", escapeHeaderValue(f.Message))
	}
	if f.Title != "" {
		h.Set("X-Title", escapeHeaderValue(f.Title))
	}
	if len(f.Priority) > 0 {
		h.Set("X-Priority", joinPriorities(f.Priority))
	}
	if len(f.Tags) > 0 {
		h.Set("X-Tags", escapeHeaderValue(strings.Join(f.Tags, ",")))
	}
	return h
}

func joinPriorities(ps []Priority) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}
