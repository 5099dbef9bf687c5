package ntfy

import (
	"fmt"
	"net/url"
	"strings"
)

// parseBaseURL validates and normalizes the server base URL. Trailing
// slashes are stripped so endpoint paths can be appended uniformly.
func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("parse base url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// publishURL returns the endpoint a message for the given topic is POSTed to.
func publishURL(base *url.URL, topic string) string {
	u := *base
	u.Path = base.Path + "/" + topic
	return u.String()
}

// pollURL returns the one-shot JSON endpoint for the given topic with the
// filter encoded as query parameters. The poll flag tells the server to
// close the stream once cached messages are exhausted.
func pollURL(base *url.URL, topic string, f *Filter) string {
	u := *base
	u.Path = base.Path + "/" + topic + "/json"
	q := f.Query()
	q.Set("poll", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

// subscribeURL returns the websocket endpoint for the given topics. Multiple
// topics are comma-joined into a single path segment; the http(s) scheme is
// mapped to ws(s).
func subscribeURL(base *url.URL, topics []string, f *Filter) string {
	u := *base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = base.Path + "/" + strings.Join(topics, ",") + "/ws"
	if q := f.Query(); len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
