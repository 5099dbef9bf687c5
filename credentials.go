package ntfy

import "encoding/base64"

// Credentials holds access credentials for a ntfy server. The zero value
// means anonymous access. When both bearer and basic credentials are set,
// bearer wins.
type Credentials struct {
	// User and Pass form HTTP basic credentials.
	User string
	Pass string
	// Basic is a pre-encoded base64 "user:pass" string, used as-is. Ignored
	// when User is set.
	Basic string
	// Bearer is an access token.
	Bearer string
}

// BasicAuth returns Credentials for HTTP basic authentication.
func BasicAuth(user, pass string) Credentials {
	return Credentials{User: user, Pass: pass}
}

// BearerAuth returns Credentials for token authentication.
func BearerAuth(token string) Credentials {
	return Credentials{Bearer: token}
}

// Header returns the Authorization header value for these credentials, or
// the empty string for anonymous access.
func (c Credentials) Header() string {
	switch {
	case c.Bearer != "":
		return "Bearer " + c.Bearer
	case c.User != "":
		encoded := base64.StdEncoding.EncodeToString([]byte(c.User + ":" + c.Pass))
		return "Basic " + encoded
	case c.Basic != "":
		return "Basic " + c.Basic
	}
	return ""
}

// Empty reports whether no credentials are configured.
func (c Credentials) Empty() bool {
	return c == Credentials{}
}
