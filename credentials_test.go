package ntfy

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials_Basic(t *testing.T) {
	h := BasicAuth("phil", "hunter2").Header()
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("phil:hunter2"))
	assert.Equal(t, want, h)
}

func TestCredentials_PreEncodedBasic(t *testing.T) {
	h := Credentials{Basic: "cGhpbDpodW50ZXIy"}.Header()
	assert.Equal(t, "Basic cGhpbDpodW50ZXIy", h)
}

func TestCredentials_Bearer(t *testing.T) {
	h := BearerAuth("tk_abc123").Header()
	assert.Equal(t, "Bearer tk_abc123", h)
}

func TestCredentials_BearerWinsOverBasic(t *testing.T) {
	c := Credentials{User: "phil", Pass: "hunter2", Bearer: "tk_abc123"}
	assert.Equal(t, "Bearer tk_abc123", c.Header())
}

func TestCredentials_Anonymous(t *testing.T) {
	assert.Empty(t, Credentials{}.Header())
	assert.True(t, Credentials{}.Empty())
	assert.False(t, BearerAuth("x").Empty())
}
