package ntfy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHeader_AllFields(t *testing.T) {
	m := &Message{
		Message:     "body",
		Title:       "title",
		Priority:    PriorityLow,
		Tags:        []string{"warning", "skull"},
		Markdown:    true,
		Delay:       "30min",
		Click:       "https://example.com",
		Attachment:  "https://example.com/file.jpg",
		Filename:    "file.jpg",
		Icon:        "https://example.com/icon.png",
		Email:       "ops@example.com",
		Call:        "+1222333444",
		NoCache:     true,
		NoFirebase:  true,
		UnifiedPush: true,
	}

	h, err := m.Header()
	require.NoError(t, err)

	assert.Equal(t, "body", h.Get("X-Message"))
	assert.Equal(t, "title", h.Get("X-Title"))
	assert.Equal(t, "2", h.Get("X-Priority"))
	assert.Equal(t, "warning,skull", h.Get("X-Tags"))
	assert.Equal(t, "1", h.Get("X-Markdown"))
	assert.Equal(t, "30min", h.Get("X-Delay"))
	assert.Equal(t, "https://example.com", h.Get("X-Click"))
	assert.Equal(t, "https://example.com/file.jpg", h.Get("X-Attach"))
	assert.Equal(t, "file.jpg", h.Get("X-Filename"))
	assert.Equal(t, "https://example.com/icon.png", h.Get("X-Icon"))
	assert.Equal(t, "ops@example.com", h.Get("X-Email"))
	assert.Equal(t, "+1222333444", h.Get("X-Call"))
	assert.Equal(t, "no", h.Get("X-Cache"))
	assert.Equal(t, "no", h.Get("X-Firebase"))
	assert.Equal(t, "1", h.Get("X-UnifiedPush"))
}

func TestMessageHeader_ZeroValueOmitsEverything(t *testing.T) {
	h, err := (&Message{}).Header()
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestMessageHeader_TemplatingAndFilenameExclusive(t *testing.T) {
	_, err := (&Message{Templating: true, Filename: "f.txt"}).Header()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	h, err := (&Message{Templating: true}).Header()
	require.NoError(t, err)
	assert.Equal(t, "1", h.Get("X-Template"))
}

func TestMessageHeader_EscapesLineBreaks(t *testing.T) {
	h, err := (&Message{Message: "line1\nline2\rline3\fline4"}).Header()
	require.NoError(t, err)
	assert.Equal(t, `line1\nline2\rline3\fline4`, h.Get("X-Message"))
}
