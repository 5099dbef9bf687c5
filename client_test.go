package ntfy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, base := range []string{"", "not a url", "ftp://example.com", "http://"} {
		_, err := NewClient(Config{BaseURL: base})
		require.Error(t, err, "base %q", base)
	}
}

func TestPublish_SendsHeadersAndDecodesEcho(t *testing.T) {
	var gotReq atomic.Pointer[http.Request]
	var gotBody atomic.Pointer[string]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq.Store(r.Clone(context.Background()))
		body, _ := io.ReadAll(r.Body)
		s := string(body)
		gotBody.Store(&s)
		w.Write([]byte(`{"id":"msg1","time":1700000000,"event":"message","topic":"alerts","message":"disk low","title":"Alert"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, User: "alice", Pass: "s3cret"})
	require.NoError(t, err)

	echo, err := client.Publish(context.Background(), &Message{
		Topic:    "alerts",
		Message:  "disk low",
		Title:    "Alert",
		Priority: PriorityHigh,
		Tags:     []string{"warning", "cd"},
		Actions:  []Action{ViewAction{Label: "Open", URL: "https://example.com", Clear: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg1", echo.ID)
	assert.Equal(t, "disk low", echo.Message)

	req := gotReq.Load()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/alerts", req.URL.Path)
	assert.Equal(t, "disk low", req.Header.Get("X-Message"))
	assert.Equal(t, "Alert", req.Header.Get("X-Title"))
	assert.Equal(t, "4", req.Header.Get("X-Priority"))
	assert.Equal(t, "warning,cd", req.Header.Get("X-Tags"))
	assert.Equal(t, "action=view, label=Open, url=https://example.com, clear=true", req.Header.Get("X-Actions"))
	assert.True(t, strings.HasPrefix(req.Header.Get("Authorization"), "Basic "))
}

func TestPublish_DefaultTopicFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fallback", r.URL.Path)
		w.Write([]byte(`{"id":"m","time":1,"event":"message","topic":"fallback"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, DefaultTopic: "fallback"})
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), &Message{Message: "hi"})
	require.NoError(t, err)
}

func TestPublish_NoTopic(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), &Message{Message: "hi"})
	require.ErrorIs(t, err, ErrNoTopic)
}

func TestPublish_InvalidMessageRejectedLocally(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), &Message{Topic: "t", Priority: Priority(9)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid message")
}

func TestPublish_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":40301,"http":403,"error":"forbidden","link":"https://ntfy.sh/docs/publish/#authentication"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), &Message{Topic: "t", Message: "hi"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)
	assert.Equal(t, 40301, apiErr.Code)
	assert.Equal(t, "forbidden", apiErr.Message)
	assert.Contains(t, apiErr.Link, "docs/publish")
}

func TestPublish_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"m","time":1,"event":"message","topic":"t"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{
		BaseURL:      srv.URL,
		MaxRetries:   3,
		RetryMinWait: time.Millisecond,
		RetryMaxWait: 2 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Publish(context.Background(), &Message{Topic: "t", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPoll_DecodesMessagesAndSkipsJunk(t *testing.T) {
	var gotReq atomic.Pointer[http.Request]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq.Store(r.Clone(context.Background()))
		lines := []string{
			`{"id":"m1","time":1,"event":"message","topic":"t","message":"one"}`,
			`{garbage`,
			`{"id":"k","time":2,"event":"keepalive","topic":"t"}`,
			`{"id":"m2","time":3,"event":"message","topic":"t","message":"two"}`,
		}
		w.Write([]byte(strings.Join(lines, "\n") + "\n"))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	msgs, err := client.Poll(context.Background(), "t", &Filter{Since: "all", Priority: []Priority{PriorityMax}})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Message)
	assert.Equal(t, "two", msgs[1].Message)

	req := gotReq.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/t/json", req.URL.Path)
	assert.Equal(t, "1", req.URL.Query().Get("poll"))
	assert.Equal(t, "all", req.URL.Query().Get("since"))
	assert.Equal(t, "1", req.Header.Get("X-Poll"))
	assert.Equal(t, "5", req.Header.Get("X-Priority"))
}

func TestPoll_NoTopic(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)

	_, err = client.Poll(context.Background(), "", nil)
	require.ErrorIs(t, err, ErrNoTopic)
}

func TestSubscribe_EmptyTopicsFallBackToDefault(t *testing.T) {
	client, err := NewClient(Config{BaseURL: "http://localhost:1", DefaultTopic: "home"})
	require.NoError(t, err)

	sub, err := client.Subscribe(nil, nil, SubscriptionConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, sub.Topics())

	client2, err := NewClient(Config{BaseURL: "http://localhost:1"})
	require.NoError(t, err)
	_, err = client2.Subscribe(nil, nil, SubscriptionConfig{})
	require.ErrorIs(t, err, ErrNoTopic)
}
