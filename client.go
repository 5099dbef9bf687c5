package ntfy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	"ntfy/internal/httpx"
)

// Client publishes messages to a ntfy server and creates subscriptions
// sharing its base URL and credentials. It is safe for concurrent use.
type Client struct {
	baseURL      *url.URL
	defaultTopic string
	creds        Credentials
	http         *httpx.Client
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewClient creates a Client from the given configuration. The zero values
// of the tunables fall back to the defaults documented on Config.
func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("ntfy: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	policy := httpx.RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		MinWait:    cfg.RetryMinWait,
		MaxWait:    cfg.RetryMaxWait,
	}

	return &Client{
		baseURL:      base,
		defaultTopic: cfg.DefaultTopic,
		creds:        cfg.Credentials(),
		http:         httpx.New(httpClient, "ntfy", policy, cfg.UserAgent),
		validate:     newValidator(),
		logger:       logger,
	}, nil
}

// Publish sends a message. The topic is taken from the message, falling
// back to the client's default topic; ErrNoTopic is returned when neither
// is set. On success the server's echo of the stored message is returned.
//
// Non-2xx responses surface as *APIError. Transient failures (429, 5xx,
// network errors) are retried with backoff before giving up.
func (c *Client) Publish(ctx context.Context, msg *Message) (*ReceivedMessage, error) {
	if msg == nil {
		return nil, fmt.Errorf("ntfy: publish: message is nil")
	}

	topic := msg.Topic
	if topic == "" {
		topic = c.defaultTopic
	}
	if topic == "" {
		return nil, ErrNoTopic
	}

	if err := c.validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("ntfy: invalid message: %w", err)
	}
	header, err := msg.Header()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL(c.baseURL, topic), msg.Data)
	if err != nil {
		return nil, fmt.Errorf("ntfy: publish: %w", err)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapUpstreamError("publish", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	scanner := newLineScanner(resp.Body)
	if !scanner.Scan() {
		return nil, fmt.Errorf("ntfy: publish: empty response body")
	}
	echo, err := decodeEvent(scanner.Bytes())
	if err != nil {
		return nil, err
	}

	c.logger.Debug("message published", "topic", topic, "message_id", echo.ID)
	return echo, nil
}

// Poll fetches cached messages for a topic in one shot over HTTP, without
// opening a persistent stream. An empty topic falls back to the client's
// default. Undecodable lines are skipped with a warning, matching the
// subscription stream's policy.
func (c *Client) Poll(ctx context.Context, topic string, filter *Filter) ([]*ReceivedMessage, error) {
	if topic == "" {
		topic = c.defaultTopic
	}
	if topic == "" {
		return nil, ErrNoTopic
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL(c.baseURL, topic, filter), nil)
	if err != nil {
		return nil, fmt.Errorf("ntfy: poll: %w", err)
	}
	req.Header.Set("X-Poll", "1")
	for k, vs := range filter.Header() {
		req.Header[k] = vs
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapUpstreamError("poll", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var messages []*ReceivedMessage
	scanner := newLineScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := decodeEvent(line)
		if err != nil {
			c.logger.Warn("skipping undecodable poll line", "error", err)
			continue
		}
		if msg.Event != EventMessage {
			continue
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return messages, fmt.Errorf("ntfy: poll: read response: %w", err)
	}
	return messages, nil
}

// Subscribe creates a Subscription for the given topics, inheriting the
// client's base URL and credentials. The connection is not opened until
// Subscription.Connect is called.
func (c *Client) Subscribe(topics []string, filter *Filter, cfg SubscriptionConfig) (*Subscription, error) {
	if len(topics) == 0 {
		if c.defaultTopic == "" {
			return nil, ErrNoTopic
		}
		topics = []string{c.defaultTopic}
	}
	for _, t := range topics {
		if t == "" {
			return nil, fmt.Errorf("ntfy: subscribe: empty topic")
		}
	}

	return newSubscription(c.baseURL, topics, c.creds, filter, cfg, c.logger), nil
}

func (c *Client) setAuth(req *http.Request) {
	if auth := c.creds.Header(); auth != "" {
		req.Header.Set("Authorization", auth)
	}
}

// mapUpstreamError converts exhausted-retry failures from the base client
// into the public error taxonomy: an *APIError when a status code is known,
// otherwise a wrapped transport failure.
func (c *Client) mapUpstreamError(op string, err error) error {
	var upstream *httpx.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return &APIError{
			HTTPStatus: upstream.StatusCode,
			Message:    fmt.Sprintf("%s failed after retries", op),
		}
	}
	return fmt.Errorf("ntfy: %s: %w", op, err)
}

// newValidator builds the validator instance shared by a client.
func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// newLineScanner wraps a reader in a bufio.Scanner sized for the largest
// frame the service can emit.
func newLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return s
}
