package ntfy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"ntfy/internal/queue"
	"ntfy/internal/stream"
)

// maxFrameSize bounds a single stream frame. Message bodies are capped at
// 4KB by the service; headroom covers actions, attachments and metadata.
const maxFrameSize = 256 * 1024

// SubscriptionConfig configures a Subscription beyond what it inherits from
// the client.
type SubscriptionConfig struct {
	// QueueCapacity bounds the delivery queue; non-positive values use
	// queue.DefaultCapacity.
	QueueCapacity int
	// Backoff controls the reconnect schedule. The zero value means
	// defaults (500ms doubling to 30s, unlimited attempts).
	Backoff stream.Backoff
	// InactivityTimeout is the maximum silence (including missed
	// keepalives) tolerated before the connection is recycled.
	InactivityTimeout time.Duration
	// DeliverPollRequests enqueues poll_request events for the consumer
	// instead of filtering them like other control events.
	DeliverPollRequests bool
}

// Subscription streams messages from one or more topics over a persistent
// websocket connection, buffering them into a bounded queue for the
// consumer to pull. It reconnects on transient failures; queued messages
// that predate a reconnect are dropped rather than redelivered.
//
// The usual shape is:
//
//	sub, err := client.Subscribe([]string{"alerts"}, nil)
//	if err != nil { ... }
//	if err := sub.Connect(ctx); err != nil { ... }
//	defer sub.Close()
//	for {
//		msg, err := sub.Receive(ctx)
//		...
//	}
type Subscription struct {
	baseURL *url.URL
	topics  []string
	creds   Credentials
	filter  *Filter
	cfg     SubscriptionConfig

	queue  *queue.Queue[*ReceivedMessage]
	mgr    *stream.Manager
	logger *slog.Logger

	mu        sync.Mutex
	connected bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// newSubscription wires a Subscription; connections are not opened until
// Connect is called.
func newSubscription(base *url.URL, topics []string, creds Credentials, filter *Filter, cfg SubscriptionConfig, logger *slog.Logger) *Subscription {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Subscription{
		baseURL: base,
		topics:  topics,
		creds:   creds,
		filter:  filter,
		cfg:     cfg,
		queue:   queue.New[*ReceivedMessage](cfg.QueueCapacity),
		logger: logger.With(
			"subscription_id", uuid.NewString(),
			"topics", topics,
		),
	}

	s.mgr = stream.New(stream.Options{
		Dial:              s.dial,
		Handle:            s.handleFrame,
		OnDisconnect:      s.onDisconnect,
		Backoff:           cfg.Backoff,
		InactivityTimeout: cfg.InactivityTimeout,
		Logger:            s.logger,
	})

	return s
}

// Topics returns the subscribed topics.
func (s *Subscription) Topics() []string {
	out := make([]string, len(s.topics))
	copy(out, s.topics)
	return out
}

// Connect opens the stream. The very first connection attempt runs
// synchronously so configuration problems (bad URL, bad credentials)
// surface immediately as *ConnectionError; transient failures after that
// are retried in the background with backoff.
//
// ctx bounds the initial dial only. The background read loop runs until
// Close is called.
func (s *Subscription) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSubscriptionClosed
	}
	if s.connected {
		return ErrAlreadyConnected
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return &ConnectionError{URL: subscribeURL(s.baseURL, s.topics, s.filter), Err: err}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.connected = true

	s.logger.Info("subscription connected")

	go func() {
		defer close(s.done)
		// The queue is closed once the loop ends so blocked receivers are
		// unblocked; already-queued items remain drainable.
		defer s.queue.Close()

		if err := s.mgr.Run(runCtx, conn); err != nil {
			s.logger.Error("subscription stream stopped", "error", err)
		}
	}()

	return nil
}

// Receive blocks until a message arrives, the subscription is closed
// (ErrSubscriptionClosed), or ctx is done.
func (s *Subscription) Receive(ctx context.Context) (*ReceivedMessage, error) {
	return s.queue.Get(ctx, 0)
}

// ReceiveTimeout is Receive with an upper bound on the wait. It returns
// ErrReceiveTimeout when no message arrived in time; the stream itself is
// unaffected.
func (s *Subscription) ReceiveTimeout(ctx context.Context, timeout time.Duration) (*ReceivedMessage, error) {
	return s.queue.Get(ctx, timeout)
}

// Close stops the background loop, releases the connection, and unblocks
// any receiver waiting on the queue. Messages already queued may still be
// drained afterwards. Close is idempotent.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	} else {
		// Never connected: nothing to stop, but receivers must not hang.
		s.queue.Close()
	}

	s.logger.Info("subscription closed")
	return nil
}

// dial opens one websocket connection to the subscribe endpoint.
func (s *Subscription) dial(ctx context.Context) (*websocket.Conn, error) {
	u := subscribeURL(s.baseURL, s.topics, s.filter)

	header := http.Header{}
	if auth := s.creds.Header(); auth != "" {
		header.Set("Authorization", auth)
	}

	conn, resp, err := websocket.Dial(ctx, u, &websocket.DialOptions{
		HTTPHeader: header,
	})
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return nil, newAPIError(resp)
		}
		return nil, err
	}
	conn.SetReadLimit(maxFrameSize)
	return conn, nil
}

// handleFrame decodes one frame and routes it: message events (and
// optionally poll_request) go to the delivery queue, control events reset
// liveness implicitly by having arrived at all, and malformed or unknown
// lines are logged and skipped.
func (s *Subscription) handleFrame(ctx context.Context, frame []byte) error {
	msg, err := decodeEvent(frame)
	if err != nil {
		var unknownErr *UnknownEventError
		var decodeErr *DecodeError
		switch {
		case errors.As(err, &unknownErr):
			s.logger.Warn("skipping unknown event", "event", unknownErr.Event)
		case errors.As(err, &decodeErr):
			s.logger.Warn("skipping undecodable line", "error", decodeErr.Err, "line", decodeErr.Line)
		default:
			s.logger.Warn("skipping event", "error", err)
		}
		return nil
	}

	switch msg.Event {
	case EventMessage:
		// Blocks for backpressure when the consumer is slow. ErrClosed
		// means the consumer side is gone, which stops the stream manager.
		return s.queue.Put(ctx, msg)
	case EventPollRequest:
		if s.cfg.DeliverPollRequests {
			return s.queue.Put(ctx, msg)
		}
		s.logger.Debug("poll request received")
	case EventOpen:
		s.logger.Debug("stream opened", "topic", msg.Topic)
	case EventKeepalive:
		s.logger.Debug("keepalive received")
	}
	return nil
}

// onDisconnect drops messages queued before the connection was lost, so a
// consumer never observes stale pre-reconnect state after resume.
func (s *Subscription) onDisconnect() {
	if n := s.queue.Clear(); n > 0 {
		s.logger.Info("cleared undelivered messages after disconnect", "count", n)
	}
}
