// Package stream owns the lifecycle of the persistent websocket connection
// behind a subscription: connect, read loop, inactivity detection, and
// reconnect with exponential backoff.
//
// The manager is deliberately unaware of the event wire format. It hands
// raw frames to an injected handler and reports connection boundaries
// through callbacks, so decoding policy stays with the caller.
package stream

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// State is the connection manager's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateDisconnected
	StateClosed
)

// String returns the lowercase state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Backoff configures the reconnect delay schedule: exponential doubling
// from Min up to Max with full jitter. MaxAttempts bounds consecutive
// failed connect attempts; zero means retry forever, which is the right
// default for long-running subscriptions.
type Backoff struct {
	Min         time.Duration
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff returns the reconnect schedule used when the caller does
// not supply one.
func DefaultBackoff() Backoff {
	return Backoff{Min: 500 * time.Millisecond, Max: 30 * time.Second}
}

// next computes the delay before the given zero-based attempt.
func (b Backoff) next(attempt int) time.Duration {
	base := float64(b.Min) * math.Pow(2, float64(attempt))
	if base > float64(b.Max) {
		base = float64(b.Max)
	}
	if base <= float64(b.Min) {
		return b.Min
	}
	jittered := float64(b.Min) + rand.Float64()*(base-float64(b.Min))
	return time.Duration(jittered)
}

// ErrRetriesExhausted is returned by Run when Backoff.MaxAttempts
// consecutive connect attempts failed.
var ErrRetriesExhausted = errors.New("stream: reconnect attempts exhausted")

// Dialer opens a new websocket connection to the subscription endpoint.
type Dialer func(ctx context.Context) (*websocket.Conn, error)

// Handler consumes one raw frame from the stream. Returning an error stops
// the manager; recoverable conditions (decode failures, unknown events)
// must be handled inside and swallowed.
type Handler func(ctx context.Context, frame []byte) error

// Options configures a Manager.
type Options struct {
	Dial   Dialer
	Handle Handler
	// OnDisconnect fires when a live connection is lost, before the next
	// reconnect attempt. The subscription uses it to drop stale queued
	// messages so they are not delivered after resume.
	OnDisconnect func()
	Backoff      Backoff
	// InactivityTimeout bounds the silence (including missed keepalives)
	// tolerated on a live connection before it is declared dead.
	InactivityTimeout time.Duration
	Logger            *slog.Logger
}

// DefaultInactivityTimeout leaves ample headroom over the service's 45s
// keepalive interval.
const DefaultInactivityTimeout = 2 * time.Minute

// Manager runs the Connecting/Streaming/Disconnected loop for one
// subscription. One live connection at a time; the socket is owned
// exclusively by the goroutine running Run.
type Manager struct {
	opts  Options
	state atomic.Int32
}

// New creates a Manager. Dial and Handle are required; zero-value Backoff
// and InactivityTimeout fall back to defaults.
func New(opts Options) *Manager {
	if opts.Backoff == (Backoff{}) {
		opts.Backoff = DefaultBackoff()
	}
	if opts.InactivityTimeout <= 0 {
		opts.InactivityTimeout = DefaultInactivityTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{opts: opts}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) setState(s State) {
	m.state.Store(int32(s))
}

// Run drives the connection loop until ctx is cancelled or the retry budget
// is exhausted. An already-open connection may be passed in so the very
// first connect can happen synchronously on the caller's side; Run then
// starts in the Streaming state.
//
// Cancellation is observed at every state boundary: before each connect
// attempt, during backoff waits, and between reads.
func (m *Manager) Run(ctx context.Context, conn *websocket.Conn) error {
	defer m.setState(StateClosed)

	attempt := 0
	for {
		if conn == nil {
			if ctx.Err() != nil {
				return nil
			}
			m.setState(StateConnecting)

			var err error
			conn, err = m.opts.Dial(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				attempt++
				if m.opts.Backoff.MaxAttempts > 0 && attempt >= m.opts.Backoff.MaxAttempts {
					m.opts.Logger.Error("reconnect attempts exhausted",
						"attempts", attempt,
						"error", err,
					)
					return ErrRetriesExhausted
				}

				wait := m.opts.Backoff.next(attempt - 1)
				m.opts.Logger.Warn("connect failed, backing off",
					"attempt", attempt,
					"wait", wait,
					"error", err,
				)
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil
				}
				continue
			}
		}

		attempt = 0
		m.setState(StateStreaming)
		err := m.stream(ctx, conn)
		conn = nil

		if ctx.Err() != nil {
			return nil
		}
		if err != nil && !isTransportError(err) {
			// Handler failure: the consumer side is gone, stop for good.
			return err
		}

		m.setState(StateDisconnected)
		m.opts.Logger.Info("connection lost, scheduling reconnect", "error", err)
		if m.opts.OnDisconnect != nil {
			m.opts.OnDisconnect()
		}
	}
}

// stream reads frames until the connection dies, the handler fails, or ctx
// is cancelled. Each read carries its own deadline so a silent connection
// (no messages, no keepalives) is detected and torn down.
func (m *Manager) stream(ctx context.Context, conn *websocket.Conn) error {
	defer conn.CloseNow()

	for {
		readCtx, cancel := context.WithTimeout(ctx, m.opts.InactivityTimeout)
		_, frame, err := conn.Read(readCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				// Caller-requested shutdown: close politely.
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			if errors.Is(readCtx.Err(), context.DeadlineExceeded) {
				m.opts.Logger.Warn("inactivity timeout exceeded, dropping connection",
					"timeout", m.opts.InactivityTimeout,
				)
				return &transportError{err: readCtx.Err()}
			}
			return &transportError{err: err}
		}

		if err := m.opts.Handle(ctx, frame); err != nil {
			return err
		}
	}
}

// transportError marks connection-level failures that trigger the
// reconnect loop rather than stopping the manager.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "stream: transport error: " + e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }

func isTransportError(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}
