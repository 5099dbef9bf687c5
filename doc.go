// Package ntfy is a client library for the ntfy push-notification service.
//
// It covers the three interaction styles the service offers: publishing
// messages over HTTP (Client.Publish), one-shot polling of cached messages
// (Client.Poll), and streaming subscriptions over a persistent websocket
// connection (Client.Subscribe / Subscription).
//
// Subscriptions maintain their connection in a background goroutine:
// transient failures trigger reconnects with exponential backoff, a silent
// connection (no keepalives) is detected and recycled, and decoded messages
// are buffered into a bounded queue the consumer drains with Receive.
// Messages queued before a connection was lost are dropped on reconnect
// rather than redelivered; the library performs no deduplication and
// preserves server emission order.
//
// The library does not implement the service itself, does not guarantee
// exactly-once delivery, and does not persist messages across restarts.
package ntfy
