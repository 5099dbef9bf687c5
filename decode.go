package ntfy

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errEmptyLine = errors.New("empty line")

// decodeEvent parses one line of the newline-delimited JSON stream into a
// ReceivedMessage. It is pure and never blocks.
//
// Errors are typed so callers can apply the skip-and-continue policy:
// malformed JSON or a missing "event" field yields *DecodeError, a valid
// line with an unrecognized discriminant yields *UnknownEventError. Neither
// should terminate the stream.
func decodeEvent(line []byte) (*ReceivedMessage, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, &DecodeError{Err: errEmptyLine}
	}

	var msg ReceivedMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, &DecodeError{Line: string(line), Err: err}
	}
	if msg.Event == "" {
		return nil, &DecodeError{Line: string(line)}
	}
	if !msg.Event.known() {
		return nil, &UnknownEventError{Event: string(msg.Event)}
	}
	return &msg, nil
}
