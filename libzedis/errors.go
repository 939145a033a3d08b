package libzedis

import (
	"errors"
	"fmt"
	"strings"

	"zedis-go/libzedis/common/resp"
)

// Error taxonomy. Server error replies and argument validation are
// ordinary per-call failures; protocol faults and reply deadlines leave
// the connection unusable.
var (
	// ErrClosed is returned by calls on a closed connection, or one
	// abandoned after a fatal fault.
	ErrClosed = errors.New("zedis: connection closed")
	// ErrDeadline is returned when a reply did not arrive before the
	// effective read deadline. The connection is discarded: a late
	// reply could no longer be paired with its request.
	ErrDeadline = errors.New("zedis: deadline exceeded awaiting reply")
	// ErrArgument wraps local validation failures, reported before any
	// bytes are written.
	ErrArgument = errors.New("zedis: invalid argument")
)

// ServerError is a well-formed error reply from the server. It is a
// per-call result, never a connection fault.
type ServerError struct {
	Code    string // leading token, e.g. "ERR", "WRONGTYPE"
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "zedis: server error: " + e.Code
	}
	return "zedis: server error: " + e.Code + " " + e.Message
}

// serverError splits an error-typed reply value into code and message.
func serverError(v resp.Value) *ServerError {
	text, _ := v.Text()
	code, msg, found := strings.Cut(text, " ")
	if !found {
		return &ServerError{Code: code}
	}
	return &ServerError{Code: code, Message: msg}
}

func argErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}
