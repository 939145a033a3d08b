package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsStream adapts a websocket connection to the Stream contract.
// Request frames go out as single binary messages; incoming messages
// are drained byte-wise so the reply decoder can consume them like any
// other stream.
type wsStream struct {
	conn    *websocket.Conn
	pending []byte
}

func dialWebSocket(opts Options) (Stream, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: opts.DialTimeout,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
	conn, resp, err := dialer.Dial(opts.Address, http.Header{})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("transport: websocket dial %s: %w", opts.Address, err)
	}
	return &wsStream{conn: conn}, nil
}

func (s *wsStream) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		s.pending = data
	}
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
