package transport

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// ScriptedStream is an in-memory Stream for tests. Replies queued with
// QueueReply are served to Read in order; everything the client writes
// accumulates in Written. Reading past the scripted replies returns
// io.EOF, which surfaces over-reads immediately instead of hanging a
// test.
type ScriptedStream struct {
	mu      sync.Mutex
	replies bytes.Buffer
	written bytes.Buffer
	closed  bool
}

// NewScriptedStream creates an empty scripted stream.
func NewScriptedStream() *ScriptedStream {
	return &ScriptedStream{}
}

// QueueReply appends raw reply bytes for subsequent Reads.
func (s *ScriptedStream) QueueReply(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies.Write(p)
}

// Written returns everything the client has written so far.
func (s *ScriptedStream) Written() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.written.Len())
	copy(out, s.written.Bytes())
	return out
}

// ResetWritten clears the write capture between requests.
func (s *ScriptedStream) ResetWritten() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written.Reset()
}

func (s *ScriptedStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if s.replies.Len() == 0 {
		return 0, io.EOF
	}
	return s.replies.Read(p)
}

func (s *ScriptedStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	return s.written.Write(p)
}

// SetReadDeadline is a no-op; scripted reads never block.
func (s *ScriptedStream) SetReadDeadline(time.Time) error {
	return nil
}

func (s *ScriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
