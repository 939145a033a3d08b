package transport

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialRejectsUnknownNetwork(t *testing.T) {
	_, err := Dial(Options{Network: "udp", Address: "localhost:6379"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported network")
}

func TestScriptedStream(t *testing.T) {
	s := NewScriptedStream()
	s.QueueReply([]byte("+OK\r\n"))

	n, err := s.Write([]byte("PING\r\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, []byte("PING\r\n"), s.Written())

	buf := make([]byte, 16)
	n, err = s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("+OK\r\n"), buf[:n])

	// Reading past the script surfaces an over-read instead of
	// blocking the test.
	_, err = s.Read(buf)
	assert.ErrorIs(t, err, io.EOF)

	s.ResetWritten()
	assert.Empty(t, s.Written())

	require.NoError(t, s.Close())
	_, err = s.Read(buf)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
