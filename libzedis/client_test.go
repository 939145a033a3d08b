package libzedis

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNegotiateUpgrades(t *testing.T) {
	c, stream := newTestClient()
	stream.QueueReply([]byte("%1\r\n$5\r\nproto\r\n:3\r\n"))
	require.NoError(t, c.negotiate())
	assert.Equal(t, 3, c.Proto())
	assert.Equal(t, frame("HELLO", "3"), stream.Written())
}

func TestNegotiateFallsBackToClassic(t *testing.T) {
	c, stream := newTestClient()
	stream.QueueReply([]byte("-ERR unknown command 'HELLO'\r\n"))
	require.NoError(t, c.negotiate())
	assert.Equal(t, 2, c.Proto())

	// The rejection is the server declining the upgrade, not a fault:
	// the connection keeps working.
	stream.ResetWritten()
	stream.QueueReply([]byte(":1\r\n"))
	n, err := c.ZCard(context.Background(), "key")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPushFramesSkipped(t *testing.T) {
	c, stream := newTestClient()
	stream.QueueReply([]byte(">2\r\n$7\r\nmessage\r\n$2\r\nhi\r\n"))
	stream.QueueReply([]byte(":5\r\n"))
	n, err := c.ZCard(context.Background(), "key")
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}

func TestDoAfterClose(t *testing.T) {
	c, _ := newTestClient()
	require.NoError(t, c.Close())
	_, err := c.ZCard(context.Background(), "key")
	assert.ErrorIs(t, err, ErrClosed)
	// Close is idempotent.
	require.NoError(t, c.Close())
}

func TestCanceledContextWritesNothing(t *testing.T) {
	c, stream := newTestClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ZCard(ctx, "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stream.Written())
}

func TestUnexpectedEOFPoisons(t *testing.T) {
	c, stream := newTestClient()
	stream.QueueReply([]byte(":1\r")) // truncated frame, then EOF
	_, err := c.ZCard(context.Background(), "key")
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)

	_, err = c.ZCard(context.Background(), "key")
	assert.ErrorIs(t, err, ErrClosed)
}

// drainPipe keeps the peer end of a net.Pipe readable so client writes
// do not block, while never replying.
func drainPipe(t *testing.T, conn net.Conn) {
	t.Helper()
	go func() {
		buf := make([]byte, 1024)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()
}

func TestReplyDeadlinePoisons(t *testing.T) {
	cli, srv := net.Pipe()
	defer srv.Close()
	drainPipe(t, srv)

	c := NewClient(cli)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.ZCard(ctx, "key")
	assert.ErrorIs(t, err, ErrDeadline)

	_, err = c.ZCard(context.Background(), "key")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBlockingPopDeadlineYieldsNull(t *testing.T) {
	cli, srv := net.Pipe()
	defer srv.Close()
	drainPipe(t, srv)

	c := NewClient(cli)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	entry, err := c.BZPopMin(ctx, 0, "key")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// Expiry mid-wait leaves an unknown reply boundary; the
	// connection is gone.
	_, err = c.ZCard(context.Background(), "key")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBlockingDeadlineIncludesGrace(t *testing.T) {
	c, stream := newTestClient()
	stream.QueueReply([]byte("*-1\r\n"))
	entry, err := c.BZPopMin(context.Background(), 2*time.Second, "key")
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.Equal(t, frame("BZPOPMIN", "key", "2"), stream.Written())
}

func TestReadTimeoutZeroKeepsBlocking(t *testing.T) {
	// With no read timeout and no context deadline the computed
	// deadline stays zero, which the transport treats as "no limit".
	d := readDeadline(context.Background(), 0)
	assert.True(t, d.IsZero())

	d = readDeadline(context.Background(), time.Second)
	assert.False(t, d.IsZero())
}

func TestReadDeadlinePicksEarlier(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	d := readDeadline(ctx, time.Hour)
	ctxDeadline, _ := ctx.Deadline()
	assert.Equal(t, ctxDeadline, d)
}
