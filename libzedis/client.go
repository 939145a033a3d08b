// Package libzedis is a client for Redis-protocol servers, built
// around the sorted-set command family. One Client owns one transport
// stream and serializes calls over it: exactly one request is in
// flight at a time and replies pair with requests strictly in order.
package libzedis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"zedis-go/libzedis/common/resp"
	"zedis-go/libzedis/transport"
)

// blockGrace is added on top of a blocking command's own timeout so the
// server's null reply normally wins the race against the client-side
// deadline.
const blockGrace = time.Second

// Options configures a Client.
type Options struct {
	// Network is "tcp", "unix" or "ws".
	Network string
	// Address is host:port, a socket path, or a ws:// URL.
	Address string
	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration
	// ReadTimeout bounds each non-blocking reply wait. Zero waits
	// indefinitely (context deadlines still apply).
	ReadTimeout time.Duration
	// ProxyAddr optionally routes tcp dials through a SOCKS5 proxy.
	ProxyAddr string
	// PreferRESP2 skips the HELLO upgrade and stays on the classic
	// revision.
	PreferRESP2 bool
	// Logger receives connection lifecycle events. Defaults to a
	// disabled logger.
	Logger *zerolog.Logger
}

// Client is a connection to the server. Methods are safe for
// concurrent use; calls sharing the connection are queued on an
// internal mutex so the single in-flight invariant holds.
type Client struct {
	mu     sync.Mutex
	stream transport.Stream
	dec    *resp.Decoder
	rbuf   []byte
	log    zerolog.Logger
	proto  int
	closed bool
	broken bool

	readTimeout time.Duration
}

// Dial connects per opts and negotiates the protocol revision.
func Dial(opts Options) (*Client, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	stream, err := transport.Dial(transport.Options{
		Network:     opts.Network,
		Address:     opts.Address,
		DialTimeout: opts.DialTimeout,
		ProxyAddr:   opts.ProxyAddr,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		stream:      stream,
		dec:         resp.NewDecoder(),
		rbuf:        make([]byte, 4096),
		log:         logger,
		proto:       2,
		readTimeout: opts.ReadTimeout,
	}

	if !opts.PreferRESP2 {
		if err := c.negotiate(); err != nil {
			c.Close()
			return nil, err
		}
	}

	c.log.Debug().
		Str("network", opts.Network).
		Str("address", opts.Address).
		Int("proto", c.proto).
		Msg("connected")
	return c, nil
}

// NewClient wraps an already-established stream. Used by tests and by
// callers that manage their own transport.
func NewClient(stream transport.Stream) *Client {
	return &Client{
		stream: stream,
		dec:    resp.NewDecoder(),
		rbuf:   make([]byte, 4096),
		log:    zerolog.Nop(),
		proto:  2,
	}
}

// negotiate upgrades to the extended revision when the server supports
// HELLO; an error reply means a classic-revision server and is not a
// failure.
func (c *Client) negotiate() error {
	_, err := c.Do(context.Background(), "HELLO", resp.Arg(3))
	if err != nil {
		var serr *ServerError
		if errors.As(err, &serr) {
			return nil
		}
		return err
	}
	c.mu.Lock()
	c.proto = 3
	c.mu.Unlock()
	return nil
}

// Proto reports the negotiated protocol revision, 2 or 3.
func (c *Client) Proto() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proto
}

// Close releases the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.stream.Close()
}

// Do submits one command frame and returns the next reply in FIFO
// order. Server error replies come back as *ServerError; protocol
// faults and reply deadlines poison the connection.
func (c *Client) Do(ctx context.Context, verb string, args ...[]byte) (resp.Value, error) {
	return c.call(ctx, c.readTimeout, verb, args)
}

// DoBlocking is Do for commands that block server side up to timeout.
// The client-side deadline is timeout plus a grace period; a zero
// timeout blocks until the context expires.
func (c *Client) DoBlocking(ctx context.Context, timeout time.Duration, verb string, args ...[]byte) (resp.Value, error) {
	var wait time.Duration
	if timeout > 0 {
		wait = timeout + blockGrace
	}
	return c.call(ctx, wait, verb, args)
}

func (c *Client) call(ctx context.Context, wait time.Duration, verb string, args [][]byte) (resp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.broken {
		return resp.Value{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return resp.Value{}, err
	}

	frame := resp.EncodeCommand(nil, verb, args...)
	if _, err := c.stream.Write(frame); err != nil {
		c.fail()
		return resp.Value{}, fmt.Errorf("zedis: write: %w", err)
	}

	if err := c.stream.SetReadDeadline(readDeadline(ctx, wait)); err != nil {
		c.fail()
		return resp.Value{}, fmt.Errorf("zedis: set deadline: %w", err)
	}

	for {
		v, err := c.dec.Decode()
		if err == nil {
			// Out-of-band push frames are not replies; the next
			// frame keeps the FIFO pairing.
			if v.Type == resp.TypePush {
				continue
			}
			if v.IsError() {
				return resp.Value{}, serverError(v)
			}
			return v, nil
		}
		if !errors.Is(err, resp.ErrIncompleteMessage) {
			c.fail()
			c.log.Error().Err(err).Msg("protocol fault, discarding connection")
			return resp.Value{}, err
		}

		n, err := c.stream.Read(c.rbuf)
		if n > 0 {
			c.dec.Feed(c.rbuf[:n])
			continue
		}
		if err != nil {
			c.fail()
			if isTimeout(err) {
				c.log.Warn().Str("verb", verb).Msg("reply deadline exceeded")
				return resp.Value{}, ErrDeadline
			}
			return resp.Value{}, fmt.Errorf("zedis: read: %w", err)
		}
	}
}

// fail poisons the connection after a fault whose reply boundary is
// unknown; later calls return ErrClosed.
func (c *Client) fail() {
	if c.broken {
		return
	}
	c.broken = true
	c.stream.Close()
}

func readDeadline(ctx context.Context, wait time.Duration) time.Time {
	var deadline time.Time
	if wait > 0 {
		deadline = time.Now().Add(wait)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return deadline
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
