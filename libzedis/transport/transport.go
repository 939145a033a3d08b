// Package transport dials the byte streams a zedis-go client runs
// over. The protocol layer above only needs an ordered, binary-safe
// stream with read deadlines; TCP, unix sockets and RESP-over-websocket
// tunnels all satisfy that contract.
package transport

import (
	"fmt"
	"net"
	"time"

	"golang.org/x/net/proxy"
)

// Stream is the byte stream a client connection runs over.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Options selects and configures the transport.
type Options struct {
	// Network is "tcp", "unix" or "ws".
	Network string
	// Address is host:port for tcp, a socket path for unix, or a
	// ws:// / wss:// URL for websocket tunnels.
	Address string
	// DialTimeout bounds connection establishment. Zero means no bound.
	DialTimeout time.Duration
	// ProxyAddr, when set, routes tcp dials through a SOCKS5 proxy.
	ProxyAddr string
}

// Dial opens a stream per opts.
func Dial(opts Options) (Stream, error) {
	switch opts.Network {
	case "", "tcp":
		return dialNet("tcp", opts)
	case "unix":
		return dialNet("unix", opts)
	case "ws":
		return dialWebSocket(opts)
	default:
		return nil, fmt.Errorf("transport: unsupported network %q", opts.Network)
	}
}

func dialNet(network string, opts Options) (Stream, error) {
	base := &net.Dialer{Timeout: opts.DialTimeout}

	if opts.ProxyAddr != "" && network == "tcp" {
		socks, err := proxy.SOCKS5("tcp", opts.ProxyAddr, nil, base)
		if err != nil {
			return nil, fmt.Errorf("transport: proxy setup: %w", err)
		}
		conn, err := socks.Dial("tcp", opts.Address)
		if err != nil {
			return nil, fmt.Errorf("transport: proxy dial %s: %w", opts.Address, err)
		}
		return conn.(net.Conn), nil
	}

	conn, err := base.Dial(network, opts.Address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s %s: %w", network, opts.Address, err)
	}
	return conn, nil
}
