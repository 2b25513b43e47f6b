package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections, optionally from a
// specific local address (an IRC "vhost").
type TCPDialer struct {
	Timeout   time.Duration
	BindHost  string // optional source address ("" = any)
	KeepAlive time.Duration
}

// Dial connects to address over TCP.
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}

	if d.BindHost != "" {
		a, err := net.ResolveTCPAddr(network, net.JoinHostPort(d.BindHost, "0"))
		if err != nil {
			return nil, fmt.Errorf("resolve bind addr: %w", err)
		}
		dialer.LocalAddr = a
	}

	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }
