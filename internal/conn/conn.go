// Package conn owns the socket of one IRC session.  It writes whole
// CRLF-terminated lines and reads in batches: one blocking read
// followed by a non-blocking drain of whatever else has already
// arrived.  Every raw byte in either direction is copied to a mirror.
package conn

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	ircerr "ircecho/internal/errors"
	"ircecho/internal/metrics"
	"ircecho/internal/transport"
	"ircecho/util"
)

// Conn is a line-oriented IRC connection.  It is not safe for
// concurrent use; the session drives it from one goroutine.
type Conn struct {
	nc     net.Conn
	addr   string
	mirror *util.MirrorWriter
	stats  *metrics.Collector
	buf    []byte

	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
}

// Options tune a Conn.  The zero value is usable.
type Options struct {
	Mirror io.Writer          // raw traffic copy; nil disables
	Stats  *metrics.Collector // may be nil
}

// Dial opens address through d.  No protocol bytes are exchanged.
func Dial(ctx context.Context, d transport.Dialer, network, address string, opts Options) (*Conn, error) {
	nc, err := d.Dial(ctx, network, address)
	if err != nil {
		return nil, ircerr.Wrap("dial", address, err)
	}
	return New(nc, address, opts), nil
}

// New wraps an already established stream.
func New(nc net.Conn, addr string, opts Options) *Conn {
	return &Conn{
		nc:     nc,
		addr:   addr,
		mirror: util.NewMirror(opts.Mirror),
		stats:  opts.Stats,
		buf:    make([]byte, util.DefaultBufSize),
	}
}

// RemoteAddr returns the address passed to Dial or New.
func (c *Conn) RemoteAddr() string { return c.addr }

// SendLine writes text followed by CRLF.  Short writes are retried
// until every byte is out or the write fails.
func (c *Conn) SendLine(text string) error {
	if c.closed.Load() {
		return ircerr.Wrap("write", c.addr, ircerr.ErrNotConnected)
	}
	if strings.ContainsAny(text, "\r\n") {
		return ircerr.ErrInvalidLine
	}

	wire := []byte(text + "\r\n")
	for off := 0; off < len(wire); {
		n, err := c.nc.Write(wire[off:])
		off += n
		if err != nil {
			c.stats.RecordError(err.Error())
			return ircerr.Wrap("write", c.addr, err)
		}
		if n == 0 {
			return ircerr.Wrap("write", c.addr, io.ErrShortWrite)
		}
	}

	c.mirror.Write(wire) //nolint:errcheck
	c.stats.LineSent(int64(len(wire)))
	return nil
}

// ReceiveBatch blocks until at least one byte arrives, then drains
// anything else that is immediately readable without waiting.  It
// returns ErrConnectionClosed once the peer has closed the stream.
func (c *Conn) ReceiveBatch() ([]byte, error) {
	if c.closed.Load() {
		return nil, ircerr.Wrap("read", c.addr, ircerr.ErrNotConnected)
	}

	n, err := c.nc.Read(c.buf)
	if n == 0 && err != nil {
		return nil, c.readError(err)
	}
	batch := append([]byte(nil), c.buf[:n]...)

	if err == nil {
		batch = append(batch, c.drain()...)
	}

	c.mirror.Write(batch) //nolint:errcheck
	c.stats.BytesReceived(int64(len(batch)))
	return batch, nil
}

func (c *Conn) readError(err error) error {
	if errors.Is(err, io.EOF) {
		return ircerr.Wrap("read", c.addr, ircerr.ErrConnectionClosed)
	}
	c.stats.RecordError(err.Error())
	return ircerr.Wrap("read", c.addr, err)
}

// Close closes the socket.  It may be called more than once and from
// another goroutine to unblock a pending ReceiveBatch.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.nc.Close()
	})
	return c.closeErr
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool { return c.closed.Load() }
