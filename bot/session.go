// Package bot runs one IRC echo-bot session: connect, register, join,
// then answer PINGs and echo PRIVMSGs until the connection ends.
//
// Layers (bottom → top):
//
//	transport  →  conn  →  codec  →  bot  →  cmd (CLI)
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ircecho/internal/codec"
	"ircecho/internal/conn"
	ircerr "ircecho/internal/errors"
	"ircecho/internal/metrics"
	"ircecho/internal/transport"
	"ircecho/util"
)

// Session is one logical bot connection.  It owns its socket: the
// socket is opened by Run and closed before Run returns.
type Session struct {
	Host         string
	Port         int
	Registration Registration
	EchoChannel  string

	Dialer transport.Dialer
	Mirror io.Writer // raw traffic copy; nil disables
	Logger *util.Logger
	Stats  *metrics.Collector
}

// Run connects and serves until the server closes the connection, an
// I/O error occurs, or ctx is cancelled.  A peer close and a
// cancellation return nil; anything else is returned as the reason the
// session ended.
func (s *Session) Run(ctx context.Context) error {
	if s.Logger == nil {
		s.Logger = util.NewLogger(0)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	addr := util.FormatAddr(s.Host, s.Port)
	s.Logger.Verbose("connecting to %s", addr)

	c, err := conn.Dial(ctx, s.Dialer, "tcp", addr, conn.Options{Mirror: s.Mirror, Stats: s.Stats})
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer c.Close()

	// Closing the socket is the only way to interrupt a blocking read.
	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	s.Logger.Verbose("connected to %s", addr)

	err = s.serve(c)
	switch {
	case ctx.Err() != nil:
		s.Logger.Info("interrupted, closing connection to %s", addr)
		return nil
	case ircerr.IsClosed(err):
		s.Logger.Info("%s closed the connection", addr)
		return nil
	case err != nil:
		s.Stats.RecordError(err.Error())
		return fmt.Errorf("session %s: %w", addr, err)
	}
	return nil
}

// serve runs the handshake and then the event loop over tr.
func (s *Session) serve(tr Transport) error {
	disp := NewDispatcher(tr, s.EchoChannel, s.Logger, s.Stats)
	dec := codec.NewDecoder()

	reg := NewRegistrar(tr, disp, dec, s.Registration)
	last, err := reg.Run()
	if err != nil {
		return fmt.Errorf("registration (%s): %w", reg.State(), err)
	}
	s.Stats.Registered()
	s.Logger.Info("registered as %s", s.Registration.Nick())
	s.Logger.Debug("last handshake batch: %q", last)

	return Loop(tr, disp, dec)
}

// Loop receives batches and dispatches their lines forever.  It only
// returns when receiving or replying fails; a peer close is reported
// as ErrConnectionClosed.
func Loop(tr Transport, disp *Dispatcher, dec *codec.Decoder) error {
	for {
		batch, err := tr.ReceiveBatch()
		if err != nil {
			return err
		}
		if err := disp.Feed(dec, batch); err != nil {
			return err
		}
	}
}

// ErrNoDialer is returned by Validate when no transport was set.
var ErrNoDialer = errors.New("session has no dialer")

// Validate reports missing parameters before any network activity.
func (s *Session) Validate() error {
	if s.Dialer == nil {
		return ErrNoDialer
	}
	if !util.ValidPort(s.Port) {
		return &ircerr.ConfigError{Field: "port", Value: s.Port, Message: "out of range 1-65535"}
	}
	if s.Registration.Username == "" {
		return &ircerr.ConfigError{Field: "user", Message: "required"}
	}
	return nil
}
