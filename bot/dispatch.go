package bot

import (
	"fmt"

	"ircecho/internal/codec"
	"ircecho/internal/metrics"
	"ircecho/util"
)

// LineSender writes one protocol line.  *conn.Conn implements it.
type LineSender interface {
	SendLine(text string) error
}

// Dispatcher routes inbound lines to their handlers.  It also holds
// the pending-join channel, which only a matching JOIN clears.
type Dispatcher struct {
	out         LineSender
	echoChannel string
	logger      *util.Logger
	stats       *metrics.Collector

	pending string
}

// NewDispatcher returns a Dispatcher that replies through out and
// copies every echo to echoChannel.
func NewDispatcher(out LineSender, echoChannel string, logger *util.Logger, stats *metrics.Collector) *Dispatcher {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Dispatcher{
		out:         out,
		echoChannel: echoChannel,
		logger:      logger,
		stats:       stats,
	}
}

// SetPending marks channel as joined-but-unconfirmed.
func (d *Dispatcher) SetPending(channel string) { d.pending = channel }

// Pending returns the unconfirmed channel, or "" when none.
func (d *Dispatcher) Pending() string { return d.pending }

// Feed decodes a raw batch and handles each complete line in order.
// Lines that fail to decode or classify are logged and skipped.  Only
// a failure to send a reply is returned.
func (d *Dispatcher) Feed(dec *codec.Decoder, batch []byte) error {
	for _, r := range dec.Decode(batch) {
		if r.Err != nil {
			d.skip(r.Err)
			continue
		}
		if err := d.Handle(r.Line); err != nil {
			return err
		}
	}
	return nil
}

// Handle acts on one decoded line.
func (d *Dispatcher) Handle(raw string) error {
	line, err := codec.Classify(raw)
	if err != nil {
		d.skip(err)
		return nil
	}
	d.stats.LineReceived()

	switch l := line.(type) {
	case codec.PingLine:
		return d.handlePing(l)
	case codec.PrivmsgLine:
		return d.handlePrivmsg(l)
	case codec.JoinLine:
		d.handleJoin(l)
	case codec.OtherLine:
	}
	return nil
}

func (d *Dispatcher) handlePing(l codec.PingLine) error {
	if err := d.send("PONG", l.Token); err != nil {
		return fmt.Errorf("pong: %w", err)
	}
	d.stats.PongSent()
	return nil
}

func (d *Dispatcher) handlePrivmsg(l codec.PrivmsgLine) error {
	d.logger.Info("%q sent %q on %q", l.Sender, l.Body, l.Target)

	targets := l.Sender
	if d.echoChannel != "" {
		targets += "," + d.echoChannel
	}
	text := fmt.Sprintf("%q sent %q on %q", l.Sender, l.Body, l.Target)
	if err := d.send("PRIVMSG", targets, text); err != nil {
		return fmt.Errorf("echo to %s: %w", targets, err)
	}
	d.stats.EchoSent()
	return nil
}

func (d *Dispatcher) handleJoin(l codec.JoinLine) {
	if d.pending == "" || l.Channel != d.pending {
		return
	}
	d.logger.Verbose("joined %s", d.pending)
	d.pending = ""
}

// send encodes and writes one line.  An unencodable line is a local
// problem and is skipped; a write failure is returned.
func (d *Dispatcher) send(command string, params ...string) error {
	line, err := codec.Encode(command, params...)
	if err != nil {
		d.skip(err)
		return nil
	}
	return d.out.SendLine(line)
}

func (d *Dispatcher) skip(err error) {
	d.stats.LineSkipped()
	d.logger.Debug("skipping line: %v", err)
}
