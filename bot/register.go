package bot

import (
	"fmt"
	"strconv"
	"strings"

	"ircecho/internal/codec"
)

// Registration holds the parameters of the USER/NICK/JOIN handshake.
// It is immutable for the lifetime of a session.
type Registration struct {
	Username string
	Nickname string // defaults to Username
	RealName string
	Mode     int // USER mode bitmask, e.g. 8 for +i
	Channels []string
}

// Nick returns the nickname to register, falling back to Username.
func (r Registration) Nick() string {
	if r.Nickname != "" {
		return r.Nickname
	}
	return r.Username
}

// ChannelName returns name with exactly one leading '#'.
func ChannelName(name string) string {
	return "#" + strings.TrimPrefix(name, "#")
}

// State is a step of the registration handshake.
type State int

const (
	Unregistered State = iota
	UserSent
	NickSent
	Joining
	Registered
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case UserSent:
		return "user-sent"
	case NickSent:
		return "nick-sent"
	case Joining:
		return "joining"
	case Registered:
		return "registered"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Transport is the pair of operations the handshake and the event
// loop need from a connection.
type Transport interface {
	LineSender
	ReceiveBatch() ([]byte, error)
}

// Registrar drives the handshake.  Every batch received while waiting
// is fed to the dispatcher, so PINGs are answered during registration
// too.
type Registrar struct {
	tr    Transport
	disp  *Dispatcher
	dec   *codec.Decoder
	reg   Registration
	state State
	last  []byte
}

// NewRegistrar prepares a handshake over tr.
func NewRegistrar(tr Transport, disp *Dispatcher, dec *codec.Decoder, reg Registration) *Registrar {
	return &Registrar{tr: tr, disp: disp, dec: dec, reg: reg}
}

// State returns the current handshake step.
func (r *Registrar) State() State { return r.state }

// Run performs USER, NICK and one JOIN per channel, blocking on the
// server after each.  A JOIN is only considered done once the server
// echoes it back; there is no timeout.  It returns the last raw batch
// received.
func (r *Registrar) Run() ([]byte, error) {
	if err := r.step(UserSent, "USER", r.reg.Username, strconv.Itoa(r.reg.Mode), "*", r.reg.RealName); err != nil {
		return nil, err
	}
	if err := r.receive(); err != nil {
		return nil, err
	}

	if err := r.step(NickSent, "NICK", r.reg.Nick()); err != nil {
		return nil, err
	}
	if err := r.receive(); err != nil {
		return nil, err
	}

	for _, ch := range r.reg.Channels {
		if err := r.join(ChannelName(ch)); err != nil {
			return nil, err
		}
	}

	r.state = Registered
	return r.last, nil
}

func (r *Registrar) join(channel string) error {
	r.disp.SetPending(channel)
	if err := r.step(Joining, "JOIN", channel); err != nil {
		return err
	}
	for r.disp.Pending() != "" {
		if err := r.receive(); err != nil {
			return fmt.Errorf("waiting for %s: %w", channel, err)
		}
	}
	return nil
}

func (r *Registrar) step(next State, command string, params ...string) error {
	line, err := codec.Encode(command, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(command), err)
	}
	if err := r.tr.SendLine(line); err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(command), err)
	}
	r.state = next
	return nil
}

func (r *Registrar) receive() error {
	batch, err := r.tr.ReceiveBatch()
	if err != nil {
		return err
	}
	r.last = batch
	return r.disp.Feed(r.dec, batch)
}
