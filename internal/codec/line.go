package codec

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	ircerr "ircecho/internal/errors"
)

// Line is a classified inbound protocol line: exactly one of
// PingLine, PrivmsgLine, JoinLine or OtherLine.
type Line interface {
	Raw() string
	isLine()
}

// PingLine is a server keepalive that must be answered with PONG.
type PingLine struct {
	raw   string
	Token string
}

// PrivmsgLine is a message from Sender to Target.
type PrivmsgLine struct {
	raw    string
	Sender string // nick part of the prefix
	Target string // channel or nick the message was sent to
	Body   string
}

// JoinLine is a membership confirmation: Source joined Channel.
type JoinLine struct {
	raw     string
	Source  string
	Channel string
}

// OtherLine is anything the bot does not act on.
type OtherLine struct {
	raw     string
	Command string
}

func (l PingLine) Raw() string    { return l.raw }
func (l PrivmsgLine) Raw() string { return l.raw }
func (l JoinLine) Raw() string    { return l.raw }
func (l OtherLine) Raw() string   { return l.raw }

func (PingLine) isLine()    {}
func (PrivmsgLine) isLine() {}
func (JoinLine) isLine()    {}
func (OtherLine) isLine()   {}

// Classify parses one decoded line into its variant.  It returns a
// MalformedLineError for a line that cannot be parsed at all, or for a
// PRIVMSG missing its sender nick, target or body.
func Classify(raw string) (Line, error) {
	msg, err := ircmsg.ParseLine(raw)
	if err != nil {
		return nil, ircerr.Malformed("", raw, err.Error())
	}

	switch strings.ToUpper(msg.Command) {
	case "PING":
		var token string
		if len(msg.Params) > 0 {
			token = msg.Params[0]
		}
		return PingLine{raw: raw, Token: token}, nil

	case "PRIVMSG":
		if msg.Source == "" {
			return nil, ircerr.Malformed("PRIVMSG", raw, "missing prefix")
		}
		if len(msg.Params) < 2 {
			return nil, ircerr.Malformed("PRIVMSG", raw, "missing target or body")
		}
		sender, _, _ := strings.Cut(msg.Source, "!")
		if sender == "" {
			return nil, ircerr.Malformed("PRIVMSG", raw, "empty sender nick")
		}
		return PrivmsgLine{
			raw:    raw,
			Sender: sender,
			Target: msg.Params[0],
			Body:   strings.TrimSpace(msg.Params[1]),
		}, nil

	case "JOIN":
		// Only "<prefix> JOIN <channel>" confirms membership.
		if msg.Source == "" || len(msg.Params) != 1 {
			return OtherLine{raw: raw, Command: msg.Command}, nil
		}
		return JoinLine{raw: raw, Source: msg.Source, Channel: msg.Params[0]}, nil
	}

	return OtherLine{raw: raw, Command: msg.Command}, nil
}
