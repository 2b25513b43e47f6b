// Package codec turns IRC protocol lines into bytes and back.
//
// Outbound lines are built with ircmsg from ergochat/irc-go.  Inbound
// bytes are split into lines by a Decoder that keeps an incomplete
// trailing fragment until the rest of it arrives.  Only 7-bit ASCII is
// accepted in either direction.
package codec

import (
	"bytes"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	ircerr "ircecho/internal/errors"
)

// MaxLineLen caps a buffered partial line.  A peer that never sends a
// line terminator cannot grow the buffer past this.
const MaxLineLen = 8191 + 512

// trailingCommands always carry their last parameter as ":text",
// even when the text has no spaces.
var trailingCommands = map[string]bool{
	"USER":    true,
	"PRIVMSG": true,
	"NOTICE":  true,
	"PONG":    true,
	"PART":    true,
	"QUIT":    true,
}

// Encode builds one protocol line, without the CRLF terminator, from a
// command verb and its parameters.  Parameters must be ASCII and free
// of CR, LF and NUL; only the final one may contain spaces.
func Encode(command string, params ...string) (string, error) {
	for _, p := range params {
		if err := checkParam(p); err != nil {
			return "", err
		}
	}

	msg := ircmsg.MakeMessage(nil, "", command, params...)
	if trailingCommands[strings.ToUpper(command)] && len(params) > 0 {
		msg.ForceTrailing()
	}
	line, err := msg.Line()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}

func checkParam(p string) error {
	if strings.ContainsAny(p, "\r\n\x00") {
		return ircerr.ErrInvalidLine
	}
	if i := nonASCII(p); i >= 0 {
		return &ircerr.DecodeError{Line: p, Offset: i, Byte: p[i]}
	}
	return nil
}

// nonASCII returns the index of the first byte >= 0x80, or -1.
func nonASCII(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return i
		}
	}
	return -1
}

// Result is one decoded line or the reason it was dropped.
type Result struct {
	Line string
	Err  error
}

// Decoder splits a byte stream into lines.  Bytes after the last LF of
// a batch are held until a later batch completes them.  A Decoder is
// not safe for concurrent use.
type Decoder struct {
	partial []byte
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode appends batch to any buffered fragment and returns every
// complete line, in order.  Lines are terminated by LF with an
// optional preceding CR; empty lines are skipped.  A line with a byte
// outside 7-bit ASCII is reported as a DecodeError and not returned as
// a line.
func (d *Decoder) Decode(batch []byte) []Result {
	if len(batch) == 0 {
		return nil
	}

	data := batch
	if len(d.partial) > 0 {
		data = append(d.partial, batch...)
		d.partial = nil
	}

	var out []Result
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		if r, ok := decodeLine(data[:i]); ok {
			out = append(out, r)
		}
		data = data[i+1:]
	}

	if len(data) > 0 {
		if len(data) > MaxLineLen {
			out = append(out, Result{Err: ircerr.Malformed("", string(data[:64]), "line too long")})
		} else {
			d.partial = append([]byte(nil), data...)
		}
	}
	return out
}

// Pending returns the buffered incomplete fragment.
func (d *Decoder) Pending() string {
	return string(d.partial)
}

func decodeLine(raw []byte) (Result, bool) {
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if len(raw) == 0 {
		return Result{}, false
	}
	line := string(raw)
	if i := nonASCII(line); i >= 0 {
		return Result{Err: &ircerr.DecodeError{Line: line, Offset: i, Byte: line[i]}}, true
	}
	return Result{Line: line}, true
}

// DecodeBatch splits a single self-contained batch.  A trailing
// fragment without a line terminator is returned as a line.
func DecodeBatch(batch []byte) ([]string, []error) {
	var (
		lines []string
		errs  []error
	)
	d := NewDecoder()
	results := d.Decode(batch)
	if r, ok := decodeLine([]byte(d.Pending())); ok {
		results = append(results, r)
	}
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		lines = append(lines, r.Line)
	}
	return lines, errs
}
