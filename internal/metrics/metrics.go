// Package metrics provides lightweight, lock-free counters for
// tracking the traffic of an ircecho session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime counters for one session.
type Collector struct {
	linesIn      atomic.Int64
	linesOut     atomic.Int64
	linesSkipped atomic.Int64
	bytesIn      atomic.Int64
	bytesOut     atomic.Int64
	pongs        atomic.Int64
	echoes       atomic.Int64
	errorsTotal  atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	registeredAt time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Traffic ──────────────────────────────────────────────────────────

// BytesReceived records one inbound batch of n bytes.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// LineReceived records one decoded inbound line.
func (c *Collector) LineReceived() {
	if c == nil {
		return
	}
	c.linesIn.Add(1)
}

// LineSkipped records an inbound line dropped as undecodable or
// malformed.
func (c *Collector) LineSkipped() {
	if c == nil {
		return
	}
	c.linesSkipped.Add(1)
}

// LineSent records one outbound line of n bytes including CRLF.
func (c *Collector) LineSent(n int64) {
	if c == nil {
		return
	}
	c.linesOut.Add(1)
	c.bytesOut.Add(n)
}

// ── Bot actions ──────────────────────────────────────────────────────

// PongSent records a keepalive reply.
func (c *Collector) PongSent() {
	if c == nil {
		return
	}
	c.pongs.Add(1)
}

// EchoSent records an echoed PRIVMSG.
func (c *Collector) EchoSent() {
	if c == nil {
		return
	}
	c.echoes.Add(1)
}

// Registered records the moment registration completed.
func (c *Collector) Registered() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.registeredAt = time.Now()
	c.mu.Unlock()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	LinesIn          int64  `json:"lines_in"`
	LinesOut         int64  `json:"lines_out"`
	LinesSkipped     int64  `json:"lines_skipped"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	Pongs            int64  `json:"pongs"`
	Echoes           int64  `json:"echoes"`
	ErrorsTotal      int64  `json:"errors_total"`
	RegisteredAt     string `json:"registered_at,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:       time.Since(c.startTime).Truncate(time.Second).String(),
		LinesIn:      c.linesIn.Load(),
		LinesOut:     c.linesOut.Load(),
		LinesSkipped: c.linesSkipped.Load(),
		BytesIn:      c.bytesIn.Load(),
		BytesOut:     c.bytesOut.Load(),
		Pongs:        c.pongs.Load(),
		Echoes:       c.echoes.Load(),
		ErrorsTotal:  c.errorsTotal.Load(),
	}
	if !c.registeredAt.IsZero() {
		s.RegisteredAt = c.registeredAt.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	data, _ := json.MarshalIndent(c.Snapshot(), "", "  ")
	return string(data)
}
