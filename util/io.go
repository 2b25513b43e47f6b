package util

import (
	"io"
	"sync/atomic"
)

// DefaultBufSize is the read buffer size for one network read.  IRC
// lines are at most 512 bytes (8 KiB with tags), so one read normally
// carries many lines.
const DefaultBufSize = 64 * 1024

// MirrorWriter copies bytes to a side channel without ever failing the
// caller.  The first write error disables the mirror; a nil
// MirrorWriter or one wrapping a nil writer discards everything.
type MirrorWriter struct {
	w      io.Writer
	broken atomic.Bool
}

// NewMirror wraps w.  Pass nil to disable mirroring.
func NewMirror(w io.Writer) *MirrorWriter {
	return &MirrorWriter{w: w}
}

// Write always reports len(p) bytes written and a nil error.
func (m *MirrorWriter) Write(p []byte) (int, error) {
	if m == nil || m.w == nil || m.broken.Load() {
		return len(p), nil
	}
	if _, err := m.w.Write(p); err != nil {
		m.broken.Store(true)
	}
	return len(p), nil
}

// Broken reports whether a write to the side channel has failed.
func (m *MirrorWriter) Broken() bool {
	return m != nil && m.broken.Load()
}
