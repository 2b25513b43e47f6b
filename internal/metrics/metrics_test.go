package metrics

import (
	"encoding/json"
	"testing"
)

func TestCollector_Traffic(t *testing.T) {
	c := New()

	c.BytesReceived(1024)
	c.BytesReceived(100)
	c.LineReceived()
	c.LineReceived()
	c.LineSkipped()
	c.LineSent(11)
	c.LineSent(20)

	snap := c.Snapshot()
	if snap.BytesIn != 1124 {
		t.Errorf("bytes in = %d, want 1124", snap.BytesIn)
	}
	if snap.LinesIn != 2 || snap.LinesSkipped != 1 {
		t.Errorf("lines in/skipped = %d/%d, want 2/1", snap.LinesIn, snap.LinesSkipped)
	}
	if snap.LinesOut != 2 || snap.BytesOut != 31 {
		t.Errorf("lines/bytes out = %d/%d, want 2/31", snap.LinesOut, snap.BytesOut)
	}
}

func TestCollector_Actions(t *testing.T) {
	c := New()
	c.PongSent()
	c.PongSent()
	c.EchoSent()
	c.Registered()

	snap := c.Snapshot()
	if snap.Pongs != 2 || snap.Echoes != 1 {
		t.Errorf("pongs/echoes = %d/%d, want 2/1", snap.Pongs, snap.Echoes)
	}
	if snap.RegisteredAt == "" {
		t.Error("expected registration timestamp")
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
	if msg := c.Snapshot().LastErrorMessage; msg != "second error" {
		t.Errorf("last error = %q", msg)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.LineSent(42)

	var snap Snapshot
	if err := json.Unmarshal([]byte(c.JSON()), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.BytesOut != 42 {
		t.Errorf("JSON bytes out = %d", snap.BytesOut)
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.BytesReceived(100)
	c.LineReceived()
	c.LineSkipped()
	c.LineSent(100)
	c.PongSent()
	c.EchoSent()
	c.Registered()
	c.RecordError("test")

	if c.ErrorCount() != 0 {
		t.Error("nil collector should return 0")
	}
	if snap := c.Snapshot(); snap.LinesOut != 0 {
		t.Error("nil snapshot should be zero")
	}
	if c.JSON() == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
