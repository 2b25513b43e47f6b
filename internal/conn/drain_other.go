//go:build !unix

package conn

// drain is a no-op where non-blocking descriptor reads are not
// available; each batch is then the result of a single read.
func (c *Conn) drain() []byte { return nil }
