//go:build unix

package conn

import (
	"syscall"

	"golang.org/x/sys/unix"

	"ircecho/util"
)

// drain reads whatever the kernel already holds for the socket, one
// read(2) at a time, and stops at the first EAGAIN without waiting.
// Streams without a file descriptor, such as SSH channels, are not
// drained.
func (c *Conn) drain() []byte {
	sc, ok := c.nc.(syscall.Conn)
	if !ok {
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil
	}

	scratch := util.GetBuf()
	defer util.PutBuf(scratch)

	var out []byte
	for {
		var (
			n    int
			rerr error
		)
		// Returning true unconditionally keeps the poller from parking
		// on EAGAIN.
		err := raw.Read(func(fd uintptr) bool {
			n, rerr = unix.Read(int(fd), *scratch)
			return true
		})
		if err != nil || rerr != nil || n <= 0 {
			// n == 0 is EOF; the next blocking read reports it.
			return out
		}
		out = append(out, (*scratch)[:n]...)
	}
}
