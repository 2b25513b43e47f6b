//go:build unix

package conn

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ircecho/internal/metrics"
	"ircecho/util"
)

// More bytes than one read buffer holds must still come back as a
// single batch when they are all already waiting in the socket.
func TestReceiveBatch_DrainsBeyondReadBuffer(t *testing.T) {
	var mirror bytes.Buffer
	stats := metrics.New()
	c, server := pair(t, Options{Mirror: &mirror, Stats: stats})

	payload := bytes.Repeat([]byte("PING :x\r\n"), util.DefaultBufSize/9+200)
	require.Greater(t, len(payload), util.DefaultBufSize)

	_, err := server.Write(payload)
	require.NoError(t, err)
	time.Sleep(300 * time.Millisecond)

	batch, err := c.ReceiveBatch()
	require.NoError(t, err)
	assert.Equal(t, len(payload), len(batch))
	assert.True(t, bytes.Equal(payload, batch), "batch differs from what was sent")
	assert.Equal(t, len(payload), mirror.Len())
	assert.EqualValues(t, len(payload), stats.Snapshot().BytesIn)
}

// Once the socket is empty the drain returns at once, and the next
// ReceiveBatch blocks as usual.
func TestReceiveBatch_DrainStopsWhenEmpty(t *testing.T) {
	c, server := pair(t, Options{})

	_, err := server.Write([]byte("PING :a\r\n"))
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	batch, err := c.ReceiveBatch()
	require.NoError(t, err)
	assert.Equal(t, "PING :a\r\n", string(batch))
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	go func() {
		time.Sleep(50 * time.Millisecond)
		server.Write([]byte("PING :b\r\n")) //nolint:errcheck
	}()
	batch, err = c.ReceiveBatch()
	require.NoError(t, err)
	assert.Equal(t, "PING :b\r\n", string(batch))
}

// A peer that writes and then hangs up: the data arrives first, the
// close on the following receive.
func TestReceiveBatch_DrainThenPeerClose(t *testing.T) {
	c, server := pair(t, Options{})

	_, err := server.Write([]byte("ERROR :Closing Link\r\n"))
	require.NoError(t, err)
	server.Close()
	time.Sleep(50 * time.Millisecond)

	batch, err := c.ReceiveBatch()
	require.NoError(t, err)
	assert.Equal(t, "ERROR :Closing Link\r\n", string(batch))

	_, err = c.ReceiveBatch()
	require.Error(t, err)
}
