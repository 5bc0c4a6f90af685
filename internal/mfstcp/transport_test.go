package mfstcp

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfsd/internal/mfs"
)

func TestAcceptReadWrite(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	tr := New(ln, time.Second)
	defer tr.Shutdown()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)

	var id mfs.ClientID
	require.Eventually(t, func() bool {
		id = tr.Accept()
		return id != 0
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		return tr.Available(id) >= 4
	}, time.Second, time.Millisecond)

	buf := make([]byte, 4)
	n, err := tr.Read(id, buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "ping", string(buf))

	n, err = tr.Write(id, []byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	reply := make([]byte, 4)
	_, err = conn.Read(reply)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(reply))
}

func TestAcceptReturnsZeroWhenNoneWaiting(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tr := New(ln, time.Second)
	defer tr.Shutdown()

	assert.Equal(t, mfs.ClientID(0), tr.Accept())
}

func TestNowMillisIsMonotonicNonDecreasing(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tr := New(ln, time.Second)
	defer tr.Shutdown()

	a := tr.NowMillis()
	time.Sleep(2 * time.Millisecond)
	b := tr.NowMillis()
	assert.GreaterOrEqual(t, b, a)
}
