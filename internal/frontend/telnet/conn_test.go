package telnet

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	return NewConn(server, 2*time.Second, 2*time.Second), client
}

func send(client net.Conn, data []byte) {
	go func() { _, _ = client.Write(data) }()
}

func TestConn_ReadLine_FiltersNegotiation(t *testing.T) {
	c, client := pipeConn(t)
	send(client, append([]byte{IAC, DO, OptEcho, 'r', 'a', 'c', 'e', IAC, SB, 24, 1, IAC, SE}, []byte(" elf\r\n")...))

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "race elf", line)
}

func TestConn_ReadLine_DropsControlCharacters(t *testing.T) {
	c, client := pipeConn(t)
	send(client, []byte("ro\x07ll\tstandard\n"))
	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "roll\tstandard", line)
}

func TestConn_ReadLine_TruncatesLongInput(t *testing.T) {
	c, client := pipeConn(t)
	long := make([]byte, MaxLineLength+50)
	for i := range long {
		long[i] = 'x'
	}
	send(client, append(long, '\n'))
	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Len(t, line, MaxLineLength)
}

func TestConn_ReadLine_EOF(t *testing.T) {
	c, client := pipeConn(t)
	go func() {
		_, _ = client.Write([]byte("partial"))
		_ = client.Close()
	}()
	line, err := c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "partial", line)
}

func TestConn_Interrupt(t *testing.T) {
	c, _ := pipeConn(t)
	errCh := make(chan error, 1)
	go func() {
		_, err := c.ReadLine()
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	c.Interrupt()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(time.Second):
		t.Fatal("ReadLine was not interrupted")
	}
	_, err := c.ReadLine()
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestConn_WriteLines(t *testing.T) {
	c, client := pipeConn(t)
	go func() { _ = c.WriteLines([]string{"Race", "Class"}) }()
	buf := make([]byte, 64)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Race\r\nClass\r\n", string(buf[:n]))
	assert.NoError(t, c.WriteLines(nil))
}

func TestFilterIAC(t *testing.T) {
	cases := map[string]struct {
		in, want []byte
	}{
		"plain":       {[]byte("hello"), []byte("hello")},
		"will":        {[]byte{IAC, WILL, OptEcho, 'h', 'i'}, []byte("hi")},
		"do mid-line": {[]byte{'a', IAC, DO, OptLinemode, 'b'}, []byte("ab")},
		"dont only":   {[]byte{IAC, DONT, OptEcho}, []byte{}},
		"subneg":      {[]byte{IAC, SB, 24, 0, 'x', 't', 'e', 'r', 'm', IAC, SE, 'z'}, []byte("z")},
		"escaped":     {[]byte{'a', IAC, IAC, 'b'}, []byte{'a', IAC, 'b'}},
		"nop":         {[]byte{'x', IAC, NOP, 'y'}, []byte("xy")},
		"open subneg": {[]byte{'q', IAC, SB, 24, 0}, []byte("q")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, FilterIAC(tc.in))
		})
	}
}

// Property: input without IAC bytes passes through unchanged.
func TestPropertyFilterIAC_NoIACBytesPassThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.ByteRange(0, 254), 0, 200).Draw(t, "input")
		assert.Equal(t, append([]byte{}, input...), FilterIAC(input))
	})
}

// Property: output is never longer than input.
func TestPropertyFilterIAC_NeverGrows(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "input")
		assert.LessOrEqual(t, len(FilterIAC(input)), len(input))
	})
}
