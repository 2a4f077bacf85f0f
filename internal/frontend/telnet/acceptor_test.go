package telnet

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/charforge/internal/config"
)

// echoHandler echoes lines back until "quit".
type echoHandler struct {
	sessions atomic.Int32
}

func (h *echoHandler) HandleSession(_ context.Context, conn *Conn) error {
	h.sessions.Add(1)
	for {
		line, err := conn.ReadLine()
		if err != nil {
			return err
		}
		if line == "quit" {
			return conn.WriteLine("bye")
		}
		_ = conn.WriteLine("echo: " + line)
	}
}

func startAcceptor(t *testing.T, h SessionHandler) (*Acceptor, <-chan error) {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	cfg := config.TelnetConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	acc := NewAcceptor(cfg, h, zaptest.NewLogger(t))
	errCh := make(chan error, 1)
	go func() { errCh <- acc.Serve(l) }()
	require.Eventually(t, acc.IsRunning, 2*time.Second, 5*time.Millisecond)
	return acc, errCh
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	c, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	_ = c.SetReadDeadline(time.Now().Add(3 * time.Second))
	r := bufio.NewReader(c)
	neg := make([]byte, 3)
	_, err = io.ReadFull(r, neg)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WILL, OptSuppressGoAhead}, neg)
	return c, r
}

func TestAcceptor_EchoAndQuit(t *testing.T) {
	h := &echoHandler{}
	acc, errCh := startAcceptor(t, h)

	c, r := dial(t, acc.Addr())
	_, err := c.Write([]byte("hello\r\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", strings.TrimSpace(line))

	_, _ = c.Write([]byte("quit\r\n"))
	line, _ = r.ReadString('\n')
	assert.Equal(t, "bye", strings.TrimSpace(line))

	acc.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.Equal(t, int32(1), h.sessions.Load())
}

func TestAcceptor_StopInterruptsIdleSessions(t *testing.T) {
	h := &echoHandler{}
	acc, errCh := startAcceptor(t, h)
	for i := 0; i < 3; i++ {
		dial(t, acc.Addr())
	}
	require.Eventually(t, func() bool { return acc.Sessions() == 3 }, 2*time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop blocked on idle sessions")
	}
	assert.NoError(t, <-errCh)
	assert.Equal(t, 0, acc.Sessions())
	assert.False(t, acc.IsRunning())
}

func TestAcceptor_SessionHandlerFunc(t *testing.T) {
	called := make(chan string, 1)
	acc, _ := startAcceptor(t, SessionHandlerFunc(func(_ context.Context, conn *Conn) error {
		called <- conn.RemoteAddr().String()
		return nil
	}))
	defer acc.Stop()
	c, _ := dial(t, acc.Addr())

	select {
	case addr := <-called:
		assert.Equal(t, c.LocalAddr().String(), addr)
	case <-time.After(2 * time.Second):
		t.Fatal("handler not called")
	}
}

func TestAcceptor_ServeTwice(t *testing.T) {
	acc, _ := startAcceptor(t, &echoHandler{})
	defer acc.Stop()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Error(t, acc.Serve(l))
}
