package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
)

// TelnetClient drives a Telnet session from a test. Output is compared with
// IAC negotiation and ANSI styling removed.
type TelnetClient struct {
	conn    net.Conn
	t       *testing.T
	pending string
}

// NewTelnetClient dials addr or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil returns the plain-text output up to and including the first
// occurrence of substr. Output after the match is kept for the next call.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 4096)
	for {
		if i := strings.Index(c.pending, substr); i >= 0 {
			out := c.pending[:i+len(substr)]
			c.pending = c.pending[i+len(substr):]
			return out
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.pending += telnet.StripANSI(string(telnet.FilterIAC(tmp[:n])))
		}
		if err != nil {
			c.t.Fatalf("reading until %q: got %q, error: %v", substr, c.pending, err)
		}
	}
}

// Send writes text followed by \r\n.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}
