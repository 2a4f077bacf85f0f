package telnet

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	GA   byte = 249 // Go Ahead
	NOP  byte = 241
	SE   byte = 240 // Sub-negotiation End

	// Telnet options
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// MaxLineLength bounds a single input line. Longer input is truncated.
const MaxLineLength = 1024

// ErrInterrupted is returned by reads unblocked with Interrupt.
var ErrInterrupted = errors.New("telnet: read interrupted")

// Conn wraps a TCP connection with Telnet protocol handling.
// It filters IAC sequences from input and provides line-based reading.
//
// Writes are serialized, so notices may be written from another goroutine
// while a read is in progress.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration

	interruptMu sync.Mutex
	interrupted bool
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads one line of input with IAC sequences and control characters
// removed. The line terminator is not returned.
//
// Postcondition: Returns the next line, or an error (io.EOF, a timeout, or
// ErrInterrupted).
func (c *Conn) ReadLine() (string, error) {
	if c.isInterrupted() {
		return "", ErrInterrupted
	}
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), c.readErr(err)
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), c.readErr(err)
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && next[0] == '\n' {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b < 32 && b != '\t':
		case line.Len() < MaxLineLength:
			line.WriteByte(b)
		}
	}
}

// skipCommand consumes the rest of an IAC sequence.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	}
	return nil
}

// ReadPassword reads a line with client echo suppressed, then restores echo
// and advances the cursor past the hidden input.
func (c *Conn) ReadPassword() (string, error) {
	if err := c.Write([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}
	line, err := c.ReadLine()
	_ = c.Write([]byte{IAC, WONT, OptEcho, '\r', '\n'})
	return line, err
}

// Interrupt unblocks a pending or future ReadLine with ErrInterrupted.
func (c *Conn) Interrupt() {
	c.interruptMu.Lock()
	c.interrupted = true
	c.interruptMu.Unlock()
	_ = c.raw.SetReadDeadline(time.Now())
}

func (c *Conn) isInterrupted() bool {
	c.interruptMu.Lock()
	defer c.interruptMu.Unlock()
	return c.interrupted
}

func (c *Conn) readErr(err error) error {
	if c.isInterrupted() {
		return ErrInterrupted
	}
	return err
}

// Write sends raw bytes to the client.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// WriteLine sends text followed by \r\n.
func (c *Conn) WriteLine(text string) error {
	return c.Write([]byte(text + "\r\n"))
}

// WriteLines sends every line in one write, each terminated by \r\n.
func (c *Conn) WriteLines(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	return c.Write([]byte(strings.Join(lines, "\r\n") + "\r\n"))
}

// WritePrompt sends a prompt without a trailing newline.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// FilterIAC removes Telnet IAC sequences from raw input bytes. An escaped
// IAC (IAC IAC) yields one literal 0xFF.
func FilterIAC(input []byte) []byte {
	result := make([]byte, 0, len(input))
	for i := 0; i < len(input); {
		if input[i] != IAC || i+1 >= len(input) {
			result = append(result, input[i])
			i++
			continue
		}
		switch input[i+1] {
		case WILL, WONT, DO, DONT:
			i += 3
		case SB:
			end := bytes.Index(input[i+2:], []byte{IAC, SE})
			if end < 0 {
				i = len(input)
			} else {
				i += 2 + end + 2
			}
		case IAC:
			result = append(result, IAC)
			i += 2
		default:
			i += 2
		}
	}
	return result
}
