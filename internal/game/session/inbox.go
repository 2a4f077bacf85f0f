// Package session tracks the live character creation sessions of the
// telnet frontend and delivers out-of-band notices to them.
package session

import (
	"fmt"
	"sync"
)

// Inbox queues notices for one session. The session's connection
// goroutine drains Events and writes each notice to the player.
type Inbox struct {
	id     string
	events chan []byte
	mu     sync.Mutex
	closed bool
}

// NewInbox creates an Inbox for session id.
//
// Postcondition: Returns an Inbox with an open events channel of
// bufferSize (64 when bufferSize <= 0).
func NewInbox(id string, bufferSize int) *Inbox {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Inbox{
		id:     id,
		events: make(chan []byte, bufferSize),
	}
}

// ID returns the owning session id.
func (b *Inbox) ID() string {
	return b.id
}

// Push enqueues a notice without blocking.
//
// Postcondition: Returns an error if the inbox is closed or its buffer is full.
func (b *Inbox) Push(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("session %s is closed", b.id)
	}
	select {
	case b.events <- data:
		return nil
	default:
		return fmt.Errorf("session %s notice buffer full", b.id)
	}
}

// Events returns the notice channel. It is closed by Close.
func (b *Inbox) Events() <-chan []byte {
	return b.events
}

// Close closes the notice channel. It is safe to call more than once.
func (b *Inbox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.events)
	}
}

// IsClosed reports whether Close has been called.
func (b *Inbox) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
