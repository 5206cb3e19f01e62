package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

var ErrHandshakeTimeout = errors.New("no authorization callback received")

type HandshakeState int

const (
	HandshakeAwaiting HandshakeState = iota
	HandshakeResolved
)

func (s HandshakeState) String() string {
	if s == HandshakeResolved {
		return "resolved"
	}
	return "awaiting-callback"
}

// Handshake waits for exactly one authorization-done message. It resolves
// on the first such message or on timeout; anything delivered afterwards is
// ignored.
type Handshake struct {
	mu        sync.Mutex
	state     HandshakeState
	sessionID string
	done      chan struct{}
}

func NewHandshake() *Handshake {
	return &Handshake{done: make(chan struct{})}
}

func (h *Handshake) State() HandshakeState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Deliver offers a message to the handshake and reports whether it resolved
// it. Messages of other types or without a session id are ignored.
func (h *Handshake) Deliver(msg models.AuthMessage) bool {
	if msg.Type != models.AuthMessageDone || msg.SessionID == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != HandshakeAwaiting {
		return false
	}
	h.state = HandshakeResolved
	h.sessionID = msg.SessionID
	close(h.done)
	return true
}

func (h *Handshake) expire() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == HandshakeAwaiting {
		h.state = HandshakeResolved
		close(h.done)
	}
}

// Wait blocks until a session id arrives, the timeout passes or ctx ends.
func (h *Handshake) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.done:
	case <-timer.C:
		h.expire()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessionID == "" {
		return "", ErrHandshakeTimeout
	}
	return h.sessionID, nil
}
