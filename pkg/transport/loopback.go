package transport

import (
	"fmt"
	"sync"

	"github.com/homewire/homewire-go/pkg/wire"
)

// DefaultQueueSize is the inbound queue length of the radios.
const DefaultQueueSize = 32

// Loopback is an in-memory radio. Sent messages are recorded; inbound
// messages are injected by the caller. Every message passes through the
// frame codec so oversized payloads fail as they would on air.
type Loopback struct {
	mu      sync.Mutex
	sent    []*wire.Message
	inbound chan *wire.Message
	closed  bool
	onSend  func(*wire.Message)
}

// NewLoopback creates a loopback radio.
func NewLoopback() *Loopback {
	return &Loopback{inbound: make(chan *wire.Message, DefaultQueueSize)}
}

// OnSend registers a callback invoked for every sent message.
func (l *Loopback) OnSend(fn func(*wire.Message)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onSend = fn
}

// Send records msg.
func (l *Loopback) Send(msg *wire.Message) error {
	m, err := roundTrip(msg)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.sent = append(l.sent, m)
	fn := l.onSend
	l.mu.Unlock()

	if fn != nil {
		fn(m)
	}
	return nil
}

// Poll reports whether inbound messages are waiting.
func (l *Loopback) Poll() bool {
	return len(l.inbound) > 0
}

// Inject queues msg as if it had been received.
func (l *Loopback) Inject(msg *wire.Message) error {
	m, err := roundTrip(msg)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.inbound <- m:
		return nil
	default:
		return ErrInboundFull
	}
}

// Inbound returns the inbound message channel.
func (l *Loopback) Inbound() <-chan *wire.Message {
	return l.inbound
}

// Sent returns the messages sent so far.
func (l *Loopback) Sent() []*wire.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*wire.Message(nil), l.sent...)
}

// TakeSent returns and clears the sent messages.
func (l *Loopback) TakeSent() []*wire.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.sent
	l.sent = nil
	return out
}

// Close closes the inbound channel.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	close(l.inbound)
	return nil
}

func roundTrip(msg *wire.Message) (*wire.Message, error) {
	frame, err := wire.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return wire.Decode(frame)
}
