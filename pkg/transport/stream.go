package transport

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// StreamRadio exchanges frames with a radio gateway over a byte stream.
type StreamRadio struct {
	conn    io.ReadWriteCloser
	framer  *Framer
	inbound chan *wire.Message
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// StreamOption configures a StreamRadio.
type StreamOption func(*StreamRadio)

// WithStreamLogger sets the operational logger.
func WithStreamLogger(l *slog.Logger) StreamOption {
	return func(r *StreamRadio) { r.logger = l }
}

// WithFrameLog records every frame as a radio layer protocol event.
func WithFrameLog(l log.Logger, sessionID string) StreamOption {
	return func(r *StreamRadio) { r.framer.SetLogger(l, sessionID) }
}

// NewStreamRadio starts reading frames from conn.
func NewStreamRadio(conn io.ReadWriteCloser, opts ...StreamOption) *StreamRadio {
	r := &StreamRadio{
		conn:    conn,
		framer:  NewFramer(conn),
		inbound: make(chan *wire.Message, DefaultQueueSize),
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	go r.readLoop()
	return r
}

func (r *StreamRadio) readLoop() {
	defer close(r.done)
	defer close(r.inbound)

	for {
		frame, err := r.framer.ReadFrame()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, ErrFrameTruncated), errors.Is(err, io.ErrClosedPipe):
			return
		case errors.Is(err, ErrFrameEmpty), errors.Is(err, ErrFrameTooLarge):
			r.logger.Warn("skipping bad frame", "error", err)
			continue
		default:
			if !r.isClosed() {
				r.logger.Error("radio stream read failed", "error", err)
			}
			return
		}

		msg, err := wire.Decode(frame)
		if err != nil {
			r.logger.Warn("dropping undecodable frame", "error", err)
			continue
		}
		select {
		case r.inbound <- msg:
		default:
			r.logger.Warn("dropping inbound message", "error", ErrInboundFull, "msg", msg.String())
		}
	}
}

// Send encodes and writes msg.
func (r *StreamRadio) Send(msg *wire.Message) error {
	if r.isClosed() {
		return ErrClosed
	}
	frame, err := wire.Encode(msg)
	if err != nil {
		return err
	}
	return r.framer.WriteFrame(frame)
}

// Poll reports whether inbound messages are waiting.
func (r *StreamRadio) Poll() bool {
	return len(r.inbound) > 0
}

// Inbound returns the inbound message channel.
func (r *StreamRadio) Inbound() <-chan *wire.Message {
	return r.inbound
}

// Close closes the stream and waits for the reader to stop.
func (r *StreamRadio) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.conn.Close()
	<-r.done
	return err
}

func (r *StreamRadio) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
