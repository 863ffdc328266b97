package transport

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"time"
)

// Gateway dial backoff defaults.
const (
	DefaultDialInitial = 500 * time.Millisecond
	DefaultDialMax     = 30 * time.Second
	DefaultDialTimeout = 5 * time.Second
)

// Backoff yields exponentially growing retry delays with up to 25% jitter.
type Backoff struct {
	mu      sync.Mutex
	initial time.Duration
	max     time.Duration
	current time.Duration
	tries   int
	rng     *rand.Rand
}

// NewBackoff creates a backoff starting at initial and capped at max.
// Zero values select the dial defaults.
func NewBackoff(initial, max time.Duration) *Backoff {
	if initial <= 0 {
		initial = DefaultDialInitial
	}
	if max < initial {
		max = DefaultDialMax
	}
	return &Backoff{
		initial: initial,
		max:     max,
		current: initial,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the jittered delay for this attempt and doubles the base.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	d := b.current + time.Duration(float64(b.current)*0.25*b.rng.Float64())
	b.tries++
	b.current = min(b.current*2, b.max)
	return d
}

// Current returns the base delay of the next attempt.
func (b *Backoff) Current() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Attempts returns the number of delays handed out since the last Reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tries
}

// Reset restarts the sequence.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.tries = 0
}

// Dialer opens the gateway connection.
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// DialStream connects to a TCP radio gateway, retrying with backoff until
// it succeeds or ctx is done.
func DialStream(ctx context.Context, address string, b *Backoff, logger *slog.Logger, opts ...StreamOption) (*StreamRadio, error) {
	d := &net.Dialer{Timeout: DefaultDialTimeout}
	return dialStream(ctx, d.DialContext, address, b, logger, opts...)
}

func dialStream(ctx context.Context, dial Dialer, address string, b *Backoff, logger *slog.Logger, opts ...StreamOption) (*StreamRadio, error) {
	if b == nil {
		b = NewBackoff(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}

	for {
		conn, err := dial(ctx, "tcp", address)
		if err == nil {
			b.Reset()
			logger.Info("radio gateway connected", "address", address)
			return NewStreamRadio(conn, append([]StreamOption{WithStreamLogger(logger)}, opts...)...), nil
		}

		delay := b.Next()
		logger.Warn("radio gateway dial failed", "address", address, "error", err,
			"attempt", b.Attempts(), "retry_in", delay)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
		case <-time.After(delay):
		}
	}
}
