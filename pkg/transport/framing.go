package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// Framing errors.
var (
	// ErrFrameEmpty indicates a zero length byte or an empty frame.
	ErrFrameEmpty = errors.New("frame is empty")

	// ErrFrameTooLarge indicates a frame beyond wire.MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrFrameLength indicates a frame whose length byte does not match its size.
	ErrFrameLength = errors.New("frame length byte mismatch")
)

// frameLogger emits radio layer frame events.
type frameLogger struct {
	logger    log.Logger
	sessionID string
	now       func() time.Time
}

func (l *frameLogger) log(data []byte, dir log.Direction) {
	if l.logger == nil {
		return
	}
	now := l.now
	if now == nil {
		now = time.Now
	}
	l.logger.Log(log.Event{
		Timestamp: now(),
		SessionID: l.sessionID,
		Direction: dir,
		Layer:     log.LayerRadio,
		Category:  log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size: len(data),
			Data: append([]byte(nil), data...),
		},
	})
}

// FrameWriter writes radio frames to a byte stream. Frames are
// self-delimiting: the first byte is the count of bytes that follow.
type FrameWriter struct {
	w  io.Writer
	mu sync.Mutex
	frameLogger
}

// NewFrameWriter creates a frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// SetLogger configures frame logging. Pass nil to disable it.
func (fw *FrameWriter) SetLogger(logger log.Logger, sessionID string) {
	fw.logger = logger
	fw.sessionID = sessionID
}

// WriteFrame writes one encoded frame.
// Safe for use from multiple goroutines.
func (fw *FrameWriter) WriteFrame(frame []byte) error {
	if len(frame) == 0 {
		return ErrFrameEmpty
	}
	if len(frame) > wire.MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(frame), wire.MaxFrameSize)
	}
	if int(frame[0])+1 != len(frame) {
		return fmt.Errorf("%w: length byte %d, frame %d", ErrFrameLength, frame[0], len(frame))
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	fw.log(frame, log.DirectionOut)
	return nil
}

// FrameReader reads radio frames from a byte stream.
type FrameReader struct {
	r      io.Reader
	lenBuf [1]byte
	frameLogger
}

// NewFrameReader creates a frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// SetLogger configures frame logging. Pass nil to disable it.
func (fr *FrameReader) SetLogger(logger log.Logger, sessionID string) {
	fr.logger = logger
	fr.sessionID = sessionID
}

// ReadFrame reads one frame, including its length byte.
// io.EOF is returned unchanged when the stream ends between frames.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lenBuf[:]); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read length byte: %w", err)
	}

	n := int(fr.lenBuf[0])
	if n == 0 {
		return nil, ErrFrameEmpty
	}
	if n+1 > wire.MaxFrameSize {
		// Drain the oversized frame so the stream stays aligned.
		_, _ = io.CopyN(io.Discard, fr.r, int64(n))
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n+1, wire.MaxFrameSize)
	}

	frame := make([]byte, n+1)
	frame[0] = fr.lenBuf[0]
	if _, err := io.ReadFull(fr.r, frame[1:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || err == io.EOF {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	fr.log(frame, log.DirectionIn)
	return frame, nil
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// SetLogger configures logging for both directions.
func (f *Framer) SetLogger(logger log.Logger, sessionID string) {
	f.FrameReader.SetLogger(logger, sessionID)
	f.FrameWriter.SetLogger(logger, sessionID)
}
