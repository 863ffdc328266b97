package log

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ErrTruncated is returned by Next when the log ends inside a record, as
// left behind by a process killed while writing.
var ErrTruncated = errors.New("protocol log ends in a partial record")

// Reader streams the events of a .hwlog file or stream.
type Reader struct {
	src    io.Reader
	dec    *cbor.Decoder
	filter Filter
	read   int
}

// NewReader opens path and returns every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and returns the events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewStreamReader(f, filter), nil
}

// NewStreamReader reads events from r. Close closes r when it is an
// io.Closer.
func NewStreamReader(r io.Reader, filter Filter) *Reader {
	return &Reader{src: r, dec: eventModes.dec.NewDecoder(r), filter: filter}
}

// Next returns the next matching event. It returns io.EOF after the last
// complete record and ErrTruncated when a partial record follows it.
func (r *Reader) Next() (Event, error) {
	for {
		var e Event
		switch err := r.dec.Decode(&e); {
		case err == nil:
		case errors.Is(err, io.EOF):
			return Event{}, io.EOF
		case errors.Is(err, io.ErrUnexpectedEOF):
			return Event{}, fmt.Errorf("%w after %d events", ErrTruncated, r.read)
		default:
			return Event{}, err
		}
		r.read++
		if r.filter.Matches(e) {
			return e, nil
		}
	}
}

// Count returns the number of records decoded so far, matching or not.
func (r *Reader) Count() int {
	return r.read
}

func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
