package list

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfRange is returned for storage access beyond the store size.
var ErrOutOfRange = errors.New("storage address out of range")

// Storage is the byte-addressable store lists live in. On a real node this
// is EEPROM or flash; on a host it is memory, a file image or a database.
type Storage interface {
	// Size returns the number of addressable bytes.
	Size() int

	// ReadAt fills p with the bytes starting at addr.
	ReadAt(addr uint16, p []byte) error

	// WriteAt stores p starting at addr.
	WriteAt(addr uint16, p []byte) error
}

// CheckRange validates an access of n bytes at addr against size.
func CheckRange(size int, addr uint16, n int) error {
	if int(addr)+n > size {
		return fmt.Errorf("%w: %d+%d > %d", ErrOutOfRange, addr, n, size)
	}
	return nil
}

// Memory is a Storage held in RAM.
// Memory is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory creates a zero-filled memory store of size bytes.
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// NewMemoryFrom creates a memory store holding a copy of image.
func NewMemoryFrom(image []byte) *Memory {
	data := make([]byte, len(image))
	copy(data, image)
	return &Memory{data: data}
}

// Size returns the store size.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// ReadAt copies bytes out of the store.
func (m *Memory) ReadAt(addr uint16, p []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := CheckRange(len(m.data), addr, len(p)); err != nil {
		return err
	}
	copy(p, m.data[addr:])
	return nil
}

// WriteAt copies bytes into the store.
func (m *Memory) WriteAt(addr uint16, p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := CheckRange(len(m.data), addr, len(p)); err != nil {
		return err
	}
	copy(m.data[addr:], p)
	return nil
}

// Snapshot returns a copy of the whole store.
func (m *Memory) Snapshot() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Compile-time interface satisfaction check.
var _ Storage = (*Memory)(nil)
