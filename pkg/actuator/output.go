package actuator

import "sync"

// Output drives a digital output pin.
type Output interface {
	Set(pin int, high bool)
}

// PinMap maps a channel number to its output pin.
type PinMap func(channel uint8) int

// ChannelPins maps channel n to pin n.
func ChannelPins(channel uint8) int {
	return int(channel)
}

// MemoryOutput records pin levels in memory.
// MemoryOutput is safe for concurrent use.
type MemoryOutput struct {
	mu     sync.RWMutex
	levels map[int]bool
	writes int
}

// NewMemoryOutput creates an empty output recorder.
func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{levels: make(map[int]bool)}
}

// Set records the level of pin.
func (o *MemoryOutput) Set(pin int, high bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.levels[pin] = high
	o.writes++
}

// Level returns the last level written to pin.
func (o *MemoryOutput) Level(pin int) (high, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	high, ok = o.levels[pin]
	return high, ok
}

// Writes returns the number of writes seen.
func (o *MemoryOutput) Writes() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.writes
}

var _ Output = (*MemoryOutput)(nil)
