package list

import (
	"errors"
	"fmt"
)

// List errors.
var (
	ErrInvalidList     = errors.New("invalid list")
	ErrUnknownRegister = errors.New("unknown register")
)

// RegisterValue is one register/value pair of a list.
type RegisterValue struct {
	Register uint8
	Value    uint8
}

// GenericList is a view of one list in storage.
type GenericList struct {
	store  Storage
	addr   uint16
	layout *Layout
}

// New creates a list view of layout at addr in store.
func New(store Storage, addr uint16, layout *Layout) GenericList {
	return GenericList{store: store, addr: addr, layout: layout}
}

// Invalid returns the invalid list.
func Invalid() GenericList {
	return GenericList{}
}

// Valid reports whether the view refers to an existing list.
func (l GenericList) Valid() bool {
	return l.layout != nil && l.store != nil
}

// Address returns the storage address of the list.
func (l GenericList) Address() uint16 {
	return l.addr
}

// Size returns the number of bytes the list occupies. Invalid lists have size 0.
func (l GenericList) Size() int {
	if l.layout == nil {
		return 0
	}
	return l.layout.Size()
}

// Layout returns the list layout, nil for an invalid list.
func (l GenericList) Layout() *Layout {
	return l.layout
}

// Equal reports whether both views are valid and refer to the same list.
func (l GenericList) Equal(other GenericList) bool {
	return l.Valid() && other.Valid() && l.addr == other.addr
}

// Register reads a register. The second result is false when the list is
// invalid, the register is not part of the layout or storage fails.
func (l GenericList) Register(reg uint8) (uint8, bool) {
	if !l.Valid() {
		return 0, false
	}
	off, ok := l.layout.Offset(reg)
	if !ok {
		return 0, false
	}
	var b [1]byte
	if err := l.store.ReadAt(l.addr+uint16(off), b[:]); err != nil {
		return 0, false
	}
	return b[0], true
}

// SetRegister writes a register.
func (l GenericList) SetRegister(reg, value uint8) error {
	if !l.Valid() {
		return ErrInvalidList
	}
	off, ok := l.layout.Offset(reg)
	if !ok {
		return fmt.Errorf("%w: 0x%02X in %s", ErrUnknownRegister, reg, l.layout.name)
	}
	return l.store.WriteAt(l.addr+uint16(off), []byte{value})
}

// WriteIndex applies an indexed write: data holds (register, value) pairs.
// Unknown registers are skipped and an odd trailing byte is ignored.
// It returns the number of pairs applied and stops at the first storage error.
func (l GenericList) WriteIndex(data []byte) (int, error) {
	if !l.Valid() {
		return 0, ErrInvalidList
	}
	applied := 0
	for i := 0; i+1 < len(data); i += 2 {
		err := l.SetRegister(data[i], data[i+1])
		if errors.Is(err, ErrUnknownRegister) {
			continue
		}
		if err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

// Pairs returns all registers of the list in layout order.
func (l GenericList) Pairs() ([]RegisterValue, error) {
	if !l.Valid() {
		return nil, ErrInvalidList
	}
	buf := make([]byte, l.layout.Size())
	if err := l.store.ReadAt(l.addr, buf); err != nil {
		return nil, err
	}
	out := make([]RegisterValue, len(buf))
	for i, r := range l.layout.regs {
		out[i] = RegisterValue{Register: r.ID, Value: buf[i]}
	}
	return out, nil
}

// PairBytes returns the registers as a flat reg,value byte sequence.
func (l GenericList) PairBytes() ([]byte, error) {
	pairs, err := l.Pairs()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 2*len(pairs))
	for _, p := range pairs {
		out = append(out, p.Register, p.Value)
	}
	return out, nil
}

// Defaults writes the factory default of every register.
func (l GenericList) Defaults() error {
	if !l.Valid() {
		return ErrInvalidList
	}
	return l.store.WriteAt(l.addr, l.layout.defaults())
}

// String returns a short description of the view.
func (l GenericList) String() string {
	if !l.Valid() {
		return "list(invalid)"
	}
	return fmt.Sprintf("%s@0x%04X", l.layout.name, l.addr)
}
