package list

// RegisterDef declares one register of a layout.
type RegisterDef struct {
	// ID is the register number used on the wire.
	ID uint8

	// Default is the factory value written by Defaults.
	Default uint8
}

// Layout maps register numbers to byte offsets within a list.
// Registers are stored in declaration order.
type Layout struct {
	name  string
	regs  []RegisterDef
	index map[uint8]int
}

// NewLayout creates a layout from register declarations.
// Duplicate register IDs panic: layouts are static tables.
func NewLayout(name string, regs ...RegisterDef) *Layout {
	l := &Layout{
		name:  name,
		regs:  regs,
		index: make(map[uint8]int, len(regs)),
	}
	for i, r := range regs {
		if _, dup := l.index[r.ID]; dup {
			panic("list: duplicate register in layout " + name)
		}
		l.index[r.ID] = i
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Size returns the number of bytes a list of this layout occupies.
func (l *Layout) Size() int {
	return len(l.regs)
}

// Offset returns the byte offset of a register.
func (l *Layout) Offset(reg uint8) (int, bool) {
	off, ok := l.index[reg]
	return off, ok
}

// Registers returns the register declarations in storage order.
func (l *Layout) Registers() []RegisterDef {
	out := make([]RegisterDef, len(l.regs))
	copy(out, l.regs)
	return out
}

// defaults returns the default image of a list.
func (l *Layout) defaults() []byte {
	out := make([]byte, len(l.regs))
	for i, r := range l.regs {
		out[i] = r.Default
	}
	return out
}
