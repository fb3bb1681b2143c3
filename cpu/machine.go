package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/kindasim/kinda/internal"
)

const (
	MAX_ADDRESS  = int64(1<<WORD_SIZE) - 1 // Highest addressable word.
	UNPROTECTED  = int64(-1)               // Protection boundary with nothing protected.
	PC_TRANSIENT = -1                      // Lowest program counter, only seen mid-jump.
)

// Change flags the parts of a Machine mutated since the last ClearChanges.
type Change int

const (
	CHANGE_REGISTERS = Change(1 << iota)
	CHANGE_MEMORY
	CHANGE_PC
	CHANGE_IR
)

// Machine is the addressable state of the virtual machine: registers,
// sparse main memory, program counter, instruction register and labels.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	register  [REGISTERS]int32
	memory    map[uint32]int32
	protected int64
	pc        int
	ir        uint32
	labels    map[string]int
	changes   Change
}

var _ LabelResolver = (*Machine)(nil)

// NewMachine creates a machine in its reset state.
func NewMachine() (m *Machine) {
	m = &Machine{}
	m.Reset()
	return
}

// Reset clears registers, labels, memory, protection, PC and IR.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("vm: reset")
	}

	clear(m.register[:])
	m.ClearLabels()
	m.ClearMemory()
	m.pc = 0
	m.ir = 0
	m.changes |= CHANGE_REGISTERS | CHANGE_PC | CHANGE_IR
}

// Changes reports what was mutated since the last ClearChanges.
func (m *Machine) Changes() Change {
	return m.changes
}

// ClearChanges forgets all pending changes.
func (m *Machine) ClearChanges() {
	m.changes = 0
}

// GetRegister returns the value of a register; unknown registers read as 0.
func (m *Machine) GetRegister(reg int) int32 {
	if reg < 0 || reg >= REGISTERS {
		return 0
	}
	return m.register[reg]
}

// SetRegister writes a register. Register 0 is read-only.
func (m *Machine) SetRegister(reg int, value int32) (err error) {
	if reg == 0 {
		err = ErrRegisterReadOnly
		return
	}

	if reg < 0 || reg >= REGISTERS {
		err = ErrRegisterInvalid
		return
	}

	m.register[reg] = value
	m.changes |= CHANGE_REGISTERS
	return
}

// Registers returns a copy of the register bank.
func (m *Machine) Registers() [REGISTERS]int32 {
	return m.register
}

// ReadMemory reads a word; never written addresses read as 0.
func (m *Machine) ReadMemory(addr int64) (value int32, err error) {
	if addr < 0 || addr > MAX_ADDRESS {
		err = ErrAddressInvalid
		return
	}

	value = m.memory[uint32(addr)]
	return
}

// WriteMemory writes a word above the protection boundary.
func (m *Machine) WriteMemory(addr int64, value int32) (err error) {
	if m.protected >= 0 && addr >= 0 && addr <= m.protected {
		err = ErrMemoryProtected(addr)
		return
	}

	if addr < 0 || addr > MAX_ADDRESS {
		err = ErrAddressInvalid
		return
	}

	if m.Verbose {
		log.Printf("vm: memory[%d] = %d", addr, value)
	}

	m.memory[uint32(addr)] = value
	m.changes |= CHANGE_MEMORY
	return
}

// Protect write protects every address from 0 up to and including addr.
// UNPROTECTED removes the protection.
func (m *Machine) Protect(addr int64) {
	m.protected = max(addr, UNPROTECTED)
}

// Protected returns the protection boundary, UNPROTECTED if none.
func (m *Machine) Protected() int64 {
	return m.protected
}

// ClearMemory empties main memory and removes the protection.
func (m *Machine) ClearMemory() {
	m.memory = make(map[uint32]int32)
	m.protected = UNPROTECTED
	m.changes |= CHANGE_MEMORY
}

// MemorySize returns the number of materialized addresses.
func (m *Machine) MemorySize() int {
	return len(m.memory)
}

// LastAddress returns the highest materialized address, -1 if memory is empty.
func (m *Machine) LastAddress() (addr int64) {
	addr = -1
	for key := range m.memory {
		addr = max(addr, int64(key))
	}
	return
}

// Addresses walks the materialized addresses in ascending order.
func (m *Machine) Addresses() iter.Seq[uint32] {
	return slices.Values(slices.Sorted(maps.Keys(m.memory)))
}

// Memory walks the materialized words in ascending address order.
func (m *Machine) Memory() iter.Seq2[uint32, int32] {
	return internal.IterSorted(m.memory)
}

// AddLabel binds a label to an address, replacing any earlier binding.
func (m *Machine) AddLabel(name string, addr int) (err error) {
	if addr < 0 || int64(addr) > MAX_ADDRESS {
		err = ErrAddressInvalid
		return
	}

	m.labels[name] = addr
	return
}

// ResolveLabel returns the address of a label.
func (m *Machine) ResolveLabel(name string) (addr int, err error) {
	addr, ok := m.labels[name]
	if !ok {
		err = ErrLabelMissing(name)
		return
	}

	return
}

// ClearLabels empties the label table.
func (m *Machine) ClearLabels() {
	m.labels = make(map[string]int)
}

// Labels walks the label table in name order.
func (m *Machine) Labels() iter.Seq2[string, int] {
	return internal.IterSorted(m.labels)
}

// GetPC returns the program counter.
func (m *Machine) GetPC() int {
	return m.pc
}

// SetPC sets the program counter. -1 is allowed so that a jump to address 0
// lands there after the implicit increment.
func (m *Machine) SetPC(pc int) (err error) {
	if pc < PC_TRANSIENT {
		err = ErrProgramCounter(pc)
		return
	}

	m.pc = pc
	m.changes |= CHANGE_PC
	return
}

// IncrementPC advances the program counter by one.
func (m *Machine) IncrementPC() {
	m.pc++
	m.changes |= CHANGE_PC
}

// GetIR returns the last fetched instruction word.
func (m *Machine) GetIR() uint32 {
	return m.ir
}

// SetIR records the last fetched instruction word.
func (m *Machine) SetIR(word uint32) {
	m.ir = word
	m.changes |= CHANGE_IR
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	var sb strings.Builder

	for n, val := range m.register {
		fmt.Fprintf(&sb, "r%d: %d | ", n, val)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "pc: %d\n", m.pc)
	fmt.Fprintf(&sb, "ir: %v\n", WordToHex(m.ir))
	fmt.Fprintf(&sb, "protected: %d\n", m.protected)

	for name, addr := range m.Labels() {
		fmt.Fprintf(&sb, "%v: %d\n", name, addr)
	}

	for addr, val := range m.Memory() {
		marker := "  "
		if int64(addr) == int64(m.pc) {
			marker = "->"
		}
		fmt.Fprintf(&sb, "%s%08d: %v (%d)\n", marker, addr, WordToHex(uint32(val)), val)
	}

	text = sb.String()
	return
}
