package cpu

import (
	"strings"
)

// Opcode is the 3-bit operation field of an instruction word, plus the
// OP_FILL pseudo opcode for the .fill directive.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_ADD  = Opcode(0) // add
	OP_ADDI = Opcode(1) // addi
	OP_LW   = Opcode(2) // lw
	OP_SW   = Opcode(3) // sw
	OP_BEQ  = Opcode(4) // beq
	OP_JALR = Opcode(5) // jalr
	OP_HALT = Opcode(6) // halt
	OP_NOOP = Opcode(7) // noop
	OP_FILL = Opcode(8) // .fill
)

// Word layout, MSB first: 7 unused, 3 opcode, 3 regA, 3 regB, 16 value.
const (
	OPCODE_SHIFT = 22
	REG_A_SHIFT  = 19
	REG_B_SHIFT  = 16
	VALUE_BITS   = 16
	VALUE_MASK   = 0xffff

	// Decoding reads the value field starting one bit late.
	DECODE_VALUE_BITS = 15

	// .fill words carry a 31-bit value under the directive marker.
	FILL_MARKER = uint32(1 << 31)
	FILL_BITS   = 31
	FILL_MASK   = FILL_MARKER - 1

	WORD_HALT = uint32(OP_HALT) << OPCODE_SHIFT // 0x01800000
	WORD_NOOP = uint32(OP_NOOP) << OPCODE_SHIFT // 0x01C00000
)

// ParseOpcode looks up a mnemonic, ignoring case.
func ParseOpcode(mnemonic string) (op Opcode, ok bool) {
	name := strings.ToLower(mnemonic)
	for op = OP_ADD; op <= OP_FILL; op++ {
		if op.String() == name {
			ok = true
			return
		}
	}

	return
}

// Operands returns the number of operands the opcode requires.
func (op Opcode) Operands() int {
	switch op {
	case OP_ADD, OP_ADDI, OP_LW, OP_SW, OP_BEQ:
		return 3
	case OP_JALR:
		return 2
	case OP_FILL:
		return 1
	default:
		return 0
	}
}

// HasValue is true for opcodes whose last operand is a literal or label.
func (op Opcode) HasValue() bool {
	switch op {
	case OP_ADDI, OP_LW, OP_SW, OP_BEQ, OP_FILL:
		return true
	}
	return false
}

// Directive is true for pseudo opcodes that reserve memory instead of executing.
func (op Opcode) Directive() bool {
	return op == OP_FILL
}
