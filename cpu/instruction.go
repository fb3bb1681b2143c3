package cpu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// LabelResolver maps a label to the address it was defined at.
type LabelResolver interface {
	ResolveLabel(name string) (addr int, err error)
}

// Value is the last operand of addi, lw, sw, beq and .fill: either a
// literal or a label resolved at load time.
type Value struct {
	Literal int64
	Label   string
}

// LiteralValue makes a literal Value.
func LiteralValue(literal int64) Value {
	return Value{Literal: literal}
}

// LabelValue makes a symbolic Value.
func LabelValue(label string) Value {
	return Value{Label: strings.ToLower(label)}
}

// IsLabel is true if the value still refers to a label.
func (v Value) IsLabel() bool {
	return len(v.Label) != 0
}

// Resolve returns the literal, or the address of the label.
func (v Value) Resolve(labels LabelResolver) (value int64, err error) {
	if !v.IsLabel() {
		value = v.Literal
		return
	}

	if labels == nil {
		err = ErrLabelMissing(v.Label)
		return
	}

	addr, err := labels.ResolveLabel(v.Label)
	if err != nil {
		return
	}

	value = int64(addr)
	return
}

func (v Value) String() string {
	if v.IsLabel() {
		return v.Label
	}
	return strconv.FormatInt(v.Literal, 10)
}

// validLabel is true for a letter followed by letters or digits.
func validLabel(word string) bool {
	if len(word) == 0 {
		return false
	}
	for n, ch := range word {
		isLetter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		isDigit := ch >= '0' && ch <= '9'
		if n == 0 && !isLetter {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// parseValue parses a signed decimal literal or a label.
func parseValue(word string) (value Value, err error) {
	digits := strings.TrimPrefix(word, "-")
	if isNumeric(digits) {
		value.Literal, err = strconv.ParseInt(word, 10, 64)
		if err != nil {
			err = errors.Join(ErrValueInvalid, err)
		}
		return
	}

	if !validLabel(word) {
		err = ErrValueInvalid
		return
	}

	value = LabelValue(word)
	return
}

// Instruction is a single instruction or directive of a program.
// Op selects which of the operand fields are meaningful.
type Instruction struct {
	Op      Opcode
	RegA    int
	RegB    int
	RegDest int   // add only
	Value   Value // addi, lw, sw, beq, .fill
	Label   string
	Address int // Position in the loaded program.
	LineNo  int // Source line, 0 if not assembled from text.
}

// MakeAdd makes an add instruction: regDest = regA + regB.
func MakeAdd(regA, regB, regDest int) Instruction {
	return Instruction{Op: OP_ADD, RegA: regA, RegB: regB, RegDest: regDest}
}

// MakeAddi makes an addi instruction: regB = regA + immediate.
func MakeAddi(regA, regB int, immediate int64) Instruction {
	return Instruction{Op: OP_ADDI, RegA: regA, RegB: regB, Value: LiteralValue(immediate)}
}

// MakeLw makes a lw instruction: regB = memory[regA + displacement].
func MakeLw(regA, regB int, displacement int64) Instruction {
	return Instruction{Op: OP_LW, RegA: regA, RegB: regB, Value: LiteralValue(displacement)}
}

// MakeSw makes a sw instruction: memory[regA + displacement] = regB.
func MakeSw(regA, regB int, displacement int64) Instruction {
	return Instruction{Op: OP_SW, RegA: regA, RegB: regB, Value: LiteralValue(displacement)}
}

// MakeBeq makes a beq instruction with a PC relative displacement.
func MakeBeq(regA, regB int, displacement int64) Instruction {
	return Instruction{Op: OP_BEQ, RegA: regA, RegB: regB, Value: LiteralValue(displacement)}
}

// MakeJalr makes a jalr instruction.
func MakeJalr(regA, regB int) Instruction {
	return Instruction{Op: OP_JALR, RegA: regA, RegB: regB}
}

func MakeHalt() Instruction {
	return Instruction{Op: OP_HALT}
}

func MakeNoop() Instruction {
	return Instruction{Op: OP_NOOP}
}

// MakeFill makes a .fill directive holding a literal.
func MakeFill(value int64) Instruction {
	return Instruction{Op: OP_FILL, Value: LiteralValue(value)}
}

// MakeFillLabel makes a .fill directive holding the address of a label.
func MakeFillLabel(label string) Instruction {
	return Instruction{Op: OP_FILL, Value: LabelValue(label)}
}

// NewInstruction validates the operand words of a mnemonic and builds the
// instruction. Words past the required operands are comment text.
func NewInstruction(op Opcode, label string, operands []string) (inst Instruction, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOperand, err)
		}
	}()

	if op < OP_ADD || op > OP_FILL {
		err = ErrInstructionUnknown
		return
	}

	need := op.Operands()
	if len(operands) < need {
		err = ErrOperandMissing
		return
	}

	inst = Instruction{Op: op, Label: strings.ToLower(label)}

	argErr := [3]error{ErrOperandArg1, ErrOperandArg2, ErrOperandArg3}

	switch op {
	case OP_ADD, OP_ADDI, OP_LW, OP_SW, OP_BEQ, OP_JALR:
		inst.RegA, err = ValidateRegister(operands[0])
		if err != nil {
			err = errors.Join(argErr[0], err)
			return
		}
		inst.RegB, err = ValidateRegister(operands[1])
		if err != nil {
			err = errors.Join(argErr[1], err)
			return
		}
	}

	switch op {
	case OP_ADD:
		inst.RegDest, err = ValidateRegister(operands[2])
		if err != nil {
			err = errors.Join(argErr[2], err)
			return
		}
	case OP_ADDI, OP_LW, OP_SW, OP_BEQ:
		inst.Value, err = parseValue(operands[2])
		if err != nil {
			err = errors.Join(argErr[2], err)
			return
		}
	case OP_FILL:
		inst.Value, err = parseValue(operands[0])
		if err != nil {
			err = errors.Join(argErr[0], err)
			return
		}
		if !inst.Value.IsLabel() && !fits(inst.Value.Literal, FILL_BITS) {
			err = errors.Join(argErr[0], ErrRange{Value: inst.Value.Literal, Width: FILL_BITS})
			return
		}
	}

	return
}

// value resolves the value field as it is encoded: beq labels become a
// displacement relative to the next instruction.
func (inst Instruction) value(labels LabelResolver) (value int64, err error) {
	value, err = inst.Value.Resolve(labels)
	if err != nil {
		return
	}

	if inst.Op == OP_BEQ && inst.Value.IsLabel() {
		value = value - int64(inst.Address) - 1
	}

	return
}

// regs returns the register fields of a word.
func (inst Instruction) regs() uint32 {
	a := uint32(inst.RegA) & (REGISTERS - 1)
	b := uint32(inst.RegB) & (REGISTERS - 1)
	return (a << REG_A_SHIFT) | (b << REG_B_SHIFT)
}

// Encode returns the 32-bit machine word of the instruction.
func (inst Instruction) Encode(labels LabelResolver) (word uint32, err error) {
	switch inst.Op {
	case OP_ADD:
		word = inst.regs() | (uint32(inst.RegDest) & (REGISTERS - 1))
	case OP_ADDI, OP_LW, OP_SW, OP_BEQ:
		var value int64
		value, err = inst.value(labels)
		if err != nil {
			return
		}
		if !fits(value, VALUE_BITS) {
			err = ErrRange{Value: value, Width: VALUE_BITS}
			return
		}
		word = (uint32(inst.Op) << OPCODE_SHIFT) | inst.regs() | (uint32(value) & VALUE_MASK)
	case OP_JALR:
		word = (uint32(inst.Op) << OPCODE_SHIFT) | inst.regs()
	case OP_HALT:
		word = WORD_HALT
	case OP_NOOP:
		word = WORD_NOOP
	case OP_FILL:
		var value int64
		value, err = inst.value(labels)
		if err != nil {
			return
		}
		if !fits(value, FILL_BITS) {
			err = ErrRange{Value: value, Width: FILL_BITS}
			return
		}
		word = FILL_MARKER | (uint32(value) & FILL_MASK)
	default:
		err = ErrInstructionUnknown
	}

	return
}

// MemoryWord returns what a loader stores for the instruction: the encoded
// word, or for .fill the resolved value itself.
func (inst Instruction) MemoryWord(labels LabelResolver) (data int32, err error) {
	if inst.Op == OP_FILL {
		var value int64
		value, err = inst.value(labels)
		if err != nil {
			return
		}
		if !fits(value, FILL_BITS) {
			err = ErrRange{Value: value, Width: FILL_BITS}
			return
		}
		data = int32(value)
		return
	}

	word, err := inst.Encode(labels)
	data = int32(word)
	return
}

// Execute performs the instruction against the machine. The caller advances
// the PC afterwards, so jumps land one before their target.
func (inst Instruction) Execute(m *Machine) (halt bool, err error) {
	switch inst.Op {
	case OP_ADD:
		a := m.GetRegister(inst.RegA)
		b := m.GetRegister(inst.RegB)
		err = m.SetRegister(inst.RegDest, a+b)
	case OP_ADDI:
		var imm int64
		imm, err = inst.Value.Resolve(m)
		if err != nil {
			return
		}
		err = m.SetRegister(inst.RegB, m.GetRegister(inst.RegA)+int32(imm))
	case OP_LW:
		var disp int64
		disp, err = inst.Value.Resolve(m)
		if err != nil {
			return
		}
		var data int32
		data, err = m.ReadMemory(int64(m.GetRegister(inst.RegA)) + disp)
		if err != nil {
			return
		}
		err = m.SetRegister(inst.RegB, data)
	case OP_SW:
		var disp int64
		disp, err = inst.Value.Resolve(m)
		if err != nil {
			return
		}
		err = m.WriteMemory(int64(m.GetRegister(inst.RegA))+disp, m.GetRegister(inst.RegB))
	case OP_BEQ:
		var disp int64
		disp, err = inst.Value.Resolve(m)
		if err != nil {
			return
		}
		if m.GetRegister(inst.RegA) != m.GetRegister(inst.RegB) {
			return
		}
		if inst.Value.IsLabel() {
			err = m.SetPC(int(disp) - 1)
		} else {
			err = m.SetPC(m.GetPC() + int(disp))
		}
	case OP_JALR:
		target := m.GetRegister(inst.RegA)
		err = m.SetRegister(inst.RegB, int32(m.GetPC()+1))
		if err != nil {
			return
		}
		err = m.SetPC(int(target) - 1)
	case OP_HALT:
		halt = true
	case OP_NOOP:
		// pass
	case OP_FILL:
		err = ErrNotExecutable
	default:
		err = ErrInstructionUnknown
	}

	return
}

// String renders the instruction in source form, without its label.
func (inst Instruction) String() string {
	switch inst.Op {
	case OP_ADD:
		return fmt.Sprintf("%v %d %d %d", inst.Op, inst.RegA, inst.RegB, inst.RegDest)
	case OP_ADDI, OP_LW, OP_SW, OP_BEQ:
		return fmt.Sprintf("%v %d %d %v", inst.Op, inst.RegA, inst.RegB, inst.Value)
	case OP_JALR:
		return fmt.Sprintf("%v %d %d", inst.Op, inst.RegA, inst.RegB)
	case OP_FILL:
		return fmt.Sprintf("%v %v", inst.Op, inst.Value)
	default:
		return inst.Op.String()
	}
}
