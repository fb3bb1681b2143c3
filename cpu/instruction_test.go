package cpu

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInstruction(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		op       Opcode
		label    string
		operands []string
		expected Instruction
	}{
		{OP_ADD, "Top", []string{"1", "2", "3"}, Instruction{Op: OP_ADD, RegA: 1, RegB: 2, RegDest: 3, Label: "top"}},
		{OP_ADDI, "", []string{"0", "1", "-5", "extra", "words"}, MakeAddi(0, 1, -5)},
		{OP_LW, "", []string{"7", "6", "32767"}, MakeLw(7, 6, 32767)},
		{OP_SW, "", []string{"0", "1", "data"}, Instruction{Op: OP_SW, RegB: 1, Value: LabelValue("data")}},
		{OP_BEQ, "", []string{"0", "1", "Loop"}, Instruction{Op: OP_BEQ, RegB: 1, Value: LabelValue("loop")}},
		{OP_JALR, "", []string{"3", "4"}, MakeJalr(3, 4)},
		{OP_HALT, "", nil, MakeHalt()},
		{OP_NOOP, "", []string{"comment"}, MakeNoop()},
		{OP_FILL, "", []string{"-1073741824"}, MakeFill(-(1 << 30))},
		{OP_FILL, "", []string{"start"}, MakeFillLabel("start")},
	}

	for _, entry := range table {
		inst, err := NewInstruction(entry.op, entry.label, entry.operands)
		assert.NoError(err, entry.operands)
		assert.Equal(entry.expected, inst)
	}
}

func TestNewInstructionErrors(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		op       Opcode
		operands []string
		errs     []error
	}{
		{OP_ADD, []string{"1", "2"}, []error{ErrOperandMissing}},
		{OP_JALR, []string{"1"}, []error{ErrOperandMissing}},
		{OP_FILL, nil, []error{ErrOperandMissing}},
		{OP_ADD, []string{"x", "2", "3"}, []error{ErrOperandArg1, ErrRegisterType}},
		{OP_ADD, []string{"1", "9", "3"}, []error{ErrOperandArg2, ErrRegisterInvalid}},
		{OP_ADD, []string{"1", "2", "-3"}, []error{ErrOperandArg3, ErrRegisterType}},
		{OP_ADDI, []string{"1", "2", "5x"}, []error{ErrOperandArg3, ErrValueInvalid}},
		{OP_BEQ, []string{"1", "2", "99999999999999999999"}, []error{ErrOperandArg3, ErrValueInvalid}},
		{OP_FILL, []string{"1073741824"}, []error{ErrOperandArg1}},
		{Opcode(42), nil, []error{ErrInstructionUnknown}},
	}

	for _, entry := range table {
		_, err := NewInstruction(entry.op, "", entry.operands)
		assert.ErrorIs(err, ErrOperand, entry.operands)
		for _, expected := range entry.errs {
			assert.ErrorIs(err, expected, entry.operands)
		}
	}

	var rerr ErrRange
	_, err := NewInstruction(OP_FILL, "", []string{"1073741824"})
	assert.True(errors.As(err, &rerr))
	assert.Equal(FILL_BITS, rerr.Width)
}

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		inst Instruction
		word uint32
	}{
		{MakeAdd(0, 0, 1), 0x00000001},
		{MakeAdd(1, 2, 3), 0x000A0003},
		{MakeAddi(0, 1, 5), 0x00410005},
		{MakeLw(1, 2, -1), 0x008AFFFF},
		{MakeSw(0, 1, 0), 0x00C10000},
		{MakeBeq(0, 1, -2), 0x0101FFFE},
		{MakeJalr(3, 4), 0x015C0000},
		{MakeHalt(), 0x01800000},
		{MakeNoop(), 0x01C00000},
		{MakeFill(7), 0x80000007},
		{MakeFill(-1), 0xFFFFFFFF},
	}

	for _, entry := range table {
		word, err := entry.inst.Encode(nil)
		assert.NoError(err, entry.inst)
		assert.Equal(entry.word, word, entry.inst.String())
	}

	assert.Equal(uint32(WORD_HALT), uint32(0x01800000))
	assert.Equal(uint32(WORD_NOOP), uint32(0x01C00000))
}

func TestEncodeErrors(t *testing.T) {
	assert := assert.New(t)

	var rerr ErrRange
	_, err := MakeAddi(0, 1, 32768).Encode(nil)
	assert.True(errors.As(err, &rerr))
	assert.Equal(ErrRange{Value: 32768, Width: VALUE_BITS}, rerr)

	_, err = MakeSw(0, 1, -32769).Encode(nil)
	assert.True(errors.As(err, &rerr))

	_, err = MakeFill(1 << 30).Encode(nil)
	assert.True(errors.As(err, &rerr))
	assert.Equal(FILL_BITS, rerr.Width)

	inst := Instruction{Op: OP_LW, Value: LabelValue("nowhere")}
	_, err = inst.Encode(nil)
	assert.ErrorIs(err, ErrLabelMissing("nowhere"))

	_, err = Instruction{Op: Opcode(-1)}.Encode(nil)
	assert.ErrorIs(err, ErrInstructionUnknown)
}

func TestEncodeLabels(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	assert.NoError(m.AddLabel("top", 0))
	assert.NoError(m.AddLabel("data", 9))

	// beq labels are relative to the next instruction.
	inst := Instruction{Op: OP_BEQ, RegB: 1, Value: LabelValue("top"), Address: 1}
	word, err := inst.Encode(m)
	assert.NoError(err)
	assert.Equal(uint32(0x0101FFFE), word)

	inst = Instruction{Op: OP_BEQ, Value: LabelValue("data"), Address: 4}
	word, err = inst.Encode(m)
	assert.NoError(err)
	assert.Equal(uint32(0x01000004), word)

	// Other labels are absolute.
	inst = Instruction{Op: OP_LW, RegB: 2, Value: LabelValue("data"), Address: 4}
	word, err = inst.Encode(m)
	assert.NoError(err)
	assert.Equal(uint32(0x00820009), word)

	data, err := MakeFillLabel("data").MemoryWord(m)
	assert.NoError(err)
	assert.Equal(int32(9), data)

	data, err = MakeFill(-3).MemoryWord(m)
	assert.NoError(err)
	assert.Equal(int32(-3), data)

	data, err = MakeHalt().MemoryWord(m)
	assert.NoError(err)
	assert.Equal(int32(WORD_HALT), data)
}

func TestExecute(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()

	halt, err := MakeAddi(0, 1, 5).Execute(m)
	assert.NoError(err)
	assert.False(halt)
	assert.Equal(int32(5), m.GetRegister(1))

	_, err = MakeAdd(1, 1, 2).Execute(m)
	assert.NoError(err)
	assert.Equal(int32(10), m.GetRegister(2))

	_, err = MakeAdd(1, 2, 0).Execute(m)
	assert.ErrorIs(err, ErrRegisterReadOnly)
	assert.Equal(int32(0), m.GetRegister(0))

	_, err = MakeSw(0, 2, 20).Execute(m)
	assert.NoError(err)
	value, err := m.ReadMemory(20)
	assert.NoError(err)
	assert.Equal(int32(10), value)

	_, err = MakeLw(1, 3, 15).Execute(m)
	assert.NoError(err)
	assert.Equal(int32(10), m.GetRegister(3))

	_, err = MakeLw(0, 3, -1).Execute(m)
	assert.ErrorIs(err, ErrAddressInvalid)

	// beq with a literal is relative to the current PC.
	assert.NoError(m.SetPC(3))
	_, err = MakeBeq(4, 5, 2).Execute(m)
	assert.NoError(err)
	assert.Equal(5, m.GetPC())

	_, err = MakeBeq(0, 1, 2).Execute(m)
	assert.NoError(err)
	assert.Equal(5, m.GetPC())

	// beq with a label lands one before the label.
	assert.NoError(m.AddLabel("loop", 7))
	_, err = Instruction{Op: OP_BEQ, Value: LabelValue("loop")}.Execute(m)
	assert.NoError(err)
	assert.Equal(6, m.GetPC())

	_, err = Instruction{Op: OP_BEQ, Value: LabelValue("nowhere")}.Execute(m)
	assert.ErrorIs(err, ErrLabelMissing("nowhere"))

	assert.NoError(m.SetPC(4))
	_, err = MakeJalr(1, 2).Execute(m)
	assert.NoError(err)
	assert.Equal(int32(5), m.GetRegister(2))
	assert.Equal(4, m.GetPC())

	halt, err = MakeHalt().Execute(m)
	assert.NoError(err)
	assert.True(halt)

	halt, err = MakeNoop().Execute(m)
	assert.NoError(err)
	assert.False(halt)

	_, err = MakeFill(1).Execute(m)
	assert.ErrorIs(err, ErrNotExecutable)
}

func TestExecuteJalrToZero(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	assert.NoError(m.SetPC(6))
	_, err := MakeJalr(0, 7).Execute(m)
	assert.NoError(err)
	assert.Equal(PC_TRANSIENT, m.GetPC())
	assert.Equal(int32(7), m.GetRegister(7))

	m.IncrementPC()
	assert.Equal(0, m.GetPC())
}

func TestExecuteWraps(t *testing.T) {
	assert := assert.New(t)

	m := NewMachine()
	assert.NoError(m.SetRegister(1, math.MaxInt32))

	_, err := MakeAddi(1, 2, 1).Execute(m)
	assert.NoError(err)
	assert.Equal(int32(math.MinInt32), m.GetRegister(2))

	_, err = MakeAdd(1, 1, 3).Execute(m)
	assert.NoError(err)
	assert.Equal(int32(-2), m.GetRegister(3))
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	table := map[string]Instruction{
		"add 1 2 3":   MakeAdd(1, 2, 3),
		"addi 0 1 -5": MakeAddi(0, 1, -5),
		"lw 0 1 data": {Op: OP_LW, RegB: 1, Value: LabelValue("DATA")},
		"beq 0 1 top": {Op: OP_BEQ, RegB: 1, Value: LabelValue("top"), Label: "here"},
		"jalr 3 4":    MakeJalr(3, 4),
		"halt":        MakeHalt(),
		"noop":        MakeNoop(),
		".fill 5":     MakeFill(5),
		".fill start": MakeFillLabel("start"),
	}

	for expected, inst := range table {
		assert.Equal(expected, inst.String())
	}
}
