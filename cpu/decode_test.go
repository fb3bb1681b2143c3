package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		word uint32
		inst Instruction
	}{
		{0x00000001, MakeAdd(0, 0, 1)},
		{0x000A0003, MakeAdd(1, 2, 3)},
		{0x00410005, MakeAddi(0, 1, 5)},
		{0x008AFFFF, MakeLw(1, 2, -1)},
		{0x00C10000, MakeSw(0, 1, 0)},
		{0x0101FFFE, MakeBeq(0, 1, -2)},
		{0x015C0000, MakeJalr(3, 4)},
		{0x015C0005, MakeJalr(3, 4)},
		{0x01800000, MakeHalt()},
		{0x01C00000, MakeNoop()},
		{0x80000007, MakeFill(7)},
		{0xFFFFFFFF, MakeFill(-1)},
		{0x02000000, MakeFill(0x02000000)},
	}

	for _, entry := range table {
		inst, err := Decode(entry.word)
		assert.NoError(err, WordToHex(entry.word))
		assert.Equal(entry.inst, inst, WordToHex(entry.word))
	}
}

func TestDecodeValueWidth(t *testing.T) {
	assert := assert.New(t)

	// The value field is written with 16 bits but read back with 15.
	word, err := MakeAddi(0, 1, 16384).Encode(nil)
	assert.NoError(err)
	inst, err := Decode(word)
	assert.NoError(err)
	assert.Equal(MakeAddi(0, 1, -16384), inst)

	word, err = MakeAddi(0, 1, 16383).Encode(nil)
	assert.NoError(err)
	inst, err = Decode(word)
	assert.NoError(err)
	assert.Equal(MakeAddi(0, 1, 16383), inst)
}

func TestDecodeErrors(t *testing.T) {
	assert := assert.New(t)

	// add with a destination field past the last register
	_, err := Decode(0x00000008)
	assert.ErrorIs(err, ErrDecode)
	assert.ErrorIs(err, ErrRegisterInvalid)

	_, err = DecodeHex("0101FFF")
	assert.ErrorIs(err, ErrDecode)

	inst, err := DecodeHex("0101fffe")
	assert.NoError(err)
	assert.Equal(MakeBeq(0, 1, -2), inst)
}

func FuzzEncodeDecode(f *testing.F) {
	for op := range OP_FILL + 1 {
		f.Add(uint8(op), uint8(1), uint8(2), int16(-3))
		f.Add(uint8(op), uint8(7), uint8(0), int16(0x7fff))
		f.Add(uint8(op), uint8(0), uint8(7), int16(-0x8000))
	}

	f.Fuzz(func(t *testing.T, op uint8, regA uint8, regB uint8, value int16) {
		assert := assert.New(t)

		inst := Instruction{
			Op:   Opcode(op % uint8(OP_FILL+1)),
			RegA: int(regA % REGISTERS),
			RegB: int(regB % REGISTERS),
		}

		switch inst.Op {
		case OP_ADD:
			inst.RegDest = int(uint16(value) % REGISTERS)
		case OP_ADDI, OP_LW, OP_SW, OP_BEQ:
			// Only 15 bits survive decoding.
			inst.Value = LiteralValue(int64(value) >> 1)
		case OP_HALT, OP_NOOP:
			inst.RegA, inst.RegB = 0, 0
		case OP_FILL:
			inst.RegA, inst.RegB = 0, 0
			inst.Value = LiteralValue(int64(value) << 14)
		}

		word, err := inst.Encode(nil)
		assert.NoError(err)

		decoded, err := Decode(word)
		assert.NoError(err)
		assert.Equal(inst, decoded, WordToHex(word))
	})
}
