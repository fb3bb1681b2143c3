package cpu

import (
	"errors"
	"strconv"
)

// Decode turns a machine word back into an instruction.
//
// The top 10 bits hold the opcode; if they read above 7 the word is a
// .fill directive and its low 31 bits are the value. Otherwise the
// registers are bits [10:13) and [13:16), and the value is read from bits
// [17:32) as a 15-bit two's complement number, one bit narrower than the
// encoder writes.
func Decode(word uint32) (inst Instruction, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrDecode, err)
		}
	}()

	bits := WordToBits(word)

	code, err := strconv.ParseUint(bits[0:10], 2, 16)
	if err != nil {
		return
	}

	if code > uint64(OP_NOOP) {
		var value int64
		value, err = DecodeTwosComplement(bits[WORD_SIZE-FILL_BITS:])
		if err != nil {
			return
		}
		inst = MakeFill(value)
		return
	}

	regA, err := BitsToRegister(bits[10:13])
	if err != nil {
		return
	}
	regB, err := BitsToRegister(bits[13:16])
	if err != nil {
		return
	}
	value, err := DecodeTwosComplement(bits[WORD_SIZE-DECODE_VALUE_BITS:])
	if err != nil {
		return
	}

	switch op := Opcode(code); op {
	case OP_ADD:
		var regDest int
		regDest, err = ValidateRegister(value)
		if err != nil {
			err = errors.Join(ErrOperandArg3, err)
			return
		}
		inst = MakeAdd(regA, regB, regDest)
	case OP_ADDI, OP_LW, OP_SW, OP_BEQ:
		inst = Instruction{Op: op, RegA: regA, RegB: regB, Value: LiteralValue(value)}
	case OP_JALR:
		inst = MakeJalr(regA, regB)
	case OP_HALT:
		inst = MakeHalt()
	case OP_NOOP:
		inst = MakeNoop()
	}

	return
}

// DecodeHex decodes an 8 digit hexadecimal machine word.
func DecodeHex(text string) (inst Instruction, err error) {
	word, err := HexToWord(text)
	if err != nil {
		return
	}

	return Decode(word)
}
