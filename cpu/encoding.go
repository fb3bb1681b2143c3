package cpu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	WORD_SIZE     = 32 // Bits in a machine word.
	REGISTER_BITS = 3  // Bits in a register operand.
	REGISTERS     = 8  // Number of registers.
)

// fits returns true if value is representable as a width-bit two's complement number.
func fits(value int64, width int) bool {
	low := -(int64(1) << (width - 1))
	high := (int64(1) << (width - 1)) - 1
	return value >= low && value <= high
}

// TwosComplement encodes value as a width-bit two's complement bit string, MSB first.
func TwosComplement(value int64, width int) (bits string, err error) {
	if width < 1 || width > 63 || !fits(value, width) {
		err = ErrRange{Value: value, Width: width}
		return
	}

	mask := (uint64(1) << width) - 1
	bits = fmt.Sprintf("%0*b", width, uint64(value)&mask)
	return
}

// DecodeTwosComplement decodes a two's complement bit string of any length
// up to 64 bits. The sign is taken from bits[0].
func DecodeTwosComplement(bits string) (value int64, err error) {
	if len(bits) == 0 || len(bits) > 64 {
		err = ErrDecode
		return
	}

	u, err := strconv.ParseUint(bits, 2, 64)
	if err != nil {
		err = ErrDecode
		return
	}

	value = int64(u)
	if bits[0] == '1' && len(bits) < 64 {
		value -= int64(1) << len(bits)
	}

	return
}

// RegisterToBits returns the fixed 3-bit encoding of a register.
func RegisterToBits(reg int) string {
	return fmt.Sprintf("%03b", reg&(REGISTERS-1))
}

// BitsToRegister decodes a 3-bit register field.
func BitsToRegister(bits string) (reg int, err error) {
	if len(bits) != REGISTER_BITS {
		err = ErrDecode
		return
	}

	u, err := strconv.ParseUint(bits, 2, REGISTER_BITS)
	if err != nil {
		err = ErrDecode
		return
	}

	reg = int(u)
	return
}

// WordToHex renders a word as 8 upper case hexadecimal digits.
func WordToHex(word uint32) string {
	return fmt.Sprintf("%08X", word)
}

// HexToWord parses exactly 8 hexadecimal digits of either case.
func HexToWord(text string) (word uint32, err error) {
	if len(text) != WORD_SIZE/4 {
		err = ErrDecode
		return
	}

	u, err := strconv.ParseUint(text, 16, WORD_SIZE)
	if err != nil {
		err = ErrDecode
		return
	}

	word = uint32(u)
	return
}

// WordToBits expands a word into 32 binary digits, MSB first.
func WordToBits(word uint32) string {
	return fmt.Sprintf("%032b", word)
}

// isNumeric is true for a non-empty run of decimal digits.
func isNumeric(word string) bool {
	if len(word) == 0 {
		return false
	}
	return strings.Trim(word, "0123456789") == ""
}

// ValidateRegister checks a register operand, given as an integer or a
// numeric string, and returns its index.
func ValidateRegister(token any) (reg int, err error) {
	var value int64

	switch v := token.(type) {
	case string:
		if !isNumeric(v) {
			err = errors.Join(ErrOperand, ErrRegisterType)
			return
		}
		value, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			err = errors.Join(ErrOperand, ErrRegisterInvalid)
			return
		}
	case int:
		value = int64(v)
	case int32:
		value = int64(v)
	case int64:
		value = v
	default:
		err = errors.Join(ErrOperand, ErrRegisterType)
		return
	}

	if value < 0 {
		err = errors.Join(ErrOperand, ErrRegisterType)
		return
	}

	if value >= REGISTERS {
		err = errors.Join(ErrOperand, ErrRegisterInvalid)
		return
	}

	reg = int(value)
	return
}
