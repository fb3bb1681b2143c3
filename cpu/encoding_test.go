package cpu

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwosComplement(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		value int64
		width int
		bits  string
	}{
		{0, 1, "0"},
		{-1, 1, "1"},
		{5, 4, "0101"},
		{7, 4, "0111"},
		{-1, 4, "1111"},
		{-8, 4, "1000"},
		{-2, 16, "1111111111111110"},
		{-(1 << 30), 31, "1000000000000000000000000000000"},
	}

	for _, entry := range table {
		bits, err := TwosComplement(entry.value, entry.width)
		assert.NoError(err, entry.value)
		assert.Equal(entry.bits, bits)

		value, err := DecodeTwosComplement(bits)
		assert.NoError(err)
		assert.Equal(entry.value, value)
	}
}

func TestTwosComplementRange(t *testing.T) {
	assert := assert.New(t)

	for width := 1; width <= 10; width++ {
		low := -(int64(1) << (width - 1))
		high := (int64(1) << (width - 1)) - 1

		for value := low; value <= high; value++ {
			bits, err := TwosComplement(value, width)
			assert.NoError(err)
			assert.Len(bits, width)
			back, err := DecodeTwosComplement(bits)
			assert.NoError(err)
			assert.Equal(value, back)
		}

		var rerr ErrRange
		_, err := TwosComplement(high+1, width)
		assert.True(errors.As(err, &rerr))
		assert.Equal(ErrRange{Value: high + 1, Width: width}, rerr)

		_, err = TwosComplement(low-1, width)
		assert.True(errors.As(err, &rerr))
	}
}

func TestDecodeTwosComplementInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, bits := range []string{"", "012", "1x"} {
		_, err := DecodeTwosComplement(bits)
		assert.ErrorIs(err, ErrDecode, bits)
	}
}

func TestRegisterBits(t *testing.T) {
	assert := assert.New(t)

	for reg := range REGISTERS {
		bits := RegisterToBits(reg)
		assert.Len(bits, REGISTER_BITS)
		back, err := BitsToRegister(bits)
		assert.NoError(err)
		assert.Equal(reg, back)
	}

	assert.Equal("101", RegisterToBits(5))

	_, err := BitsToRegister("1010")
	assert.ErrorIs(err, ErrDecode)
	_, err = BitsToRegister("1a1")
	assert.ErrorIs(err, ErrDecode)
}

func TestHex(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0101FFFE", WordToHex(0x0101fffe))
	assert.Equal("00000000", WordToHex(0))

	word, err := HexToWord("0101fffe")
	assert.NoError(err)
	assert.Equal(uint32(0x0101fffe), word)

	word, err = HexToWord("FFFFFFFF")
	assert.NoError(err)
	assert.Equal(uint32(0xffffffff), word)

	for _, text := range []string{"", "123", "0101FFFE0", "GGGGGGGG", "-1234567"} {
		_, err = HexToWord(text)
		assert.ErrorIs(err, ErrDecode, text)
	}

	assert.Equal("00000001100000000000000000000000", WordToBits(WORD_HALT))
}

func TestValidateRegister(t *testing.T) {
	assert := assert.New(t)

	for reg := range REGISTERS {
		for _, token := range []any{reg, int32(reg), int64(reg), strconv.Itoa(reg)} {
			got, err := ValidateRegister(token)
			assert.NoError(err, token)
			assert.Equal(reg, got)
		}
	}

	table := map[any]error{
		8:       ErrRegisterInvalid,
		"8":     ErrRegisterInvalid,
		"99":    ErrRegisterInvalid,
		-1:      ErrRegisterType,
		"-1":    ErrRegisterType,
		"r1":    ErrRegisterType,
		"":      ErrRegisterType,
		1.5:     ErrRegisterType,
		"0x1":   ErrRegisterType,
		uint(1): ErrRegisterType,
	}

	for token, expected := range table {
		_, err := ValidateRegister(token)
		assert.ErrorIs(err, ErrOperand, token)
		assert.ErrorIs(err, expected, token)
	}

	_, err := ValidateRegister(nil)
	assert.ErrorIs(err, ErrOperand)
}
