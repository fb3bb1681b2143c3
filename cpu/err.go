package cpu

import (
	"errors"

	"github.com/kindasim/kinda/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrRegisterReadOnly = errors.New(f("register 0 is read-only"))
	ErrAddressInvalid   = errors.New(f("memory address invalid"))
	ErrNotExecutable    = errors.New(f("data is not executable"))

	// Operand errors
	ErrOperand         = errors.New(f("operand"))
	ErrOperandArg1     = errors.New(f("arg1"))
	ErrOperandArg2     = errors.New(f("arg2"))
	ErrOperandArg3     = errors.New(f("arg3"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrRegisterType    = errors.New(f("register must be a non-negative integer"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrValueInvalid    = errors.New(f("value must be an integer or a label"))

	// Assembler errors
	ErrLabelInvalid       = errors.New(f("label must start with a letter"))
	ErrLabelLonely        = errors.New(f("label without instruction"))
	ErrInstructionUnknown = errors.New(f("instruction unknown"))
	ErrDecode             = errors.New(f("decode"))
	ErrExpression         = errors.New(f("expression"))
)

// ErrLabelMissing is returned when a label is not in the label table.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrRange is returned when a value does not fit in a two's complement field.
type ErrRange struct {
	Value int64
	Width int
}

func (err ErrRange) Error() string {
	return f("overflow: %v does not fit in %v bits", err.Value, err.Width)
}

// ErrMemoryProtected is returned on a write at or below the protection boundary.
type ErrMemoryProtected int64

func (err ErrMemoryProtected) Error() string {
	return f("memory address %v is write protected", int64(err))
}

// ErrProgramCounter is returned when the program counter is set below -1.
type ErrProgramCounter int

func (err ErrProgramCounter) Error() string {
	return f("invalid program counter %v", int(err))
}

// ErrSyntax locates a translation failure on a source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("translation error on line %d '%v': %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}
