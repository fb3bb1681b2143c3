package emulator

import (
	"errors"
	"fmt"

	"github.com/kindasim/kinda/translate"
)

var f = translate.From

var (
	ErrSourceEmpty = errors.New(f("source code is blank"))
	ErrNotStepping = errors.New(f("the system is not in step execution mode"))

	// ErrFetch is matched by every failed instruction fetch.
	ErrFetch = errors.New(f("memory address does not hold a valid instruction"))
	// ErrFetchRange is returned when the program counter leaves the program,
	// usually because it does not end with halt.
	ErrFetchRange = fmt.Errorf("%w (%v)", ErrFetch, f("hint: always end your code with halt"))
)

// ErrFetchData is returned when the program counter reaches a word that is
// data rather than an instruction.
type ErrFetchData struct {
	Address int
	Value   int32
}

func (err *ErrFetchData) Error() string {
	return f("%v is not a valid instruction (memory address: %v)", err.Value, err.Address)
}

func (err *ErrFetchData) Is(target error) bool {
	return target == ErrFetch
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Address int
	LineNo  int
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("address %d: %v", err.Address, err.Err)
	}
	return f("address %d, line %d: %v", err.Address, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
