package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// Known failure conditions. A *Error carries one of these as its cause.
var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrOutOfRange      = errors.New("address out of range")
	ErrStackOverflow   = errors.New("stack overflow")
	ErrStackUnderflow  = errors.New("stack underflow")
	ErrProgramTooLarge = errors.New("program too large")
)

// Error defines a runtime error for the instruction at IP.
// Machine state is left exactly as it was before the instruction was fetched.
type Error struct {
	Instruction
	Err error
}

// NewError creates a new error for the given instruction.
func NewError(instr *Instruction, err error) *Error {
	return &Error{
		Instruction: *instr,
		Err:         err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%04x: %04x: %v", e.IP, e.Word, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Cause returns the underlying cause for use with errors.Cause.
func (e *Error) Cause() error {
	return e.Err
}
