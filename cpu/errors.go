package cpu

import (
	"errors"
	"fmt"
)

// ErrMissingComponent is returned by NewControlUnit when the component set
// handed to it is incomplete. Construction fails outright; there is no
// partially-built Control Unit. NewCPU always supplies a complete set and
// panics if NewControlUnit still fails.
var ErrMissingComponent = errors.New("cpu: missing required component")

// ErrInvalidUse covers direct read/write of a bus, a direct write into the
// ALU, ALU compute() with an unset or unsupported control signal, and an
// operand value that does not resolve through RegisterIndex.
var ErrInvalidUse = errors.New("cpu: invalid use")

// ErrInvalidOperand is raised when OPERAND resolution finds no matching
// entry in RegisterIndex. It is a variety of InvalidUse.
var ErrInvalidOperand = fmt.Errorf("cpu: invalid operand: %w", ErrInvalidUse)

// ErrAwaitingInput is a soft, non-fatal signal: an IN instruction executed
// against an empty input queue. The caller may feed a byte and call Step
// again; ACC is left untouched.
var ErrAwaitingInput = errors.New("cpu: awaiting input")

// ErrUnknownOpcode means a word loaded into the Control Unit carries an
// opcode outside the fixed instruction catalogue. This can only happen
// from a hand-crafted or corrupted program image -- the assembler never
// emits an opcode outside the catalogue -- so it is a variety of
// InvalidUse, not a new taxonomy entry.
var ErrUnknownOpcode = fmt.Errorf("cpu: unknown opcode: %w", ErrInvalidUse)
