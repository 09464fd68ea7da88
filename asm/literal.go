package asm

import (
	"strconv"
	"strings"

	"accsim/cpu"
)

// registerNames maps the six legal register-name operands to the
// component they resolve to.
var registerNames = map[string]cpu.ComponentName{
	"ACC": cpu.ACC,
	"IX":  cpu.IX,
	"PC":  cpu.PC,
	"MAR": cpu.MAR,
	"MDR": cpu.MDR,
	"CIR": cpu.CIR,
}

// IsLiteralToken reports whether token is an immediate literal by its
// prefix (#, B, or &), the tie-break rule spec.md §4.1/§4.7 uses to pick
// between an overloaded mnemonic's IMMEDIATE and non-IMMEDIATE forms.
func IsLiteralToken(token string) bool {
	if token == "" {
		return false
	}
	switch token[0] {
	case '#', 'B', '&':
		return true
	default:
		return false
	}
}

// ParseLiteral parses a #decimal, Bbinary, or &hex immediate literal token
// and validates that it fits in a Word (0..65535).
func ParseLiteral(token string) (cpu.Word, error) {
	if token == "" {
		return 0, newError(InvalidImmediate, -1, "empty literal")
	}

	var (
		digits string
		base   int
	)
	switch token[0] {
	case '#':
		digits, base = token[1:], 10
	case 'B':
		digits, base = token[1:], 2
	case '&':
		digits, base = token[1:], 16
	default:
		return 0, newError(InvalidImmediate, -1, "%q is not a literal (missing #, B, or & prefix)", token)
	}

	if digits == "" {
		return 0, newError(InvalidImmediate, -1, "%q has no digits", token)
	}

	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, newError(InvalidImmediate, -1, "%q is not a valid base-%d literal: %s", token, base, err)
	}
	if v < 0 || v > 0xFFFF {
		return 0, newError(OperandOutOfRange, -1, "%q = %d is outside [0, 65535]", token, v)
	}
	return cpu.Word(v), nil
}

// RegisterOperand resolves one of the six register-name operands,
// normalised to upper case, to its register index.
func RegisterOperand(token string) (cpu.Word, bool) {
	name, ok := registerNames[strings.ToUpper(token)]
	if !ok {
		return 0, false
	}
	return cpu.RegisterIndex[name], true
}
