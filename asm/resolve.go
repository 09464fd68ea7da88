package asm

import (
	"strings"

	"accsim/cpu"
)

// resolveForCount determines how many instruction words a line with this
// mnemonic (and whether it carries an operand token) will occupy, without
// fully disambiguating an overloaded mnemonic. Every overload set this
// catalogue defines (ADD, SUB, AND, OR, XOR, CMP) agrees on LongOperand
// across all its forms, so the word count never depends on which form
// tie-break eventually picks; only PASS2_EMIT_INSTRUCTIONS needs the full
// resolution.
func resolveForCount(mnemonic string, lineNo int) (wordCount cpu.Word, err error) {
	defs, ok := cpu.ByMnemonic[mnemonic]
	if !ok {
		return 0, newError(UnknownMnemonic, lineNo, "unknown mnemonic %q", mnemonic)
	}
	if defs[0].LongOperand {
		return 2, nil
	}
	return 1, nil
}

// resolveDefinition fully resolves a mnemonic to a single definition,
// disambiguating an overloaded mnemonic by the operand token's prefix
// (spec.md §4.1, §4.7).
func resolveDefinition(mnemonic, operandToken string, hasOperand bool, lineNo int) (*cpu.InstructionDefinition, error) {
	defs, ok := cpu.ByMnemonic[mnemonic]
	if !ok {
		return nil, newError(UnknownMnemonic, lineNo, "unknown mnemonic %q", mnemonic)
	}
	if len(defs) == 1 {
		d := defs[0]
		return &d, nil
	}
	if !hasOperand {
		return nil, newError(AmbiguousMnemonic, lineNo, "%s requires an operand to disambiguate its addressing mode", mnemonic)
	}
	if IsLiteralToken(operandToken) {
		for _, d := range defs {
			if d.Mode == cpu.Immediate {
				return &d, nil
			}
		}
	}
	for _, d := range defs {
		if d.Mode != cpu.Immediate {
			return &d, nil
		}
	}
	return nil, newError(AmbiguousMnemonic, lineNo, "could not disambiguate mnemonic %q", mnemonic)
}

// resolveOperandValue resolves an operand token against, in order: an
// immediate literal, a known instruction label, a known variable label,
// and a register name. state is read-only here; label maps must already
// be final (i.e. this is only safe from PASS1_FINALISE onward for
// variable labels).
func resolveOperandValue(s *state, token string, lineNo int) (cpu.Word, error) {
	if IsLiteralToken(token) {
		return ParseLiteral(token)
	}
	upper := strings.ToUpper(token)
	if addr, ok := s.instructionLabels[upper]; ok {
		return addr, nil
	}
	if addr, ok := s.variableAddresses[upper]; ok {
		return addr, nil
	}
	if idx, ok := RegisterOperand(token); ok {
		return idx, nil
	}
	return 0, newError(UnknownOperand, lineNo, "unresolved operand %q", token)
}
