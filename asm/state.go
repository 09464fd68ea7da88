package asm

import "accsim/cpu"

// ParsingRecord is produced once per trimmed line during PASS1_SCAN and
// consumed during PASS2. It is immutable after PASS1_SCAN writes it.
type ParsingRecord struct {
	LineNo int
	Line   ParsedLine

	InstructionAddress cpu.Word // the address this record occupies, if any
	VariableSlot       cpu.Word // the relative slot this record occupies, if any

	NewInstructionLabel string // "" if this record does not declare one
	NewVariableLabel    string // "" if this record does not declare one

	NextInstructionAddress cpu.Word
	NextVariableSlot       cpu.Word
}

// IsVariableRecord reports whether this record belongs in the variable
// records list (it declares a variable label) rather than the instruction
// records list.
func (r ParsingRecord) IsVariableRecord() bool {
	return r.NewVariableLabel != ""
}

// state holds everything the stepper owns, exclusively, across its
// lifetime. Only snapshot.go is allowed to copy pieces of it out for an
// external caller.
type state struct {
	rawLines     []string
	trimmedLines []string

	trimCursor  int
	scanCursor  int
	emitICursor int
	emitVCursor int

	instructionLabels map[string]cpu.Word // name -> absolute address
	variableSlots     map[string]cpu.Word // name -> relative slot
	variableAddresses map[string]cpu.Word // name -> absolute address (PASS1_FINALISE+)

	records            []ParsingRecord
	instructionRecords []ParsingRecord
	variableRecords    []ParsingRecord

	nextInstructionAddr cpu.Word
	nextVariableSlot    cpu.Word

	instructionWordCount cpu.Word // N, valid from PASS1_FINALISE onward

	emitted []cpu.Word // cumulative emitted words, indexed by absolute address

	lastHighlightInstruction string
	lastHighlightVariable    string
	lastWritten              []memoryWrite
	lastStatus               string
	lastReplacement          string
	hasReplacement           bool
}

type memoryWrite struct {
	Address cpu.Word
	Value   cpu.Word
}

func newState(source []string) *state {
	return &state{
		rawLines:          source,
		instructionLabels: make(map[string]cpu.Word),
		variableSlots:     make(map[string]cpu.Word),
		variableAddresses: make(map[string]cpu.Word),
	}
}
