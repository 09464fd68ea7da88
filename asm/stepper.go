package asm

import (
	"strings"

	"accsim/cpu"
)

// Phase is one stage of the two-pass assembler state machine.
type Phase int

const (
	TRIM Phase = iota
	PASS1_SCAN
	PASS1_FINALISE
	PASS2_EMIT_INSTRUCTIONS
	PASS2_EMIT_VARIABLES
	DONE
	ERROR
)

func (p Phase) String() string {
	switch p {
	case TRIM:
		return "TRIM"
	case PASS1_SCAN:
		return "PASS1_SCAN"
	case PASS1_FINALISE:
		return "PASS1_FINALISE"
	case PASS2_EMIT_INSTRUCTIONS:
		return "PASS2_EMIT_INSTRUCTIONS"
	case PASS2_EMIT_VARIABLES:
		return "PASS2_EMIT_VARIABLES"
	case DONE:
		return "DONE"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Stepper drives the assembler one micro-step at a time. It exclusively
// owns all assembler state; Step returns a read-only Snapshot.
type Stepper struct {
	phase Phase
	s     *state
	err   *AssemblingError
}

// NewStepper builds a stepper over raw source lines, ready to begin
// trimming.
func NewStepper(sourceLines []string) *Stepper {
	return &Stepper{phase: TRIM, s: newState(sourceLines)}
}

// Phase reports the stepper's current phase.
func (st *Stepper) Phase() Phase { return st.phase }

// Step advances exactly one micro-step of whichever phase is current and
// returns an immutable snapshot of the resulting state. In DONE or ERROR,
// Step is idempotent: it returns an identity snapshot and mutates nothing.
func (st *Stepper) Step() Snapshot {
	st.advance()
	return st.snapshot()
}

// advance performs one micro-step of whichever phase is current without
// building a snapshot.
func (st *Stepper) advance() {
	st.s.lastWritten = nil
	st.s.lastStatus = ""
	st.s.lastHighlightInstruction = ""
	st.s.lastHighlightVariable = ""
	st.s.lastReplacement = ""
	st.s.hasReplacement = false

	switch st.phase {
	case TRIM:
		st.stepTrim()
	case PASS1_SCAN:
		st.stepScan()
	case PASS1_FINALISE:
		st.stepFinalise()
	case PASS2_EMIT_INSTRUCTIONS:
		st.stepEmitInstructions()
	case PASS2_EMIT_VARIABLES:
		st.stepEmitVariables()
	case DONE, ERROR:
		// idempotent
	}
}

func (st *Stepper) fail(err *AssemblingError) {
	st.err = err
	st.phase = ERROR
	st.s.lastStatus = err.Error()
}

func (st *Stepper) stepTrim() {
	if st.s.trimCursor >= len(st.s.rawLines) {
		st.phase = PASS1_SCAN
		return
	}
	raw := st.s.rawLines[st.s.trimCursor]
	st.s.trimCursor++
	if trimmed := TrimLine(raw); trimmed != "" {
		st.s.trimmedLines = append(st.s.trimmedLines, trimmed)
	}
	if st.s.trimCursor >= len(st.s.rawLines) {
		st.phase = PASS1_SCAN
	}
	st.s.lastReplacement = buildTrimReplacement(st.s.trimmedLines, st.s.rawLines[st.s.trimCursor:])
	st.s.hasReplacement = true
}

// buildTrimReplacement renders the editor text TRIM should show after this
// step: every line already cleaned, followed by the raw lines still waiting
// to be trimmed, so an observer watches the source shrink from the top down
// (spec.md §4.7: "snapshots show the partially trimmed prefix plus the
// remaining raw suffix").
func buildTrimReplacement(trimmedSoFar, remainingRaw []string) string {
	lines := make([]string, 0, len(trimmedSoFar)+len(remainingRaw))
	lines = append(lines, trimmedSoFar...)
	lines = append(lines, remainingRaw...)
	return strings.Join(lines, "\n")
}

func (st *Stepper) stepScan() {
	if st.s.scanCursor >= len(st.s.trimmedLines) {
		st.phase = PASS1_FINALISE
		return
	}
	lineNo := st.s.scanCursor
	trimmed := st.s.trimmedLines[lineNo]
	st.s.scanCursor++

	parsed, err := ClassifyLine(trimmed, lineNo)
	if err != nil {
		st.fail(err.(*AssemblingError))
		return
	}

	record := ParsingRecord{LineNo: lineNo, Line: parsed}

	switch parsed.Shape {
	case ShapeLabeledVariable:
		record.NewVariableLabel = parsed.Label
		record.VariableSlot = st.s.nextVariableSlot
		if _, exists := st.s.variableSlots[parsed.Label]; !exists {
			st.s.variableSlots[parsed.Label] = st.s.nextVariableSlot
		}
		st.s.nextVariableSlot++
		record.NextVariableSlot = st.s.nextVariableSlot
		record.NextInstructionAddress = st.s.nextInstructionAddr
		st.s.lastHighlightVariable = parsed.Label

	case ShapeLabeledNoneMnemonic:
		record.NewInstructionLabel = parsed.Label
		record.InstructionAddress = st.s.nextInstructionAddr
		if _, exists := st.s.instructionLabels[parsed.Label]; !exists {
			st.s.instructionLabels[parsed.Label] = st.s.nextInstructionAddr
		}
		st.s.nextInstructionAddr++
		record.NextInstructionAddress = st.s.nextInstructionAddr
		record.NextVariableSlot = st.s.nextVariableSlot
		st.s.lastHighlightInstruction = parsed.Label

	case ShapeLabeledInstruction:
		count, cerr := resolveForCount(parsed.Mnemonic, lineNo)
		if cerr != nil {
			st.fail(cerr.(*AssemblingError))
			return
		}
		record.NewInstructionLabel = parsed.Label
		record.InstructionAddress = st.s.nextInstructionAddr
		if _, exists := st.s.instructionLabels[parsed.Label]; !exists {
			st.s.instructionLabels[parsed.Label] = st.s.nextInstructionAddr
		}
		st.s.nextInstructionAddr += count
		record.NextInstructionAddress = st.s.nextInstructionAddr
		record.NextVariableSlot = st.s.nextVariableSlot
		st.s.lastHighlightInstruction = parsed.Label

	case ShapeBareInstruction:
		var count cpu.Word = 1
		if noneModeMnemonics[parsed.Mnemonic] {
			count = 1
		} else {
			c, cerr := resolveForCount(parsed.Mnemonic, lineNo)
			if cerr != nil {
				st.fail(cerr.(*AssemblingError))
				return
			}
			count = c
		}
		record.InstructionAddress = st.s.nextInstructionAddr
		st.s.nextInstructionAddr += count
		record.NextInstructionAddress = st.s.nextInstructionAddr
		record.NextVariableSlot = st.s.nextVariableSlot
	}

	st.s.records = append(st.s.records, record)

	if st.s.scanCursor >= len(st.s.trimmedLines) {
		st.phase = PASS1_FINALISE
	}
}

func (st *Stepper) stepFinalise() {
	foundEnd := false
	for _, r := range st.s.records {
		if r.Line.Mnemonic == "END" {
			foundEnd = true
			break
		}
	}
	if !foundEnd {
		st.fail(newError(MissingEnd, -1, "program contains no END instruction"))
		return
	}

	n := st.s.nextInstructionAddr
	st.s.instructionWordCount = n

	for name, slot := range st.s.variableSlots {
		st.s.variableAddresses[name] = n + slot
	}

	for _, r := range st.s.records {
		if r.IsVariableRecord() {
			st.s.variableRecords = append(st.s.variableRecords, r)
		} else {
			st.s.instructionRecords = append(st.s.instructionRecords, r)
		}
	}

	totalWords := int(n) + len(st.s.variableSlots)
	st.s.emitted = make([]cpu.Word, totalWords)

	st.phase = PASS2_EMIT_INSTRUCTIONS
}

func (st *Stepper) stepEmitInstructions() {
	if st.s.emitICursor >= len(st.s.instructionRecords) {
		st.phase = PASS2_EMIT_VARIABLES
		return
	}
	record := st.s.instructionRecords[st.s.emitICursor]
	st.s.emitICursor++

	def, err := resolveDefinition(record.Line.Mnemonic, record.Line.Operand, record.Line.HasOperand, record.LineNo)
	if err != nil {
		st.fail(err.(*AssemblingError))
		return
	}

	var low8 cpu.Word
	var longValue cpu.Word
	switch {
	case def.Mode == cpu.NoneMode:
		low8 = 0
	case def.LongOperand:
		if !record.Line.HasOperand {
			st.fail(newError(UnknownOperand, record.LineNo, "%s requires an operand", record.Line.Mnemonic))
			return
		}
		v, rerr := resolveOperandValue(st.s, record.Line.Operand, record.LineNo)
		if rerr != nil {
			st.fail(rerr.(*AssemblingError))
			return
		}
		low8 = 0
		longValue = v
	default:
		if !record.Line.HasOperand {
			st.fail(newError(UnknownOperand, record.LineNo, "%s requires an operand", record.Line.Mnemonic))
			return
		}
		v, rerr := resolveOperandValue(st.s, record.Line.Operand, record.LineNo)
		if rerr != nil {
			st.fail(rerr.(*AssemblingError))
			return
		}
		low8 = v
	}

	word := cpu.Mask(int32(uint32(def.Opcode)<<8) | int32(low8))
	st.emitAt(record.InstructionAddress, word)
	if def.LongOperand {
		st.emitAt(record.InstructionAddress+1, cpu.Mask(int32(longValue)))
	}
	if record.NewInstructionLabel != "" {
		st.s.lastHighlightInstruction = record.NewInstructionLabel
	}

	if st.s.emitICursor >= len(st.s.instructionRecords) {
		st.phase = PASS2_EMIT_VARIABLES
	}
}

func (st *Stepper) stepEmitVariables() {
	if st.s.emitVCursor >= len(st.s.variableRecords) {
		st.phase = DONE
		return
	}
	record := st.s.variableRecords[st.s.emitVCursor]
	st.s.emitVCursor++

	v, err := ParseLiteral(record.Line.Literal)
	if err != nil {
		st.fail(err.(*AssemblingError))
		return
	}
	addr := st.s.instructionWordCount + record.VariableSlot
	st.emitAt(addr, v)
	if record.NewVariableLabel != "" {
		st.s.lastHighlightVariable = record.NewVariableLabel
	}

	if st.s.emitVCursor >= len(st.s.variableRecords) {
		st.phase = DONE
	}
}

func (st *Stepper) emitAt(addr, value cpu.Word) {
	if int(addr) >= len(st.s.emitted) {
		grown := make([]cpu.Word, int(addr)+1)
		copy(grown, st.s.emitted)
		st.s.emitted = grown
	}
	st.s.emitted[addr] = value
	st.s.lastWritten = append(st.s.lastWritten, memoryWrite{Address: addr, Value: value})
}

func (st *Stepper) snapshot() Snapshot {
	pass := PassTrim
	switch st.phase {
	case PASS1_SCAN, PASS1_FINALISE:
		pass = PassOne
	case PASS2_EMIT_INSTRUCTIONS, PASS2_EMIT_VARIABLES, DONE:
		pass = PassTwo
	case ERROR:
		pass = PassTwo
	}

	lineIndex := 0
	lineText := ""
	switch st.phase {
	case TRIM:
		lineIndex = st.s.trimCursor
	case PASS1_SCAN:
		lineIndex = st.s.scanCursor
		if lineIndex > 0 && lineIndex-1 < len(st.s.trimmedLines) {
			lineText = st.s.trimmedLines[lineIndex-1]
		}
	default:
		lineIndex = len(st.s.trimmedLines)
	}

	var errCopy *AssemblingError
	if st.err != nil {
		e := *st.err
		errCopy = &e
	}

	snap := Snapshot{
		Phase:                     st.phase,
		Pass:                      pass,
		LineIndex:                 lineIndex,
		LineText:                  lineText,
		NextInstructionAddress:    st.s.nextInstructionAddr,
		NextVariableAddress:       st.s.nextVariableSlot,
		InstructionLabels:         copyWordMap(st.s.instructionLabels),
		VariableLabels:            copyWordMap(st.s.variableSlots),
		HighlightInstructionLabel: st.s.lastHighlightInstruction,
		HighlightVariableLabel:    st.s.lastHighlightVariable,
		EmittedWords:              copyWords(st.s.emitted),
		Writes:                    copyWrites(st.s.lastWritten),
		ReplacementText:           st.s.lastReplacement,
		HasReplacement:            st.s.hasReplacement,
		StatusMessage:             st.s.lastStatus,
		Error:                     errCopy,
	}
	return snap
}

// RunToCompletion drives the stepper without building a snapshot per step,
// for non-interactive callers. It returns the emitted program image on
// DONE, or an error on ERROR or on exceeding maxSteps.
func (st *Stepper) RunToCompletion(maxSteps int) ([]cpu.Word, error) {
	for i := 0; i < maxSteps; i++ {
		if st.phase == DONE {
			return copyWords(st.s.emitted), nil
		}
		if st.phase == ERROR {
			return nil, st.err
		}
		st.advance()
	}
	if st.phase == DONE {
		return copyWords(st.s.emitted), nil
	}
	if st.phase == ERROR {
		return nil, st.err
	}
	err := newError(StepLimitExceeded, -1, "exceeded %d steps without reaching DONE", maxSteps)
	st.fail(err)
	return nil, err
}
