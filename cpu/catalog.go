package cpu

// InstructionDefinition is one entry of the compile-time-constant
// instruction catalogue, keyed by opcode. Instructions may share a
// mnemonic across addressing modes (ADD direct vs. ADD immediate) but
// never share an opcode.
type InstructionDefinition struct {
	Mnemonic     string
	Opcode       byte
	Mode         AddressingMode
	Description  string
	RTN          []RTNStep
	LongOperand  bool
}

// Instructions returns a fresh copy of the RTN sequence so callers never
// mutate the catalogue's canonical template.
func (d InstructionDefinition) Instructions() []RTNStep {
	out := make([]RTNStep, len(d.RTN))
	copy(out, d.RTN)
	return out
}

// Fixed opcode assignments (spec.md §6).
const (
	OpLDM byte = 0
	OpLDD byte = 1
	OpLDI byte = 2
	OpLDX byte = 3
	OpLDR byte = 4
	OpMOV byte = 5
	OpSTO byte = 6
	OpADDDirect byte = 7
	OpADDImmediate byte = 8
	OpSUBDirect byte = 9
	OpSUBImmediate byte = 10
	OpINC byte = 11
	OpDEC byte = 12
	OpJMP byte = 13
	OpCMPDirect byte = 14
	OpCMPImmediate byte = 15
	OpCMI byte = 16
	OpJPE byte = 17
	OpJPN byte = 18
	OpIN byte = 19
	OpOUT byte = 20
	OpEND byte = 21
	OpANDImmediate byte = 22
	OpANDDirect byte = 23
	OpXORImmediate byte = 24
	OpXORDirect byte = 25
	OpORImmediate byte = 26
	OpORDirect byte = 27
	OpLSL byte = 28
	OpLSR byte = 29
	OpSTI byte = 30
	OpSTX byte = 31
)

// aluOpDirect builds the RTN sequence for a direct-addressed ALU
// instruction: fetch M[literal] into MDR, then compute ACC <op> MDR and
// store the result back into ACC.
func aluOpDirect(control ControlSignal) []RTNStep {
	steps := DirectTemplate()
	steps = append(steps, ALUOperation(Comp(MDR), control), SimpleTransfer(Comp(ALUName), Comp(ACC)))
	return steps
}

// aluOpImmediate builds the RTN sequence for an immediate-addressed ALU
// instruction: the long-operand fetch already left the literal in MDR.
func aluOpImmediate(control ControlSignal) []RTNStep {
	return []RTNStep{
		ALUOperation(Comp(MDR), control),
		SimpleTransfer(Comp(ALUName), Comp(ACC)),
	}
}

// cmpDirect/cmpImmediate/cmpIndirect set the comparison flag only; CMP
// never stores an ALU result back into ACC.
func cmpDirect() []RTNStep {
	steps := DirectTemplate()
	steps = append(steps, ALUOperation(Comp(MDR), Cmp))
	return steps
}

func cmpImmediate() []RTNStep {
	return []RTNStep{ALUOperation(Comp(MDR), Cmp)}
}

func cmpIndirect() []RTNStep {
	steps := IndirectTemplate()
	steps = append(steps, ALUOperation(Comp(MDR), Cmp))
	return steps
}

// storeDirect/storeIndirect/storeIndexed resolve the target address the
// same way their load counterparts do, but finish by moving ACC into MDR
// and issuing a memory-data WRITE instead of a READ.
func storeDirect() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		MemoryAddressStep(),
		SimpleTransfer(Comp(ACC), Comp(MDR)),
		MemoryDataStep(Write),
	}
}

func storeIndirect() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		MemoryAddressStep(),
		MemoryDataStep(Read),
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		MemoryAddressStep(),
		SimpleTransfer(Comp(ACC), Comp(MDR)),
		MemoryDataStep(Write),
	}
}

func storeIndexed() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		RegOperationWithSource(Comp(MAR), Comp(IX), Inc),
		MemoryAddressStep(),
		SimpleTransfer(Comp(ACC), Comp(MDR)),
		MemoryDataStep(Write),
	}
}

// loadDirect/loadIndirect/loadIndexed read the resolved address into MDR
// and copy it into ACC (or IX for LDR, which is immediate and simpler).
func loadDirect() []RTNStep {
	steps := DirectTemplate()
	steps = append(steps, SimpleTransfer(Comp(MDR), Comp(ACC)))
	return steps
}

func loadIndirect() []RTNStep {
	steps := IndirectTemplate()
	steps = append(steps, SimpleTransfer(Comp(MDR), Comp(ACC)))
	return steps
}

func loadIndexed() []RTNStep {
	steps := IndexedTemplate()
	steps = append(steps, SimpleTransfer(Comp(MDR), Comp(ACC)))
	return steps
}

func shiftOp(control ControlSignal) []RTNStep {
	return []RTNStep{
		ALUOperation(RawOperandValue(), control),
		SimpleTransfer(Comp(ALUName), Comp(ACC)),
	}
}

// Catalogue is the compile-time-constant registry keyed by opcode.
var Catalogue = buildCatalogue()

// ByMnemonic maps a mnemonic to every definition that shares it, in
// catalogue order. A length > 1 entry is an overloaded mnemonic
// disambiguated at assembly time by the operand token's prefix.
var ByMnemonic = buildMnemonicIndex()

func buildCatalogue() map[byte]InstructionDefinition {
	defs := []InstructionDefinition{
		{Mnemonic: "LDM", Opcode: OpLDM, Mode: Immediate, LongOperand: true,
			Description: "ACC <- literal",
			RTN:         []RTNStep{SimpleTransfer(Comp(MDR), Comp(ACC))}},
		{Mnemonic: "LDD", Opcode: OpLDD, Mode: Direct, LongOperand: true,
			Description: "ACC <- M[literal]", RTN: loadDirect()},
		{Mnemonic: "LDI", Opcode: OpLDI, Mode: Indirect, LongOperand: true,
			Description: "ACC <- M[M[literal]]", RTN: loadIndirect()},
		{Mnemonic: "LDX", Opcode: OpLDX, Mode: Indexed, LongOperand: true,
			Description: "ACC <- M[literal + IX]", RTN: loadIndexed()},
		{Mnemonic: "LDR", Opcode: OpLDR, Mode: Immediate, LongOperand: true,
			Description: "IX <- literal",
			RTN:         []RTNStep{SimpleTransfer(Comp(MDR), Comp(IX))}},
		{Mnemonic: "MOV", Opcode: OpMOV, Mode: RegisterMode, LongOperand: false,
			Description: "register[op_index] <- ACC",
			RTN:         []RTNStep{SimpleTransfer(Comp(ACC), OperandRegister())}},
		{Mnemonic: "STO", Opcode: OpSTO, Mode: Direct, LongOperand: true,
			Description: "M[literal] <- ACC", RTN: storeDirect()},
		{Mnemonic: "ADD", Opcode: OpADDDirect, Mode: Direct, LongOperand: true,
			Description: "ACC <- ACC + M[literal]", RTN: aluOpDirect(Add)},
		{Mnemonic: "ADD", Opcode: OpADDImmediate, Mode: Immediate, LongOperand: true,
			Description: "ACC <- ACC + literal", RTN: aluOpImmediate(Add)},
		{Mnemonic: "SUB", Opcode: OpSUBDirect, Mode: Direct, LongOperand: true,
			Description: "ACC <- ACC - M[literal]", RTN: aluOpDirect(Sub)},
		{Mnemonic: "SUB", Opcode: OpSUBImmediate, Mode: Immediate, LongOperand: true,
			Description: "ACC <- ACC - literal", RTN: aluOpImmediate(Sub)},
		{Mnemonic: "INC", Opcode: OpINC, Mode: RegisterMode, LongOperand: false,
			Description: "register[op_index] += 1",
			RTN:         []RTNStep{RegOperation(OperandRegister(), Inc)}},
		{Mnemonic: "DEC", Opcode: OpDEC, Mode: RegisterMode, LongOperand: false,
			Description: "register[op_index] -= 1",
			RTN:         []RTNStep{RegOperation(OperandRegister(), Dec)}},
		{Mnemonic: "JMP", Opcode: OpJMP, Mode: Immediate, LongOperand: true,
			Description: "PC <- literal",
			RTN:         []RTNStep{SimpleTransfer(Comp(MDR), Comp(PC))}},
		{Mnemonic: "CMP", Opcode: OpCMPDirect, Mode: Direct, LongOperand: true,
			Description: "FLAG <- (ACC == M[literal])", RTN: cmpDirect()},
		{Mnemonic: "CMP", Opcode: OpCMPImmediate, Mode: Immediate, LongOperand: true,
			Description: "FLAG <- (ACC == literal)", RTN: cmpImmediate()},
		{Mnemonic: "CMI", Opcode: OpCMI, Mode: Indirect, LongOperand: true,
			Description: "FLAG <- (ACC == M[M[literal]])", RTN: cmpIndirect()},
		{Mnemonic: "JPE", Opcode: OpJPE, Mode: Immediate, LongOperand: true,
			Description: "if FLAG then PC <- literal",
			RTN:         []RTNStep{ConditionalTransfer(Comp(MDR), Comp(PC), true)}},
		{Mnemonic: "JPN", Opcode: OpJPN, Mode: Immediate, LongOperand: true,
			Description: "if not FLAG then PC <- literal",
			RTN:         []RTNStep{ConditionalTransfer(Comp(MDR), Comp(PC), false)}},
		{Mnemonic: "IN", Opcode: OpIN, Mode: NoneMode, LongOperand: false,
			Description: "ACC <- next input byte",
			RTN:         []RTNStep{SimpleTransfer(Comp(IN), Comp(ACC))}},
		{Mnemonic: "OUT", Opcode: OpOUT, Mode: NoneMode, LongOperand: false,
			Description: "output <- ACC (low byte)",
			RTN:         []RTNStep{SimpleTransfer(Comp(ACC), Comp(OUT))}},
		{Mnemonic: "END", Opcode: OpEND, Mode: NoneMode, LongOperand: false,
			Description: "halt", RTN: nil},
		{Mnemonic: "AND", Opcode: OpANDImmediate, Mode: Immediate, LongOperand: true,
			Description: "ACC <- ACC & literal", RTN: aluOpImmediate(And)},
		{Mnemonic: "AND", Opcode: OpANDDirect, Mode: Direct, LongOperand: true,
			Description: "ACC <- ACC & M[literal]", RTN: aluOpDirect(And)},
		{Mnemonic: "XOR", Opcode: OpXORImmediate, Mode: Immediate, LongOperand: true,
			Description: "ACC <- ACC ^ literal", RTN: aluOpImmediate(Xor)},
		{Mnemonic: "XOR", Opcode: OpXORDirect, Mode: Direct, LongOperand: true,
			Description: "ACC <- ACC ^ M[literal]", RTN: aluOpDirect(Xor)},
		{Mnemonic: "OR", Opcode: OpORImmediate, Mode: Immediate, LongOperand: true,
			Description: "ACC <- ACC | literal", RTN: aluOpImmediate(Or)},
		{Mnemonic: "OR", Opcode: OpORDirect, Mode: Direct, LongOperand: true,
			Description: "ACC <- ACC | M[literal]", RTN: aluOpDirect(Or)},
		{Mnemonic: "LSL", Opcode: OpLSL, Mode: Immediate, LongOperand: false,
			Description: "ACC <- ACC << (literal mod 16)", RTN: shiftOp(Lsl)},
		{Mnemonic: "LSR", Opcode: OpLSR, Mode: Immediate, LongOperand: false,
			Description: "ACC <- ACC >> (literal mod 16)", RTN: shiftOp(Lsr)},
		{Mnemonic: "STI", Opcode: OpSTI, Mode: Indirect, LongOperand: true,
			Description: "M[M[literal]] <- ACC", RTN: storeIndirect()},
		{Mnemonic: "STX", Opcode: OpSTX, Mode: Indexed, LongOperand: true,
			Description: "M[literal + IX] <- ACC", RTN: storeIndexed()},
	}

	catalogue := make(map[byte]InstructionDefinition, len(defs))
	for _, d := range defs {
		catalogue[d.Opcode] = d
	}
	return catalogue
}

func buildMnemonicIndex() map[string][]InstructionDefinition {
	index := make(map[string][]InstructionDefinition)
	// Iterate opcodes in ascending order so overload tie-break order (first
	// non-IMMEDIATE definition wins) is stable and matches the opcode table
	// above.
	for opcode := byte(0); ; opcode++ {
		if d, ok := Catalogue[opcode]; ok {
			index[d.Mnemonic] = append(index[d.Mnemonic], d)
		}
		if opcode == 255 {
			break
		}
	}
	return index
}
