package cpu

// Endpoint names one side of an RTN transfer. Most endpoints simply name a
// component; OPERAND is special-cased by the source language as a pseudo-
// component resolved at execution time. Per the redesign note against that
// approach, we never carry ComponentName(OPERAND) through an RTN step:
// ViaOperand is an explicit tag the handler cannot forget to resolve,
// rather than a sentinel name that a switch could silently mishandle.
type Endpoint struct {
	Name       ComponentName
	ViaOperand bool
	RawOperand bool
}

// Comp builds a plain, non-resolved endpoint naming a concrete component.
func Comp(name ComponentName) Endpoint { return Endpoint{Name: name} }

// OperandRegister builds the pseudo-endpoint that resolves to whichever
// register the current instruction's operand byte names, via RegisterIndex.
func OperandRegister() Endpoint { return Endpoint{ViaOperand: true} }

// RawOperandValue builds the endpoint that reads the CU's raw decoded
// operand byte directly, for short-operand instructions (LSL/LSR) whose
// operand is a literal value rather than a register index or memory
// address.
func RawOperandValue() Endpoint { return Endpoint{RawOperand: true} }

// StepKind tags the variant of an RTNStep. Dispatch on this is an
// exhaustive switch in the Control Unit, never an interface method -- the
// source's runtime polymorphism is deliberately not reproduced.
type StepKind int

const (
	SimpleTransferStep StepKind = iota
	ConditionalTransferStep
	MemoryAccessStep
	ALUOperationStep
	RegOperationStep
)

// RTNStep is one micro-operation in an instruction's RTN sequence.
//
//   - SimpleTransfer:       Source, Destination
//   - ConditionalTransfer:  Source, Destination, ExpectedFlag
//   - MemoryAccess:         IsAddress, Control (READ or WRITE)
//   - ALUOperation:         Source (second operand), Control
//   - RegOperation:         Destination, Control (INC or DEC), optional Source
type RTNStep struct {
	Kind        StepKind
	Source      Endpoint
	Destination Endpoint
	HasSource   bool
	Control     ControlSignal
	IsAddress   bool

	ExpectedFlag bool
}

func SimpleTransfer(source, dest Endpoint) RTNStep {
	return RTNStep{Kind: SimpleTransferStep, Source: source, Destination: dest}
}

func ConditionalTransfer(source, dest Endpoint, expected bool) RTNStep {
	return RTNStep{Kind: ConditionalTransferStep, Source: source, Destination: dest, ExpectedFlag: expected}
}

func MemoryAddressStep() RTNStep {
	return RTNStep{Kind: MemoryAccessStep, IsAddress: true}
}

func MemoryDataStep(control ControlSignal) RTNStep {
	return RTNStep{Kind: MemoryAccessStep, IsAddress: false, Control: control}
}

func ALUOperation(source Endpoint, control ControlSignal) RTNStep {
	return RTNStep{Kind: ALUOperationStep, Source: source, Control: control}
}

func RegOperation(dest Endpoint, control ControlSignal) RTNStep {
	return RTNStep{Kind: RegOperationStep, Destination: dest, Control: control}
}

func RegOperationWithSource(dest, source Endpoint, control ControlSignal) RTNStep {
	return RTNStep{Kind: RegOperationStep, Destination: dest, Source: source, HasSource: true, Control: control}
}

// Shared RTN templates (spec.md §4.1). Each returns a fresh slice so callers
// may freely append without aliasing the catalogue's canonical sequence.

// DirectTemplate: MAR <- MDR; memory-address step; memory-data-read step.
func DirectTemplate() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		MemoryAddressStep(),
		MemoryDataStep(Read),
	}
}

// IndirectTemplate: DIRECT, then a second MAR <- MDR, address step, and
// data-read step -- the first access loads the pointer into MDR, the
// second dereferences it.
func IndirectTemplate() []RTNStep {
	steps := DirectTemplate()
	steps = append(steps,
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		MemoryAddressStep(),
		MemoryDataStep(Read),
	)
	return steps
}

// IndexedTemplate: MAR <- MDR; MAR <- MAR + IX; memory-address step;
// memory-data-read step.
func IndexedTemplate() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(MDR), Comp(MAR)),
		RegOperationWithSource(Comp(MAR), Comp(IX), Inc),
		MemoryAddressStep(),
		MemoryDataStep(Read),
	}
}

// FetchTemplate: MAR <- PC; memory-address step; memory-data-read step;
// CIR <- MDR; PC += 1.
func FetchTemplate() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(PC), Comp(MAR)),
		MemoryAddressStep(),
		MemoryDataStep(Read),
		SimpleTransfer(Comp(MDR), Comp(CIR)),
		RegOperation(Comp(PC), Inc),
	}
}

// DecodeTemplate: CU <- CIR.
func DecodeTemplate() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(CIR), Comp(CU)),
	}
}

// LongOperandFetchTemplate: CU <- CIR; MAR <- PC; memory-address step;
// memory-data-read step; PC += 1. MDR holds the long operand afterward.
func LongOperandFetchTemplate() []RTNStep {
	return []RTNStep{
		SimpleTransfer(Comp(CIR), Comp(CU)),
		SimpleTransfer(Comp(PC), Comp(MAR)),
		MemoryAddressStep(),
		MemoryDataStep(Read),
		RegOperation(Comp(PC), Inc),
	}
}
