package cpu

// Components bundles every primitive the Control Unit needs. NewCPU builds
// one with NewDefaultComponents; tests may build a bespoke set to probe the
// CU in isolation.
type Components struct {
	ACC *Register
	IX  *Register
	PC  *Register
	MAR *Register
	MDR *Register
	CIR *Register

	RAMAddr *RAMAddress
	RAM     *RAM

	ALU  *ALU
	Flag *ComparisonFlag

	InnerBus   *Bus
	AddressBus *Bus

	In  *IOPort
	Out *IOPort
}

// NewDefaultComponents wires up one instance of every component, with the
// ALU bound to a fresh ComparisonFlag and RAM bound to a fresh RAMAddress,
// matching the component graph §3/§4 describes.
func NewDefaultComponents() *Components {
	flag := NewComparisonFlag()
	ramAddr := NewRAMAddress()
	return &Components{
		ACC:        NewRegister(ACC),
		IX:         NewRegister(IX),
		PC:         NewRegister(PC),
		MAR:        NewRegister(MAR),
		MDR:        NewRegister(MDR),
		CIR:        NewRegister(CIR),
		RAMAddr:    ramAddr,
		RAM:        NewRAM(ramAddr),
		ALU:        NewALU(flag),
		Flag:       flag,
		InnerBus:   NewBus(InnerDataBus),
		AddressBus: NewBus(AddressBus),
		In:         NewIOPort(IN),
		Out:        NewIOPort(OUT),
	}
}

func (c *Components) complete() bool {
	return c != nil && c.ACC != nil && c.IX != nil && c.PC != nil && c.MAR != nil &&
		c.MDR != nil && c.CIR != nil && c.RAMAddr != nil && c.RAM != nil &&
		c.ALU != nil && c.Flag != nil && c.InnerBus != nil && c.AddressBus != nil &&
		c.In != nil && c.Out != nil
}

// ControlUnit sequences FETCH -> DECODE -> EXECUTE as visible RTN
// micro-operations, one per StepCycle call.
type ControlUnit struct {
	c *Components

	phase    CyclePhase
	sequence []RTNStep
	index    int

	opcode     byte
	operand    byte
	currentDef *InstructionDefinition

	cuActive bool
	halted   bool
}

// NewControlUnit binds a ControlUnit to a complete component set and
// primes it to begin fetching the first instruction. An incomplete
// component set fails construction outright.
func NewControlUnit(c *Components) (*ControlUnit, error) {
	if !c.complete() {
		return nil, ErrMissingComponent
	}
	cu := &ControlUnit{c: c, phase: Fetch, sequence: FetchTemplate()}
	return cu, nil
}

// ResetCycle rewinds the CU to the start of a fresh fetch, without
// touching any component's stored value. CPU.LoadProgram calls this so a
// freshly (re)loaded program always begins at FETCH/index 0, matching the
// determinism law (spec.md §8 property 7).
func (cu *ControlUnit) ResetCycle() {
	cu.phase = Fetch
	cu.sequence = FetchTemplate()
	cu.index = 0
	cu.opcode = 0
	cu.operand = 0
	cu.currentDef = nil
	cu.cuActive = false
	cu.halted = false
}

// Halted reports whether the CU has reached the END instruction: phase
// EXECUTE, RTN sequence empty, no further progress possible.
func (cu *ControlUnit) Halted() bool { return cu.halted }

func (cu *ControlUnit) Phase() CyclePhase { return cu.phase }

// StepIndex is the CU's current index into the active RTN sequence,
// 0 <= index <= len(sequence).
func (cu *ControlUnit) StepIndex() int { return cu.index }

// SequenceLen is the length of the currently active RTN sequence.
func (cu *ControlUnit) SequenceLen() int { return len(cu.sequence) }

// CurrentMnemonic names the instruction currently decoded, or "" before
// the first DECODE completes.
func (cu *ControlUnit) CurrentMnemonic() string {
	if cu.currentDef == nil {
		return ""
	}
	return cu.currentDef.Mnemonic
}

// StepCycle advances exactly one visible RTN micro-operation and reports
// whether the CPU is now halted.
func (cu *ControlUnit) StepCycle() (halted bool, err error) {
	if cu.halted {
		return true, nil
	}

	cu.resetControls()

	if cu.atEndOfSequence() && cu.isHaltState() {
		cu.halted = true
		return true, nil
	}

	if cu.atEndOfSequence() {
		cu.phase = cu.phase.Next()
		if err := cu.rebuildSequence(); err != nil {
			return false, err
		}
		cu.index = 0
		if cu.atEndOfSequence() && cu.isHaltState() {
			cu.halted = true
			return true, nil
		}
	}

	step := cu.sequence[cu.index]
	if err := cu.execStep(step); err != nil {
		return false, err
	}
	cu.index++
	return false, nil
}

func (cu *ControlUnit) atEndOfSequence() bool { return cu.index >= len(cu.sequence) }

func (cu *ControlUnit) isHaltState() bool {
	return cu.phase == Execute && cu.currentDef != nil && cu.currentDef.Mnemonic == "END"
}

func (cu *ControlUnit) resetControls() {
	cu.c.ACC.ResetControl()
	cu.c.IX.ResetControl()
	cu.c.PC.ResetControl()
	cu.c.MAR.ResetControl()
	cu.c.MDR.ResetControl()
	cu.c.CIR.ResetControl()
	cu.c.RAMAddr.ResetControl()
	cu.c.RAM.ResetControl()
	cu.c.ALU.ResetControl()
	cu.c.Flag.ResetControl()
	cu.c.InnerBus.ResetControl()
	cu.c.AddressBus.ResetControl()
	cu.c.In.ResetControl()
	cu.c.Out.ResetControl()
	cu.cuActive = false
}

// rebuildSequence picks the RTN template for the phase just entered. This
// is where write(instruction) (spec.md §4.6) happens for DECODE: CIR is
// peeked (not read, so this lookahead itself is not the visible "CU <-
// CIR" step) to choose between the plain DECODE template and
// LONG-OPERAND-FETCH.
func (cu *ControlUnit) rebuildSequence() error {
	switch cu.phase {
	case Fetch:
		cu.sequence = FetchTemplate()
	case Decode:
		word := cu.c.CIR.Peek()
		opcode := byte(word >> 8)
		operand := byte(word & 0xFF)
		def, ok := Catalogue[opcode]
		if !ok {
			return ErrUnknownOpcode
		}
		cu.opcode = opcode
		cu.operand = operand
		cu.currentDef = &def
		if def.LongOperand {
			cu.sequence = LongOperandFetchTemplate()
		} else {
			cu.sequence = DecodeTemplate()
		}
	case Execute:
		if cu.currentDef == nil {
			return ErrUnknownOpcode
		}
		cu.sequence = cu.currentDef.Instructions()
	}
	return nil
}

func (cu *ControlUnit) registerByName(name ComponentName) *Register {
	switch name {
	case ACC:
		return cu.c.ACC
	case IX:
		return cu.c.IX
	case PC:
		return cu.c.PC
	case MAR:
		return cu.c.MAR
	case MDR:
		return cu.c.MDR
	case CIR:
		return cu.c.CIR
	default:
		return nil
	}
}

func (cu *ControlUnit) resolveOperandRegister() (*Register, ComponentName, error) {
	name, ok := RegisterByIndex[Word(cu.operand)]
	if !ok {
		return nil, 0, ErrInvalidOperand
	}
	reg := cu.registerByName(name)
	if reg == nil {
		return nil, 0, ErrInvalidOperand
	}
	return reg, name, nil
}

// resolvedName returns the concrete ComponentName an endpoint denotes,
// resolving OPERAND through the register-index table. Used for bus
// bookkeeping even when the endpoint targets a non-register component.
func (cu *ControlUnit) resolvedName(ep Endpoint) ComponentName {
	if ep.RawOperand {
		return OPERAND
	}
	if ep.ViaOperand {
		if _, name, err := cu.resolveOperandRegister(); err == nil {
			return name
		}
		return OPERAND
	}
	return ep.Name
}

func (cu *ControlUnit) readEndpoint(ep Endpoint) (Word, error) {
	if ep.RawOperand {
		return Word(cu.operand), nil
	}
	if ep.ViaOperand {
		reg, _, err := cu.resolveOperandRegister()
		if err != nil {
			return 0, err
		}
		return reg.Read(), nil
	}
	switch ep.Name {
	case ACC, IX, PC, MAR, MDR, CIR:
		return cu.registerByName(ep.Name).Read(), nil
	case ALUName:
		return cu.c.ALU.Read(), nil
	case IN:
		b, ok := cu.c.In.ReadByte()
		if !ok {
			return 0, ErrAwaitingInput
		}
		return Word(b), nil
	default:
		return 0, ErrInvalidUse
	}
}

func (cu *ControlUnit) writeEndpoint(ep Endpoint, v Word) error {
	if ep.RawOperand {
		return ErrInvalidUse
	}
	if ep.ViaOperand {
		reg, _, err := cu.resolveOperandRegister()
		if err != nil {
			return err
		}
		reg.Write(v)
		return nil
	}
	switch ep.Name {
	case ACC, IX, PC, MAR, MDR, CIR:
		cu.registerByName(ep.Name).Write(v)
		return nil
	case OUT:
		cu.c.Out.WriteByte(byte(v))
		return nil
	default:
		return ErrInvalidUse
	}
}

func (cu *ControlUnit) execStep(step RTNStep) error {
	switch step.Kind {
	case SimpleTransferStep:
		return cu.execSimpleTransfer(step.Source, step.Destination)
	case ConditionalTransferStep:
		if cu.c.Flag.Value() != step.ExpectedFlag {
			return nil
		}
		return cu.execSimpleTransfer(step.Source, step.Destination)
	case MemoryAccessStep:
		return cu.execMemoryAccess(step)
	case ALUOperationStep:
		return cu.execALUOperation(step)
	case RegOperationStep:
		return cu.execRegOperation(step)
	default:
		return ErrInvalidUse
	}
}

func (cu *ControlUnit) execSimpleTransfer(source, dest Endpoint) error {
	if dest.Name == CU && !dest.ViaOperand && !dest.RawOperand {
		// write(instruction): the decode itself already happened in
		// rebuildSequence via Peek; this visible step just reads CIR (the
		// source named by the template) and marks the transfer observable.
		if _, err := cu.readEndpoint(source); err != nil {
			return err
		}
		cu.cuActive = true
		cu.c.InnerBus.Record(cu.resolvedName(source), CU)
		return nil
	}

	v, err := cu.readEndpoint(source)
	if err != nil {
		return err
	}
	if err := cu.writeEndpoint(dest, v); err != nil {
		return err
	}
	cu.c.InnerBus.Record(cu.resolvedName(source), cu.resolvedName(dest))
	return nil
}

func (cu *ControlUnit) execMemoryAccess(step RTNStep) error {
	if step.IsAddress {
		cu.c.RAMAddr.Write(cu.c.MAR.Read())
		cu.c.AddressBus.Record(MAR, RAMAddressName)
		return nil
	}
	switch step.Control {
	case Read:
		cu.c.MDR.Write(cu.c.RAM.Read())
		cu.c.AddressBus.Record(RAMDataName, MDR)
	case Write:
		cu.c.RAM.Write(cu.c.MDR.Read())
		cu.c.AddressBus.Record(MDR, RAMDataName)
	default:
		return ErrInvalidUse
	}
	return nil
}

func (cu *ControlUnit) execALUOperation(step RTNStep) error {
	accVal := cu.c.ACC.Read()
	srcVal, err := cu.readEndpoint(step.Source)
	if err != nil {
		return err
	}
	cu.c.ALU.SetMode(step.Control)
	cu.c.ALU.SetOperands(accVal, srcVal)
	if err := cu.c.ALU.Compute(); err != nil {
		return err
	}
	cu.c.InnerBus.Record(cu.resolvedName(step.Source), ALUName)
	return nil
}

func (cu *ControlUnit) execRegOperation(step RTNStep) error {
	destReg, destName, err := cu.resolveDestRegister(step.Destination)
	if err != nil {
		return err
	}
	offset := Word(1)
	if step.HasSource {
		offset, err = cu.readEndpoint(step.Source)
		if err != nil {
			return err
		}
	}
	switch step.Control {
	case Inc:
		destReg.Inc(offset)
	case Dec:
		destReg.Dec(offset)
	default:
		return ErrInvalidUse
	}
	_ = destName
	return nil
}

func (cu *ControlUnit) resolveDestRegister(ep Endpoint) (*Register, ComponentName, error) {
	if ep.ViaOperand {
		return cu.resolveOperandRegister()
	}
	reg := cu.registerByName(ep.Name)
	if reg == nil {
		return nil, 0, ErrInvalidUse
	}
	return reg, ep.Name, nil
}
