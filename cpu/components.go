package cpu

// Register is a word-sized, observable storage cell. Every mutator records
// the control signal that produced the current value and whether the
// register was touched during the most recent RTN step, so the Control
// Unit can mark exactly the components it touched as active before moving
// on.
type Register struct {
	name         ComponentName
	value        Word
	lastControl  ControlSignal
	lastActive   bool
}

// NewRegister returns a zero-initialised register bound to name.
func NewRegister(name ComponentName) *Register {
	return &Register{name: name, lastControl: NoSignal}
}

func (r *Register) Name() ComponentName { return r.name }

// Read asserts READ and returns the current value.
func (r *Register) Read() Word {
	r.touch(Read)
	return r.value
}

// Peek returns the current value without asserting a control signal or
// marking activity. Used by the Control Unit to look ahead at CIR while
// deciding which RTN sequence the next phase needs, and by snapshot/debug
// views; never used inside an RTN step handler itself.
func (r *Register) Peek() Word { return r.value }

// Write asserts WRITE and stores v mod 2^16.
func (r *Register) Write(v Word) {
	r.value = v
	r.touch(Write)
}

// Inc stores (value+offset) mod 2^16 and asserts INC. The Control Unit's
// RegOperation handler passes an offset of 1 when the step names no source.
func (r *Register) Inc(offset Word) {
	r.value = Mask(int32(r.value) + int32(offset))
	r.touch(Inc)
}

// Dec stores (value-offset) mod 2^16 and asserts DEC.
func (r *Register) Dec(offset Word) {
	r.value = Mask(int32(r.value) - int32(offset))
	r.touch(Dec)
}

func (r *Register) touch(c ControlSignal) {
	r.lastControl = c
	r.lastActive = true
}

// ResetControl clears the asserted control and activity flag; the Control
// Unit calls this on every component before executing the next RTN step.
func (r *Register) ResetControl() {
	r.lastControl = NoSignal
	r.lastActive = false
}

func (r *Register) LastControl() ControlSignal { return r.lastControl }
func (r *Register) Active() bool               { return r.lastActive }

// RAMAddress is the single-word address port that selects RAM's one active
// cell.
type RAMAddress struct {
	Register
}

func NewRAMAddress() *RAMAddress {
	return &RAMAddress{Register: Register{name: RAMAddressName, lastControl: NoSignal}}
}

// RAM is a 2^16-entry word array with exactly one active cell at any time,
// selected by its companion RAMAddress.
type RAM struct {
	cells   [1 << 16]Word
	address *RAMAddress

	lastControl ControlSignal
	lastActive  bool
}

// NewRAM returns a zero-initialised RAM bound to addr.
func NewRAM(addr *RAMAddress) *RAM {
	return &RAM{address: addr, lastControl: NoSignal}
}

// Read returns cells[address.value]; it never mutates RAMAddress.
func (m *RAM) Read() Word {
	m.touch(Read)
	return m.cells[m.address.value]
}

// Write stores v mod 2^16 at cells[address.value].
func (m *RAM) Write(v Word) {
	m.cells[m.address.value] = v
	m.touch(Write)
}

// Peek reads a cell without asserting any control signal or marking
// activity; used by loaders and snapshot/debug views, never by RTN steps.
func (m *RAM) Peek(addr Word) Word { return m.cells[addr] }

// Poke stores directly into a cell without asserting any control signal;
// used by the program loader, never by RTN steps.
func (m *RAM) Poke(addr Word, v Word) { m.cells[addr] = v }

func (m *RAM) touch(c ControlSignal) {
	m.lastControl = c
	m.lastActive = true
}

func (m *RAM) ResetControl() {
	m.lastControl = NoSignal
	m.lastActive = false
}

func (m *RAM) Active() bool { return m.lastActive }

// ComparisonFlag is a single observable boolean, set only by ALU CMP.
type ComparisonFlag struct {
	value      bool
	lastActive bool
}

func NewComparisonFlag() *ComparisonFlag { return &ComparisonFlag{} }

func (f *ComparisonFlag) Value() bool { return f.value }

func (f *ComparisonFlag) set(v bool) {
	f.value = v
	f.lastActive = true
}

func (f *ComparisonFlag) ResetControl() { f.lastActive = false }
func (f *ComparisonFlag) Active() bool  { return f.lastActive }

// ALU implements the three-phase set_mode/set_operands/compute protocol.
// Direct writes into the ALU are a programming error surfaced as
// ErrInvalidUse; the only way to produce a result is the three-phase
// sequence.
type ALU struct {
	control ControlSignal
	acc     Word
	operand Word
	result  Word
	flag    *ComparisonFlag

	lastActive bool
}

// NewALU binds the ALU to the ComparisonFlag it is allowed to set.
func NewALU(flag *ComparisonFlag) *ALU {
	return &ALU{control: NoSignal, flag: flag}
}

// SetMode selects the operation for the next Compute call.
func (a *ALU) SetMode(c ControlSignal) {
	a.control = c
}

// SetOperands supplies both inputs, each masked to 16 bits.
func (a *ALU) SetOperands(acc, operand Word) {
	a.acc = acc
	a.operand = operand
}

// Compute performs the selected operation. ADD/SUB/AND/OR/XOR and LSL/LSR
// (shift count taken mod 16) store a masked result; CMP sets the comparison
// flag and stores no result; any other control raises ErrInvalidUse.
func (a *ALU) Compute() error {
	a.lastActive = true
	switch a.control {
	case Add:
		a.result = Mask(int32(a.acc) + int32(a.operand))
	case Sub:
		a.result = Mask(int32(a.acc) - int32(a.operand))
	case And:
		a.result = a.acc & a.operand
	case Or:
		a.result = a.acc | a.operand
	case Xor:
		a.result = a.acc ^ a.operand
	case Cmp:
		a.flag.set(a.acc == a.operand)
	case Lsl:
		shift := uint(a.operand) % 16
		a.result = Mask(int32(a.acc) << shift)
	case Lsr:
		shift := uint(a.operand) % 16
		a.result = Word(uint16(a.acc) >> shift)
	default:
		return ErrInvalidUse
	}
	return nil
}

// Read returns the last stored result.
func (a *ALU) Read() Word { return a.result }

// Write is always a programming error: the ALU only ever produces a result
// through Compute.
func (a *ALU) Write(Word) error { return ErrInvalidUse }

func (a *ALU) ResetControl() { a.lastActive = false }
func (a *ALU) Active() bool  { return a.lastActive }

// Bus is purely observational: it records the logical (source, destination)
// endpoints driven during the last RTN step. Direct read/write of a bus is
// a programming error; only the Control Unit's RTN handlers may record an
// endpoint.
type Bus struct {
	name     ComponentName
	source   ComponentName
	dest     ComponentName
	active   bool
}

func NewBus(name ComponentName) *Bus { return &Bus{name: name} }

// Record marks the bus active and stores the endpoints driven during the
// current RTN step.
func (b *Bus) Record(source, dest ComponentName) {
	b.source, b.dest = source, dest
	b.active = true
}

func (b *Bus) Endpoints() (ComponentName, ComponentName) { return b.source, b.dest }
func (b *Bus) Active() bool                              { return b.active }
func (b *Bus) ResetControl()                             { b.active = false }

// Read on a bus is always a programming error.
func (b *Bus) Read() (Word, error) { return 0, ErrInvalidUse }

// Write on a bus is always a programming error.
func (b *Bus) Write(Word) error { return ErrInvalidUse }

// IOPort is a FIFO byte channel. The same type backs both IN and OUT; OUT
// only ever appends, IN only ever dequeues.
type IOPort struct {
	name   ComponentName
	queue  []byte
	active bool
}

func NewIOPort(name ComponentName) *IOPort { return &IOPort{name: name} }

// Feed appends bytes to the queue; it is how a pre-supplied input stream is
// provisioned, and how an external observer drains/records OUT's
// cumulative output is via Bytes().
func (p *IOPort) Feed(bytes []byte) {
	p.queue = append(p.queue, bytes...)
}

// WriteByte appends a single byte to the tail of the queue (used by OUT).
func (p *IOPort) WriteByte(b byte) {
	p.queue = append(p.queue, b)
	p.active = true
}

// ReadByte dequeues the head byte. ok is false when the queue is empty, in
// which case the caller (the IN RTN handler) must surface ErrAwaitingInput
// and leave ACC untouched rather than consuming a non-existent byte.
func (p *IOPort) ReadByte() (b byte, ok bool) {
	p.active = true
	if len(p.queue) == 0 {
		return 0, false
	}
	b, p.queue = p.queue[0], p.queue[1:]
	return b, true
}

// Bytes returns the queue's current contents (output history for OUT,
// remaining pending bytes for IN). The caller must not mutate the result.
func (p *IOPort) Bytes() []byte { return p.queue }

func (p *IOPort) ResetControl() { p.active = false }
func (p *IOPort) Active() bool  { return p.active }
