package cpu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MemorySize is the number of addressable words (2^16).
const MemorySize = 1 << 16

// CPU binds every component into the machine the Control Unit drives. It
// owns all component instances exclusively; observers only ever see a
// Snapshot.
type CPU struct {
	components *Components
	cu         *ControlUnit
}

// NewCPU builds a CPU with a fresh, fully zero-initialised component set.
func NewCPU() *CPU {
	comps := NewDefaultComponents()
	cu, err := NewControlUnit(comps)
	if err != nil {
		// NewDefaultComponents always produces a complete set; a failure
		// here means a real bug in this package, not a caller error.
		panic(err)
	}
	return &CPU{components: comps, cu: cu}
}

// LoadProgram masks every word to 16 bits and stores it at the next
// address starting from 0, then resets PC to 0 and primes the Control
// Unit to begin fetching from address 0.
func (c *CPU) LoadProgram(words []Word) error {
	if len(words) > MemorySize {
		return fmt.Errorf("cpu: program of %d words exceeds memory size %d", len(words), MemorySize)
	}
	for addr, w := range words {
		c.components.RAM.Poke(Word(addr), Mask(int32(uint16(w))))
	}
	c.components.PC.Write(0)
	c.cu.ResetCycle()
	return nil
}

// LoadProgramText parses the textual program image format: one hexadecimal
// word per line, blank lines and surrounding whitespace ignored.
func (c *CPU) LoadProgramText(r io.Reader) error {
	var words []Word
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseUint(line, 16, 32)
		if err != nil {
			return fmt.Errorf("cpu: invalid program image line %q: %w", line, err)
		}
		words = append(words, MaskUint32(uint32(v)))
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return c.LoadProgram(words)
}

// FeedInput pre-supplies bytes to the input port, satisfying the
// pre-supplied-stream completion strategy for IN (spec.md §4.5).
func (c *CPU) FeedInput(bytes []byte) {
	c.components.In.Feed(bytes)
}

// Output returns the bytes written by OUT so far. The caller must not
// mutate the result.
func (c *CPU) Output() []byte {
	return c.components.Out.Bytes()
}

// Step advances exactly one RTN micro-operation and reports whether the
// CPU is now halted. ErrAwaitingInput is a soft error: ACC is left
// untouched and the same IN step will be retried on the next Step call
// once FeedInput supplies a byte.
func (c *CPU) Step() (halted bool, err error) {
	return c.cu.StepCycle()
}

// Halted reports whether the CPU has reached END.
func (c *CPU) Halted() bool { return c.cu.Halted() }

// Components exposes the bound component set for direct inspection by
// tests and observers. Callers must treat every field as read-only; the
// CPU is the sole mutator.
func (c *CPU) Components() *Components { return c.components }

// Snapshot is an immutable, point-in-time view of CPU state sufficient for
// an external observer to redraw a full display without touching CPU
// internals.
type Snapshot struct {
	Phase       CyclePhase
	Mnemonic    string
	StepIndex   int
	SequenceLen int
	Halted      bool

	ACC Word
	IX  Word
	PC  Word
	MAR Word
	MDR Word
	CIR Word

	RAMAddress Word
	Flag       bool

	Output []byte
}

// Snapshot captures the CPU's current state. The returned value owns a
// private copy of Output, so mutating it can never reach CPU state.
func (c *CPU) Snapshot() Snapshot {
	out := c.components.Out.Bytes()
	outCopy := make([]byte, len(out))
	copy(outCopy, out)

	return Snapshot{
		Phase:       c.cu.Phase(),
		Mnemonic:    c.cu.CurrentMnemonic(),
		StepIndex:   c.cu.StepIndex(),
		SequenceLen: c.cu.SequenceLen(),
		Halted:      c.cu.Halted(),

		ACC: c.components.ACC.Peek(),
		IX:  c.components.IX.Peek(),
		PC:  c.components.PC.Peek(),
		MAR: c.components.MAR.Peek(),
		MDR: c.components.MDR.Peek(),
		CIR: c.components.CIR.Peek(),

		RAMAddress: c.components.RAMAddr.Peek(),
		Flag:       c.components.Flag.Value(),

		Output: outCopy,
	}
}

// DebugString renders a one-line human-readable dump of the current
// snapshot. The core never prints on its own (spec.md §7); callers print
// this themselves.
func (c *CPU) DebugString() string {
	s := c.Snapshot()
	return fmt.Sprintf(
		"phase=%s mnemonic=%s step=%d/%d halted=%t acc=%s ix=%s pc=%s mar=%s mdr=%s cir=%s flag=%t",
		s.Phase, s.Mnemonic, s.StepIndex, s.SequenceLen, s.Halted,
		FormatHex(s.ACC), FormatHex(s.IX), FormatHex(s.PC),
		FormatHex(s.MAR), FormatHex(s.MDR), FormatHex(s.CIR), s.Flag,
	)
}
