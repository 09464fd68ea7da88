package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runToHalt(t *testing.T, c *CPU, maxSteps int) {
	t.Helper()
	for i := 0; i < maxSteps; i++ {
		halted, err := c.Step()
		require.NoError(t, err)
		if halted {
			return
		}
	}
	t.Fatalf("program did not halt within %d steps", maxSteps)
}

// TestMinimalProgram mirrors spec scenario S1: LDM #5; OUT; END.
func TestMinimalProgram(t *testing.T) {
	words := []Word{0x0000, 0x0005, 0x1400, 0x1500}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))

	runToHalt(t, c, 1000)

	snap := c.Snapshot()
	assert.True(t, snap.Halted)
	assert.Equal(t, Word(5), snap.ACC)
	assert.Equal(t, Word(4), snap.PC)
	assert.Equal(t, []byte{5}, c.Output())
}

// TestLoopWithConditionalJump mirrors spec scenario S3: count up to 3 with
// ADD #1 / CMP #3 / JPN LOOP.
func TestLoopWithConditionalJump(t *testing.T) {
	words := []Word{
		0x0000, 0x0000, // LDM #0
		0x0800, 0x0001, // LOOP: ADD #1
		0x0F00, 0x0003, // CMP #3
		0x1200, 0x0002, // JPN LOOP (address 2)
		0x1500, // END
	}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))

	runToHalt(t, c, 10000)

	assert.Equal(t, Word(3), c.Snapshot().ACC)
}

// TestVariableRoundTrip mirrors spec scenario S2's emitted word layout:
// LDD X; OUT; END; X: #42. LDD consumes two words (addresses 0-1), OUT one
// (address 2), END one (address 3), so X lands at address 4 -- the total
// instruction word count N, not the 3-instruction count the label suggests.
func TestVariableRoundTrip(t *testing.T) {
	words := []Word{0x0100, 0x0004, 0x1400, 0x1500, 0x002A}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))

	runToHalt(t, c, 1000)

	assert.Equal(t, Word(0x2A), c.Snapshot().ACC)
	assert.Equal(t, []byte{0x2A}, c.Output())
}

func TestAwaitingInputLeavesACCUntouched(t *testing.T) {
	// IN; END
	words := []Word{0x1300, 0x1500}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))
	c.Components().ACC.Write(0x99)

	var sawAwaiting bool
	for i := 0; i < 100; i++ {
		_, err := c.Step()
		if err == ErrAwaitingInput {
			sawAwaiting = true
			assert.Equal(t, Word(0x99), c.Snapshot().ACC)
			c.FeedInput([]byte{0x42})
			continue
		}
		require.NoError(t, err)
	}
	assert.True(t, sawAwaiting)
	assert.Equal(t, Word(0x42), c.Snapshot().ACC)
}

func TestHaltIsIdempotent(t *testing.T) {
	words := []Word{0x1500} // END
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))

	runToHalt(t, c, 100)
	snapBefore := c.Snapshot()
	halted, err := c.Step()
	require.NoError(t, err)
	assert.True(t, halted)
	assert.Equal(t, snapBefore, c.Snapshot())
}

func TestStepIndexWithinSequenceBounds(t *testing.T) {
	words := []Word{0x0000, 0x0005, 0x1500}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))

	for i := 0; i < 50; i++ {
		halted, err := c.Step()
		require.NoError(t, err)
		idx := c.Snapshot().StepIndex
		seqLen := c.Snapshot().SequenceLen
		assert.GreaterOrEqual(t, idx, 0)
		assert.LessOrEqual(t, idx, seqLen)
		if halted {
			break
		}
	}
}

func TestUnknownOpcodeIsReported(t *testing.T) {
	// opcode 255 does not exist in the catalogue.
	words := []Word{0xFF00}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		_, err = c.Step()
	}
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestAddWraparoundBoundary(t *testing.T) {
	// LDM #0xFFFF; ADD #1; END
	words := []Word{0x0000, 0xFFFF, 0x0800, 0x0001, 0x1500}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))
	runToHalt(t, c, 1000)
	assert.Equal(t, Word(0), c.Snapshot().ACC)
}

func TestSubUnderflowBoundary(t *testing.T) {
	// LDM #0; SUB #1 (immediate, opcode 10); END
	words := []Word{0x0000, 0x0000, 0x0A00, 0x0001, 0x1500}
	c := NewCPU()
	require.NoError(t, c.LoadProgram(words))
	runToHalt(t, c, 1000)
	assert.Equal(t, Word(0xFFFF), c.Snapshot().ACC)
}
