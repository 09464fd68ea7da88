package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskWraparound(t *testing.T) {
	assert.Equal(t, Word(0xFFFF), Mask(-1))
	assert.Equal(t, Word(0), MaskUint32(0x10000))
	assert.Equal(t, Word(0), Mask(0x10000))
}

func TestRegisterIncDecRoundTrip(t *testing.T) {
	r := NewRegister(ACC)
	r.Write(100)
	r.Inc(37)
	r.Dec(37)
	assert.Equal(t, Word(100), r.Read())
}

func TestRegisterIncWraps(t *testing.T) {
	r := NewRegister(ACC)
	r.Write(0xFFFF)
	r.Inc(1)
	assert.Equal(t, Word(0), r.Read())

	r.Write(0)
	r.Dec(1)
	assert.Equal(t, Word(0xFFFF), r.Read())
}

func TestRAMIsPersistentMap(t *testing.T) {
	addr := NewRAMAddress()
	ram := NewRAM(addr)

	addr.Write(10)
	ram.Write(0xABCD)
	addr.Write(20)
	ram.Write(0x1234)
	addr.Write(10)
	assert.Equal(t, Word(0xABCD), ram.Read())
}

func TestALUThreePhaseProtocol(t *testing.T) {
	flag := NewComparisonFlag()
	alu := NewALU(flag)

	alu.SetMode(Add)
	alu.SetOperands(0xFFFF, 1)
	require.NoError(t, alu.Compute())
	assert.Equal(t, Word(0), alu.Read())

	alu.SetMode(Sub)
	alu.SetOperands(0, 1)
	require.NoError(t, alu.Compute())
	assert.Equal(t, Word(0xFFFF), alu.Read())
}

func TestALUCompareSetsFlagOnly(t *testing.T) {
	flag := NewComparisonFlag()
	alu := NewALU(flag)

	alu.SetMode(Cmp)
	alu.SetOperands(5, 5)
	require.NoError(t, alu.Compute())
	assert.True(t, flag.Value())

	alu.SetMode(Cmp)
	alu.SetOperands(5, 6)
	require.NoError(t, alu.Compute())
	assert.False(t, flag.Value())
}

func TestALUInvalidControlIsInvalidUse(t *testing.T) {
	flag := NewComparisonFlag()
	alu := NewALU(flag)
	alu.SetMode(NoSignal)
	alu.SetOperands(1, 1)
	assert.ErrorIs(t, alu.Compute(), ErrInvalidUse)
}

func TestALUDirectWriteIsInvalidUse(t *testing.T) {
	flag := NewComparisonFlag()
	alu := NewALU(flag)
	assert.ErrorIs(t, alu.Write(5), ErrInvalidUse)
}

func TestBusDirectAccessIsInvalidUse(t *testing.T) {
	b := NewBus(InnerDataBus)
	_, err := b.Read()
	assert.ErrorIs(t, err, ErrInvalidUse)
	assert.ErrorIs(t, b.Write(1), ErrInvalidUse)
}

func TestIOPortFIFOOrder(t *testing.T) {
	p := NewIOPort(IN)
	p.Feed([]byte{1, 2, 3})

	b, ok := p.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte(1), b)

	b, ok = p.ReadByte()
	require.True(t, ok)
	assert.Equal(t, byte(2), b)
}

func TestIOPortEmptyReadSignalsNotOK(t *testing.T) {
	p := NewIOPort(IN)
	_, ok := p.ReadByte()
	assert.False(t, ok)
}

func TestShiftCountModulo16(t *testing.T) {
	flag := NewComparisonFlag()
	alu := NewALU(flag)

	alu.SetMode(Lsl)
	alu.SetOperands(1, 16) // shift by 16 == shift by 0
	require.NoError(t, alu.Compute())
	assert.Equal(t, Word(1), alu.Read())

	alu.SetMode(Lsl)
	alu.SetOperands(1, 17) // shift by 17 == shift by 1
	require.NoError(t, alu.Compute())
	assert.Equal(t, Word(2), alu.Read())
}
