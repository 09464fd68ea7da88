package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDirectTemplateShape covers spec.md §4.1's DIRECT template: MAR <- MDR;
// memory-address step; memory-data-read step.
func TestDirectTemplateShape(t *testing.T) {
	steps := DirectTemplate()
	assert.Len(t, steps, 3)
	assert.Equal(t, SimpleTransferStep, steps[0].Kind)
	assert.Equal(t, MDR, steps[0].Source.Name)
	assert.Equal(t, MAR, steps[0].Destination.Name)
	assert.Equal(t, MemoryAccessStep, steps[1].Kind)
	assert.True(t, steps[1].IsAddress)
	assert.Equal(t, MemoryAccessStep, steps[2].Kind)
	assert.False(t, steps[2].IsAddress)
	assert.Equal(t, Read, steps[2].Control)
}

// TestIndirectTemplateIsDirectThenDirect resolves the open question in
// spec.md §9: the first memory access loads the pointer into MDR, and a
// second MAR <- MDR / address / data-read dereferences it.
func TestIndirectTemplateIsDirectThenDirect(t *testing.T) {
	direct := DirectTemplate()
	indirect := IndirectTemplate()
	assert.Len(t, indirect, 2*len(direct))
	assert.Equal(t, direct, indirect[:len(direct)])
	assert.Equal(t, SimpleTransferStep, indirect[3].Kind)
	assert.Equal(t, MDR, indirect[3].Source.Name)
	assert.Equal(t, MAR, indirect[3].Destination.Name)
}

// TestIndexedTemplateAddsIXOffset covers spec.md §4.1's INDEXED template:
// MAR <- MDR; MAR <- MAR + IX (via RegOperation); address step; data-read.
func TestIndexedTemplateAddsIXOffset(t *testing.T) {
	steps := IndexedTemplate()
	assert.Len(t, steps, 4)
	assert.Equal(t, SimpleTransferStep, steps[0].Kind)
	assert.Equal(t, RegOperationStep, steps[1].Kind)
	assert.Equal(t, MAR, steps[1].Destination.Name)
	assert.True(t, steps[1].HasSource)
	assert.Equal(t, IX, steps[1].Source.Name)
	assert.Equal(t, Inc, steps[1].Control)
}

// TestFetchTemplateAdvancesPC covers spec.md §4.1's FETCH template.
func TestFetchTemplateAdvancesPC(t *testing.T) {
	steps := FetchTemplate()
	assert.Len(t, steps, 5)
	assert.Equal(t, PC, steps[0].Source.Name)
	assert.Equal(t, MAR, steps[0].Destination.Name)
	assert.Equal(t, CIR, steps[3].Destination.Name)
	assert.Equal(t, RegOperationStep, steps[4].Kind)
	assert.Equal(t, PC, steps[4].Destination.Name)
	assert.Equal(t, Inc, steps[4].Control)
	assert.False(t, steps[4].HasSource) // default offset of 1
}

// TestDecodeTemplateIsCUFromCIR covers the DECODE template: CU <- CIR.
func TestDecodeTemplateIsCUFromCIR(t *testing.T) {
	steps := DecodeTemplate()
	assert.Len(t, steps, 1)
	assert.Equal(t, CIR, steps[0].Source.Name)
	assert.Equal(t, CU, steps[0].Destination.Name)
}

// TestLongOperandFetchTemplateLeavesOperandInMDR covers the
// LONG-OPERAND-FETCH template: CU <- CIR; MAR <- PC; address; data-read;
// PC += 1, leaving the long operand in MDR for whatever EXECUTE step reads
// it next.
func TestLongOperandFetchTemplateLeavesOperandInMDR(t *testing.T) {
	steps := LongOperandFetchTemplate()
	assert.Len(t, steps, 5)
	assert.Equal(t, CU, steps[0].Destination.Name)
	assert.Equal(t, PC, steps[1].Source.Name)
	assert.Equal(t, MAR, steps[1].Destination.Name)
	assert.True(t, steps[2].IsAddress)
	assert.False(t, steps[3].IsAddress)
	assert.Equal(t, Read, steps[3].Control)
	assert.Equal(t, RegOperationStep, steps[4].Kind)
	assert.Equal(t, PC, steps[4].Destination.Name)
}

// TestTemplatesReturnFreshSlices ensures callers can freely append to a
// template without mutating the shared catalogue sequence another
// instruction's definition might also build from.
func TestTemplatesReturnFreshSlices(t *testing.T) {
	a := DirectTemplate()
	b := DirectTemplate()
	a[0].Control = Write // mutate caller's copy
	assert.NotEqual(t, a[0].Control, b[0].Control)
}

// TestOperandEndpointConstructors covers the three Endpoint shapes the CU
// must distinguish: a concrete component, the OPERAND pseudo-register, and
// the raw decoded operand byte (spec.md §9's "Destination::IndexedRegister"
// redesign note).
func TestOperandEndpointConstructors(t *testing.T) {
	comp := Comp(ACC)
	assert.False(t, comp.ViaOperand)
	assert.False(t, comp.RawOperand)
	assert.Equal(t, ACC, comp.Name)

	opReg := OperandRegister()
	assert.True(t, opReg.ViaOperand)
	assert.False(t, opReg.RawOperand)

	raw := RawOperandValue()
	assert.True(t, raw.RawOperand)
	assert.False(t, raw.ViaOperand)
}
