// Package pipeline provides a 5-stage in-order pipeline model with operand
// forwarding and stall insertion.
package pipeline

import "github.com/hazardlab/pipesim/insts"

// StageLatch is the snapshot of in-flight instruction state held at a
// boundary between two pipeline stages. One value sits at each of the four
// boundaries (IF/ID, ID/EX, EX/MEM, MEM/WB) and is replaced wholesale at
// every cycle commit; latches are never mutated mid-cycle.
type StageLatch struct {
	// Inst is the carried instruction. A bubble carries an invalid nop.
	Inst insts.Instruction

	// Result is the value computed in Execute: the ALU result, the MOV
	// immediate, or the load/store effective address. The Memory stage
	// replaces it with the loaded word for a completed load.
	Result int64

	// Src1Value and Src2Value are the resolved source operand values.
	Src1Value int64
	Src2Value int64

	// Src1From and Src2From record where each operand value came from.
	Src1From OperandSource
	Src2From OperandSource
}

// NopLatch returns an empty latch carrying a nop: result 0 and both operand
// provenances SrcNone.
func NopLatch() StageLatch {
	return StageLatch{Inst: insts.Nop()}
}

// Clear resets the latch to the empty state.
func (l *StageLatch) Clear() {
	*l = NopLatch()
}

// Live reports whether the latch carries a real instruction rather than a
// nop or bubble.
func (l *StageLatch) Live() bool {
	return l.Inst.Valid && l.Inst.Op != insts.OpNop
}
