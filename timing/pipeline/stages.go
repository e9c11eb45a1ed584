package pipeline

import (
	"fmt"

	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
)

// FetchStage reads instructions from the instruction store.
type FetchStage struct {
	program *insts.Program
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(program *insts.Program) *FetchStage {
	return &FetchStage{program: program}
}

// Fetch returns the instruction at the given program counter, or a nop when
// the counter is at or past the end. The counter itself is advanced only by
// the cycle driver.
func (s *FetchStage) Fetch(pc int) insts.Instruction {
	return s.program.At(pc)
}

// DecodeStage checks the candidate instruction entering decode for
// stall-worthy hazards and passes it through towards Execute.
type DecodeStage struct {
	hazardUnit *HazardUnit
}

// NewDecodeStage creates a new decode stage.
func NewDecodeStage(hazardUnit *HazardUnit) *DecodeStage {
	return &DecodeStage{hazardUnit: hazardUnit}
}

// DecodeResult holds the result of the decode stage.
type DecodeResult struct {
	// Next is the latch value for the next ID/EX slot when not stalling.
	// Operand resolution happens later, in Execute.
	Next StageLatch

	// Stall indicates a bubble must be inserted instead of Next.
	Stall bool

	// Reason describes the hazard when Stall is set.
	Reason string
}

// Decode evaluates the current IF/ID latch against the instruction
// currently in execute (ID/EX).
func (s *DecodeStage) Decode(ifid, idex *StageLatch) DecodeResult {
	decision := s.hazardUnit.DetectStoreLoadHazard(ifid, idex)
	if decision.Stall {
		return DecodeResult{Next: NopLatch(), Stall: true, Reason: decision.Reason}
	}
	return DecodeResult{Next: StageLatch{Inst: ifid.Inst}}
}

// ExecuteStage resolves source operands through forwarding and computes the
// stage result. It is pure: it never mutates the register file or memory.
type ExecuteStage struct {
	regFile    *emu.RegFile
	hazardUnit *HazardUnit
}

// NewExecuteStage creates a new execute stage.
func NewExecuteStage(regFile *emu.RegFile, hazardUnit *HazardUnit) *ExecuteStage {
	return &ExecuteStage{regFile: regFile, hazardUnit: hazardUnit}
}

// Execute consumes the current ID/EX latch and produces the next EX/MEM
// latch value, forwarding from the pre-cycle EX/MEM and MEM/WB latches.
func (s *ExecuteStage) Execute(idex, exmem, memwb *StageLatch) (StageLatch, error) {
	if !idex.Live() {
		return NopLatch(), nil
	}

	inst := idex.Inst
	if !inst.RegFieldsValid() {
		return NopLatch(), fmt.Errorf("execute %s: register index out of range", inst)
	}

	next := StageLatch{Inst: inst}

	var err error
	next.Src1Value, next.Src1From, err = s.hazardUnit.ResolveOperand(
		inst.Rs1, exmem, memwb, s.regFile)
	if err != nil {
		return NopLatch(), fmt.Errorf("execute %s: %w", inst, err)
	}
	next.Src2Value, next.Src2From, err = s.hazardUnit.ResolveOperand(
		inst.Rs2, exmem, memwb, s.regFile)
	if err != nil {
		return NopLatch(), fmt.Errorf("execute %s: %w", inst, err)
	}

	switch inst.Op {
	case insts.OpMov:
		next.Result = inst.Imm
	case insts.OpAdd:
		next.Result = next.Src1Value + next.Src2Value
	case insts.OpSub:
		next.Result = next.Src1Value - next.Src2Value
	case insts.OpMul:
		next.Result = next.Src1Value * next.Src2Value
	case insts.OpLoad, insts.OpStore:
		// Effective address: base plus signed offset.
		next.Result = next.Src1Value + inst.Imm
	}

	return next, nil
}

// MemoryStage performs at most one data-memory access per cycle.
type MemoryStage struct {
	memory *emu.Memory
}

// NewMemoryStage creates a new memory stage.
func NewMemoryStage(memory *emu.Memory) *MemoryStage {
	return &MemoryStage{memory: memory}
}

// Access consumes the current EX/MEM latch and produces the next MEM/WB
// latch value. A store writes the resolved data value at the effective
// address; a load replaces the carried result with the loaded word, so that
// write-back and subsequent forwarding see data rather than an address.
func (s *MemoryStage) Access(exmem *StageLatch) (StageLatch, error) {
	if !exmem.Live() {
		return NopLatch(), nil
	}

	next := *exmem
	switch next.Inst.Op {
	case insts.OpLoad:
		value, err := s.memory.Load(next.Result)
		if err != nil {
			return NopLatch(), fmt.Errorf("memory %s: %w", next.Inst, err)
		}
		next.Result = value
	case insts.OpStore:
		if err := s.memory.Store(next.Result, next.Src2Value); err != nil {
			return NopLatch(), fmt.Errorf("memory %s: %w", next.Inst, err)
		}
	}

	return next, nil
}

// WritebackStage retires instructions into the register file. It is the
// only stage permitted to mutate the register file.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a new writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback writes the carried result into the destination register, if the
// latch holds a live instruction that has one.
func (s *WritebackStage) Writeback(memwb *StageLatch) error {
	if !memwb.Live() || memwb.Inst.Rd == insts.RegNone {
		return nil
	}
	if err := s.regFile.Write(memwb.Inst.Rd, memwb.Result); err != nil {
		return fmt.Errorf("writeback %s: %w", memwb.Inst, err)
	}
	return nil
}
