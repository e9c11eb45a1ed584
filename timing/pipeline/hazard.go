package pipeline

import (
	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
)

// OperandSource indicates where a resolved operand value came from.
type OperandSource int

const (
	// SrcNone means the operand slot is unused.
	SrcNone OperandSource = iota
	// SrcRegFile means the value was read from the register file.
	SrcRegFile
	// SrcEXMEM means the value was forwarded from the EX/MEM boundary.
	SrcEXMEM
	// SrcMEMWB means the value was forwarded from the MEM/WB boundary.
	SrcMEMWB
)

// String returns a short tag for trace output.
func (s OperandSource) String() string {
	switch s {
	case SrcNone:
		return "-"
	case SrcRegFile:
		return "RF"
	case SrcEXMEM:
		return "EX/MEM"
	case SrcMEMWB:
		return "MEM/WB"
	default:
		return "?"
	}
}

// StallReasonStoreLoad is the reason reported for the one hazard that
// forwarding cannot resolve.
const StallReasonStoreLoad = "store->load hazard (same address)"

// StallDecision is the decode-stage hazard outcome.
type StallDecision struct {
	// Stall indicates a bubble must be inserted this cycle.
	Stall bool
	// Reason is a human-readable description when Stall is set.
	Reason string
}

// HazardUnit detects the store-to-load address hazard and resolves operand
// values through forwarding.
//
// Register-level read-after-write hazards never stall: the producing
// instruction's result is always available at the EX/MEM or MEM/WB boundary
// by the time the consumer reaches Execute. Only the same-address
// store-then-load sequence needs a bubble, because address equality cannot
// be observed before decode.
type HazardUnit struct{}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit() *HazardUnit {
	return &HazardUnit{}
}

// DetectStoreLoadHazard checks the instruction entering decode (IF/ID)
// against the instruction currently in execute (ID/EX). A stall is signaled
// when the former is a load and the latter a store with the same base
// register and the same offset.
func (h *HazardUnit) DetectStoreLoadHazard(ifid, idex *StageLatch) StallDecision {
	entering := ifid.Inst
	inExecute := idex.Inst

	if !entering.Valid || !inExecute.Valid {
		return StallDecision{}
	}
	if inExecute.Op != insts.OpStore || entering.Op != insts.OpLoad {
		return StallDecision{}
	}
	if entering.Rs1 == inExecute.Rs1 && entering.Imm == inExecute.Imm {
		return StallDecision{Stall: true, Reason: StallReasonStoreLoad}
	}

	return StallDecision{}
}

// ResolveOperand resolves a source register reference by forwarding
// priority and records which source supplied the value:
//
//  1. EX/MEM boundary, if it holds a valid non-load instruction writing the
//     register. A load is skipped because its boundary value is an address,
//     not data, until Memory completes.
//  2. MEM/WB boundary, if it holds a valid instruction writing the register.
//     For a completed load this is the loaded value.
//  3. The register file.
func (h *HazardUnit) ResolveOperand(
	reg int,
	exmem, memwb *StageLatch,
	regFile *emu.RegFile,
) (int64, OperandSource, error) {
	if reg == insts.RegNone {
		return 0, SrcNone, nil
	}

	if exmem.Inst.Valid && exmem.Inst.Op != insts.OpLoad && exmem.Inst.Rd == reg {
		return exmem.Result, SrcEXMEM, nil
	}

	if memwb.Inst.Valid && memwb.Inst.Rd == reg {
		return memwb.Result, SrcMEMWB, nil
	}

	value, err := regFile.Read(reg)
	if err != nil {
		return 0, SrcNone, err
	}
	return value, SrcRegFile, nil
}
