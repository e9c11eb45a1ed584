package pipeline

import (
	"fmt"

	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
)

// State is the cycle driver's execution state.
type State int

const (
	// StateRunning means instructions remain to be fetched.
	StateRunning State = iota
	// StateDraining means the program counter is exhausted but latches
	// still hold live instructions.
	StateDraining
	// StateHalted means the program counter is exhausted and the pipeline
	// is drained. Halted is terminal.
	StateHalted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateDraining:
		return "DRAINING"
	case StateHalted:
		return "HALTED"
	default:
		return "UNKNOWN"
	}
}

// Statistics holds pipeline performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions completed (retired).
	Instructions uint64
	// Stalls is the number of stall cycles inserted.
	Stalls uint64
	// DataHazards is the number of cycles in which at least one operand
	// was served by forwarding rather than the register file.
	DataHazards uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxCycles bounds Run to the given number of cycles as a runaway
// guard. Zero means no limit.
func WithMaxCycles(n uint64) PipelineOption {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// Pipeline implements the 5-stage in-order pipelined CPU model.
// Stages: Fetch (IF) -> Decode (ID) -> Execute (EX) -> Memory (MEM) ->
// Writeback (WB).
//
// The pipeline owns the four inter-stage latches and the program counter;
// the register file and data memory are mutated exclusively by its stage
// functions (Writeback and Memory respectively).
type Pipeline struct {
	// Pipeline latches.
	ifid  StageLatch
	idex  StageLatch
	exmem StageLatch
	memwb StageLatch

	// retired is a copy of the MEM/WB latch consumed by Writeback in the
	// most recent cycle, kept for display only.
	retired StageLatch

	// Pipeline stages.
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Hazard detection.
	hazardUnit *HazardUnit

	// Shared resources.
	regFile *emu.RegFile
	memory  *emu.Memory
	program *insts.Program

	// Program counter, bounded by [0, program length].
	pc int

	// Last cycle's stall decision, kept for display only.
	stalled     bool
	stallReason string

	maxCycles uint64
	stats     Statistics
}

// NewPipeline creates a new 5-stage pipeline with all latches empty.
func NewPipeline(
	regFile *emu.RegFile,
	memory *emu.Memory,
	program *insts.Program,
	opts ...PipelineOption,
) *Pipeline {
	hazardUnit := NewHazardUnit()
	p := &Pipeline{
		ifid:           NopLatch(),
		idex:           NopLatch(),
		exmem:          NopLatch(),
		memwb:          NopLatch(),
		retired:        NopLatch(),
		fetchStage:     NewFetchStage(program),
		decodeStage:    NewDecodeStage(hazardUnit),
		executeStage:   NewExecuteStage(regFile, hazardUnit),
		memoryStage:    NewMemoryStage(memory),
		writebackStage: NewWritebackStage(regFile),
		hazardUnit:     hazardUnit,
		regFile:        regFile,
		memory:         memory,
		program:        program,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// PC returns the current program counter.
func (p *Pipeline) PC() int {
	return p.pc
}

// IFID returns the IF/ID latch.
func (p *Pipeline) IFID() *StageLatch {
	return &p.ifid
}

// IDEX returns the ID/EX latch.
func (p *Pipeline) IDEX() *StageLatch {
	return &p.idex
}

// EXMEM returns the EX/MEM latch.
func (p *Pipeline) EXMEM() *StageLatch {
	return &p.exmem
}

// MEMWB returns the MEM/WB latch.
func (p *Pipeline) MEMWB() *StageLatch {
	return &p.memwb
}

// Retired returns a display-only copy of the latch written back in the most
// recent cycle.
func (p *Pipeline) Retired() *StageLatch {
	return &p.retired
}

// Stalled reports whether the most recent cycle inserted a bubble, and why.
func (p *Pipeline) Stalled() (bool, string) {
	return p.stalled, p.stallReason
}

// Stats returns pipeline statistics.
func (p *Pipeline) Stats() Statistics {
	return p.stats
}

// Registers returns a copy of the register file contents.
func (p *Pipeline) Registers() []int64 {
	return p.regFile.Values()
}

// Drained reports whether every latch holds an invalid or nop instruction.
func (p *Pipeline) Drained() bool {
	return !p.ifid.Live() && !p.idex.Live() && !p.exmem.Live() && !p.memwb.Live()
}

// State returns the current execution state.
func (p *Pipeline) State() State {
	if p.pc < p.program.Len() {
		return StateRunning
	}
	if !p.Drained() {
		return StateDraining
	}
	return StateHalted
}

// Tick executes one clock cycle.
//
// All five stages are evaluated against the latch values as they stood
// before this cycle; the four next-cycle latch values are then committed
// together. Writeback runs first because it only mutates the register file,
// which Execute is then allowed to observe (the latches it reads are still
// the pre-cycle ones).
//
// Ticking a halted pipeline is a no-op.
func (p *Pipeline) Tick() error {
	if p.State() == StateHalted {
		return nil
	}

	p.stats.Cycles++

	// Stage 5: Writeback (the cycle's only register-file mutation).
	if err := p.writebackStage.Writeback(&p.memwb); err != nil {
		return err
	}
	p.retired = p.memwb
	if p.memwb.Live() {
		p.stats.Instructions++
	}

	// Stage 4: Memory (may mutate data memory).
	nextMEMWB, err := p.memoryStage.Access(&p.exmem)
	if err != nil {
		return err
	}

	// Stage 3: Execute (pure; forwards from the pre-cycle EX/MEM and
	// MEM/WB latches).
	nextEXMEM, err := p.executeStage.Execute(&p.idex, &p.exmem, &p.memwb)
	if err != nil {
		return err
	}
	if nextEXMEM.Src1From == SrcEXMEM || nextEXMEM.Src1From == SrcMEMWB ||
		nextEXMEM.Src2From == SrcEXMEM || nextEXMEM.Src2From == SrcMEMWB {
		p.stats.DataHazards++
	}

	// Stage 2: Decode / hazard detection.
	decResult := p.decodeStage.Decode(&p.ifid, &p.idex)

	// Stage 1: Fetch (candidate only; commit decides below).
	fetched := p.fetchStage.Fetch(p.pc)

	// Commit. Every value above was computed from pre-cycle state.
	p.memwb = nextMEMWB
	p.exmem = nextEXMEM
	if decResult.Stall {
		p.idex = NopLatch() // bubble
		p.stats.Stalls++
	} else {
		p.idex = decResult.Next
		p.ifid = StageLatch{Inst: fetched}
		if p.pc < p.program.Len() {
			p.pc++
		}
	}
	p.stalled = decResult.Stall
	p.stallReason = decResult.Reason

	return nil
}

// Run executes the pipeline until it halts.
func (p *Pipeline) Run() error {
	for p.State() != StateHalted {
		if p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles {
			return fmt.Errorf("simulation exceeded %d cycles without halting", p.maxCycles)
		}
		if err := p.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the latches, program counter, and statistics. The register
// file and data memory are owned by the caller and are not touched.
func (p *Pipeline) Reset() {
	p.ifid.Clear()
	p.idex.Clear()
	p.exmem.Clear()
	p.memwb.Clear()
	p.retired.Clear()
	p.pc = 0
	p.stalled = false
	p.stallReason = ""
	p.stats = Statistics{}
}
