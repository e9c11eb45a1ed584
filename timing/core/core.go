// Package core provides the cycle-accurate CPU core model.
// It wraps the pipeline implementation to provide a high-level interface.
package core

import (
	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
	"github.com/hazardlab/pipesim/timing/pipeline"
)

// Core represents a cycle-accurate CPU core model.
// It owns the architectural state and a 5-stage pipeline over it.
type Core struct {
	// Pipeline is the underlying 5-stage pipeline.
	Pipeline *pipeline.Pipeline

	regFile *emu.RegFile
	memory  *emu.Memory
	program *insts.Program
}

// NewCore creates a Core with fresh, zeroed architectural state for the
// given program.
func NewCore(program *insts.Program, memWords int, opts ...pipeline.PipelineOption) *Core {
	regFile := &emu.RegFile{}
	memory := emu.NewMemory(memWords)
	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, memory, program, opts...),
		regFile:  regFile,
		memory:   memory,
		program:  program,
	}
}

// Tick executes one pipeline cycle.
func (c *Core) Tick() error {
	return c.Pipeline.Tick()
}

// Halted reports whether the core has reached the terminal state.
func (c *Core) Halted() bool {
	return c.Pipeline.State() == pipeline.StateHalted
}

// Run executes the core until it halts and returns final statistics.
func (c *Core) Run() (pipeline.Statistics, error) {
	if err := c.Pipeline.Run(); err != nil {
		return c.Pipeline.Stats(), err
	}
	return c.Pipeline.Stats(), nil
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() pipeline.Statistics {
	return c.Pipeline.Stats()
}

// Registers returns a copy of the register file contents.
func (c *Core) Registers() []int64 {
	return c.regFile.Values()
}

// MemoryWords returns a copy of the data-memory contents.
func (c *Core) MemoryWords() []int64 {
	return c.memory.Values()
}

// RegFile exposes the core's register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Memory exposes the core's data memory.
func (c *Core) Memory() *emu.Memory {
	return c.memory
}

// Program returns the instruction store.
func (c *Core) Program() *insts.Program {
	return c.program
}

// Reset clears all core state: latches, counters, registers, and memory.
func (c *Core) Reset() {
	c.Pipeline.Reset()
	c.regFile.Reset()
	c.memory.Reset()
}
