package emu

import (
	"fmt"

	"github.com/hazardlab/pipesim/insts"
)

// Emulator executes a program sequentially, one instruction at a time, with
// immediate write-back. It models architectural outcome only, not timing,
// and serves as the reference the pipelined model must agree with for
// programs without data-memory aliasing.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	program *insts.Program

	pc               int
	instructionCount uint64
}

// NewEmulator creates an emulator over the given architectural state.
func NewEmulator(regFile *RegFile, memory *Memory, program *insts.Program) *Emulator {
	return &Emulator{
		regFile: regFile,
		memory:  memory,
		program: program,
	}
}

// PC returns the current program counter.
func (e *Emulator) PC() int {
	return e.pc
}

// InstructionCount returns the number of instructions executed so far.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Done reports whether the program counter has reached the end.
func (e *Emulator) Done() bool {
	return e.pc >= e.program.Len()
}

// Step executes the instruction at the current program counter.
func (e *Emulator) Step() error {
	if e.Done() {
		return nil
	}

	inst := e.program.At(e.pc)
	e.pc++
	e.instructionCount++

	switch inst.Op {
	case insts.OpNop:
		return nil

	case insts.OpMov:
		return e.regFile.Write(inst.Rd, inst.Imm)

	case insts.OpAdd, insts.OpSub, insts.OpMul:
		a, err := e.regFile.Read(inst.Rs1)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		b, err := e.regFile.Read(inst.Rs2)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		var result int64
		switch inst.Op {
		case insts.OpAdd:
			result = a + b
		case insts.OpSub:
			result = a - b
		case insts.OpMul:
			result = a * b
		}
		return e.regFile.Write(inst.Rd, result)

	case insts.OpLoad:
		base, err := e.regFile.Read(inst.Rs1)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		value, err := e.memory.Load(base + inst.Imm)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		return e.regFile.Write(inst.Rd, value)

	case insts.OpStore:
		base, err := e.regFile.Read(inst.Rs1)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		value, err := e.regFile.Read(inst.Rs2)
		if err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		if err := e.memory.Store(base+inst.Imm, value); err != nil {
			return fmt.Errorf("%s: %w", inst, err)
		}
		return nil

	default:
		return fmt.Errorf("unknown operation %v", inst.Op)
	}
}

// Run executes the program to completion.
func (e *Emulator) Run() error {
	for !e.Done() {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}
