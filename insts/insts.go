// Package insts provides instruction definitions and textual assembly decoding.
//
// This package implements decoding of assembly source lines into structured
// instruction representations. The instruction set consists of:
//   - MOV Rd, imm: load an immediate into a register
//   - ADD/SUB/MUL Rd, Rs1, Rs2: register arithmetic
//   - LOAD Rd, offset(Rbase): read a data-memory word
//   - STORE Rsrc, offset(Rbase): write a data-memory word
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("add R3, R1, R2")
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Rs2: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
package insts

import "fmt"

// Op represents an operation kind.
type Op uint8

// Operation kinds.
const (
	// OpNop is the no-operation placeholder, also used for pipeline bubbles.
	OpNop Op = iota
	// OpMov loads an immediate value into the destination register.
	OpMov
	// OpAdd adds two source registers.
	OpAdd
	// OpSub subtracts the second source register from the first.
	OpSub
	// OpMul multiplies two source registers.
	OpMul
	// OpLoad reads a data-memory word at offset(Rbase) into the destination.
	OpLoad
	// OpStore writes the source register to the data-memory word at offset(Rbase).
	OpStore
)

// String returns the mnemonic for the operation.
func (o Op) String() string {
	switch o {
	case OpNop:
		return "NOP"
	case OpMov:
		return "MOV"
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpMul:
		return "MUL"
	case OpLoad:
		return "LOAD"
	case OpStore:
		return "STORE"
	default:
		return "UNK"
	}
}

// NumRegs is the number of general-purpose registers.
const NumRegs = 16

// RegNone marks an unused register field.
const RegNone = -1

// Instruction is a decoded instruction. It is immutable once created.
//
// Register fields hold RegNone when unused; otherwise they are in
// [0, NumRegs). For LOAD and STORE, Rs1 is the base register and Imm is the
// signed word offset. For STORE, Rs2 is the register whose value is written
// to memory; a store has no destination register.
type Instruction struct {
	// Op is the operation kind.
	Op Op

	// Rd is the destination register index, or RegNone.
	Rd int

	// Rs1 is the first source register index, or RegNone.
	Rs1 int

	// Rs2 is the second source register index, or RegNone.
	Rs2 int

	// Imm is the MOV immediate or the signed load/store word offset.
	Imm int64

	// Valid is false for nops, bubbles, and the zero value.
	Valid bool

	// Text is the original source line, kept for diagnostics only.
	// Display rendering uses String, computed from the decoded fields.
	Text string
}

// Nop returns the canonical no-operation instruction.
func Nop() Instruction {
	return Instruction{
		Op:  OpNop,
		Rd:  RegNone,
		Rs1: RegNone,
		Rs2: RegNone,
	}
}

// WritesReg reports whether the instruction writes a destination register.
func (i Instruction) WritesReg() bool {
	return i.Valid && i.Rd != RegNone
}

// RegFieldsValid reports whether every register field is RegNone or in
// [0, NumRegs).
func (i Instruction) RegFieldsValid() bool {
	for _, r := range [3]int{i.Rd, i.Rs1, i.Rs2} {
		if r != RegNone && (r < 0 || r >= NumRegs) {
			return false
		}
	}
	return true
}

// String renders the instruction in assembly syntax.
func (i Instruction) String() string {
	if !i.Valid || i.Op == OpNop {
		return "NOP"
	}

	switch i.Op {
	case OpMov:
		return fmt.Sprintf("MOV R%d, %d", i.Rd, i.Imm)
	case OpAdd, OpSub, OpMul:
		return fmt.Sprintf("%s R%d, R%d, R%d", i.Op, i.Rd, i.Rs1, i.Rs2)
	case OpLoad:
		return fmt.Sprintf("LOAD R%d, %d(R%d)", i.Rd, i.Imm, i.Rs1)
	case OpStore:
		return fmt.Sprintf("STORE R%d, %d(R%d)", i.Rs2, i.Imm, i.Rs1)
	default:
		return i.Op.String()
	}
}
