package insts

import "fmt"

// Program is an immutable ordered instruction store.
type Program struct {
	insts []Instruction
}

// NewProgram creates a program from an ordered sequence of instructions.
// Every instruction must be valid with in-range register fields; malformed
// lines are the loader's problem and never reach the store.
func NewProgram(list []Instruction) (*Program, error) {
	for i, inst := range list {
		if !inst.Valid {
			return nil, fmt.Errorf("instruction %d is invalid", i)
		}
		if !inst.RegFieldsValid() {
			return nil, fmt.Errorf("instruction %d (%s) has a register index out of range", i, inst)
		}
	}

	p := &Program{insts: make([]Instruction, len(list))}
	copy(p.insts, list)
	return p, nil
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.insts)
}

// At returns the instruction at the given index. Indices at or past the end
// yield a nop, never an error; fetch relies on this.
func (p *Program) At(i int) Instruction {
	if i < 0 || i >= len(p.insts) {
		return Nop()
	}
	return p.insts[i]
}
