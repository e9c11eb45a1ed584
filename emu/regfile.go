// Package emu provides the architectural state (register file, data memory)
// and a sequential reference emulator for the pipeline's instruction set.
package emu

import (
	"fmt"

	"github.com/hazardlab/pipesim/insts"
)

// RegFile represents the register file: insts.NumRegs general-purpose
// integer registers, initialized to zero.
type RegFile struct {
	// R holds the register values.
	R [insts.NumRegs]int64
}

// Read returns the value of a register. An out-of-range index is an
// invariant violation and reported as an error rather than clamped.
func (r *RegFile) Read(reg int) (int64, error) {
	if reg < 0 || reg >= insts.NumRegs {
		return 0, fmt.Errorf("register index R%d out of range [0, %d)", reg, insts.NumRegs)
	}
	return r.R[reg], nil
}

// Write sets the value of a register.
func (r *RegFile) Write(reg int, value int64) error {
	if reg < 0 || reg >= insts.NumRegs {
		return fmt.Errorf("register index R%d out of range [0, %d)", reg, insts.NumRegs)
	}
	r.R[reg] = value
	return nil
}

// Values returns a copy of the register contents.
func (r *RegFile) Values() []int64 {
	values := make([]int64, insts.NumRegs)
	copy(values, r.R[:])
	return values
}

// Reset zeroes all registers.
func (r *RegFile) Reset() {
	r.R = [insts.NumRegs]int64{}
}
