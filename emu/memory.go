package emu

import (
	"errors"
	"fmt"
)

// DefaultMemWords is the default data-memory size in words.
const DefaultMemWords = 256

// ErrAddressOutOfRange reports a data-memory access outside the array.
// It is an invariant violation that aborts the simulation; clamping or
// wrapping would produce a misleading architectural trace.
var ErrAddressOutOfRange = errors.New("memory address out of range")

// Memory is the word-addressed data memory.
type Memory struct {
	words []int64
}

// NewMemory creates a zeroed data memory of the given size in words.
// A non-positive size falls back to DefaultMemWords.
func NewMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemWords
	}
	return &Memory{words: make([]int64, size)}
}

// Size returns the memory size in words.
func (m *Memory) Size() int {
	return len(m.words)
}

// Load reads the word at the given address.
func (m *Memory) Load(addr int64) (int64, error) {
	if addr < 0 || addr >= int64(len(m.words)) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrAddressOutOfRange, addr, len(m.words))
	}
	return m.words[addr], nil
}

// Store writes the word at the given address.
func (m *Memory) Store(addr, value int64) error {
	if addr < 0 || addr >= int64(len(m.words)) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrAddressOutOfRange, addr, len(m.words))
	}
	m.words[addr] = value
	return nil
}

// Values returns a copy of the memory contents.
func (m *Memory) Values() []int64 {
	values := make([]int64, len(m.words))
	copy(values, m.words)
	return values
}

// Reset zeroes the memory contents.
func (m *Memory) Reset() {
	for i := range m.words {
		m.words[i] = 0
	}
}
