// Package benchmarks provides program-level validation and timing
// measurement infrastructure.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/loader"
	"github.com/hazardlab/pipesim/timing/core"
	"github.com/hazardlab/pipesim/timing/pipeline"
)

// BenchmarkResult holds the timing results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// SimulatedCycles is the total cycle count from the timing simulator
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// InstructionsRetired is the number of completed instructions
	InstructionsRetired uint64 `json:"instructions_retired"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// StallCycles is the number of stall cycles
	StallCycles uint64 `json:"stall_cycles"`

	// DataHazards is the number of cycles with at least one forwarded operand
	DataHazards uint64 `json:"data_hazards"`
}

// RunBenchmark assembles the given source and runs it through the timing
// model with a zeroed machine state.
func RunBenchmark(name, source string, memWords int) (BenchmarkResult, error) {
	program, diags, err := loader.Parse(strings.NewReader(source))
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("%s: %w", name, err)
	}
	if len(diags) > 0 {
		return BenchmarkResult{}, fmt.Errorf("%s: %s", name, diags[0])
	}

	c := core.NewCore(program, memWords)
	stats, err := c.Run()
	if err != nil {
		return BenchmarkResult{}, fmt.Errorf("%s: %w", name, err)
	}

	return BenchmarkResult{
		Name:                name,
		SimulatedCycles:     stats.Cycles,
		InstructionsRetired: stats.Instructions,
		CPI:                 stats.CPI(),
		StallCycles:         stats.Stalls,
		DataHazards:         stats.DataHazards,
	}, nil
}

// RunBothModels runs the source through the timing model and the sequential
// reference model over separate, identically zeroed machine states, and
// returns both final architectural states.
func RunBothModels(source string, memWords int) (timing, reference MachineState, err error) {
	program, diags, parseErr := loader.Parse(strings.NewReader(source))
	if parseErr != nil {
		return MachineState{}, MachineState{}, parseErr
	}
	if len(diags) > 0 {
		return MachineState{}, MachineState{}, fmt.Errorf("%s", diags[0])
	}

	c := core.NewCore(program, memWords, pipeline.WithMaxCycles(1000000))
	if _, err := c.Run(); err != nil {
		return MachineState{}, MachineState{}, fmt.Errorf("timing model: %w", err)
	}
	timing = MachineState{Registers: c.Registers(), Memory: c.MemoryWords()}

	regFile := &emu.RegFile{}
	memory := emu.NewMemory(memWords)
	emulator := emu.NewEmulator(regFile, memory, program)
	if err := emulator.Run(); err != nil {
		return MachineState{}, MachineState{}, fmt.Errorf("reference model: %w", err)
	}
	reference = MachineState{Registers: regFile.Values(), Memory: memory.Values()}

	return timing, reference, nil
}

// MachineState is a snapshot of final architectural state.
type MachineState struct {
	Registers []int64 `json:"registers"`
	Memory    []int64 `json:"memory"`
}

// WriteResults serializes benchmark results as indented JSON.
func WriteResults(w io.Writer, results []BenchmarkResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
