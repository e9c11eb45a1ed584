// Package main provides the entry point for pipesim, a cycle-accurate
// 5-stage pipeline simulator for a small register-machine instruction set.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hazardlab/pipesim/config"
	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
	"github.com/hazardlab/pipesim/loader"
	"github.com/hazardlab/pipesim/timing/core"
	"github.com/hazardlab/pipesim/timing/pipeline"
	"github.com/hazardlab/pipesim/trace"
)

var (
	emuMode    = flag.Bool("emu", false, "Run the sequential reference emulator instead of the pipeline")
	traceFlag  = flag.Bool("trace", false, "Print per-cycle pipeline state")
	configPath = flag.String("config", "", "Path to simulation configuration JSON file")
	tuiFlag    = flag.Bool("tui", false, "Open the interactive pipeline inspector")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: pipesim [options] <program.asm>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	cfg := config.DefaultSimConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *traceFlag {
		cfg.Trace = true
	}

	program, diags, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "parse error: %s\n", d)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Instructions: %d\n", program.Len())
	}

	switch {
	case *emuMode:
		os.Exit(runEmulation(program, cfg))
	case *tuiFlag:
		os.Exit(runTUI(program, cfg))
	default:
		os.Exit(runTiming(program, cfg))
	}
}

// runEmulation runs the program in sequential reference mode.
func runEmulation(program *insts.Program, cfg *config.SimConfig) int {
	regFile := &emu.RegFile{}
	memory := emu.NewMemory(cfg.MemoryWords)
	emulator := emu.NewEmulator(regFile, memory, program)

	if err := emulator.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Emulation error: %v\n", err)
		return 1
	}

	fmt.Printf("Final Register Values:\n")
	for i, v := range regFile.Values() {
		fmt.Printf("R%-2d = %d\n", i, v)
	}
	fmt.Printf("\nTotal Instructions = %d\n", emulator.InstructionCount())

	return 0
}

// runTiming runs the program through the cycle-accurate pipeline.
func runTiming(program *insts.Program, cfg *config.SimConfig) int {
	c := core.NewCore(program, cfg.MemoryWords, pipeline.WithMaxCycles(cfg.MaxCycles))
	tracer := trace.New(os.Stdout)

	if cfg.Trace {
		for !c.Halted() {
			if err := c.Tick(); err != nil {
				fmt.Fprintf(os.Stderr, "Simulation error: %v\n", err)
				return 1
			}
			tracer.Cycle(c.Pipeline)
			if cfg.MaxCycles > 0 && c.Stats().Cycles >= cfg.MaxCycles && !c.Halted() {
				fmt.Fprintf(os.Stderr, "Simulation exceeded %d cycles without halting\n", cfg.MaxCycles)
				return 1
			}
		}
	} else {
		if _, err := c.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Simulation error: %v\n", err)
			return 1
		}
	}

	tracer.Summary(c.Registers(), c.Stats())
	return 0
}

// runTUI opens the interactive pipeline inspector.
func runTUI(program *insts.Program, cfg *config.SimConfig) int {
	c := core.NewCore(program, cfg.MemoryWords, pipeline.WithMaxCycles(cfg.MaxCycles))

	u, err := initUI(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing TUI: %v\n", err)
		return 1
	}
	if err := u.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}
