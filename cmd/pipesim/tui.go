package main

import (
	"fmt"

	"github.com/jroimartin/gocui"

	"github.com/hazardlab/pipesim/insts"
	"github.com/hazardlab/pipesim/timing/core"
)

// KeyBinding pairs a gocui key with its handler.
type KeyBinding struct {
	View    string
	Key     interface{}
	Mod     gocui.Modifier
	Handler func(*gocui.Gui, *gocui.View) error
}

// Ui is the interactive pipeline inspector: single-step or run the core
// while watching the stage latches, registers, data memory, and program.
type Ui struct {
	Core    *core.Core
	Gui     *gocui.Gui
	MemAddr int
	ProgPos int
	SimErr  error
}

func initUI(c *core.Core) (*Ui, error) {
	var err error
	u := &Ui{Core: c}
	u.Gui, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}

	u.Gui.SetManagerFunc(u.Layout)

	keys := []KeyBinding{
		{"", gocui.KeyCtrlC, gocui.ModNone, quit},
		{"", 'q', gocui.ModNone, quit},
		{"", 's', gocui.ModNone, u.StepCycle},
		{"", gocui.KeySpace, gocui.ModNone, u.StepCycle},
		{"", 'r', gocui.ModNone, u.RunToHalt},
		{"", 'j', gocui.ModNone, u.MemScrollDown},
		{"", 'k', gocui.ModNone, u.MemScrollUp},
	}
	for _, k := range keys {
		if err = u.Gui.SetKeybinding(k.View, k.Key, k.Mod, k.Handler); err != nil {
			return nil, err
		}
	}

	u.Gui.Update(u.UpdateViews)

	return u, nil
}

// Run drives the gocui main loop until the user quits.
func (u *Ui) Run() error {
	defer u.Gui.Close()
	if err := u.Gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (u *Ui) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	maxX--
	maxY--
	colX := maxX / 2
	rowY := maxY / 2

	if v, err := g.SetView("pipeline", 0, 0, colX, rowY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = true
		v.Title = "pipeline (s: step, r: run, q: quit)"
	}
	if v, err := g.SetView("registers", 0, rowY+1, colX, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = true
		v.Title = "registers"
	}
	if v, err := g.SetView("program", colX+1, 0, maxX, rowY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = true
		v.Title = "program"
	}
	if v, err := g.SetView("memory", colX+1, rowY+1, maxX, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = true
		v.Title = "memory (j/k: scroll)"
	}
	u.UpdateViews(g)
	return nil
}

func (u *Ui) UpdateViews(g *gocui.Gui) error {
	if err := u.UpdatePipelineView(g); err != nil {
		return err
	}
	if err := u.UpdateRegistersView(g); err != nil {
		return err
	}
	if err := u.UpdateProgramView(g); err != nil {
		return err
	}
	return u.UpdateMemoryView(g)
}

func (u *Ui) UpdatePipelineView(g *gocui.Gui) error {
	v, err := g.View("pipeline")
	if err != nil {
		return err
	}
	v.Clear()

	p := u.Core.Pipeline
	stats := p.Stats()
	fmt.Fprintf(v, "State : %s\n", p.State())
	fmt.Fprintf(v, "Cycle : %-6d PC: %d\n", stats.Cycles, p.PC())
	fmt.Fprintf(v, "Stalls: %-6d CPI: %.2f\n\n", stats.Stalls, stats.CPI())

	fmt.Fprintf(v, "IF : %s\n", p.IFID().Inst)
	if stalled, reason := p.Stalled(); stalled {
		fmt.Fprintf(v, "ID : %-20s (stalled: %s)\n", p.IFID().Inst, reason)
	} else {
		fmt.Fprintf(v, "ID : %s\n", p.IDEX().Inst)
	}

	exmem := p.EXMEM()
	if exmem.Live() {
		fmt.Fprintf(v, "EX : %-20s [%s|%s] result=%d\n",
			exmem.Inst, exmem.Src1From, exmem.Src2From, exmem.Result)
	} else {
		fmt.Fprintf(v, "EX : NOP\n")
	}

	fmt.Fprintf(v, "MEM: %s\n", p.MEMWB().Inst)

	retired := p.Retired()
	if retired.Live() && retired.Inst.Rd != insts.RegNone {
		fmt.Fprintf(v, "WB : %-20s R%d=%d\n", retired.Inst, retired.Inst.Rd, retired.Result)
	} else {
		fmt.Fprintf(v, "WB : %s\n", retired.Inst)
	}

	if u.SimErr != nil {
		fmt.Fprintf(v, "\nERROR: %v\n", u.SimErr)
	}

	return nil
}

func (u *Ui) UpdateRegistersView(g *gocui.Gui) error {
	v, err := g.View("registers")
	if err != nil {
		return err
	}
	v.Clear()
	for i, r := range u.Core.Registers() {
		fmt.Fprintf(v, "R%-2d : %-8d %016x\n", i, r, uint64(r))
	}
	return nil
}

func (u *Ui) UpdateProgramView(g *gocui.Gui) error {
	v, err := g.View("program")
	if err != nil {
		return err
	}
	v.Clear()

	program := u.Core.Program()
	pc := u.Core.Pipeline.PC()
	_, maxY := v.Size()
	if pc >= u.ProgPos+maxY {
		u.ProgPos = pc - maxY + 1
	}
	var cur rune
	for i := u.ProgPos; i < program.Len() && i < u.ProgPos+maxY; i++ {
		if i == pc {
			cur = '>'
		} else {
			cur = ' '
		}
		fmt.Fprintf(v, "%c%3d: %s\n", cur, i, program.At(i))
	}
	return nil
}

func (u *Ui) UpdateMemoryView(g *gocui.Gui) error {
	v, err := g.View("memory")
	if err != nil {
		return err
	}
	v.Clear()

	words := u.Core.MemoryWords()
	_, maxY := v.Size()
	for i := 0; i < maxY && (u.MemAddr+i*8) < len(words); i++ {
		fmt.Fprintf(v, "%4d: ", u.MemAddr+i*8)
		for j := 0; j < 8 && (u.MemAddr+i*8+j) < len(words); j++ {
			fmt.Fprintf(v, "%6d ", words[u.MemAddr+i*8+j])
		}
		fmt.Fprint(v, "\n")
	}
	return nil
}

func (u *Ui) StepCycle(g *gocui.Gui, v *gocui.View) error {
	if u.SimErr == nil && !u.Core.Halted() {
		u.SimErr = u.Core.Tick()
	}
	g.Update(u.UpdateViews)
	return nil
}

func (u *Ui) RunToHalt(g *gocui.Gui, v *gocui.View) error {
	if u.SimErr == nil {
		_, u.SimErr = u.Core.Run()
	}
	g.Update(u.UpdateViews)
	return nil
}

func (u *Ui) MemScrollDown(g *gocui.Gui, v *gocui.View) error {
	size := u.Core.Memory().Size()
	u.MemAddr += 8
	if u.MemAddr >= size {
		u.MemAddr = size - 8
	}
	g.Update(u.UpdateMemoryView)
	return nil
}

func (u *Ui) MemScrollUp(g *gocui.Gui, v *gocui.View) error {
	u.MemAddr -= 8
	if u.MemAddr < 0 {
		u.MemAddr = 0
	}
	g.Update(u.UpdateMemoryView)
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
