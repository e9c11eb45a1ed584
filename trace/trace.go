// Package trace renders human-readable per-cycle pipeline state.
//
// Rendering is computed on demand from the pipeline's exported state after
// each committed cycle; it never mutates a latch. The stage lines therefore
// show, for the cycle that just completed, what each stage worked on.
package trace

import (
	"fmt"
	"io"

	"github.com/hazardlab/pipesim/insts"
	"github.com/hazardlab/pipesim/timing/pipeline"
)

// Tracer writes per-cycle pipeline state and the final report.
type Tracer struct {
	w io.Writer
}

// New creates a tracer writing to w.
func New(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Cycle renders the state of the cycle that just committed.
func (t *Tracer) Cycle(p *pipeline.Pipeline) {
	stats := p.Stats()
	fmt.Fprintf(t.w, "\n================ Cycle %d ================\n", stats.Cycles)

	stalled, reason := p.Stalled()

	fmt.Fprintf(t.w, "IF : %s\n", instText(p.IFID().Inst))

	if stalled {
		fmt.Fprintf(t.w, "ID : %-24s (stalled: %s)\n", instText(p.IFID().Inst), reason)
	} else {
		fmt.Fprintf(t.w, "ID : %s\n", instText(p.IDEX().Inst))
	}

	t.executeLine(p.EXMEM())

	fmt.Fprintf(t.w, "MEM: %s\n", instText(p.MEMWB().Inst))

	retired := p.Retired()
	if retired.Live() && retired.Inst.Rd != insts.RegNone {
		fmt.Fprintf(t.w, "WB : %-24s (write R%d=%d)\n",
			instText(retired.Inst), retired.Inst.Rd, retired.Result)
	} else {
		fmt.Fprintf(t.w, "WB : %s\n", instText(retired.Inst))
	}

	t.registers(p.Registers())
}

// executeLine renders the EX stage with resolved operands and provenance.
func (t *Tracer) executeLine(l *pipeline.StageLatch) {
	if !l.Live() {
		fmt.Fprintf(t.w, "EX : NOP\n")
		return
	}

	inst := l.Inst
	switch inst.Op {
	case insts.OpMov:
		fmt.Fprintf(t.w, "EX : %-24s (imm=%d; result=%d)\n",
			instText(inst), inst.Imm, l.Result)
	case insts.OpAdd, insts.OpSub, insts.OpMul:
		fmt.Fprintf(t.w, "EX : %-24s (R%d=%d[%s], R%d=%d[%s]; result=%d)\n",
			instText(inst),
			inst.Rs1, l.Src1Value, l.Src1From,
			inst.Rs2, l.Src2Value, l.Src2From,
			l.Result)
	case insts.OpLoad:
		fmt.Fprintf(t.w, "EX : %-24s (R%d=%d[%s]; addr=%d)\n",
			instText(inst), inst.Rs1, l.Src1Value, l.Src1From, l.Result)
	case insts.OpStore:
		fmt.Fprintf(t.w, "EX : %-24s (R%d=%d[%s], R%d=%d[%s]; addr=%d)\n",
			instText(inst),
			inst.Rs1, l.Src1Value, l.Src1From,
			inst.Rs2, l.Src2Value, l.Src2From,
			l.Result)
	default:
		fmt.Fprintf(t.w, "EX : %s\n", instText(inst))
	}
}

func (t *Tracer) registers(values []int64) {
	fmt.Fprintf(t.w, "Registers:")
	for i, v := range values {
		if i%8 == 0 {
			fmt.Fprintf(t.w, "\n  ")
		}
		fmt.Fprintf(t.w, "R%-2d=%-6d ", i, v)
	}
	fmt.Fprintln(t.w)
}

// Summary renders the final register state and run totals after HALTED.
func (t *Tracer) Summary(values []int64, stats pipeline.Statistics) {
	fmt.Fprintf(t.w, "\n=============== FINAL REGISTER STATE ===============\n")
	for i, v := range values {
		fmt.Fprintf(t.w, "R%-2d=%-6d ", i, v)
		if (i+1)%8 == 0 {
			fmt.Fprintln(t.w)
		}
	}
	fmt.Fprintf(t.w, "\nTotal Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(t.w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(t.w, "Stalls: %d\n", stats.Stalls)
	fmt.Fprintf(t.w, "Data hazards (forwarded): %d\n", stats.DataHazards)
	fmt.Fprintf(t.w, "CPI: %.2f\n", stats.CPI())
}

func instText(inst insts.Instruction) string {
	return inst.String()
}
