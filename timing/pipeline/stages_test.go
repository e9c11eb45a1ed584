package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
	"github.com/hazardlab/pipesim/timing/pipeline"
)

var _ = Describe("FetchStage", func() {
	It("should return the instruction at the program counter", func() {
		program := assemble("mov R1, 5", "mov R2, 10")
		stage := pipeline.NewFetchStage(program)

		Expect(stage.Fetch(0).Imm).To(Equal(int64(5)))
		Expect(stage.Fetch(1).Imm).To(Equal(int64(10)))
	})

	It("should return a nop past the end", func() {
		program := assemble("mov R1, 5")
		stage := pipeline.NewFetchStage(program)

		Expect(stage.Fetch(1).Valid).To(BeFalse())
		Expect(stage.Fetch(999).Valid).To(BeFalse())
	})
})

var _ = Describe("DecodeStage", func() {
	var stage *pipeline.DecodeStage

	BeforeEach(func() {
		stage = pipeline.NewDecodeStage(pipeline.NewHazardUnit())
	})

	It("should pass an instruction towards execute", func() {
		ifid := pipeline.StageLatch{Inst: assemble("add R3, R1, R2").At(0)}
		idex := pipeline.NopLatch()

		result := stage.Decode(&ifid, &idex)

		Expect(result.Stall).To(BeFalse())
		Expect(result.Next.Inst.Op).To(Equal(insts.OpAdd))
	})

	It("should request a bubble on a same-address store-then-load", func() {
		ifid := pipeline.StageLatch{Inst: assemble("load R2, 0(R0)").At(0)}
		idex := pipeline.StageLatch{Inst: assemble("store R1, 0(R0)").At(0)}

		result := stage.Decode(&ifid, &idex)

		Expect(result.Stall).To(BeTrue())
		Expect(result.Reason).To(Equal(pipeline.StallReasonStoreLoad))
		Expect(result.Next.Live()).To(BeFalse())
	})
})

var _ = Describe("ExecuteStage", func() {
	var (
		regFile *emu.RegFile
		stage   *pipeline.ExecuteStage
		exmem   pipeline.StageLatch
		memwb   pipeline.StageLatch
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		stage = pipeline.NewExecuteStage(regFile, pipeline.NewHazardUnit())
		exmem = pipeline.NopLatch()
		memwb = pipeline.NopLatch()
	})

	execute := func(line string) pipeline.StageLatch {
		idex := pipeline.StageLatch{Inst: assemble(line).At(0)}
		next, err := stage.Execute(&idex, &exmem, &memwb)
		Expect(err).NotTo(HaveOccurred())
		return next
	}

	It("should carry the immediate for MOV", func() {
		next := execute("mov R1, 5")

		Expect(next.Result).To(Equal(int64(5)))
		Expect(next.Src1From).To(Equal(pipeline.SrcNone))
		Expect(next.Src2From).To(Equal(pipeline.SrcNone))
	})

	It("should compute arithmetic from the register file", func() {
		Expect(regFile.Write(1, 8)).To(Succeed())
		Expect(regFile.Write(2, 3)).To(Succeed())

		Expect(execute("add R3, R1, R2").Result).To(Equal(int64(11)))
		Expect(execute("sub R3, R1, R2").Result).To(Equal(int64(5)))
		Expect(execute("mul R3, R1, R2").Result).To(Equal(int64(24)))
	})

	It("should record operand provenance", func() {
		Expect(regFile.Write(2, 3)).To(Succeed())
		exmem = pipeline.StageLatch{
			Inst:   insts.Instruction{Op: insts.OpMov, Rd: 1, Rs1: insts.RegNone, Rs2: insts.RegNone, Valid: true},
			Result: 8,
		}

		next := execute("add R3, R1, R2")

		Expect(next.Result).To(Equal(int64(11)))
		Expect(next.Src1Value).To(Equal(int64(8)))
		Expect(next.Src1From).To(Equal(pipeline.SrcEXMEM))
		Expect(next.Src2Value).To(Equal(int64(3)))
		Expect(next.Src2From).To(Equal(pipeline.SrcRegFile))
	})

	It("should compute the effective address for memory operations", func() {
		Expect(regFile.Write(0, 10)).To(Succeed())
		Expect(regFile.Write(1, 7)).To(Succeed())

		load := execute("load R2, 3(R0)")
		Expect(load.Result).To(Equal(int64(13)))

		store := execute("store R1, -2(R0)")
		Expect(store.Result).To(Equal(int64(8)))
		Expect(store.Src2Value).To(Equal(int64(7)))
	})

	It("should pass a bubble through untouched", func() {
		idex := pipeline.NopLatch()

		next, err := stage.Execute(&idex, &exmem, &memwb)

		Expect(err).NotTo(HaveOccurred())
		Expect(next.Live()).To(BeFalse())
		Expect(next.Result).To(Equal(int64(0)))
	})

	It("should fail on an out-of-range register field", func() {
		idex := pipeline.StageLatch{
			Inst: insts.Instruction{Op: insts.OpAdd, Rd: 99, Rs1: 1, Rs2: 2, Valid: true},
		}

		_, err := stage.Execute(&idex, &exmem, &memwb)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("MemoryStage", func() {
	var (
		memory *emu.Memory
		stage  *pipeline.MemoryStage
	)

	BeforeEach(func() {
		memory = emu.NewMemory(16)
		stage = pipeline.NewMemoryStage(memory)
	})

	It("should replace the load's address with the loaded word", func() {
		Expect(memory.Store(4, 99)).To(Succeed())
		exmem := pipeline.StageLatch{
			Inst:   assemble("load R2, 4(R0)").At(0),
			Result: 4,
		}

		next, err := stage.Access(&exmem)

		Expect(err).NotTo(HaveOccurred())
		Expect(next.Result).To(Equal(int64(99)))
	})

	It("should write the store's data value at the effective address", func() {
		exmem := pipeline.StageLatch{
			Inst:      assemble("store R1, 4(R0)").At(0),
			Result:    4,
			Src2Value: 77,
		}

		_, err := stage.Access(&exmem)
		Expect(err).NotTo(HaveOccurred())

		value, err := memory.Load(4)
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal(int64(77)))
	})

	It("should pass non-memory instructions through", func() {
		exmem := pipeline.StageLatch{Inst: assemble("mov R1, 5").At(0), Result: 5}

		next, err := stage.Access(&exmem)

		Expect(err).NotTo(HaveOccurred())
		Expect(next.Result).To(Equal(int64(5)))
	})

	It("should fail on an out-of-range effective address", func() {
		exmem := pipeline.StageLatch{
			Inst:   assemble("load R2, 0(R0)").At(0),
			Result: 100,
		}

		_, err := stage.Access(&exmem)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("WritebackStage", func() {
	var (
		regFile *emu.RegFile
		stage   *pipeline.WritebackStage
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		stage = pipeline.NewWritebackStage(regFile)
	})

	It("should retire the result into the destination register", func() {
		memwb := pipeline.StageLatch{Inst: assemble("mov R3, 5").At(0), Result: 5}

		Expect(stage.Writeback(&memwb)).To(Succeed())
		Expect(regFile.R[3]).To(Equal(int64(5)))
	})

	It("should not touch the register file for a store", func() {
		memwb := pipeline.StageLatch{Inst: assemble("store R1, 0(R0)").At(0), Result: 0}

		Expect(stage.Writeback(&memwb)).To(Succeed())
		for _, v := range regFile.Values() {
			Expect(v).To(Equal(int64(0)))
		}
	})

	It("should not touch the register file for a bubble", func() {
		memwb := pipeline.NopLatch()

		Expect(stage.Writeback(&memwb)).To(Succeed())
		for _, v := range regFile.Values() {
			Expect(v).To(Equal(int64(0)))
		}
	})
})
