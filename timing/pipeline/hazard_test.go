package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hazardlab/pipesim/emu"
	"github.com/hazardlab/pipesim/insts"
	"github.com/hazardlab/pipesim/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		hazardUnit *pipeline.HazardUnit
		regFile    *emu.RegFile
	)

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
		regFile = &emu.RegFile{}
	})

	latchWith := func(inst insts.Instruction) *pipeline.StageLatch {
		return &pipeline.StageLatch{Inst: inst}
	}

	Describe("DetectStoreLoadHazard", func() {
		store := insts.Instruction{
			Op: insts.OpStore, Rd: insts.RegNone, Rs1: 0, Rs2: 1, Imm: 4, Valid: true,
		}
		load := insts.Instruction{
			Op: insts.OpLoad, Rd: 2, Rs1: 0, Rs2: insts.RegNone, Imm: 4, Valid: true,
		}

		It("should stall a load entering decode behind a store to the same address", func() {
			decision := hazardUnit.DetectStoreLoadHazard(latchWith(load), latchWith(store))

			Expect(decision.Stall).To(BeTrue())
			Expect(decision.Reason).To(Equal(pipeline.StallReasonStoreLoad))
		})

		It("should not stall when the offsets differ", func() {
			farLoad := load
			farLoad.Imm = 8

			decision := hazardUnit.DetectStoreLoadHazard(latchWith(farLoad), latchWith(store))

			Expect(decision.Stall).To(BeFalse())
		})

		It("should not stall when the base registers differ", func() {
			otherBase := load
			otherBase.Rs1 = 3

			decision := hazardUnit.DetectStoreLoadHazard(latchWith(otherBase), latchWith(store))

			Expect(decision.Stall).To(BeFalse())
		})

		It("should not stall for non-memory pairs", func() {
			add := insts.Instruction{Op: insts.OpAdd, Rd: 3, Rs1: 1, Rs2: 2, Valid: true}

			Expect(hazardUnit.DetectStoreLoadHazard(latchWith(add), latchWith(store)).Stall).
				To(BeFalse())
			Expect(hazardUnit.DetectStoreLoadHazard(latchWith(load), latchWith(add)).Stall).
				To(BeFalse())
		})

		It("should not stall against a bubble", func() {
			bubble := pipeline.NopLatch()

			decision := hazardUnit.DetectStoreLoadHazard(latchWith(load), &bubble)

			Expect(decision.Stall).To(BeFalse())
		})
	})

	Describe("ResolveOperand", func() {
		var exmem, memwb pipeline.StageLatch

		BeforeEach(func() {
			exmem = pipeline.NopLatch()
			memwb = pipeline.NopLatch()
			Expect(regFile.Write(1, 100)).To(Succeed())
		})

		It("should prefer the EX/MEM boundary over everything else", func() {
			exmem = pipeline.StageLatch{
				Inst:   insts.Instruction{Op: insts.OpAdd, Rd: 1, Rs1: 2, Rs2: 3, Valid: true},
				Result: 7,
			}
			memwb = pipeline.StageLatch{
				Inst:   insts.Instruction{Op: insts.OpMov, Rd: 1, Rs1: insts.RegNone, Rs2: insts.RegNone, Valid: true},
				Result: 9,
			}

			value, src, err := hazardUnit.ResolveOperand(1, &exmem, &memwb, regFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(7)))
			Expect(src).To(Equal(pipeline.SrcEXMEM))
		})

		It("should skip a load at EX/MEM because it carries an address", func() {
			exmem = pipeline.StageLatch{
				Inst:   insts.Instruction{Op: insts.OpLoad, Rd: 1, Rs1: 0, Rs2: insts.RegNone, Valid: true},
				Result: 12, // effective address, not data
			}

			value, src, err := hazardUnit.ResolveOperand(1, &exmem, &memwb, regFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(100)))
			Expect(src).To(Equal(pipeline.SrcRegFile))
		})

		It("should forward the loaded value from MEM/WB", func() {
			memwb = pipeline.StageLatch{
				Inst:   insts.Instruction{Op: insts.OpLoad, Rd: 1, Rs1: 0, Rs2: insts.RegNone, Valid: true},
				Result: 55,
			}

			value, src, err := hazardUnit.ResolveOperand(1, &exmem, &memwb, regFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(55)))
			Expect(src).To(Equal(pipeline.SrcMEMWB))
		})

		It("should fall back to the register file", func() {
			value, src, err := hazardUnit.ResolveOperand(1, &exmem, &memwb, regFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(100)))
			Expect(src).To(Equal(pipeline.SrcRegFile))
		})

		It("should ignore boundary instructions writing other registers", func() {
			exmem = pipeline.StageLatch{
				Inst:   insts.Instruction{Op: insts.OpMov, Rd: 4, Rs1: insts.RegNone, Rs2: insts.RegNone, Valid: true},
				Result: 3,
			}

			_, src, err := hazardUnit.ResolveOperand(1, &exmem, &memwb, regFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(src).To(Equal(pipeline.SrcRegFile))
		})

		It("should resolve an unused operand slot to none", func() {
			value, src, err := hazardUnit.ResolveOperand(insts.RegNone, &exmem, &memwb, regFile)

			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(0)))
			Expect(src).To(Equal(pipeline.SrcNone))
		})
	})
})
