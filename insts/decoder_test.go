package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hazardlab/pipesim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	It("should decode MOV", func() {
		inst, err := decoder.Decode("mov R1, 5")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpMov))
		Expect(inst.Rd).To(Equal(1))
		Expect(inst.Rs1).To(Equal(insts.RegNone))
		Expect(inst.Rs2).To(Equal(insts.RegNone))
		Expect(inst.Imm).To(Equal(int64(5)))
		Expect(inst.Valid).To(BeTrue())
	})

	It("should decode negative immediates", func() {
		inst, err := decoder.Decode("mov R7, -42")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Imm).To(Equal(int64(-42)))
	})

	It("should decode three-operand arithmetic", func() {
		add, err := decoder.Decode("add R3, R1, R2")
		Expect(err).NotTo(HaveOccurred())
		Expect(add.Op).To(Equal(insts.OpAdd))
		Expect(add.Rd).To(Equal(3))
		Expect(add.Rs1).To(Equal(1))
		Expect(add.Rs2).To(Equal(2))

		sub, err := decoder.Decode("sub R4, R1, R2")
		Expect(err).NotTo(HaveOccurred())
		Expect(sub.Op).To(Equal(insts.OpSub))

		mul, err := decoder.Decode("mul R4, R3, R2")
		Expect(err).NotTo(HaveOccurred())
		Expect(mul.Op).To(Equal(insts.OpMul))
	})

	It("should decode LOAD with a memory operand", func() {
		inst, err := decoder.Decode("load R2, 0(R0)")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpLoad))
		Expect(inst.Rd).To(Equal(2))
		Expect(inst.Rs1).To(Equal(0))
		Expect(inst.Imm).To(Equal(int64(0)))
	})

	It("should decode STORE with the data register in Rs2", func() {
		inst, err := decoder.Decode("store R1, 3(R5)")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpStore))
		Expect(inst.Rd).To(Equal(insts.RegNone))
		Expect(inst.Rs1).To(Equal(5))
		Expect(inst.Rs2).To(Equal(1))
		Expect(inst.Imm).To(Equal(int64(3)))
	})

	It("should decode negative memory offsets", func() {
		inst, err := decoder.Decode("load R1, -2(R3)")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Imm).To(Equal(int64(-2)))
		Expect(inst.Rs1).To(Equal(3))
	})

	It("should be case-insensitive", func() {
		inst, err := decoder.Decode("ADD r1, R2, r3")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Op).To(Equal(insts.OpAdd))
		Expect(inst.Rd).To(Equal(1))
	})

	It("should preserve the source text", func() {
		inst, err := decoder.Decode("  mov R1, 5  ")

		Expect(err).NotTo(HaveOccurred())
		Expect(inst.Text).To(Equal("mov R1, 5"))
	})

	It("should reject unknown opcodes", func() {
		_, err := decoder.Decode("jmp R1")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown opcode"))
	})

	It("should reject wrong operand counts", func() {
		_, err := decoder.Decode("mov R1")
		Expect(err).To(MatchError(ContainSubstring("MOV expects 2 operands")))

		_, err = decoder.Decode("add R1, R2")
		Expect(err).To(MatchError(ContainSubstring("ADD expects 3 operands")))
	})

	It("should reject out-of-range registers", func() {
		_, err := decoder.Decode("mov R99, 1")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("out of range"))
	})

	It("should reject non-register operands", func() {
		_, err := decoder.Decode("add R1, 5, R2")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("is not a register"))
	})

	It("should reject malformed immediates", func() {
		_, err := decoder.Decode("mov R1, five")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid immediate"))
	})

	It("should reject malformed memory operands", func() {
		_, err := decoder.Decode("load R1, R0")
		Expect(err).To(MatchError(ContainSubstring("offset(Rbase)")))

		_, err = decoder.Decode("store R1, x(R0)")
		Expect(err).To(MatchError(ContainSubstring("invalid offset")))
	})

	It("should reject empty lines", func() {
		_, err := decoder.Decode("   ")

		Expect(err).To(HaveOccurred())
	})
})
