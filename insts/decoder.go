package insts

import (
	"fmt"
	"strconv"
	"strings"
)

// Decoder translates assembly source lines into Instructions.
//
// One instruction per line, whitespace/comma delimited, case-insensitive
// mnemonics. Register operands are written R<index>; memory operands are
// written <signed-offset>(R<base>).
type Decoder struct{}

// NewDecoder creates a new decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses a single source line.
//
// The returned error carries the diagnostic reason for a malformed line;
// in that case the returned instruction is invalid and must not be placed
// into an instruction store.
func (d *Decoder) Decode(line string) (Instruction, error) {
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(tokens) == 0 {
		return Nop(), fmt.Errorf("missing opcode")
	}

	mnemonic := strings.ToLower(tokens[0])
	operands := tokens[1:]

	inst := Nop()
	inst.Text = strings.TrimSpace(line)

	switch mnemonic {
	case "mov":
		if len(operands) != 2 {
			return Nop(), fmt.Errorf("MOV expects 2 operands, got %d", len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return Nop(), fmt.Errorf("invalid destination register in MOV: %w", err)
		}
		imm, err := strconv.ParseInt(operands[1], 10, 64)
		if err != nil {
			return Nop(), fmt.Errorf("invalid immediate in MOV: %q", operands[1])
		}
		inst.Op = OpMov
		inst.Rd = rd
		inst.Imm = imm

	case "add", "sub", "mul":
		if len(operands) != 3 {
			return Nop(), fmt.Errorf("%s expects 3 operands, got %d",
				strings.ToUpper(mnemonic), len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return Nop(), fmt.Errorf("invalid destination register: %w", err)
		}
		rs1, err := parseReg(operands[1])
		if err != nil {
			return Nop(), fmt.Errorf("invalid source register 1: %w", err)
		}
		rs2, err := parseReg(operands[2])
		if err != nil {
			return Nop(), fmt.Errorf("invalid source register 2: %w", err)
		}
		switch mnemonic {
		case "add":
			inst.Op = OpAdd
		case "sub":
			inst.Op = OpSub
		case "mul":
			inst.Op = OpMul
		}
		inst.Rd = rd
		inst.Rs1 = rs1
		inst.Rs2 = rs2

	case "load":
		if len(operands) != 2 {
			return Nop(), fmt.Errorf("LOAD expects 2 operands, got %d", len(operands))
		}
		rd, err := parseReg(operands[0])
		if err != nil {
			return Nop(), fmt.Errorf("invalid destination register in LOAD: %w", err)
		}
		offset, base, err := parseMemOperand(operands[1])
		if err != nil {
			return Nop(), fmt.Errorf("invalid memory operand in LOAD: %w", err)
		}
		inst.Op = OpLoad
		inst.Rd = rd
		inst.Rs1 = base
		inst.Imm = offset

	case "store":
		if len(operands) != 2 {
			return Nop(), fmt.Errorf("STORE expects 2 operands, got %d", len(operands))
		}
		rsrc, err := parseReg(operands[0])
		if err != nil {
			return Nop(), fmt.Errorf("invalid source register in STORE: %w", err)
		}
		offset, base, err := parseMemOperand(operands[1])
		if err != nil {
			return Nop(), fmt.Errorf("invalid memory operand in STORE: %w", err)
		}
		inst.Op = OpStore
		inst.Rs1 = base
		inst.Rs2 = rsrc
		inst.Imm = offset

	default:
		return Nop(), fmt.Errorf("unknown opcode %q", tokens[0])
	}

	inst.Valid = true
	return inst, nil
}

// parseReg parses a register operand of the form R<index>.
func parseReg(tok string) (int, error) {
	if len(tok) < 2 || (tok[0] != 'R' && tok[0] != 'r') {
		return RegNone, fmt.Errorf("%q is not a register", tok)
	}
	idx, err := strconv.Atoi(tok[1:])
	if err != nil {
		return RegNone, fmt.Errorf("%q is not a register", tok)
	}
	if idx < 0 || idx >= NumRegs {
		return RegNone, fmt.Errorf("register R%d out of range [0, %d)", idx, NumRegs)
	}
	return idx, nil
}

// parseMemOperand parses a memory operand of the form <signed-offset>(R<base>).
func parseMemOperand(tok string) (offset int64, base int, err error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || !strings.HasSuffix(tok, ")") {
		return 0, RegNone, fmt.Errorf("%q is not of the form offset(Rbase)", tok)
	}

	offset, err = strconv.ParseInt(tok[:open], 10, 64)
	if err != nil {
		return 0, RegNone, fmt.Errorf("invalid offset in %q", tok)
	}

	base, err = parseReg(tok[open+1 : len(tok)-1])
	if err != nil {
		return 0, RegNone, err
	}

	return offset, base, nil
}
