// Package loader reads textual assembly programs into an instruction store.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hazardlab/pipesim/insts"
)

// Diagnostic records a source line that failed to parse. Malformed lines
// are discarded; they never enter the instruction store.
type Diagnostic struct {
	// Line is the 1-based source line number.
	Line int
	// Text is the offending source line.
	Text string
	// Err is the decoder's reason.
	Err error
}

// String formats the diagnostic for reporting.
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %v: %q", d.Line, d.Err, d.Text)
}

// Parse reads assembly source from r, one instruction per line. Blank lines
// and lines starting with '#' are skipped. Malformed lines are returned as
// diagnostics alongside the program built from the lines that parsed.
func Parse(r io.Reader) (*insts.Program, []Diagnostic, error) {
	decoder := insts.NewDecoder()

	var list []insts.Instruction
	var diags []Diagnostic

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		inst, err := decoder.Decode(line)
		if err != nil {
			diags = append(diags, Diagnostic{Line: lineNo, Text: line, Err: err})
			continue
		}
		list = append(list, inst)
	}
	if err := scanner.Err(); err != nil {
		return nil, diags, fmt.Errorf("reading program: %w", err)
	}

	program, err := insts.NewProgram(list)
	if err != nil {
		return nil, diags, err
	}
	return program, diags, nil
}

// Load reads an assembly program from the given file.
func Load(path string) (*insts.Program, []Diagnostic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening program: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
