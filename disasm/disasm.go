// Package disasm produces static listings of CHIP-8 programs.
package disasm

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"

	"github.com/hexaflex/chip8/devices/fffe/cpu"
)

// Lookup identifies the instruction word using the CHIP-8 opcode table.
// Returns false if no table entry matches.
func Lookup(w uint16) (chip8.Opcode, bool) {
	for _, op := range chip8.Opcodes[int(w>>12)] {
		if op.Info.Mask&w == op.Info.Value && op.Instruction != nil {
			return op, true
		}
	}
	return chip8.Opcode{}, false
}

// Line is a single listing entry.
type Line struct {
	Address uint16 // Address of the first byte.
	Data    []byte // One or two bytes of program data.
	Text    string // Assembler text.
	Label   bool   // Address is a jump or call target.
}

// Decode splits the program into listing lines, assuming it is loaded at base.
// Every aligned word is decoded; there is no control flow analysis.
func Decode(program []byte, base uint16) []Line {
	lines := make([]Line, 0, (len(program)+1)/2)
	targets := make(map[uint16]bool)

	for i := 0; i < len(program); i += 2 {
		addr := base + uint16(i)

		if i+1 >= len(program) {
			lines = append(lines, Line{
				Address: addr,
				Data:    program[i : i+1],
				Text:    fmt.Sprintf(".byte $%02X", program[i]),
			})
			break
		}

		w := uint16(program[i])<<8 | uint16(program[i+1])
		lines = append(lines, Line{
			Address: addr,
			Data:    program[i : i+2],
			Text:    text(w),
		})

		// jp V0, nnn has no static target.
		if op, ok := Lookup(w); ok && (op.Info == chip8.Opcode1000 || op.Info == chip8.Opcode2000) {
			targets[w&0xfff] = true
		}
	}

	for i := range lines {
		lines[i].Label = targets[lines[i].Address]
	}
	return lines
}

// Listing writes a listing of the program, assuming it is loaded at base.
// Each word is written as "AAAA  HHLL  text". Jump and call targets inside
// the program are preceded by a label line.
func Listing(w io.Writer, program []byte, base uint16) error {
	bw := bufio.NewWriter(w)

	for _, ln := range Decode(program, base) {
		if ln.Label {
			fmt.Fprintf(bw, "%s:\n", Label(ln.Address))
		}

		fmt.Fprintf(bw, "%04X  %-4X  %s\n", ln.Address, ln.Data, ln.Text)
	}

	return bw.Flush()
}

// Label returns the label name for the given address.
func Label(addr uint16) string {
	return fmt.Sprintf("L%03X", addr)
}

// Targets returns the sorted jump and call targets found in the program.
func Targets(program []byte, base uint16) []uint16 {
	var out []uint16
	for _, ln := range Decode(program, base) {
		if ln.Label {
			out = append(out, ln.Address)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// text renders a word in the interpreter's notation. Words missing from the
// opcode table are rendered as data.
func text(w uint16) string {
	if _, ok := Lookup(w); !ok {
		return fmt.Sprintf(".word $%04X", w)
	}

	instr, _ := cpu.Decode(w)
	return instr.String()
}
