package cpu

import (
	"fmt"
	"strings"

	"github.com/hexaflex/chip8/arch"
)

// Instruction defines decoded instruction data.
//
// All operand fields are filled for every word; which of them are
// meaningful depends on Opcode.
type Instruction struct {
	IP     int    // Instruction address.
	Word   uint16 // Raw instruction word.
	Opcode int    // Decoded opcode, one of the arch constants.
	X      int    // Register index from bits 8-11.
	Y      int    // Register index from bits 4-7.
	N      int    // 4-bit immediate from bits 0-3.
	NN     byte   // 8-bit immediate from bits 0-7.
	NNN    uint16 // 12-bit address from bits 0-11.
}

// Decode decodes the given instruction word.
// Returns false if the word is not a known instruction, in which case
// Opcode is arch.UNKNOWN.
func Decode(word uint16) (Instruction, bool) {
	var i Instruction
	i.decode(word)
	return i, i.Opcode != arch.UNKNOWN
}

// fetch reads and decodes the instruction word at the given address.
func (i *Instruction) fetch(m Memory, pc int) error {
	i.IP = pc
	if !m.InRange(pc, 2) {
		i.decode(0)
		return NewError(i, ErrOutOfRange)
	}

	i.decode(m.U16(pc))
	if i.Opcode == arch.UNKNOWN {
		return NewError(i, ErrUnknownOpcode)
	}
	return nil
}

func (i *Instruction) decode(w uint16) {
	i.Word = w
	i.X = int(w>>8) & 0xf
	i.Y = int(w>>4) & 0xf
	i.N = int(w) & 0xf
	i.NN = byte(w)
	i.NNN = w & 0xfff
	i.Opcode = arch.UNKNOWN

	switch w >> 12 {
	case 0x0:
		switch w {
		case 0x00e0:
			i.Opcode = arch.CLS
		case 0x00ee:
			i.Opcode = arch.RET
		}
	case 0x1:
		i.Opcode = arch.JP
	case 0x2:
		i.Opcode = arch.CALL
	case 0x3:
		i.Opcode = arch.SE
	case 0x4:
		i.Opcode = arch.SNE
	case 0x5:
		if i.N == 0 {
			i.Opcode = arch.SEV
		}
	case 0x6:
		i.Opcode = arch.LD
	case 0x7:
		i.Opcode = arch.ADD
	case 0x8:
		i.Opcode = aluOpcodes[i.N]
	case 0x9:
		if i.N == 0 {
			i.Opcode = arch.SNEV
		}
	case 0xa:
		i.Opcode = arch.LDI
	case 0xb:
		i.Opcode = arch.JPV0
	case 0xc:
		i.Opcode = arch.RND
	case 0xd:
		i.Opcode = arch.DRW
	case 0xe:
		switch i.NN {
		case 0x9e:
			i.Opcode = arch.SKP
		case 0xa1:
			i.Opcode = arch.SKNP
		}
	case 0xf:
		i.Opcode = miscOpcodes[i.NN]
	}
}

// aluOpcodes maps the low nibble of 8xyN words. Unlisted entries are arch.UNKNOWN.
var aluOpcodes = [16]int{
	0x0: arch.MOVV,
	0x1: arch.OR,
	0x2: arch.AND,
	0x3: arch.XOR,
	0x4: arch.ADDV,
	0x5: arch.SUB,
	0x6: arch.SHR,
	0x7: arch.SUBN,
	0xe: arch.SHL,
}

// miscOpcodes maps the low byte of FxNN words.
var miscOpcodes = map[byte]int{
	0x07: arch.LDDT,
	0x0a: arch.LDK,
	0x15: arch.SETDT,
	0x18: arch.SETST,
	0x1e: arch.ADDI,
	0x29: arch.LDF,
	0x33: arch.BCD,
	0x55: arch.STORE,
	0x65: arch.LOAD,
}

// String returns the instruction in assembler notation, e.g. "drw V1, V2, $5".
// Unknown words are rendered as a data directive.
func (i Instruction) String() string {
	name, ok := arch.Name(i.Opcode)
	if !ok {
		return fmt.Sprintf(".word $%04X", i.Word)
	}

	name = strings.ToLower(name)
	layout, _ := arch.OperandLayout(i.Opcode)
	vx := arch.RegisterName(i.X)
	vy := arch.RegisterName(i.Y)

	switch layout {
	case arch.LayoutAddr:
		return fmt.Sprintf("%s $%03X", name, i.NNN)
	case arch.LayoutRegByte:
		return fmt.Sprintf("%s %s, $%02X", name, vx, i.NN)
	case arch.LayoutRegReg:
		return fmt.Sprintf("%s %s, %s", name, vx, vy)
	case arch.LayoutReg:
		return fmt.Sprintf("%s %s", name, vx)
	case arch.LayoutIAddr:
		return fmt.Sprintf("%s I, $%03X", name, i.NNN)
	case arch.LayoutV0Addr:
		return fmt.Sprintf("%s V0, $%03X", name, i.NNN)
	case arch.LayoutDraw:
		return fmt.Sprintf("%s %s, %s, $%X", name, vx, vy, i.N)
	case arch.LayoutRegDT:
		return fmt.Sprintf("%s %s, DT", name, vx)
	case arch.LayoutRegK:
		return fmt.Sprintf("%s %s, K", name, vx)
	case arch.LayoutDTReg:
		return fmt.Sprintf("%s DT, %s", name, vx)
	case arch.LayoutSTReg:
		return fmt.Sprintf("%s ST, %s", name, vx)
	case arch.LayoutIReg:
		return fmt.Sprintf("%s I, %s", name, vx)
	case arch.LayoutFReg:
		return fmt.Sprintf("%s F, %s", name, vx)
	case arch.LayoutBReg:
		return fmt.Sprintf("%s B, %s", name, vx)
	case arch.LayoutMemReg:
		return fmt.Sprintf("%s [I], %s", name, vx)
	case arch.LayoutRegMem:
		return fmt.Sprintf("%s %s, [I]", name, vx)
	}
	return name
}
