// Package arch defines the CHIP-8 instruction set along with
// some related helper functions and machine constants.
package arch

// Known opcodes. These identify decoded instructions; they are not
// the raw 16-bit words found in program memory.
const (
	UNKNOWN = iota
	CLS         // 00E0
	RET         // 00EE
	JP          // 1nnn
	CALL        // 2nnn
	SE          // 3xnn
	SNE         // 4xnn
	SEV         // 5xy0
	LD          // 6xnn
	ADD         // 7xnn
	MOVV        // 8xy0
	OR          // 8xy1
	AND         // 8xy2
	XOR         // 8xy3
	ADDV        // 8xy4
	SUB         // 8xy5
	SHR         // 8xy6
	SUBN        // 8xy7
	SHL         // 8xyE
	SNEV        // 9xy0
	LDI         // Annn
	JPV0        // Bnnn
	RND         // Cxnn
	DRW         // Dxyn
	SKP         // Ex9E
	SKNP        // ExA1
	LDDT        // Fx07
	LDK         // Fx0A
	SETDT       // Fx15
	SETST       // Fx18
	ADDI        // Fx1E
	LDF         // Fx29
	BCD         // Fx33
	STORE       // Fx55
	LOAD        // Fx65

	opcodeCount
)

// Layout describes how an instruction's operands are rendered.
type Layout int

// Known operand layouts.
const (
	LayoutNone    Layout = iota // cls
	LayoutAddr                  // jp $nnn
	LayoutRegByte               // se Vx, $nn
	LayoutRegReg                // or Vx, Vy
	LayoutReg                   // skp Vx
	LayoutIAddr                 // ld I, $nnn
	LayoutV0Addr                // jp V0, $nnn
	LayoutDraw                  // drw Vx, Vy, $n
	LayoutRegDT                 // ld Vx, DT
	LayoutRegK                  // ld Vx, K
	LayoutDTReg                 // ld DT, Vx
	LayoutSTReg                 // ld ST, Vx
	LayoutIReg                  // add I, Vx
	LayoutFReg                  // ld F, Vx
	LayoutBReg                  // ld B, Vx
	LayoutMemReg                // ld [I], Vx
	LayoutRegMem                // ld Vx, [I]
)

var names = [opcodeCount]string{
	CLS:   "CLS",
	RET:   "RET",
	JP:    "JP",
	CALL:  "CALL",
	SE:    "SE",
	SNE:   "SNE",
	SEV:   "SE",
	LD:    "LD",
	ADD:   "ADD",
	MOVV:  "LD",
	OR:    "OR",
	AND:   "AND",
	XOR:   "XOR",
	ADDV:  "ADD",
	SUB:   "SUB",
	SHR:   "SHR",
	SUBN:  "SUBN",
	SHL:   "SHL",
	SNEV:  "SNE",
	LDI:   "LD",
	JPV0:  "JP",
	RND:   "RND",
	DRW:   "DRW",
	SKP:   "SKP",
	SKNP:  "SKNP",
	LDDT:  "LD",
	LDK:   "LD",
	SETDT: "LD",
	SETST: "LD",
	ADDI:  "ADD",
	LDF:   "LD",
	BCD:   "LD",
	STORE: "LD",
	LOAD:  "LD",
}

var layouts = [opcodeCount]Layout{
	CLS:   LayoutNone,
	RET:   LayoutNone,
	JP:    LayoutAddr,
	CALL:  LayoutAddr,
	SE:    LayoutRegByte,
	SNE:   LayoutRegByte,
	SEV:   LayoutRegReg,
	LD:    LayoutRegByte,
	ADD:   LayoutRegByte,
	MOVV:  LayoutRegReg,
	OR:    LayoutRegReg,
	AND:   LayoutRegReg,
	XOR:   LayoutRegReg,
	ADDV:  LayoutRegReg,
	SUB:   LayoutRegReg,
	SHR:   LayoutRegReg,
	SUBN:  LayoutRegReg,
	SHL:   LayoutRegReg,
	SNEV:  LayoutRegReg,
	LDI:   LayoutIAddr,
	JPV0:  LayoutV0Addr,
	RND:   LayoutRegByte,
	DRW:   LayoutDraw,
	SKP:   LayoutReg,
	SKNP:  LayoutReg,
	LDDT:  LayoutRegDT,
	LDK:   LayoutRegK,
	SETDT: LayoutDTReg,
	SETST: LayoutSTReg,
	ADDI:  LayoutIReg,
	LDF:   LayoutFReg,
	BCD:   LayoutBReg,
	STORE: LayoutMemReg,
	LOAD:  LayoutRegMem,
}

// Name returns the assembler mnemonic for the given opcode.
// Returns false if the opcode is not recognized.
func Name(opcode int) (string, bool) {
	if opcode <= UNKNOWN || opcode >= opcodeCount {
		return "", false
	}
	return names[opcode], true
}

// OperandLayout returns the operand layout for the given opcode.
// Returns false if the opcode is not recognized.
func OperandLayout(opcode int) (Layout, bool) {
	if opcode <= UNKNOWN || opcode >= opcodeCount {
		return LayoutNone, false
	}
	return layouts[opcode], true
}
