package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Kind identifies one CHIP-8 opcode family. Every instruction the
// interpreter supports decodes to exactly one kind, carrying only the
// operand fields that family uses.
type Kind uint8

// Opcode families, one constant per instruction variant.
const (
	KindInvalid Kind = iota

	KindCls       // 00E0 - clear display
	KindRet       // 00EE - return from subroutine
	KindJp        // 1nnn - jump to address
	KindCall      // 2nnn - call subroutine
	KindSeByte    // 3xnn - skip if Vx == nn
	KindSneByte   // 4xnn - skip if Vx != nn
	KindSeReg     // 5xy0 - skip if Vx == Vy
	KindLdByte    // 6xnn - Vx = nn
	KindAddByte   // 7xnn - Vx += nn, no carry flag
	KindLdReg     // 8xy0 - Vx = Vy
	KindOr        // 8xy1 - Vx |= Vy
	KindAnd       // 8xy2 - Vx &= Vy
	KindXor       // 8xy3 - Vx ^= Vy
	KindAddReg    // 8xy4 - Vx += Vy, VF = carry
	KindSubReg    // 8xy5 - Vx -= Vy, VF = no borrow
	KindShr       // 8xy6 - shift right, VF = shifted out bit
	KindSubn      // 8xy7 - Vx = Vy - Vx, VF = no borrow
	KindShl       // 8xyE - shift left, VF = shifted out bit
	KindSneReg    // 9xy0 - skip if Vx != Vy
	KindLdIndex   // Annn - I = nnn
	KindJpOffset  // Bnnn - jump to nnn + V0
	KindRnd       // Cxnn - Vx = random & nn
	KindDrw       // Dxyn - draw n byte sprite at (Vx, Vy)
	KindSkp       // Ex9E - skip if key Vx pressed
	KindSknp      // ExA1 - skip if key Vx not pressed
	KindLdDelayVx // Fx07 - Vx = delay timer
	KindLdKey     // Fx0A - wait for key press, Vx = key
	KindLdVxDelay // Fx15 - delay timer = Vx
	KindLdVxSound // Fx18 - sound timer = Vx
	KindAddIndex  // Fx1E - I += Vx
	KindLdFont    // Fx29 - I = font sprite address of Vx
	KindBCD       // Fx33 - mem[I..I+2] = BCD of Vx
	KindStore     // Fx55 - mem[I..I+x] = V0..Vx
	KindLoad      // Fx65 - V0..Vx = mem[I..I+x]
)

// Instruction is one decoded CHIP-8 instruction with its operand fields.
// Only the fields the kind uses carry meaning.
type Instruction struct {
	Kind   Kind
	Opcode uint16 // raw 16 bit opcode value

	X   uint8  // first register nibble
	Y   uint8  // second register nibble
	N   uint8  // lowest nibble, sprite height for Drw
	NN  uint8  // lowest byte, immediate value
	NNN uint16 // lowest 12 bits, address
}

// Decode decodes a 16 bit opcode value into an instruction.
// Returns ErrInvalidOpcode if the bit pattern matches no known instruction.
// The 0nnn machine code call is not part of the baseline instruction set
// and decodes as invalid.
func Decode(opcode uint16) (Instruction, error) {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8(opcode >> 8 & 0x0F),
		Y:      uint8(opcode >> 4 & 0x0F),
		N:      uint8(opcode & 0x000F),
		NN:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}

	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			ins.Kind = KindCls
		case 0x00EE:
			ins.Kind = KindRet
		}
	case 0x1:
		ins.Kind = KindJp
	case 0x2:
		ins.Kind = KindCall
	case 0x3:
		ins.Kind = KindSeByte
	case 0x4:
		ins.Kind = KindSneByte
	case 0x5:
		if ins.N == 0 {
			ins.Kind = KindSeReg
		}
	case 0x6:
		ins.Kind = KindLdByte
	case 0x7:
		ins.Kind = KindAddByte
	case 0x8:
		ins.Kind = decodeArithmetic(ins.N)
	case 0x9:
		if ins.N == 0 {
			ins.Kind = KindSneReg
		}
	case 0xA:
		ins.Kind = KindLdIndex
	case 0xB:
		ins.Kind = KindJpOffset
	case 0xC:
		ins.Kind = KindRnd
	case 0xD:
		ins.Kind = KindDrw
	case 0xE:
		switch ins.NN {
		case 0x9E:
			ins.Kind = KindSkp
		case 0xA1:
			ins.Kind = KindSknp
		}
	case 0xF:
		ins.Kind = decodeMisc(ins.NN)
	}

	if ins.Kind == KindInvalid {
		return Instruction{}, fmt.Errorf("%w: $%04X", ErrInvalidOpcode, opcode)
	}
	return ins, nil
}

func decodeArithmetic(n uint8) Kind {
	switch n {
	case 0x0:
		return KindLdReg
	case 0x1:
		return KindOr
	case 0x2:
		return KindAnd
	case 0x3:
		return KindXor
	case 0x4:
		return KindAddReg
	case 0x5:
		return KindSubReg
	case 0x6:
		return KindShr
	case 0x7:
		return KindSubn
	case 0xE:
		return KindShl
	}
	return KindInvalid
}

func decodeMisc(nn uint8) Kind {
	switch nn {
	case 0x07:
		return KindLdDelayVx
	case 0x0A:
		return KindLdKey
	case 0x15:
		return KindLdVxDelay
	case 0x18:
		return KindLdVxSound
	case 0x1E:
		return KindAddIndex
	case 0x29:
		return KindLdFont
	case 0x33:
		return KindBCD
	case 0x55:
		return KindStore
	case 0x65:
		return KindLoad
	}
	return KindInvalid
}

// IsJump returns true for the unconditional jump with a literal target.
func (ins Instruction) IsJump() bool {
	return ins.Kind == KindJp
}

// IsCall returns true for the subroutine call instruction.
func (ins Instruction) IsCall() bool {
	return ins.Kind == KindCall
}

// IsReturn returns true for the subroutine return instruction.
func (ins Instruction) IsReturn() bool {
	return ins.Kind == KindRet
}

// IsSkip returns true for all conditional skip instructions.
func (ins Instruction) IsSkip() bool {
	switch ins.Kind {
	case KindSeByte, KindSneByte, KindSeReg, KindSneReg, KindSkp, KindSknp:
		return true
	}
	return false
}

// IsIndirectJump returns true for the jump with register offset whose
// target can not be resolved without executing the program.
func (ins Instruction) IsIndirectJump() bool {
	return ins.Kind == KindJpOffset
}

// Name returns the instruction mnemonic. The mnemonic is resolved from the
// canonical instruction table by matching the opcode bit pattern.
func (ins Instruction) Name() string {
	firstNibble := ins.Opcode >> 12
	for _, op := range chip8cpu.Opcodes[int(firstNibble)] {
		if op.Info.Mask&ins.Opcode == op.Info.Value {
			if op.Instruction == nil {
				break
			}
			return op.Instruction.Name
		}
	}
	return ""
}

// String returns the instruction in assembly notation.
func (ins Instruction) String() string {
	name := ins.Name()
	if name == "" {
		return fmt.Sprintf(".word $%04X", ins.Opcode)
	}
	if params := ins.params(); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// params formats the instruction parameters in assembly notation.
func (ins Instruction) params() string {
	switch ins.Kind {
	case KindCls, KindRet:
		return ""
	case KindJp, KindCall:
		return fmt.Sprintf("$%03X", ins.NNN)
	case KindSeByte, KindSneByte, KindLdByte, KindAddByte:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case KindSeReg, KindSneReg, KindLdReg, KindOr, KindAnd, KindXor,
		KindAddReg, KindSubReg, KindSubn:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case KindShr, KindShl:
		return fmt.Sprintf("V%X", ins.X)
	case KindLdIndex:
		return fmt.Sprintf("I, $%03X", ins.NNN)
	case KindJpOffset:
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	case KindRnd:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)
	case KindDrw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)
	case KindSkp, KindSknp:
		return fmt.Sprintf("V%X", ins.X)
	case KindLdDelayVx:
		return fmt.Sprintf("V%X, DT", ins.X)
	case KindLdKey:
		return fmt.Sprintf("V%X, K", ins.X)
	case KindLdVxDelay:
		return fmt.Sprintf("DT, V%X", ins.X)
	case KindLdVxSound:
		return fmt.Sprintf("ST, V%X", ins.X)
	case KindAddIndex:
		return fmt.Sprintf("I, V%X", ins.X)
	case KindLdFont:
		return fmt.Sprintf("F, V%X", ins.X)
	case KindBCD:
		return fmt.Sprintf("B, V%X", ins.X)
	case KindStore:
		return fmt.Sprintf("[I], V%X", ins.X)
	case KindLoad:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}
