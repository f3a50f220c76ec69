// Package chip8 implements the CHIP-8 virtual machine core.
//
// The System type owns all interpreter state: memory, registers, timers,
// the framebuffer and the keypad latch. Execution is driven by the host
// through two decoupled clocks: Tick executes exactly one instruction and
// TickTimers decrements the delay and sound timers, conventionally called
// at 60 Hz independent of the instruction rate.
package chip8

import (
	"fmt"
	"math/rand"
	"strings"
)

// StackDepth is the maximum call stack depth.
const StackDepth = 16

// defaultRandSeed seeds the pseudo-random source of a new system.
// A fixed seed keeps runs deterministic by default.
const defaultRandSeed = 0x2A

// Quirks selects the behavior for opcode variants that diverge between
// historic CHIP-8 interpreter implementations. No authoritative single
// behavior exists across the ROM corpus, so the host chooses per ROM.
type Quirks struct {
	// ShiftSourceY shifts the value of Vy into Vx (original COSMAC VIP
	// behavior) instead of shifting Vx in place.
	ShiftSourceY bool

	// IncrementIndex advances the index register past the copied range
	// after the register store/load instructions (original COSMAC VIP
	// behavior) instead of leaving it unchanged.
	IncrementIndex bool
}

// Option configures a System.
type Option func(*System)

// WithQuirks sets the opcode variant behavior.
func WithQuirks(quirks Quirks) Option {
	return func(s *System) {
		s.quirks = quirks
	}
}

// WithRandSeed seeds the pseudo-random source.
func WithRandSeed(seed int64) Option {
	return func(s *System) {
		s.rand = rand.New(rand.NewSource(seed)).Uint32
	}
}

// WithRandFunc replaces the pseudo-random source, used by tests to
// substitute a fixed sequence.
func WithRandFunc(f func() uint32) Option {
	return func(s *System) {
		s.rand = f
	}
}

// Registers is a snapshot of the register file for the host debug layer.
type Registers struct {
	V     [16]uint8
	I     uint16
	PC    uint16
	SP    uint8
	Stack [StackDepth]uint16
	Delay uint8
	Sound uint8
}

// System is one CHIP-8 virtual machine instance. All state is exclusively
// owned by the instance, multiple independent systems never interfere.
type System struct {
	mem     Memory
	display Display

	v     [16]uint8
	i     uint16
	pc    uint16
	stack [StackDepth]uint16
	sp    uint8

	delay uint8
	sound uint8

	keys [16]bool

	quirks Quirks
	rand   func() uint32
}

// New creates a new system. The ROM is loaded separately with Reset.
func New(options ...Option) *System {
	s := &System{
		rand: rand.New(rand.NewSource(defaultRandSeed)).Uint32,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Reset clears all interpreter state, installs the font sprites, copies the
// ROM into memory at ProgramStart and sets the program counter to it.
// Returns ErrRomTooLarge if the ROM does not fit into the program space.
func (s *System) Reset(rom []byte) error {
	if err := s.mem.reset(rom); err != nil {
		return err
	}

	s.v = [16]uint8{}
	s.i = 0
	s.pc = ProgramStart
	s.stack = [StackDepth]uint16{}
	s.sp = 0
	s.delay = 0
	s.sound = 0
	s.keys = [16]bool{}
	s.display.Clear()
	s.display.TakeDirty()
	return nil
}

// Tick executes exactly one instruction: it fetches the two bytes at the
// program counter, decodes them and performs the instruction effect. The
// program counter is advanced before the instruction body executes, jumps
// and calls that set it explicitly are not double-advanced.
func (s *System) Tick() error {
	opcode, err := s.mem.ReadWord(s.pc)
	if err != nil {
		return err
	}

	ins, err := Decode(opcode)
	if err != nil {
		return fmt.Errorf("at $%04X: %w", s.pc, err)
	}

	s.pc += opcodeSize
	if err := s.execute(ins); err != nil {
		return fmt.Errorf("at $%04X: %s: %w", s.pc-opcodeSize, ins, err)
	}
	return nil
}

// TickTimers decrements the delay and sound timers if nonzero. The host
// calls it at a fixed cadence, conventionally 60 Hz, independent of the
// instruction execution rate.
func (s *System) TickTimers() {
	if s.delay > 0 {
		s.delay--
	}
	if s.sound > 0 {
		s.sound--
	}
}

// SetKey updates the pressed state of one keypad key. Key indexes outside
// the 16 key range are ignored.
func (s *System) SetKey(key uint8, pressed bool) {
	if int(key) < len(s.keys) {
		s.keys[key] = pressed
	}
}

// Display returns the framebuffer for the host rendering layer.
func (s *System) Display() *Display {
	return &s.display
}

// Registers returns a snapshot of the register file.
func (s *System) Registers() Registers {
	return Registers{
		V:     s.v,
		I:     s.i,
		PC:    s.pc,
		SP:    s.sp,
		Stack: s.stack,
		Delay: s.delay,
		Sound: s.sound,
	}
}

// SoundActive returns whether the sound timer is running, the host audio
// layer plays a tone while it is.
func (s *System) SoundActive() bool {
	return s.sound > 0
}

// execute performs the effect of one decoded instruction. The program
// counter already points at the following instruction.
func (s *System) execute(ins Instruction) error {
	switch ins.Kind {
	case KindCls:
		s.display.Clear()

	case KindRet:
		if s.sp == 0 {
			return ErrStackUnderflow
		}
		s.sp--
		s.pc = s.stack[s.sp]

	case KindJp:
		s.pc = ins.NNN

	case KindCall:
		if int(s.sp) == len(s.stack) {
			return ErrStackOverflow
		}
		s.stack[s.sp] = s.pc
		s.sp++
		s.pc = ins.NNN

	case KindSeByte:
		if s.v[ins.X] == ins.NN {
			s.pc += opcodeSize
		}

	case KindSneByte:
		if s.v[ins.X] != ins.NN {
			s.pc += opcodeSize
		}

	case KindSeReg:
		if s.v[ins.X] == s.v[ins.Y] {
			s.pc += opcodeSize
		}

	case KindSneReg:
		if s.v[ins.X] != s.v[ins.Y] {
			s.pc += opcodeSize
		}

	case KindLdByte:
		s.v[ins.X] = ins.NN

	case KindAddByte:
		s.v[ins.X] += ins.NN

	case KindLdReg:
		s.v[ins.X] = s.v[ins.Y]

	case KindOr:
		s.v[ins.X] |= s.v[ins.Y]

	case KindAnd:
		s.v[ins.X] &= s.v[ins.Y]

	case KindXor:
		s.v[ins.X] ^= s.v[ins.Y]

	case KindAddReg, KindSubReg, KindSubn, KindShr, KindShl:
		s.executeArithmetic(ins)

	case KindLdIndex:
		s.i = ins.NNN

	case KindJpOffset:
		target := ins.NNN + uint16(s.v[0])
		if target > MaxAddress {
			return fmt.Errorf("%w: jump target $%04X", ErrMemoryOutOfBounds, target)
		}
		s.pc = target

	case KindRnd:
		s.v[ins.X] = uint8(s.rand()) & ins.NN

	case KindDrw:
		return s.executeDraw(ins)

	case KindSkp:
		if s.keyPressed(s.v[ins.X]) {
			s.pc += opcodeSize
		}

	case KindSknp:
		if !s.keyPressed(s.v[ins.X]) {
			s.pc += opcodeSize
		}

	case KindLdDelayVx:
		s.v[ins.X] = s.delay

	case KindLdKey:
		s.executeWaitKey(ins)

	case KindLdVxDelay:
		s.delay = s.v[ins.X]

	case KindLdVxSound:
		s.sound = s.v[ins.X]

	case KindAddIndex:
		s.i += uint16(s.v[ins.X])

	case KindLdFont:
		// only the low nibble selects a font sprite
		s.i = uint16(s.v[ins.X]&0x0F) * fontSpriteSize

	case KindBCD:
		return s.executeBCD(ins)

	case KindStore, KindLoad:
		return s.executeRegisterRange(ins)
	}
	return nil
}

// executeArithmetic handles the arithmetic instructions that write a status
// bit into VF. The primary result is written before the flag so that
// instructions using VF as destination produce the flag value, not a
// corrupted intermediate.
func (s *System) executeArithmetic(ins Instruction) {
	vx, vy := s.v[ins.X], s.v[ins.Y]

	switch ins.Kind {
	case KindAddReg:
		sum := uint16(vx) + uint16(vy)
		s.v[ins.X] = uint8(sum)
		s.v[0xF] = uint8(sum >> 8)

	case KindSubReg:
		s.v[ins.X] = vx - vy
		s.v[0xF] = flag(vx >= vy)

	case KindSubn:
		s.v[ins.X] = vy - vx
		s.v[0xF] = flag(vy >= vx)

	case KindShr:
		src := vx
		if s.quirks.ShiftSourceY {
			src = vy
		}
		s.v[ins.X] = src >> 1
		s.v[0xF] = src & 1

	case KindShl:
		src := vx
		if s.quirks.ShiftSourceY {
			src = vy
		}
		s.v[ins.X] = src << 1
		s.v[0xF] = src >> 7
	}
}

// executeDraw XORs an n byte sprite read from the index register onto the
// framebuffer at the coordinates taken from Vx and Vy. Coordinates wrap
// modulo the display dimensions. VF reports whether any set pixel was
// cleared by the draw.
func (s *System) executeDraw(ins Instruction) error {
	x := int(s.v[ins.X]) % DisplayWidth
	y := int(s.v[ins.Y]) % DisplayHeight

	collision := false
	for row := range int(ins.N) {
		sprite, err := s.mem.Read(s.i + uint16(row))
		if err != nil {
			return err
		}
		for bit := range 8 {
			set := sprite&(0x80>>bit) != 0
			if s.display.xorPixel(x+bit, y+row, set) {
				collision = true
			}
		}
	}

	s.v[0xF] = flag(collision)
	return nil
}

// executeWaitKey implements the wait-for-key instruction without blocking:
// if no key is pressed the program counter rewinds so the instruction
// executes again on the next tick, keeping the work per tick bounded.
func (s *System) executeWaitKey(ins Instruction) {
	for key, pressed := range s.keys {
		if pressed {
			s.v[ins.X] = uint8(key)
			return
		}
	}
	s.pc -= opcodeSize
}

// executeBCD writes the decimal digits of Vx to memory at the index register.
func (s *System) executeBCD(ins Instruction) error {
	value := s.v[ins.X]
	digits := [3]byte{value / 100, value % 100 / 10, value % 10}
	for offset, digit := range digits {
		if err := s.mem.Write(s.i+uint16(offset), digit); err != nil {
			return err
		}
	}
	return nil
}

// executeRegisterRange copies V0..Vx to or from memory at the index
// register. With the IncrementIndex quirk the index register is advanced
// past the copied range.
func (s *System) executeRegisterRange(ins Instruction) error {
	for r := uint16(0); r <= uint16(ins.X); r++ {
		address := s.i + r
		if ins.Kind == KindStore {
			if err := s.mem.Write(address, s.v[r]); err != nil {
				return err
			}
			continue
		}
		value, err := s.mem.Read(address)
		if err != nil {
			return err
		}
		s.v[r] = value
	}

	if s.quirks.IncrementIndex {
		s.i += uint16(ins.X) + 1
	}
	return nil
}

// keyPressed reports the latch state for the key selected by a register
// value. Values outside the 16 key range count as not pressed.
func (s *System) keyPressed(value uint8) bool {
	return int(value) < len(s.keys) && s.keys[value]
}

func flag(condition bool) uint8 {
	if condition {
		return 1
	}
	return 0
}

// String returns a debug dump of the system state: one status line and an
// ASCII rendering of the framebuffer.
func (s *System) String() string {
	var sb strings.Builder

	instruction := "???"
	if opcode, err := s.mem.ReadWord(s.pc); err == nil {
		if ins, err := Decode(opcode); err == nil {
			instruction = ins.String()
		}
	}
	fmt.Fprintf(&sb, "CHIP8 | pc: $%04X | %-16s | i: $%03X | sp: %d | dt: %d st: %d\n",
		s.pc, instruction, s.i, s.sp, s.delay, s.sound)

	for y := range DisplayHeight {
		for x := range DisplayWidth {
			if s.display.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
