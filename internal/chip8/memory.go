package chip8

import "fmt"

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// MemorySize is the total size of the CHIP-8 memory space.
	MemorySize = 4096

	// ProgramStart is the memory address where CHIP-8 programs begin execution.
	ProgramStart = 0x200

	// MaxAddress is the highest valid address in CHIP-8 memory space.
	MaxAddress = 0xFFF

	// MaxRomSize is the largest ROM that fits into the program space.
	MaxRomSize = MemorySize - ProgramStart

	// fontSpriteSize is the size of one hexadecimal font sprite in bytes.
	fontSpriteSize = 5
)

// fontData contains the sprites for the hexadecimal digits 0-F.
// It is copied into the reserved interpreter region on reset.
var fontData = [...]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the flat 4KB byte store of the interpreter. Addresses below
// ProgramStart hold interpreter font data and are readable but not writable
// by program execution, only by reset.
type Memory struct {
	data [MemorySize]byte
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if address > MaxAddress {
		return 0, fmt.Errorf("%w: read at $%04X", ErrMemoryOutOfBounds, address)
	}
	return m.data[address], nil
}

// ReadWord returns the big-endian 16 bit word at the given address.
func (m *Memory) ReadWord(address uint16) (uint16, error) {
	if address >= MaxAddress {
		return 0, fmt.Errorf("%w: word read at $%04X", ErrMemoryOutOfBounds, address)
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// Write stores a byte at the given address. Writes into the reserved
// interpreter region below ProgramStart are rejected.
func (m *Memory) Write(address uint16, value byte) error {
	if address < ProgramStart || address > MaxAddress {
		return fmt.Errorf("%w: write at $%04X", ErrMemoryOutOfBounds, address)
	}
	m.data[address] = value
	return nil
}

// reset clears the memory, installs the font sprites into the reserved
// region and copies the ROM into the program space.
func (m *Memory) reset(rom []byte) error {
	if len(rom) > MaxRomSize {
		return fmt.Errorf("%w: %d bytes, %d available", ErrRomTooLarge, len(rom), MaxRomSize)
	}
	m.data = [MemorySize]byte{}
	copy(m.data[:], fontData[:])
	copy(m.data[ProgramStart:], rom)
	return nil
}
