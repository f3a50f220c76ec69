package chip8

import "errors"

// Errors returned by the interpreter. Every execution error reflects a ROM
// correctness problem, not a transient condition; the host decides whether
// to halt or to skip the failing instruction.
var (
	// ErrRomTooLarge is returned when a ROM exceeds the available program space.
	ErrRomTooLarge = errors.New("ROM size exceeds available memory")

	// ErrInvalidOpcode is returned when a bit pattern matches no known instruction.
	ErrInvalidOpcode = errors.New("invalid opcode")

	// ErrStackOverflow is returned when a call exceeds the call stack depth.
	ErrStackOverflow = errors.New("call stack overflow")

	// ErrStackUnderflow is returned when returning with an empty call stack.
	ErrStackUnderflow = errors.New("return with empty call stack")

	// ErrMemoryOutOfBounds is returned when a computed address falls outside
	// the valid memory range or inside the reserved interpreter region.
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)
