// Package analyzer implements static control flow analysis of CHIP-8 ROMs.
//
// The analyzer classifies ROM addresses as likely code by building a control
// flow graph from reachable instruction decodes, without executing the
// program. It is a may-analysis: every address reachable by a traced control
// path is marked Code, everything else stays Unknown. CHIP-8 ROMs commonly
// interleave sprite data directly after code with no delimiter, so absence
// of evidence is never reported as Data.
package analyzer

import (
	"fmt"
	"hash/crc32"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Result is the outcome of one analysis run. It is immutable once produced
// and independent of any execution engine state.
type Result struct {
	// EntryPoint is the address the traversal started from.
	EntryPoint uint16

	// Classification maps every ROM byte to a class, indexed by ROM offset.
	Classification []Class

	// Entries contains the basic block entry addresses: jump and call
	// targets and the fall-through successors of control transferring
	// instructions.
	Entries set.Set[uint16]

	// Instructions contains the decoded instruction at every address
	// classified as code.
	Instructions map[uint16]chip8.Instruction

	// UnresolvedBranches lists the addresses of indirect jumps whose
	// targets are data dependent and can not be resolved statically.
	UnresolvedBranches []uint16

	// Checksum is the IEEE CRC32 checksum of the ROM.
	Checksum uint32
}

// Class returns the classification of a memory address.
func (r *Result) Class(address uint16) Class {
	index := int(address) - chip8.ProgramStart
	if index < 0 || index >= len(r.Classification) {
		return Unknown
	}
	return r.Classification[index]
}

// Analyzer performs static control flow analysis over ROM byte buffers.
// It never constructs or mutates an execution engine and can be used
// concurrently as long as each call receives its own ROM buffer.
type Analyzer struct {
	logger *log.Logger
}

// New creates a new analyzer.
func New(logger *log.Logger) *Analyzer {
	return &Analyzer{
		logger: logger,
	}
}

// Analyze builds the classification map and basic block entry set for a ROM.
// The entry point is a memory address, conventionally chip8.ProgramStart.
// Unresolved indirect branches and unreachable code are recorded in the
// result, never raised as failures.
func (a *Analyzer) Analyze(rom []byte, entryPoint uint16) (*Result, error) {
	if len(rom) == 0 {
		return nil, fmt.Errorf("empty ROM")
	}
	if len(rom) > chip8.MaxRomSize {
		return nil, fmt.Errorf("%w: %d bytes, %d available",
			chip8.ErrRomTooLarge, len(rom), chip8.MaxRomSize)
	}

	run := &analysis{
		rom: rom,
		result: &Result{
			EntryPoint:     entryPoint,
			Classification: make([]Class, len(rom)),
			Entries:        set.New[uint16](),
			Instructions:   map[uint16]chip8.Instruction{},
			Checksum:       crc32.Checksum(rom, crc32.MakeTable(crc32.IEEE)),
		},
		addressesToParseAdded: set.New[uint16](),
	}

	run.addAddressToParse(entryPoint)
	run.markEntry(entryPoint)
	run.followControlFlow()

	a.logger.Debug("Analysis finished",
		log.Hex("entry", entryPoint),
		log.Int("instructions", len(run.result.Instructions)),
		log.Int("unresolved_branches", len(run.result.UnresolvedBranches)),
	)
	return run.result, nil
}

// analysis holds the state of one traversal run.
type analysis struct {
	rom    []byte
	result *Result

	addressesToParse      []uint16
	addressesToParseAdded set.Set[uint16]
}

// followControlFlow drains the worklist, decoding each pending address and
// pushing its successors. Every address is visited at most once, the
// already-classified guard terminates cycles and self loops.
func (a *analysis) followControlFlow() {
	for len(a.addressesToParse) > 0 {
		address := a.addressesToParse[0]
		a.addressesToParse = a.addressesToParse[1:]

		if a.classAt(address).IsType(Code) {
			continue
		}

		opcode, ok := a.readWord(address)
		if !ok {
			continue
		}

		ins, err := chip8.Decode(opcode)
		if err != nil {
			// an undecodable word terminates this path, the address
			// stays unclassified
			continue
		}

		a.markCode(address)
		a.result.Instructions[address] = ins
		a.addSuccessors(address, ins)
	}
}

// addSuccessors determines the successor addresses by instruction class and
// queues them for traversal.
func (a *analysis) addSuccessors(address uint16, ins chip8.Instruction) {
	fallThrough := address + 2

	switch {
	case ins.IsJump():
		a.addAddressToParse(ins.NNN)
		a.markEntry(ins.NNN)
		a.markTarget(ins.NNN, JumpTarget)

	case ins.IsCall():
		a.addAddressToParse(ins.NNN)
		a.markEntry(ins.NNN)
		a.markTarget(ins.NNN, CallTarget)
		// CHIP-8 offers no way to prove a callee always returns, the
		// fall-through is conservatively treated as reachable
		a.addAddressToParse(fallThrough)
		a.markEntry(fallThrough)

	case ins.IsSkip():
		// skips vary the program counter by 2 or 4 bytes
		a.addAddressToParse(fallThrough)
		a.addAddressToParse(fallThrough + 2)
		a.markEntry(fallThrough)
		a.markEntry(fallThrough + 2)

	case ins.IsIndirectJump():
		// target is data dependent, record the site and end the path
		a.result.UnresolvedBranches = append(a.result.UnresolvedBranches, address)

	case ins.IsReturn():
		// no successors, the path terminates

	default:
		a.addAddressToParse(fallThrough)
	}
}

// addAddressToParse queues an address for traversal if it lies inside the
// ROM and has not been queued before.
func (a *analysis) addAddressToParse(address uint16) {
	if !a.inROM(address) {
		return
	}
	if _, ok := a.addressesToParseAdded[address]; ok {
		return
	}
	a.addressesToParseAdded[address] = struct{}{}
	a.addressesToParse = append(a.addressesToParse, address)
}

// markEntry records a basic block entry address.
func (a *analysis) markEntry(address uint16) {
	if a.inROM(address) {
		a.result.Entries[address] = struct{}{}
	}
}

// markCode classifies the two instruction bytes at an address as code.
func (a *analysis) markCode(address uint16) {
	index := int(address) - chip8.ProgramStart
	a.result.Classification[index].setType(Code)
	if index+1 < len(a.result.Classification) {
		a.result.Classification[index+1].setType(Code)
	}
}

// markTarget records the branch type flag at a target address.
func (a *analysis) markTarget(address uint16, class Class) {
	if !a.inROM(address) {
		return
	}
	index := int(address) - chip8.ProgramStart
	a.result.Classification[index].setType(class)
}

// classAt returns the classification of a memory address.
func (a *analysis) classAt(address uint16) Class {
	return a.result.Class(address)
}

// inROM returns whether a memory address lies inside the ROM.
func (a *analysis) inROM(address uint16) bool {
	index := int(address) - chip8.ProgramStart
	return index >= 0 && index < len(a.rom)
}

// readWord reads the big-endian instruction word at a memory address.
// The second byte of an instruction starting on the last ROM byte reads
// as zero, matching the zero filled memory the engine would execute.
func (a *analysis) readWord(address uint16) (uint16, bool) {
	index := int(address) - chip8.ProgramStart
	if index < 0 || index >= len(a.rom) {
		return 0, false
	}
	word := uint16(a.rom[index]) << 8
	if index+1 < len(a.rom) {
		word |= uint16(a.rom[index+1])
	}
	return word, true
}
