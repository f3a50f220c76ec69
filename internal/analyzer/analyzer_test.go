package analyzer

import (
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func rom(words ...uint16) []byte {
	data := make([]byte, 0, len(words)*2)
	for _, word := range words {
		data = append(data, byte(word>>8), byte(word))
	}
	return data
}

func TestAnalyzeSelfJump(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// 1200: jump to self, followed by two unreached data bytes
	result, err := analyzer.Analyze(rom(0x1200, 0xFFFF), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x200).IsType(Code))
	assert.True(t, result.Class(0x201).IsType(Code))
	assert.Equal(t, Unknown, result.Class(0x202))
	assert.Equal(t, Unknown, result.Class(0x203))

	assert.Len(t, result.Entries, 1)
	_, ok := result.Entries[chip8.ProgramStart]
	assert.True(t, ok)

	assert.Len(t, result.Instructions, 1)
}

func TestAnalyzeSkipHasTwoSuccessors(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// 3001: skip, 1202: jump to self, 1204: jump to self
	result, err := analyzer.Analyze(rom(0x3001, 0x1202, 0x1204), chip8.ProgramStart)
	assert.NoError(t, err)

	// both successors of the conditional skip are classified as code
	assert.True(t, result.Class(0x202).IsType(Code))
	assert.True(t, result.Class(0x204).IsType(Code))

	_, ok := result.Entries[0x202]
	assert.True(t, ok)
	_, ok = result.Entries[0x204]
	assert.True(t, ok)
}

func TestAnalyzeCallMarksTargetAndFallThrough(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// 2206: call subroutine, 1202: jump to self, 0000 data, 00EE: return
	result, err := analyzer.Analyze(rom(0x2206, 0x1202, 0x0000, 0x00EE), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x206).IsType(Code))
	assert.True(t, result.Class(0x206).IsType(CallTarget))
	// fall-through of the call is conservatively reachable
	assert.True(t, result.Class(0x202).IsType(Code))
	// the word between is never reached and stays unknown
	assert.Equal(t, Unknown, result.Class(0x204))

	_, ok := result.Entries[0x206]
	assert.True(t, ok)
	_, ok = result.Entries[0x202]
	assert.True(t, ok)
}

func TestAnalyzeIndirectJumpUnresolved(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// B300: jump to 0x300 + V0, target unresolvable without execution
	result, err := analyzer.Analyze(rom(0xB300, 0x1202), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x200).IsType(Code))
	// no successor is traced past the indirect jump
	assert.Equal(t, Unknown, result.Class(0x202))

	assert.Len(t, result.UnresolvedBranches, 1)
	assert.Equal(t, uint16(0x200), result.UnresolvedBranches[0])
}

func TestAnalyzeReturnTerminatesPath(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	result, err := analyzer.Analyze(rom(0x00EE, 0x1202), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x200).IsType(Code))
	assert.Equal(t, Unknown, result.Class(0x202))
}

func TestAnalyzeInvalidWordTerminatesPath(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// an undecodable word ends the path without classifying it
	result, err := analyzer.Analyze(rom(0x6001, 0xFFFF, 0x1204), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x200).IsType(Code))
	assert.Equal(t, Unknown, result.Class(0x202))
	assert.Equal(t, Unknown, result.Class(0x204))
}

func TestAnalyzeCycleTerminates(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// two blocks jumping at each other
	result, err := analyzer.Analyze(rom(0x1202, 0x1200), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x200).IsType(Code))
	assert.True(t, result.Class(0x202).IsType(Code))
	assert.True(t, result.Class(0x200).IsType(JumpTarget))
	assert.True(t, result.Class(0x202).IsType(JumpTarget))
}

func TestAnalyzeTargetOutsideRom(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	// jump to an address far beyond the ROM end
	result, err := analyzer.Analyze(rom(0x1FFE), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.True(t, result.Class(0x200).IsType(Code))
	assert.Len(t, result.Instructions, 1)
}

func TestAnalyzeErrors(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	_, err := analyzer.Analyze(nil, chip8.ProgramStart)
	assert.Error(t, err)

	_, err = analyzer.Analyze(make([]byte, chip8.MaxRomSize+1), chip8.ProgramStart)
	assert.True(t, errors.Is(err, chip8.ErrRomTooLarge))
}

func TestAnalyzeChecksumDeterministic(t *testing.T) {
	analyzer := New(log.NewTestLogger(t))

	first, err := analyzer.Analyze(rom(0x1200), chip8.ProgramStart)
	assert.NoError(t, err)
	second, err := analyzer.Analyze(rom(0x1200), chip8.ProgramStart)
	assert.NoError(t, err)

	assert.Equal(t, first.Checksum, second.Checksum)
}
