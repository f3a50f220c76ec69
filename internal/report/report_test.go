package report

import (
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/analyzer"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func analyze(t *testing.T, rom []byte) *analyzer.Result {
	t.Helper()

	result, err := analyzer.New(log.NewTestLogger(t)).Analyze(rom, chip8.ProgramStart)
	assert.NoError(t, err)
	return result
}

func TestWriteListing(t *testing.T) {
	// call 0x206, self jump, sprite data, return
	rom := []byte{0x22, 0x06, 0x12, 0x02, 0xF0, 0x90, 0x00, 0xEE}
	result := analyze(t, rom)

	buf := &strings.Builder{}
	writer := New(rom, result, buf, Options{HexComments: true, OffsetComments: true})
	assert.NoError(t, writer.Write())
	listing := buf.String()

	assert.Contains(t, listing, ".org $200")
	assert.Contains(t, listing, "crc32:")
	assert.Contains(t, listing, "_label_0200:")
	assert.Contains(t, listing, "_func_0206:")
	assert.Contains(t, listing, "_label_0202:")
	assert.Contains(t, listing, ".byte $f0, $90")
	assert.Contains(t, listing, "$206")
}

func TestWriteListingWithoutComments(t *testing.T) {
	rom := []byte{0x12, 0x00}
	result := analyze(t, rom)

	buf := &strings.Builder{}
	writer := New(rom, result, buf, Options{})
	assert.NoError(t, writer.Write())

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.False(t, strings.Contains(line, ";") && !strings.HasPrefix(line, ";"),
			"unexpected trailing comment in line: "+line)
	}
}

func TestWriteListingUnresolvedBranch(t *testing.T) {
	rom := []byte{0xB3, 0x00}
	result := analyze(t, rom)

	buf := &strings.Builder{}
	writer := New(rom, result, buf, Options{})
	assert.NoError(t, writer.Write())

	assert.Contains(t, buf.String(), "unresolved indirect")
}

func TestWriteListingDataLineLength(t *testing.T) {
	// unreachable data only, after the terminating return
	rom := make([]byte, 20)
	rom[0], rom[1] = 0x00, 0xEE
	for i := 2; i < len(rom); i++ {
		rom[i] = byte(i)
	}
	result := analyze(t, rom)

	buf := &strings.Builder{}
	writer := New(rom, result, buf, Options{})
	assert.NoError(t, writer.Write())

	dataLines := 0
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, ".byte") {
			dataLines++
		}
	}
	// 18 data bytes bundled into lines of up to 8 bytes
	assert.Equal(t, 3, dataLines)
}
