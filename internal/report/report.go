// Package report renders analysis results as an assembly style listing.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/analyzer"
	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"

	dataBytesPerLine = 8
)

// Options of the writer.
type Options struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output addresses in comments
}

// Writer renders one analysis result to an output stream.
type Writer struct {
	rom     []byte
	result  *analyzer.Result
	options Options
	writer  io.Writer
}

// New creates a new report writer.
func New(rom []byte, result *analyzer.Result, writer io.Writer, options Options) *Writer {
	return &Writer{
		rom:     rom,
		result:  result,
		options: options,
		writer:  writer,
	}
}

// Write renders the listing: a header, one line per code instruction and
// bundled data byte lines for all unclassified regions.
func (w *Writer) Write() error {
	if err := w.writeHeader(); err != nil {
		return err
	}

	for index := 0; index < len(w.rom); {
		address := chip8.ProgramStart + uint16(index)

		if err := w.writeLabel(address); err != nil {
			return err
		}

		ins, ok := w.result.Instructions[address]
		if !ok {
			count, err := w.writeDataRun(index)
			if err != nil {
				return err
			}
			index += count
			continue
		}

		if err := w.writeCode(address, ins); err != nil {
			return err
		}
		index += 2
	}
	return nil
}

// writeHeader writes the listing header comments and the org directive.
func (w *Writer) writeHeader() error {
	unresolved := ""
	if count := len(w.result.UnresolvedBranches); count > 0 {
		unresolved = fmt.Sprintf("\n; contains %d unresolved indirect branches", count)
	}

	_, err := fmt.Fprintf(w.writer,
		"; CHIP-8 ROM analysis\n; size: %d bytes, crc32: %08X\n; entry point: $%03X%s\n\n.org $%03X\n\n",
		len(w.rom), w.result.Checksum, w.result.EntryPoint, unresolved, chip8.ProgramStart)
	if err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// writeLabel writes a label line if the address is a basic block entry.
// Call targets are named as functions, other entries as labels.
func (w *Writer) writeLabel(address uint16) error {
	if _, ok := w.result.Entries[address]; !ok {
		return nil
	}

	naming := labelNaming
	if w.result.Class(address).IsType(analyzer.CallTarget) {
		naming = funcNaming
	}
	if _, err := fmt.Fprintf(w.writer, naming+":\n", address); err != nil {
		return fmt.Errorf("writing label: %w", err)
	}
	return nil
}

// writeCode writes one instruction line with optional comments.
func (w *Writer) writeCode(address uint16, ins chip8.Instruction) error {
	line := "    " + ins.String()

	comment := w.lineComment(address, []byte{byte(ins.Opcode >> 8), byte(ins.Opcode)})
	if w.isUnresolvedBranch(address) {
		comment = appendComment(comment, "unresolved indirect jump target")
	}

	if err := w.writeLine(line, comment); err != nil {
		return fmt.Errorf("writing code: %w", err)
	}
	return nil
}

// writeDataRun writes the unclassified bytes starting at the given ROM
// offset as data byte lines and returns how many bytes were written. The
// run ends at the next classified or labeled address.
func (w *Writer) writeDataRun(index int) (int, error) {
	count := 0
	for index+count < len(w.rom) {
		address := chip8.ProgramStart + uint16(index+count)
		if count > 0 {
			if _, ok := w.result.Instructions[address]; ok {
				break
			}
			if _, ok := w.result.Entries[address]; ok {
				break
			}
		}
		if count == dataBytesPerLine {
			break
		}
		count++
	}

	data := w.rom[index : index+count]
	buf := &strings.Builder{}
	buf.WriteString("    .byte ")
	for i, value := range data {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "$%02x", value)
	}

	address := chip8.ProgramStart + uint16(index)
	if err := w.writeLine(buf.String(), w.lineComment(address, nil)); err != nil {
		return 0, fmt.Errorf("writing data: %w", err)
	}
	return count, nil
}

// writeLine writes one listing line with an optional trailing comment.
func (w *Writer) writeLine(line, comment string) error {
	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w.writer, "%s\n", line)
	} else {
		_, err = fmt.Fprintf(w.writer, "%-32s ; %s\n", line, comment)
	}
	return err
}

// lineComment builds the address and hex byte comment for a line.
func (w *Writer) lineComment(address uint16, opcodeBytes []byte) string {
	comment := ""
	if w.options.OffsetComments {
		comment = fmt.Sprintf("$%03X", address)
	}
	if w.options.HexComments && len(opcodeBytes) > 0 {
		hexValues := make([]string, 0, len(opcodeBytes))
		for _, value := range opcodeBytes {
			hexValues = append(hexValues, fmt.Sprintf("%02X", value))
		}
		comment = appendComment(comment, strings.Join(hexValues, " "))
	}
	return comment
}

func (w *Writer) isUnresolvedBranch(address uint16) bool {
	for _, unresolved := range w.result.UnresolvedBranches {
		if unresolved == address {
			return true
		}
	}
	return false
}

func appendComment(comment, addition string) string {
	if comment == "" {
		return addition
	}
	return comment + "  " + addition
}
