package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/goforth/internal/byteio"
)

type fmtBuf interface {
	Len() int
	Write(p []byte) (n int, err error)
	WriteByte(c byte) error
	WriteString(s string) (n int, err error)
}

// vmDumper writes a human readable VM state: registers, both stacks, and a
// decompiled listing of the dictionary. It reads memory without halting, so
// it may be used on a VM that has already failed.
type vmDumper struct {
	vm  *VM
	out io.Writer

	addrWidth int
	words     []uint // oldest first
}

func (dump vmDumper) dump() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  ip: %v\n", vm.ip)
	fmt.Fprintf(dump.out, "  state: %v here: %v latest: %v base: %v\n",
		dump.cell(regState), dump.cell(regHere), dump.cell(regLatest), dump.cell(regBase))
	fmt.Fprintf(dump.out, "  stack: %v\n", vm.stack())
	fmt.Fprintf(dump.out, "  rstack: %v\n", vm.rstack())
	dump.dumpDict()
}

func (dump *vmDumper) cell(addr uint) int {
	val, _ := dump.vm.arena.LoadCell(addr)
	return val
}

func (dump *vmDumper) byteAt(addr uint) byte {
	b, _ := dump.vm.arena.LoadByte(addr)
	return b
}

func (dump *vmDumper) scanWords() {
	words := dump.vm.words()
	dump.words = make([]uint, len(words))
	for i, word := range words {
		dump.words[len(words)-1-i] = word
	}
}

func (dump *vmDumper) dumpDict() {
	if dump.words == nil {
		dump.scanWords()
	}
	if dump.addrWidth == 0 {
		dump.addrWidth = len(strconv.Itoa(dump.cell(regHere)))
	}
	fmt.Fprintf(dump.out, "# Dictionary @%v\n", dump.vm.memBase)
	var buf strings.Builder
	for i := range dump.words {
		buf.Reset()
		fmt.Fprintf(&buf, "  @% *v ", dump.addrWidth, dump.words[i])
		dump.formatWord(&buf, i)
		buf.WriteByte('\n')
		io.WriteString(dump.out, buf.String())
	}
}

// end returns the address after the ith word's body: the next word or HERE.
func (dump *vmDumper) end(i int) uint {
	if i+1 < len(dump.words) {
		return dump.words[i+1]
	}
	return uint(dump.cell(regHere))
}

func (dump *vmDumper) formatWord(buf fmtBuf, i int) {
	word := dump.words[i]
	flags := dump.byteAt(word + cellSize)

	buf.WriteString(": ")
	dump.formatName(buf, word)
	if flags&flagImmediate != 0 {
		buf.WriteString(" immediate")
	}
	if flags&flagHidden != 0 {
		buf.WriteString(" hidden")
	}

	cfa := codeField(word, int(flags&flagLenMask))
	switch code := dump.cell(cfa); code {
	case vmCodeDocol:
		buf.WriteString(" docol")
		end := dump.end(i)
		for addr := cfa + cellSize; addr < end; {
			buf.WriteByte(' ')
			addr = dump.formatCode(buf, addr)
		}
	case vmCodeConst:
		fmt.Fprintf(buf, " const(%v)", dump.cell(cfa+cellSize))
	default:
		buf.WriteByte(' ')
		dump.formatPrim(buf, code)
	}
}

func (dump *vmDumper) formatPrim(buf fmtBuf, code int) {
	if code >= 0 && code < vmCodeMax {
		buf.WriteString(vmCodeNames[code])
	} else {
		fmt.Fprintf(buf, "code(%v)", code)
	}
}

// formatCode writes the compiled cell at addr, along with any inline
// operand, returning the address of the next cell.
func (dump *vmDumper) formatCode(buf fmtBuf, addr uint) uint {
	cfa := uint(dump.cell(addr))
	addr += cellSize

	word := dump.wordOf(cfa)
	if word == 0 {
		buf.WriteString(strconv.Itoa(int(cfa)))
		return addr
	}
	name := string(dump.name(word))

	switch dump.cell(cfa) {
	case vmCodeLit:
		fmt.Fprintf(buf, "%v(%v)", name, dump.cell(addr))
		return addr + cellSize

	case vmCodeBranch, vmCodeZbranch:
		fmt.Fprintf(buf, "%v(%+d)", name, dump.cell(addr))
		return addr + cellSize

	case vmCodeTick:
		buf.WriteString("'(")
		if target := dump.wordOf(uint(dump.cell(addr))); target != 0 {
			buf.Write(dump.name(target))
		} else {
			buf.WriteString(strconv.Itoa(dump.cell(addr)))
		}
		buf.WriteByte(')')
		return addr + cellSize

	case vmCodeLitstring:
		n := dump.cell(addr)
		addr += cellSize
		if n < 0 || n > dump.cell(regHere) {
			fmt.Fprintf(buf, "%v(%v)", name, n)
			return addr
		}
		str, _ := dump.vm.arena.Bytes(addr, uint(n))
		fmt.Fprintf(buf, "%v(%v)", name, byteio.Quote(str))
		return addr + align(uint(n))
	}

	buf.WriteString(name)
	return addr
}

// wordOf returns the word whose code field is cfa, or 0.
func (dump *vmDumper) wordOf(cfa uint) uint {
	for i := len(dump.words) - 1; i >= 0; i-- {
		word := dump.words[i]
		if word < cfa {
			if codeField(word, int(dump.byteAt(word+cellSize)&flagLenMask)) == cfa {
				return word
			}
			return 0
		}
	}
	return 0
}

func (dump *vmDumper) name(word uint) []byte {
	n := dump.byteAt(word+cellSize) & flagLenMask
	name, _ := dump.vm.arena.Bytes(word+cellSize+1, uint(n))
	return name
}

func (dump *vmDumper) formatName(buf fmtBuf, word uint) {
	if name := dump.name(word); len(name) > 0 {
		buf.Write(name)
	} else {
		buf.WriteString("ø")
	}
}
